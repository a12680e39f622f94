// Package inmemdb holds map-backed repositories.
package inmemdb

import (
	"sync"

	"github.com/tutorly/tutorly/core/contact"
)

type (
	DB struct {
		contact *contactTable
	}

	contactTable struct {
		t     map[string]*contact.Contact
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		contact: &contactTable{t: make(map[string]*contact.Contact)},
	}
}
