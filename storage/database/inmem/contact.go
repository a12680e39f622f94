package inmemdb

import (
	"context"
	"sort"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/contact"
)

type contactRepository struct {
	db *contactTable
}

var _ contact.Repository = (*contactRepository)(nil)

// NewContactRepository ignores executors: there are no transactions in memory.
func NewContactRepository(db *DB) contact.Repository {
	return &contactRepository{db: db.contact}
}

func (repo *contactRepository) CreateContact(_ context.Context, c contact.Contact, _ ...core.DBExecutor) (contact.Contact, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.t[c.ID] = &c
	return c, nil
}

func (repo *contactRepository) GetContact(_ context.Context, id string, _ ...core.DBExecutor) (contact.Contact, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.t[id]; ok {
		return *c, nil
	}
	return contact.Contact{}, contact.ErrNotFound
}

func (repo *contactRepository) QueryContacts(_ context.Context, filter *contact.QueryFilter, page core.Page, _ ...core.DBExecutor) ([]contact.Contact, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	contacts := make([]contact.Contact, 0, len(repo.db.t))
	for _, c := range repo.db.t {
		if filter.Status == "" || c.Status == filter.Status {
			contacts = append(contacts, *c)
		}
	}
	// newest first
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].CreatedAt.After(contacts[j].CreatedAt) })

	total := len(contacts)
	start := int(page.Offset())
	if start > total {
		start = total
	}
	end := start + int(page.Limit())
	if end > total {
		end = total
	}
	return contacts[start:end], total, nil
}

func (repo *contactRepository) UpdateContact(_ context.Context, c contact.Contact, _ ...core.DBExecutor) (contact.Contact, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[c.ID]; !ok {
		return contact.Contact{}, contact.ErrNotFound
	}
	repo.db.t[c.ID] = &c
	return c, nil
}
