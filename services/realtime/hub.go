package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/tutorly/tutorly/core"
)

const subscriptionBuffer = 64

// Hub delivers events to the subscriptions of their audience, within this process.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{} // {userID: {subscription}}
	logger core.Logger
}

var _ core.Publisher = (*Hub)(nil)

func NewHub(logger core.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscription receives the events addressed to a user until closed.
type Subscription struct {
	UserID string

	hub    *Hub
	events chan core.Event
	once   sync.Once
}

func (s *Subscription) Events() <-chan core.Event {
	return s.events
}

// Close unsubscribes; the events channel is closed.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if set, ok := s.hub.subs[s.UserID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(s.hub.subs, s.UserID)
			}
		}
		close(s.events)
		s.hub.mu.Unlock()
	})
}

func (h *Hub) Subscribe(userID string) *Subscription {
	s := &Subscription{
		UserID: userID,
		hub:    h,
		events: make(chan core.Event, subscriptionBuffer),
	}
	h.mu.Lock()
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[userID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Subscribers returns the number of open subscriptions of userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Publish never blocks: events are dropped for subscriptions whose buffer is full.
func (h *Hub) Publish(_ context.Context, evt core.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, userID := range evt.Audience {
		for s := range h.subs[userID] {
			select {
			case s.events <- evt:
			default:
				h.logger.Warn(fmt.Sprintf("realtime: dropping %s %s event for user %s", evt.Table, evt.Type, userID))
			}
		}
	}
}
