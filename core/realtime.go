package core

import "context"

// Realtime event types, named after the row change that triggered them.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

type (
	// Event is a row-change notification pushed to subscribed sessions.
	Event struct {
		Table    string      `json:"table"`
		Type     string      `json:"type"`
		Record   interface{} `json:"record"`
		Audience []string    `json:"-"` // user IDs
	}

	// Publisher is any service that can broadcast realtime events.
	Publisher interface {
		Publish(ctx context.Context, evt Event)
	}
)

// NewEvent builds an Event for the given audience, skipping blank user IDs.
func NewEvent(table, typ string, record interface{}, audience ...string) Event {
	aud := make([]string, 0, len(audience))
	for _, id := range audience {
		if id != "" {
			aud = append(aud, id)
		}
	}
	return Event{Table: table, Type: typ, Record: record, Audience: aud}
}
