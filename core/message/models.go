package message

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/tutorly/tutorly/core"
)

type Message struct {
	ID          string    `json:"id" db:"id"`
	SenderID    string    `json:"sender_id" db:"sender_id"`
	RecipientID string    `json:"recipient_id" db:"recipient_id"`
	Content     string    `json:"content" db:"content"`
	ReadAt      null.Time `json:"read_at" db:"read_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Conversation summarizes the messages exchanged with a counterpart.
type Conversation struct {
	CounterpartID   string  `json:"counterpart_id"`
	CounterpartName string  `json:"counterpart_name"`
	LastMessage     Message `json:"last_message"`
	UnreadCount     int     `json:"unread_count"`
}

// ReadReceipt tells a sender that its messages were read.
type ReadReceipt struct {
	ReaderID string    `json:"reader_id"`
	SenderID string    `json:"sender_id"`
	Count    int       `json:"count"`
	ReadAt   time.Time `json:"read_at"`
}

type NewMessage struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Content     string `json:"content" validate:"required,notblank,max=5000"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.RecipientID = core.CleanString(nm.RecipientID)
	nm.Content = core.CleanString(nm.Content)
	return validate.Struct(nm)
}
