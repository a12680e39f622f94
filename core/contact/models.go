package contact

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/tutorly/tutorly/core"
)

const (
	StatusNew      = "NEW"
	StatusResolved = "RESOLVED"
)

type Contact struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Subject    string    `json:"subject" db:"subject"`
	Message    string    `json:"message" db:"message"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	ResolvedAt null.Time `json:"resolved_at" db:"resolved_at"`
}

type NewContact struct {
	Name    string `json:"name" validate:"required,notblank,max=120"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"required,notblank,max=255"`
	Message string `json:"message" validate:"required,notblank,max=5000"`
}

func (nc *NewContact) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Email = core.CleanString(nc.Email, true)
	nc.Subject = core.CleanString(nc.Subject)
	nc.Message = core.CleanString(nc.Message)
	return validate.Struct(nc)
}

type QueryFilter struct {
	Status string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status)
}

type receivedMailData struct {
	Name    string
	Email   string
	Subject string
	Message string
}
