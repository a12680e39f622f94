package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tutorly/tutorly/core"
)

// Statuses
const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

var Statuses = []string{StatusScheduled, StatusCompleted, StatusCancelled}

// Class is a tuition session held under a contract.
type Class struct {
	ID              string    `json:"id" db:"id"`
	ContractID      string    `json:"contract_id" db:"contract_id"`
	ScheduledAt     time.Time `json:"scheduled_at" db:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Status          string    `json:"status" db:"status"`
	MeetingURL      string    `json:"meeting_url" db:"meeting_url"`
	Notes           string    `json:"notes" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

func (c Class) IsScheduled() bool { return c.Status == StatusScheduled }

type NewClass struct {
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=15,max=480"`
	Online          bool      `json:"online"`
	Notes           string    `json:"notes" validate:"max=2000"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Notes = core.CleanString(nc.Notes)
	return validate.Struct(nc)
}

type UpdateClass struct {
	ScheduledAt     *time.Time `json:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes" validate:"omitempty,min=15,max=480"`
	Notes           *string    `json:"notes" validate:"omitempty,max=2000"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	if uc.Notes != nil {
		notes := core.CleanString(*uc.Notes)
		uc.Notes = &notes
	}
	return validate.Struct(uc)
}

type QueryFilter struct {
	Status string    `query:"status"`
	From   time.Time `query:"from"`
	To     time.Time `query:"to"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status)
}
