package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tutorly/tutorly/core"
)

type Student struct {
	ID        string    `json:"id" db:"id"`
	ParentID  string    `json:"parent_id" db:"parent_id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Level     string    `json:"level" db:"level"`
	School    string    `json:"school" db:"school"`
	Notes     string    `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewStudent is also used to fully update a Student.
type NewStudent struct {
	FullName string `json:"full_name" validate:"required,notblank,max=120"`
	Level    string `json:"level" validate:"required,level"`
	School   string `json:"school" validate:"max=255"`
	Notes    string `json:"notes" validate:"max=2000"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FullName = core.CleanString(ns.FullName)
	ns.Level = core.CleanString(ns.Level)
	ns.School = core.CleanString(ns.School)
	ns.Notes = core.CleanString(ns.Notes)
	return validate.Struct(ns)
}
