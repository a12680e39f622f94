package review

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tutorly/tutorly/core"
)

type Review struct {
	ID         string    `json:"id" db:"id"`
	ContractID string    `json:"contract_id" db:"contract_id"`
	TeacherID  string    `json:"teacher_id" db:"teacher_id"`
	ParentID   string    `json:"parent_id" db:"parent_id"`
	Rating     int       `json:"rating" db:"rating"`
	Comment    string    `json:"comment" db:"comment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// joined
	ParentName string `json:"parent_name" db:"parent_name"`
}

type NewReview struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	nr.Comment = core.CleanString(nr.Comment)
	return validate.Struct(nr)
}
