package contract

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
)

// Statuses
const (
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

var Statuses = []string{StatusActive, StatusCompleted, StatusCancelled}

type Contract struct {
	ID            string      `json:"id" db:"id"`
	JobID         string      `json:"job_id" db:"job_id"`
	ApplicationID string      `json:"application_id" db:"application_id"`
	ParentID      string      `json:"parent_id" db:"parent_id"`
	TeacherID     string      `json:"teacher_id" db:"teacher_id"`
	StudentID     null.String `json:"student_id" db:"student_id"`
	HourlyRate    float64     `json:"hourly_rate" db:"hourly_rate"`
	StartDate     time.Time   `json:"start_date" db:"start_date"`
	EndDate       null.Time   `json:"end_date" db:"end_date"`
	Terms         string      `json:"terms" db:"terms"`
	Status        string      `json:"status" db:"status"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`

	// joined
	JobTitle      string `json:"job_title" db:"job_title"`
	ParentName    string `json:"parent_name" db:"parent_name"`
	TeacherUserID string `json:"teacher_user_id" db:"teacher_user_id"`
	TeacherName   string `json:"teacher_name" db:"teacher_name"`
}

func (c Contract) IsActive() bool { return c.Status == StatusActive }

// IsParty reports whether usr is the parent or the teacher of the contract.
func (c Contract) IsParty(usr user.User) bool {
	return usr.ID != "" && (usr.ID == c.ParentID || usr.ID == c.TeacherUserID)
}

// Audience returns the user IDs of both parties.
func (c Contract) Audience() []string {
	return []string{c.ParentID, c.TeacherUserID}
}

// NewContract holds what an accepted application turns into.
type NewContract struct {
	JobID         string
	ApplicationID string
	ParentID      string
	TeacherID     string
	StudentID     null.String
	HourlyRate    float64
	Terms
}

// Terms are set by the parent when accepting an application.
type Terms struct {
	StartDate time.Time  `json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date"`
	Terms     string     `json:"terms" validate:"max=5000"`
}

func (t *Terms) Validate(validate *validator.Validate) error {
	t.Terms = core.CleanString(t.Terms)
	if err := validate.Struct(t); err != nil {
		return err
	}
	if t.EndDate != nil && !t.EndDate.After(t.StartDate) {
		return core.NewFieldError("end_date", "end_date must be after start_date")
	}
	return nil
}

type QueryFilter struct {
	Status string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status)
}
