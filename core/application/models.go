package application

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
)

// Statuses
const (
	StatusPending   = "PENDING"
	StatusAccepted  = "ACCEPTED"
	StatusRejected  = "REJECTED"
	StatusWithdrawn = "WITHDRAWN"
)

var Statuses = []string{StatusPending, StatusAccepted, StatusRejected, StatusWithdrawn}

// Application is a teacher's bid on a Job.
type Application struct {
	ID           string    `json:"id" db:"id"`
	JobID        string    `json:"job_id" db:"job_id"`
	TeacherID    string    `json:"teacher_id" db:"teacher_id"`
	CoverLetter  string    `json:"cover_letter" db:"cover_letter"`
	ProposedRate float64   `json:"proposed_rate" db:"proposed_rate"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// joined
	JobTitle      string `json:"job_title" db:"job_title"`
	ParentID      string `json:"parent_id" db:"parent_id"`
	TeacherUserID string `json:"teacher_user_id" db:"teacher_user_id"`
	TeacherName   string `json:"teacher_name" db:"teacher_name"`
}

func (a Application) IsPending() bool { return a.Status == StatusPending }

func (a Application) canView(usr user.User) bool {
	return usr.IsAdmin() || usr.ID == a.ParentID || usr.ID == a.TeacherUserID
}

// Audience returns the user IDs of the job's parent and of the teacher.
func (a Application) Audience() []string {
	return []string{a.ParentID, a.TeacherUserID}
}

type NewApplication struct {
	CoverLetter  string  `json:"cover_letter" validate:"max=5000"`
	ProposedRate float64 `json:"proposed_rate" validate:"required,gt=0"`
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	na.CoverLetter = core.CleanString(na.CoverLetter)
	return validate.Struct(na)
}

type QueryFilter struct {
	Status string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status)
}

type receivedMailData struct {
	ParentName   string
	TeacherName  string
	JobTitle     string
	ProposedRate float64
	JobID        string
}

type acceptedMailData struct {
	TeacherName string
	JobTitle    string
	StartDate   time.Time
	ContractID  string
}
