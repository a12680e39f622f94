package job

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/tutorly/tutorly/core"
)

// Teaching modes
const (
	ModeOnline   = "ONLINE"
	ModeInPerson = "IN_PERSON"
	ModeHybrid   = "HYBRID"
)

// Statuses
const (
	StatusOpen   = "OPEN"
	StatusFilled = "FILLED"
	StatusClosed = "CLOSED"
)

var (
	Modes    = []string{ModeOnline, ModeInPerson, ModeHybrid}
	Statuses = []string{StatusOpen, StatusFilled, StatusClosed}
)

// Job is a tuition request posted by a parent.
type Job struct {
	ID              string      `json:"id" db:"id"`
	ParentID        string      `json:"parent_id" db:"parent_id"`
	StudentID       null.String `json:"student_id" db:"student_id"`
	Title           string      `json:"title" db:"title"`
	Description     string      `json:"description" db:"description"`
	Subject         string      `json:"subject" db:"subject"`
	Level           string      `json:"level" db:"level"`
	Location        string      `json:"location" db:"location"`
	Mode            string      `json:"mode" db:"mode"`
	SessionsPerWeek int         `json:"sessions_per_week" db:"sessions_per_week"`
	BudgetMin       float64     `json:"budget_min" db:"budget_min"`
	BudgetMax       float64     `json:"budget_max" db:"budget_max"`
	Status          string      `json:"status" db:"status"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

func (j Job) IsOpen() bool { return j.Status == StatusOpen }

// NewJob contains information needed to post a Job. It is also used to update one.
type NewJob struct {
	StudentID       string  `json:"student_id" validate:"omitempty,uuid"`
	Title           string  `json:"title" validate:"required,notblank,max=200"`
	Description     string  `json:"description" validate:"max=5000"`
	Subject         string  `json:"subject" validate:"required,notblank,max=80"`
	Level           string  `json:"level" validate:"required,level"`
	Location        string  `json:"location" validate:"max=255"`
	Mode            string  `json:"mode" validate:"required,jobmode"`
	SessionsPerWeek int     `json:"sessions_per_week" validate:"min=1,max=14"`
	BudgetMin       float64 `json:"budget_min" validate:"min=0"`
	BudgetMax       float64 `json:"budget_max" validate:"min=0,gtefield=BudgetMin"`
}

func (nj *NewJob) Validate(validate *validator.Validate) error {
	nj.StudentID = core.CleanString(nj.StudentID)
	nj.Title = core.CleanString(nj.Title)
	nj.Description = core.CleanString(nj.Description)
	nj.Subject = core.CleanString(nj.Subject)
	nj.Level = core.CleanString(nj.Level)
	nj.Location = core.CleanString(nj.Location)
	nj.Mode = core.CleanString(nj.Mode)
	if nj.SessionsPerWeek == 0 {
		nj.SessionsPerWeek = 1
	}
	return validate.Struct(nj)
}

type QueryFilter struct {
	Search   string `query:"search"`
	Subject  string `query:"subject"`
	Level    string `query:"level"`
	Mode     string `query:"mode"`
	Location string `query:"location"`
	Status   string `query:"status"`
	ParentID string `query:"parent_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Subject = core.CleanString(qf.Subject)
	qf.Level = core.CleanString(qf.Level)
	qf.Mode = core.CleanString(qf.Mode)
	qf.Location = core.CleanString(qf.Location)
	qf.Status = core.CleanString(qf.Status)
	qf.ParentID = core.CleanString(qf.ParentID)
}
