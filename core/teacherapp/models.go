package teacherapp

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/teacher"
)

const (
	StatusPending            = "PENDING"
	StatusUnderReview        = "UNDER_REVIEW"
	StatusInterviewScheduled = "INTERVIEW_SCHEDULED"
	StatusInterviewCompleted = "INTERVIEW_COMPLETED"
	StatusApproved           = "APPROVED"
	StatusRejected           = "REJECTED"
)

var (
	Statuses = []string{
		StatusPending, StatusUnderReview, StatusInterviewScheduled,
		StatusInterviewCompleted, StatusApproved, StatusRejected,
	}

	// transitions lists the statuses reachable from each non-terminal status.
	transitions = map[string][]string{
		StatusPending:            {StatusUnderReview, StatusRejected},
		StatusUnderReview:        {StatusInterviewScheduled, StatusRejected},
		StatusInterviewScheduled: {StatusInterviewCompleted, StatusRejected},
		StatusInterviewCompleted: {StatusApproved, StatusRejected},
	}
)

// CanTransition reports whether an application may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status string) bool {
	_, ok := transitions[status]
	return !ok
}

// Qualifications are stored as a JSON encoded text column.
type Qualifications []teacher.NewQualification

func (qs Qualifications) Value() (driver.Value, error) {
	if qs == nil {
		qs = Qualifications{}
	}
	b, err := json.Marshal([]teacher.NewQualification(qs))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (qs *Qualifications) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*qs = Qualifications{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.Errorf("teacherapp.Qualifications: cannot scan %T", src)
	}
	var list []teacher.NewQualification
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.Wrap(err, "teacherapp.Qualifications")
	}
	*qs = list
	return nil
}

type Application struct {
	ID              string          `json:"id" db:"id"`
	UserID          string          `json:"user_id" db:"user_id"`
	Bio             string          `json:"bio" db:"bio"`
	ExperienceYears int             `json:"experience_years" db:"experience_years"`
	HourlyRate      float64         `json:"hourly_rate" db:"hourly_rate"`
	Education       string          `json:"education" db:"education"`
	City            string          `json:"city" db:"city"`
	Subjects        core.StringList `json:"subjects" db:"subjects"`
	Levels          core.StringList `json:"levels" db:"levels"`
	Qualifications  Qualifications  `json:"qualifications" db:"qualifications"`
	Status          string          `json:"status" db:"status"`
	InterviewAt     null.Time       `json:"interview_at" db:"interview_at"`
	InterviewURL    string          `json:"interview_url" db:"interview_url"`
	AdminNotes      string          `json:"admin_notes" db:"admin_notes"`
	RejectionReason string          `json:"rejection_reason" db:"rejection_reason"`
	ReviewedBy      null.String     `json:"reviewed_by" db:"reviewed_by"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`

	// from user_profiles
	FullName string `json:"full_name" db:"full_name"`
	Email    string `json:"email" db:"email"`
}

func (a Application) IsTerminal() bool {
	return IsTerminal(a.Status)
}

// Profile is what an approved application contributes to the applicant's Teacher.
func (a Application) Profile() teacher.Profile {
	return teacher.Profile{
		UserID:          a.UserID,
		Bio:             a.Bio,
		ExperienceYears: a.ExperienceYears,
		HourlyRate:      a.HourlyRate,
		Education:       a.Education,
		City:            a.City,
		Subjects:        a.Subjects,
		Levels:          a.Levels,
		Qualifications:  a.Qualifications,
	}
}

type NewApplication struct {
	Bio             string                     `json:"bio" validate:"required,notblank,max=2000"`
	ExperienceYears int                        `json:"experience_years" validate:"min=0,max=80"`
	HourlyRate      float64                    `json:"hourly_rate" validate:"min=0"`
	Education       string                     `json:"education" validate:"max=255"`
	City            string                     `json:"city" validate:"max=120"`
	Subjects        []string                   `json:"subjects" validate:"required,min=1,max=20,dive,notblank,max=80"`
	Levels          []string                   `json:"levels" validate:"required,min=1,level"`
	Qualifications  []teacher.NewQualification `json:"qualifications" validate:"max=20,dive"`
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	na.Bio = core.CleanString(na.Bio)
	na.Education = core.CleanString(na.Education)
	na.City = core.CleanString(na.City)
	na.Subjects = core.CleanStrings(na.Subjects)
	na.Levels = core.CleanStrings(na.Levels)
	for i := range na.Qualifications {
		na.Qualifications[i].Title = core.CleanString(na.Qualifications[i].Title)
		na.Qualifications[i].Institution = core.CleanString(na.Qualifications[i].Institution)
	}
	return validate.Struct(na)
}

type ScheduleInterview struct {
	InterviewAt time.Time `json:"interview_at" validate:"required"`
}

func (si *ScheduleInterview) Validate(validate *validator.Validate) error {
	return validate.Struct(si)
}

type CompleteInterview struct {
	AdminNotes string `json:"admin_notes" validate:"max=5000"`
}

func (ci *CompleteInterview) Validate(validate *validator.Validate) error {
	ci.AdminNotes = core.CleanString(ci.AdminNotes)
	return validate.Struct(ci)
}

type Reject struct {
	Reason string `json:"reason" validate:"max=2000"`
}

func (r *Reject) Validate(validate *validator.Validate) error {
	r.Reason = core.CleanString(r.Reason)
	return validate.Struct(r)
}

type QueryFilter struct {
	Search string `query:"search"`
	Status string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status)
}

type statusMailData struct {
	Name         string
	Status       string
	InterviewAt  time.Time
	InterviewURL string
	Reason       string
}
