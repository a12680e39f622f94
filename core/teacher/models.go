package teacher

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tutorly/tutorly/core"
)

type Teacher struct {
	ID              string    `json:"id" db:"id"`
	UserID          string    `json:"user_id" db:"user_id"`
	Bio             string    `json:"bio" db:"bio"`
	ExperienceYears int       `json:"experience_years" db:"experience_years"`
	HourlyRate      float64   `json:"hourly_rate" db:"hourly_rate"`
	Education       string    `json:"education" db:"education"`
	City            string    `json:"city" db:"city"`
	IsVerified      bool      `json:"is_verified" db:"is_verified"`
	IsAvailable     bool      `json:"is_available" db:"is_available"`
	AverageRating   float64   `json:"average_rating" db:"average_rating"`
	TotalReviews    int       `json:"total_reviews" db:"total_reviews"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`

	// from user_profiles
	FullName  string `json:"full_name" db:"full_name"`
	AvatarURL string `json:"avatar_url" db:"avatar_url"`

	Subjects       []string        `json:"subjects" db:"-"`
	Levels         []string        `json:"levels" db:"-"`
	Qualifications []Qualification `json:"qualifications,omitempty" db:"-"`
}

type Qualification struct {
	ID           string `json:"id" db:"id"`
	TeacherID    string `json:"teacher_id" db:"teacher_id"`
	Title        string `json:"title" db:"title"`
	Institution  string `json:"institution" db:"institution"`
	YearObtained int    `json:"year_obtained" db:"year_obtained"`
}

// Profile holds what an approved teacher application contributes to a Teacher.
type Profile struct {
	UserID          string
	Bio             string
	ExperienceYears int
	HourlyRate      float64
	Education       string
	City            string
	Subjects        []string
	Levels          []string
	Qualifications  []NewQualification
}

type UpdateTeacher struct {
	Bio             string   `json:"bio" validate:"max=2000"`
	ExperienceYears *int     `json:"experience_years" validate:"omitempty,min=0,max=80"`
	HourlyRate      *float64 `json:"hourly_rate" validate:"omitempty,min=0"`
	Education       string   `json:"education" validate:"max=255"`
	City            string   `json:"city" validate:"max=120"`
	IsAvailable     *bool    `json:"is_available"`
}

func (ut *UpdateTeacher) Validate(validate *validator.Validate) error {
	ut.Bio = core.CleanString(ut.Bio)
	ut.Education = core.CleanString(ut.Education)
	ut.City = core.CleanString(ut.City)
	return validate.Struct(ut)
}

type SetSubjects struct {
	Subjects []string `json:"subjects" validate:"required,min=1,max=20,dive,max=80"`
}

func (ss *SetSubjects) Validate(validate *validator.Validate) error {
	ss.Subjects = core.CleanStrings(ss.Subjects)
	return validate.Struct(ss)
}

type SetLevels struct {
	Levels []string `json:"levels" validate:"required,min=1,level"`
}

func (sl *SetLevels) Validate(validate *validator.Validate) error {
	sl.Levels = core.CleanStrings(sl.Levels)
	return validate.Struct(sl)
}

type NewQualification struct {
	Title        string `json:"title" validate:"required,notblank,max=255"`
	Institution  string `json:"institution" validate:"max=255"`
	YearObtained int    `json:"year_obtained" validate:"omitempty,min=1900,max=2100"`
}

func (nq *NewQualification) Validate(validate *validator.Validate) error {
	nq.Title = core.CleanString(nq.Title)
	nq.Institution = core.CleanString(nq.Institution)
	return validate.Struct(nq)
}

type QueryFilter struct {
	Search    string   `query:"search"`
	Subject   string   `query:"subject"`
	Level     string   `query:"level"`
	City      string   `query:"city"`
	MinRating *float64 `query:"min_rating"`
	MaxRate   *float64 `query:"max_rate"`
	Available *bool    `query:"available"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Subject = core.CleanString(qf.Subject)
	qf.Level = core.CleanString(qf.Level)
	qf.City = core.CleanString(qf.City)
}
