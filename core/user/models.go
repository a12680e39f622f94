package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tutorly/tutorly/core"
)

// Roles
const (
	RoleParent  = "PARENT"
	RoleTeacher = "TEACHER"
	RoleAdmin   = "ADMIN"
)

// Preferred contact channels of parents
const (
	ContactEmail   = "EMAIL"
	ContactPhone   = "PHONE"
	ContactMessage = "MESSAGE"
)

var (
	AllRoles    = []string{RoleParent, RoleTeacher, RoleAdmin}
	SignupRoles = []string{RoleParent, RoleTeacher}

	ContactChannels = []string{ContactEmail, ContactPhone, ContactMessage}
)

// User is the profile of an identity provider account. ID is the provider's subject.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	Phone     string    `json:"phone" db:"phone"`
	AvatarURL string    `json:"avatar_url" db:"avatar_url"`
	Role      string    `json:"role" db:"role"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsParent() bool  { return u.Role == RoleParent }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }

type ParentProfile struct {
	UserID           string    `json:"user_id" db:"user_id"`
	Address          string    `json:"address" db:"address"`
	City             string    `json:"city" db:"city"`
	PreferredContact string    `json:"preferred_contact" db:"preferred_contact"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser contains information needed to create the profile of a signed up account.
type NewUser struct {
	FullName string `json:"full_name" validate:"required,notblank,max=120"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Role     string `json:"role" validate:"required,signuprole"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.FullName = core.CleanString(nu.FullName)
	nu.Phone = core.CleanString(nu.Phone)
	nu.Role = strings.ToUpper(core.CleanString(nu.Role))
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify a profile.
// Blank fields keep their current value.
type UpdateUser struct {
	FullName  string `json:"full_name" validate:"required,max=120"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate) error {
	if name := core.CleanString(uu.FullName); name != "" {
		uu.FullName = name
	} else {
		uu.FullName = origUsr.FullName
	}
	if phone := core.CleanString(uu.Phone); phone != "" {
		uu.Phone = phone
	} else {
		uu.Phone = origUsr.Phone
	}
	if avatar := core.CleanString(uu.AvatarURL); avatar != "" {
		uu.AvatarURL = avatar
	} else {
		uu.AvatarURL = origUsr.AvatarURL
	}
	return validate.Struct(uu)
}

type UpdateParentProfile struct {
	Address          string `json:"address" validate:"max=255"`
	City             string `json:"city" validate:"max=120"`
	PreferredContact string `json:"preferred_contact" validate:"omitempty,contactchannel"`
}

func (up *UpdateParentProfile) Validate(orig ParentProfile, validate *validator.Validate) error {
	up.Address = core.CleanString(up.Address)
	up.City = core.CleanString(up.City)
	if pc := core.CleanString(up.PreferredContact); pc != "" {
		up.PreferredContact = pc
	} else {
		up.PreferredContact = orig.PreferredContact
	}
	return validate.Struct(up)
}

type SetActive struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (sa SetActive) Validate(validate *validator.Validate) error { return validate.Struct(sa) }

type SetRole struct {
	Role string `json:"role" validate:"required,userrole"`
}

func (sr *SetRole) Validate(validate *validator.Validate) error {
	sr.Role = strings.ToUpper(core.CleanString(sr.Role))
	return validate.Struct(sr)
}

type QueryFilter struct {
	Search   string `query:"search"`
	Role     string `query:"role"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role)
}
