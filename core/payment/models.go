package payment

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
)

// Statuses
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
	StatusRefunded  = "REFUNDED"
)

var (
	Statuses = []string{StatusPending, StatusCompleted, StatusFailed, StatusRefunded}

	// {from: {to: admin only}}
	transitions = map[string]map[string]bool{
		StatusPending:   {StatusCompleted: false, StatusFailed: false},
		StatusFailed:    {StatusPending: false, StatusCompleted: false},
		StatusCompleted: {StatusRefunded: true},
	}
)

type Payment struct {
	ID         string      `json:"id" db:"id"`
	ContractID string      `json:"contract_id" db:"contract_id"`
	ClassID    null.String `json:"class_id" db:"class_id"`
	ParentID   string      `json:"parent_id" db:"parent_id"`
	TeacherID  string      `json:"teacher_id" db:"teacher_id"`
	Amount     float64     `json:"amount" db:"amount"`
	Currency   string      `json:"currency" db:"currency"`
	Method     string      `json:"method" db:"method"`
	Reference  string      `json:"reference" db:"reference"`
	Status     string      `json:"status" db:"status"`
	PaidAt     null.Time   `json:"paid_at" db:"paid_at"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`

	// joined
	TeacherUserID string `json:"teacher_user_id" db:"teacher_user_id"`
}

func (p Payment) canView(usr user.User) bool {
	return usr.IsAdmin() || usr.ID == p.ParentID || usr.ID == p.TeacherUserID
}

// Audience returns the user IDs of the parent and of the teacher.
func (p Payment) Audience() []string {
	return []string{p.ParentID, p.TeacherUserID}
}

// CanTransition reports whether the payment may move to status, and if only an admin may do so.
func CanTransition(from, to string) (allowed, adminOnly bool) {
	adminOnly, allowed = transitions[from][to]
	return allowed, adminOnly
}

type NewPayment struct {
	ClassID   string  `json:"class_id" validate:"omitempty,uuid"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"required,len=3,alpha"`
	Method    string  `json:"method" validate:"max=50"`
	Reference string  `json:"reference" validate:"max=120"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.ClassID = core.CleanString(np.ClassID)
	np.Currency = strings.ToUpper(core.CleanString(np.Currency))
	np.Method = core.CleanString(np.Method)
	np.Reference = core.CleanString(np.Reference)
	return validate.Struct(np)
}

type UpdateStatus struct {
	Status string `json:"status" validate:"required,paymentstatus"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status)
	return validate.Struct(us)
}

type QueryFilter struct {
	Status string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status)
}
