package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/class"
	"github.com/tutorly/tutorly/core/contract"
	"github.com/tutorly/tutorly/core/user"
)

const table = "payments"

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("payment")
	ErrClassNotInContract = errors.New("class not found in this contract")
	ErrContractCancelled  = errors.New("this contract was cancelled")
	ErrInvalidTransition  = errors.New("invalid payment status transition")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment, exec ...core.DBExecutor) (Payment, error)
		GetPayment(ctx context.Context, id string, exec ...core.DBExecutor) (Payment, error)
		QueryPayments(ctx context.Context, filter Filter, page core.Page, exec ...core.DBExecutor) ([]Payment, int, error)
		UpdatePayment(ctx context.Context, p Payment, exec ...core.DBExecutor) (Payment, error)
	}

	// Filter restricts a query to a contract and/or a user party.
	Filter struct {
		ContractID string
		UserID     string
		Status     string
	}

	Service interface {
		Create(ctx context.Context, actor user.User, contractID string, np NewPayment) (Payment, error)
		ListForContract(ctx context.Context, actor user.User, contractID string, filter *QueryFilter, page core.Page) ([]Payment, int, error)
		ListMine(ctx context.Context, actor user.User, filter *QueryFilter, page core.Page) ([]Payment, int, error)
		Get(ctx context.Context, actor user.User, id string) (Payment, error)
		// UpdateStatus moves a payment along its status machine. Completing a payment sets
		// its paid_at unless already set; refunds are left to admins.
		UpdateStatus(ctx context.Context, actor user.User, id, status string) (Payment, error)
	}

	service struct {
		repo        Repository
		contractSvc contract.Service
		classSvc    class.Service
		pub         core.Publisher
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, contractSvc contract.Service, classSvc class.Service, pub core.Publisher) Service {
	return &service{repo: repo, contractSvc: contractSvc, classSvc: classSvc, pub: pub}
}

func (svc *service) Create(ctx context.Context, actor user.User, contractID string, np NewPayment) (Payment, error) {
	ctr, err := svc.contractSvc.Get(ctx, actor, contractID)
	if err != nil {
		return Payment{}, err
	}
	if ctr.ParentID != actor.ID {
		return Payment{}, core.ErrForbidden
	}
	if ctr.Status == contract.StatusCancelled {
		return Payment{}, core.NewValidationError(ErrContractCancelled, core.FieldError{Field: "contract_id", Error: ErrContractCancelled.Error()})
	}

	var classID null.String
	if np.ClassID != "" {
		cls, err := svc.classSvc.Get(ctx, actor, np.ClassID)
		if err != nil && !core.IsNotFound(err) {
			return Payment{}, errors.Wrap(err, "getting class")
		}
		if err != nil || cls.ContractID != ctr.ID {
			return Payment{}, core.NewValidationError(ErrClassNotInContract, core.FieldError{Field: "class_id", Error: ErrClassNotInContract.Error()})
		}
		classID = null.StringFrom(cls.ID)
	}

	now := core.NowFunc()
	p := Payment{
		ID:            uuid.NewString(),
		ContractID:    ctr.ID,
		ClassID:       classID,
		ParentID:      ctr.ParentID,
		TeacherID:     ctr.TeacherID,
		Amount:        np.Amount,
		Currency:      np.Currency,
		Method:        np.Method,
		Reference:     np.Reference,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		TeacherUserID: ctr.TeacherUserID,
	}
	if p, err = svc.repo.CreatePayment(ctx, p); err != nil {
		return Payment{}, errors.Wrap(err, "creating payment")
	}
	svc.pub.Publish(ctx, NewEvent(core.EventInsert, p))
	return p, nil
}

func (svc *service) ListForContract(ctx context.Context, actor user.User, contractID string, filter *QueryFilter, page core.Page) ([]Payment, int, error) {
	if _, err := svc.contractSvc.Get(ctx, actor, contractID); err != nil {
		return nil, 0, err
	}
	filter.Clean()
	page.Clean()
	return svc.repo.QueryPayments(ctx, Filter{ContractID: contractID, Status: filter.Status}, page)
}

func (svc *service) ListMine(ctx context.Context, actor user.User, filter *QueryFilter, page core.Page) ([]Payment, int, error) {
	filter.Clean()
	page.Clean()
	f := Filter{UserID: actor.ID, Status: filter.Status}
	if actor.IsAdmin() {
		f.UserID = ""
	}
	return svc.repo.QueryPayments(ctx, f, page)
}

func (svc *service) Get(ctx context.Context, actor user.User, id string) (Payment, error) {
	p, err := svc.repo.GetPayment(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if !p.canView(actor) {
		return Payment{}, core.ErrForbidden
	}
	return p, nil
}

func (svc *service) UpdateStatus(ctx context.Context, actor user.User, id, status string) (Payment, error) {
	p, err := svc.repo.GetPayment(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if p.ParentID != actor.ID && !actor.IsAdmin() {
		return Payment{}, core.ErrForbidden
	}

	allowed, adminOnly := CanTransition(p.Status, status)
	if !allowed {
		return Payment{}, core.NewValidationError(ErrInvalidTransition, core.FieldError{Field: "status", Error: ErrInvalidTransition.Error()})
	}
	if adminOnly && !actor.IsAdmin() {
		return Payment{}, core.ErrForbidden
	}

	now := core.NowFunc()
	p.Status = status
	if status == StatusCompleted && !p.PaidAt.Valid {
		p.PaidAt = null.TimeFrom(now)
	}
	p.UpdatedAt = now
	if p, err = svc.repo.UpdatePayment(ctx, p); err != nil {
		return Payment{}, errors.Wrap(err, "updating payment")
	}
	svc.pub.Publish(ctx, NewEvent(core.EventUpdate, p))
	return p, nil
}

// NewEvent builds the realtime event of a payment row change, sent to the parent and the teacher.
func NewEvent(typ string, p Payment) core.Event {
	return core.NewEvent(table, typ, p, p.Audience()...)
}
