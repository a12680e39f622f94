package contract

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
)

const table = "contracts"

var (
	// errors
	ErrNotFound  = core.NewNotFoundError("contract")
	ErrNotActive = errors.New("this contract is not active")
)

type (
	Repository interface {
		CreateContract(ctx context.Context, c Contract, exec ...core.DBExecutor) (Contract, error)
		GetContract(ctx context.Context, id string, exec ...core.DBExecutor) (Contract, error)
		// QueryContracts lists the contracts userID is a party of; every contract when userID is blank.
		QueryContracts(ctx context.Context, userID string, filter *QueryFilter, ordering []core.DBOrdering, page core.Page, exec ...core.DBExecutor) ([]Contract, int, error)
		UpdateContract(ctx context.Context, c Contract, exec ...core.DBExecutor) (Contract, error)
	}

	Service interface {
		// Create inserts the contract of an accepted application on the caller's executor.
		Create(ctx context.Context, nc NewContract, exec core.DBExecutor) (Contract, error)
		// Get returns the contract of id when actor is a party or an admin.
		Get(ctx context.Context, actor user.User, id string, exec ...core.DBExecutor) (Contract, error)
		ListMine(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Contract, int, error)
		Complete(ctx context.Context, actor user.User, id string) (Contract, error)
		Cancel(ctx context.Context, actor user.User, id string) (Contract, error)
	}

	service struct {
		repo Repository
		pub  core.Publisher
	}
)

var (
	_ Service = (*service)(nil)

	orderingFields = map[string]string{
		"start_date": "c.start_date",
		"created_at": "c.created_at",
		"status":     "c.status",
	}
	defaultOrdering = core.DBOrdering{Field: "c.created_at"}
)

func NewService(repo Repository, pub core.Publisher) Service {
	return &service{repo: repo, pub: pub}
}

func (svc *service) Create(ctx context.Context, nc NewContract, exec core.DBExecutor) (Contract, error) {
	now := core.NowFunc()
	c := Contract{
		ID:            uuid.NewString(),
		JobID:         nc.JobID,
		ApplicationID: nc.ApplicationID,
		ParentID:      nc.ParentID,
		TeacherID:     nc.TeacherID,
		StudentID:     nc.StudentID,
		HourlyRate:    nc.HourlyRate,
		StartDate:     nc.StartDate.UTC(),
		EndDate:       null.TimeFromPtr(nc.EndDate),
		Terms:         nc.Terms.Terms,
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if c.EndDate.Valid {
		c.EndDate.Time = c.EndDate.Time.UTC()
	}
	if _, err := svc.repo.CreateContract(ctx, c, exec); err != nil {
		return Contract{}, errors.Wrap(err, "creating contract")
	}
	return svc.repo.GetContract(ctx, c.ID, exec)
}

func (svc *service) Get(ctx context.Context, actor user.User, id string, exec ...core.DBExecutor) (Contract, error) {
	c, err := svc.repo.GetContract(ctx, id, exec...)
	if err != nil {
		return Contract{}, err
	}
	if !c.IsParty(actor) && !actor.IsAdmin() {
		return Contract{}, core.ErrForbidden
	}
	return c, nil
}

func (svc *service) ListMine(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Contract, int, error) {
	filter.Clean()
	page.Clean()
	ordering = core.FilterOrderings(ordering, orderingFields, defaultOrdering)
	userID := actor.ID
	if actor.IsAdmin() {
		userID = ""
	}
	return svc.repo.QueryContracts(ctx, userID, filter, ordering, page)
}

func (svc *service) Complete(ctx context.Context, actor user.User, id string) (Contract, error) {
	return svc.end(ctx, actor, id, StatusCompleted)
}

func (svc *service) Cancel(ctx context.Context, actor user.User, id string) (Contract, error) {
	return svc.end(ctx, actor, id, StatusCancelled)
}

func (svc *service) end(ctx context.Context, actor user.User, id, status string) (Contract, error) {
	c, err := svc.repo.GetContract(ctx, id)
	if err != nil {
		return Contract{}, err
	}
	if !c.IsParty(actor) {
		return Contract{}, core.ErrForbidden
	}
	if !c.IsActive() {
		return Contract{}, core.NewValidationError(ErrNotActive, core.FieldError{Field: "status", Error: ErrNotActive.Error()})
	}

	now := core.NowFunc()
	c.Status = status
	if !c.EndDate.Valid {
		c.EndDate = null.TimeFrom(now)
	}
	c.UpdatedAt = now
	if c, err = svc.repo.UpdateContract(ctx, c); err != nil {
		return Contract{}, errors.Wrap(err, "updating contract")
	}
	svc.pub.Publish(ctx, NewEvent(core.EventUpdate, c))
	return c, nil
}

// NewEvent builds the realtime event of a contract row change, sent to both parties.
func NewEvent(typ string, c Contract) core.Event {
	return core.NewEvent(table, typ, c, c.Audience()...)
}
