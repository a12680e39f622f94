package class

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/contract"
	"github.com/tutorly/tutorly/core/user"
)

const table = "classes"

var (
	// errors
	ErrNotFound     = core.NewNotFoundError("class")
	ErrNotScheduled = errors.New("this class is no longer scheduled")
)

type (
	Repository interface {
		CreateClass(ctx context.Context, c Class, exec ...core.DBExecutor) (Class, error)
		GetClass(ctx context.Context, id string, exec ...core.DBExecutor) (Class, error)
		QueryClasses(ctx context.Context, contractID string, filter *QueryFilter, page core.Page, exec ...core.DBExecutor) ([]Class, int, error)
		UpdateClass(ctx context.Context, c Class, exec ...core.DBExecutor) (Class, error)
	}

	Service interface {
		Schedule(ctx context.Context, actor user.User, contractID string, nc NewClass) (Class, error)
		ListForContract(ctx context.Context, actor user.User, contractID string, filter *QueryFilter, page core.Page) ([]Class, int, error)
		Get(ctx context.Context, actor user.User, id string) (Class, error)
		Update(ctx context.Context, actor user.User, id string, uc UpdateClass) (Class, error)
		Complete(ctx context.Context, actor user.User, id string) (Class, error)
		Cancel(ctx context.Context, actor user.User, id string) (Class, error)
	}

	service struct {
		repo        Repository
		contractSvc contract.Service
		meetSvc     core.MeetingService
		pub         core.Publisher
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, contractSvc contract.Service, meetSvc core.MeetingService, pub core.Publisher) Service {
	return &service{repo: repo, contractSvc: contractSvc, meetSvc: meetSvc, pub: pub}
}

// partyContract returns the contract of id when actor is one of its parties.
func (svc *service) partyContract(ctx context.Context, actor user.User, id string) (contract.Contract, error) {
	c, err := svc.contractSvc.Get(ctx, actor, id)
	if err != nil {
		return contract.Contract{}, err
	}
	if !c.IsParty(actor) {
		return contract.Contract{}, core.ErrForbidden
	}
	return c, nil
}

func (svc *service) Schedule(ctx context.Context, actor user.User, contractID string, nc NewClass) (Class, error) {
	ctr, err := svc.partyContract(ctx, actor, contractID)
	if err != nil {
		return Class{}, err
	}
	if !ctr.IsActive() {
		return Class{}, core.NewValidationError(contract.ErrNotActive, core.FieldError{Field: "contract_id", Error: contract.ErrNotActive.Error()})
	}

	now := core.NowFunc()
	c := Class{
		ID:              uuid.NewString(),
		ContractID:      ctr.ID,
		ScheduledAt:     nc.ScheduledAt.UTC(),
		DurationMinutes: nc.DurationMinutes,
		Status:          StatusScheduled,
		Notes:           nc.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if nc.Online {
		space, err := svc.meetSvc.CreateSpace(ctx)
		if err != nil {
			return Class{}, errors.Wrap(err, "creating meeting space")
		}
		c.MeetingURL = space.URL
	}

	if c, err = svc.repo.CreateClass(ctx, c); err != nil {
		return Class{}, errors.Wrap(err, "creating class")
	}
	svc.pub.Publish(ctx, core.NewEvent(table, core.EventInsert, c, ctr.Audience()...))
	return c, nil
}

func (svc *service) ListForContract(ctx context.Context, actor user.User, contractID string, filter *QueryFilter, page core.Page) ([]Class, int, error) {
	if _, err := svc.contractSvc.Get(ctx, actor, contractID); err != nil {
		return nil, 0, err
	}
	filter.Clean()
	page.Clean()
	return svc.repo.QueryClasses(ctx, contractID, filter, page)
}

func (svc *service) Get(ctx context.Context, actor user.User, id string) (Class, error) {
	c, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if _, err = svc.contractSvc.Get(ctx, actor, c.ContractID); err != nil {
		return Class{}, err
	}
	return c, nil
}

// scheduled returns the scheduled class of id, along with its contract, when actor is a party.
func (svc *service) scheduled(ctx context.Context, actor user.User, id string) (Class, contract.Contract, error) {
	c, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, contract.Contract{}, err
	}
	ctr, err := svc.partyContract(ctx, actor, c.ContractID)
	if err != nil {
		return Class{}, contract.Contract{}, err
	}
	if !c.IsScheduled() {
		return Class{}, contract.Contract{}, core.NewValidationError(ErrNotScheduled, core.FieldError{Field: "status", Error: ErrNotScheduled.Error()})
	}
	return c, ctr, nil
}

func (svc *service) Update(ctx context.Context, actor user.User, id string, uc UpdateClass) (Class, error) {
	c, ctr, err := svc.scheduled(ctx, actor, id)
	if err != nil {
		return Class{}, err
	}
	if uc.ScheduledAt != nil {
		c.ScheduledAt = uc.ScheduledAt.UTC()
	}
	if uc.DurationMinutes != 0 {
		c.DurationMinutes = uc.DurationMinutes
	}
	if uc.Notes != nil {
		c.Notes = *uc.Notes
	}
	return svc.update(ctx, c, ctr)
}

func (svc *service) Complete(ctx context.Context, actor user.User, id string) (Class, error) {
	c, ctr, err := svc.scheduled(ctx, actor, id)
	if err != nil {
		return Class{}, err
	}
	c.Status = StatusCompleted
	return svc.update(ctx, c, ctr)
}

func (svc *service) Cancel(ctx context.Context, actor user.User, id string) (Class, error) {
	c, ctr, err := svc.scheduled(ctx, actor, id)
	if err != nil {
		return Class{}, err
	}
	c.Status = StatusCancelled
	return svc.update(ctx, c, ctr)
}

func (svc *service) update(ctx context.Context, c Class, ctr contract.Contract) (Class, error) {
	c.UpdatedAt = core.NowFunc()
	c, err := svc.repo.UpdateClass(ctx, c)
	if err != nil {
		return Class{}, errors.Wrap(err, "updating class")
	}
	svc.pub.Publish(ctx, core.NewEvent(table, core.EventUpdate, c, ctr.Audience()...))
	return c, nil
}
