package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/contract"
	"github.com/tutorly/tutorly/core/teacher"
	"github.com/tutorly/tutorly/core/user"
)

const table = "reviews"

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("review")
	ErrAlreadyReviewed   = errors.New("this contract was already reviewed")
	ErrContractCancelled = errors.New("a cancelled contract cannot be reviewed")
)

type (
	Repository interface {
		CreateReview(ctx context.Context, r Review, exec ...core.DBExecutor) (Review, error)
		GetReview(ctx context.Context, id string, exec ...core.DBExecutor) (Review, error)
		GetReviewByContract(ctx context.Context, contractID string, exec ...core.DBExecutor) (Review, error)
		QueryReviewsByTeacher(ctx context.Context, teacherID string, page core.Page, exec ...core.DBExecutor) ([]Review, int, error)
		DeleteReview(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service interface {
		// Create reviews the teacher of a contract, recomputing the teacher's rating.
		Create(ctx context.Context, actor user.User, contractID string, nr NewReview) (Review, error)
		ListForTeacher(ctx context.Context, teacherID string, page core.Page) ([]Review, int, error)
		Delete(ctx context.Context, actor user.User, id string) error
	}

	service struct {
		repo        Repository
		db          core.DB
		contractSvc contract.Service
		teacherSvc  teacher.Service
		pub         core.Publisher
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, db core.DB, contractSvc contract.Service, teacherSvc teacher.Service, pub core.Publisher) Service {
	return &service{repo: repo, db: db, contractSvc: contractSvc, teacherSvc: teacherSvc, pub: pub}
}

func (svc *service) Create(ctx context.Context, actor user.User, contractID string, nr NewReview) (Review, error) {
	ctr, err := svc.contractSvc.Get(ctx, actor, contractID)
	if err != nil {
		return Review{}, err
	}
	if ctr.ParentID != actor.ID {
		return Review{}, core.ErrForbidden
	}
	if ctr.Status == contract.StatusCancelled {
		return Review{}, core.NewValidationError(ErrContractCancelled, core.FieldError{Field: "contract_id", Error: ErrContractCancelled.Error()})
	}

	r := Review{
		ID:         uuid.NewString(),
		ContractID: ctr.ID,
		TeacherID:  ctr.TeacherID,
		ParentID:   ctr.ParentID,
		Rating:     nr.Rating,
		Comment:    nr.Comment,
		CreatedAt:  core.NowFunc(),
		ParentName: ctr.ParentName,
	}

	var t teacher.Teacher
	err = core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if _, err := svc.repo.GetReviewByContract(ctx, ctr.ID, exec); err == nil {
			return core.NewValidationError(ErrAlreadyReviewed, core.FieldError{Field: "contract_id", Error: ErrAlreadyReviewed.Error()})
		} else if !core.IsNotFound(err) {
			return errors.Wrap(err, "checking review")
		}
		if _, err := svc.repo.CreateReview(ctx, r, exec); err != nil {
			return errors.Wrap(err, "creating review")
		}
		var err error
		t, err = svc.teacherSvc.RecomputeRating(ctx, r.TeacherID, exec)
		return err
	})
	if err != nil {
		return Review{}, err
	}

	svc.pub.Publish(ctx, core.NewEvent(table, core.EventInsert, r, ctr.Audience()...))
	svc.pub.Publish(ctx, teacher.NewEvent(core.EventUpdate, t))
	return r, nil
}

func (svc *service) ListForTeacher(ctx context.Context, teacherID string, page core.Page) ([]Review, int, error) {
	if _, err := svc.teacherSvc.Get(ctx, teacherID); err != nil {
		return nil, 0, err
	}
	page.Clean()
	return svc.repo.QueryReviewsByTeacher(ctx, teacherID, page)
}

func (svc *service) Delete(ctx context.Context, actor user.User, id string) error {
	if !actor.IsAdmin() {
		return core.ErrForbidden
	}

	var (
		r Review
		t teacher.Teacher
	)
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		if r, err = svc.repo.GetReview(ctx, id, exec); err != nil {
			return err
		}
		if err = svc.repo.DeleteReview(ctx, id, exec); err != nil {
			return errors.Wrap(err, "deleting review")
		}
		t, err = svc.teacherSvc.RecomputeRating(ctx, r.TeacherID, exec)
		return err
	})
	if err != nil {
		return err
	}

	svc.pub.Publish(ctx, core.NewEvent(table, core.EventDelete, r, r.ParentID, t.UserID))
	svc.pub.Publish(ctx, teacher.NewEvent(core.EventUpdate, t))
	return nil
}
