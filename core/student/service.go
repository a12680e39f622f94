package student

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
)

const table = "students"

var ErrNotFound = core.NewNotFoundError("student")

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student, exec ...core.DBExecutor) (Student, error)
		GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		QueryStudentsByParent(ctx context.Context, parentID string, exec ...core.DBExecutor) ([]Student, error)
		UpdateStudent(ctx context.Context, s Student, exec ...core.DBExecutor) (Student, error)
		DeleteStudent(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service interface {
		Create(ctx context.Context, actor user.User, ns NewStudent) (Student, error)
		List(ctx context.Context, actor user.User) ([]Student, error)
		// Get returns the student of id when actor is its parent or an admin.
		Get(ctx context.Context, actor user.User, id string) (Student, error)
		Update(ctx context.Context, actor user.User, id string, ns NewStudent) (Student, error)
		Delete(ctx context.Context, actor user.User, id string) error
	}

	service struct {
		repo Repository
		pub  core.Publisher
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, pub core.Publisher) Service {
	return &service{repo: repo, pub: pub}
}

func (svc *service) Create(ctx context.Context, actor user.User, ns NewStudent) (Student, error) {
	if !actor.IsParent() {
		return Student{}, core.ErrForbidden
	}
	now := core.NowFunc()
	s := Student{
		ID:        uuid.NewString(),
		ParentID:  actor.ID,
		FullName:  ns.FullName,
		Level:     ns.Level,
		School:    ns.School,
		Notes:     ns.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s, err := svc.repo.CreateStudent(ctx, s)
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	svc.pub.Publish(ctx, core.NewEvent(table, core.EventInsert, s, s.ParentID))
	return s, nil
}

func (svc *service) List(ctx context.Context, actor user.User) ([]Student, error) {
	if !actor.IsParent() {
		return nil, core.ErrForbidden
	}
	return svc.repo.QueryStudentsByParent(ctx, actor.ID)
}

func (svc *service) Get(ctx context.Context, actor user.User, id string) (Student, error) {
	s, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if s.ParentID != actor.ID && !actor.IsAdmin() {
		return Student{}, core.ErrForbidden
	}
	return s, nil
}

func (svc *service) Update(ctx context.Context, actor user.User, id string, ns NewStudent) (Student, error) {
	s, err := svc.owned(ctx, actor, id)
	if err != nil {
		return Student{}, err
	}
	s.FullName = ns.FullName
	s.Level = ns.Level
	s.School = ns.School
	s.Notes = ns.Notes
	s.UpdatedAt = core.NowFunc()
	if s, err = svc.repo.UpdateStudent(ctx, s); err != nil {
		return Student{}, errors.Wrap(err, "updating student")
	}
	svc.pub.Publish(ctx, core.NewEvent(table, core.EventUpdate, s, s.ParentID))
	return s, nil
}

func (svc *service) Delete(ctx context.Context, actor user.User, id string) error {
	s, err := svc.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteStudent(ctx, id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	svc.pub.Publish(ctx, core.NewEvent(table, core.EventDelete, s, s.ParentID))
	return nil
}

func (svc *service) owned(ctx context.Context, actor user.User, id string) (Student, error) {
	s, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if s.ParentID != actor.ID {
		return Student{}, core.ErrForbidden
	}
	return s, nil
}
