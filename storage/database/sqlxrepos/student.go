package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/student"
)

var studentColumns = []string{"id", "parent_id", "full_name", "level", "school", "notes", "created_at", "updated_at"}

type studentRepository struct {
	baseRepo
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db core.DB) student.Repository {
	return &studentRepository{baseRepo{db: db}}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	b := builder.Insert("students").SetMap(map[string]interface{}{
		"id":         s.ID,
		"parent_id":  s.ParentID,
		"full_name":  s.FullName,
		"level":      s.Level,
		"school":     s.School,
		"notes":      s.Notes,
		"created_at": s.CreatedAt,
		"updated_at": s.UpdatedAt,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	var s student.Student
	b := builder.Select(studentColumns...).From("students").Where(sq.Eq{"id": id})
	err := get(ctx, repo.getExec(exec), &s, b, student.ErrNotFound)
	return s, err
}

func (repo *studentRepository) QueryStudentsByParent(ctx context.Context, parentID string, exec ...core.DBExecutor) ([]student.Student, error) {
	students := make([]student.Student, 0)
	b := builder.Select(studentColumns...).From("students").
		Where(sq.Eq{"parent_id": parentID}).
		OrderBy("full_name")
	if err := selectRows(ctx, repo.getExec(exec), &students, b); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	b := builder.Update("students").SetMap(map[string]interface{}{
		"full_name":  s.FullName,
		"level":      s.Level,
		"school":     s.School,
		"notes":      s.Notes,
		"updated_at": s.UpdatedAt,
	}).Where(sq.Eq{"id": s.ID})
	if err := executeOne(ctx, repo.getExec(exec), b, student.ErrNotFound); err != nil {
		return student.Student{}, err
	}
	return s, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string, exec ...core.DBExecutor) error {
	return executeOne(ctx, repo.getExec(exec), builder.Delete("students").Where(sq.Eq{"id": id}), student.ErrNotFound)
}
