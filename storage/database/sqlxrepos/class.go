package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/class"
)

var classColumns = []string{
	"id", "contract_id", "scheduled_at", "duration_minutes", "status", "meeting_url", "notes", "created_at", "updated_at",
}

type classRepository struct {
	baseRepo
}

var _ class.Repository = (*classRepository)(nil)

func NewClassRepository(db core.DB) class.Repository {
	return &classRepository{baseRepo{db: db}}
}

func (repo *classRepository) CreateClass(ctx context.Context, c class.Class, exec ...core.DBExecutor) (class.Class, error) {
	b := builder.Insert("classes").SetMap(map[string]interface{}{
		"id":               c.ID,
		"contract_id":      c.ContractID,
		"scheduled_at":     c.ScheduledAt,
		"duration_minutes": c.DurationMinutes,
		"status":           c.Status,
		"meeting_url":      c.MeetingURL,
		"notes":            c.Notes,
		"created_at":       c.CreatedAt,
		"updated_at":       c.UpdatedAt,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return c, nil
}

func (repo *classRepository) GetClass(ctx context.Context, id string, exec ...core.DBExecutor) (class.Class, error) {
	var c class.Class
	b := builder.Select(classColumns...).From("classes").Where(sq.Eq{"id": id})
	err := get(ctx, repo.getExec(exec), &c, b, class.ErrNotFound)
	return c, err
}

func (repo *classRepository) QueryClasses(
	ctx context.Context,
	contractID string,
	filter *class.QueryFilter,
	page core.Page,
	exec ...core.DBExecutor,
) ([]class.Class, int, error) {
	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		b = b.Where(sq.Eq{"contract_id": contractID})
		if filter == nil {
			return b
		}
		if filter.Status != "" {
			b = b.Where(sq.Eq{"status": filter.Status})
		}
		if !filter.From.IsZero() {
			b = b.Where(sq.GtOrEq{"scheduled_at": filter.From.UTC()})
		}
		if !filter.To.IsZero() {
			b = b.Where(sq.Lt{"scheduled_at": filter.To.UTC()})
		}
		return b
	}

	classes := make([]class.Class, 0)
	ordering := []core.DBOrdering{{Field: "scheduled_at", Ascending: true}}
	total, err := paginate(ctx, repo.getExec(exec), &classes, "classes", classColumns, where, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying classes")
	}
	return classes, total, nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, c class.Class, exec ...core.DBExecutor) (class.Class, error) {
	b := builder.Update("classes").SetMap(map[string]interface{}{
		"scheduled_at":     c.ScheduledAt,
		"duration_minutes": c.DurationMinutes,
		"status":           c.Status,
		"notes":            c.Notes,
		"updated_at":       c.UpdatedAt,
	}).Where(sq.Eq{"id": c.ID})
	if err := executeOne(ctx, repo.getExec(exec), b, class.ErrNotFound); err != nil {
		return class.Class{}, err
	}
	return c, nil
}
