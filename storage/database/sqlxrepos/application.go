package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/application"
)

var (
	applicationColumns = append(
		prefixed("a", []string{"id", "job_id", "teacher_id", "cover_letter", "proposed_rate", "status", "created_at", "updated_at"}),
		"j.title AS job_title",
		"j.parent_id AS parent_id",
		"t.user_id AS teacher_user_id",
		"u.full_name AS teacher_name",
	)
	applicationFrom = "applications a" +
		" JOIN job_postings j ON j.id = a.job_id" +
		" JOIN teacher_profiles t ON t.id = a.teacher_id" +
		" JOIN user_profiles u ON u.id = t.user_id"
)

type applicationRepository struct {
	baseRepo
}

var _ application.Repository = (*applicationRepository)(nil)

func NewApplicationRepository(db core.DB) application.Repository {
	return &applicationRepository{baseRepo{db: db}}
}

func (repo *applicationRepository) CreateApplication(ctx context.Context, app application.Application, exec ...core.DBExecutor) (application.Application, error) {
	b := builder.Insert("applications").SetMap(map[string]interface{}{
		"id":            app.ID,
		"job_id":        app.JobID,
		"teacher_id":    app.TeacherID,
		"cover_letter":  app.CoverLetter,
		"proposed_rate": app.ProposedRate,
		"status":        app.Status,
		"created_at":    app.CreatedAt,
		"updated_at":    app.UpdatedAt,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return application.Application{}, errors.Wrap(err, "inserting application")
	}
	return app, nil
}

func (repo *applicationRepository) getApplication(ctx context.Context, where sq.Sqlizer, exec []core.DBExecutor) (application.Application, error) {
	var app application.Application
	b := builder.Select(applicationColumns...).From(applicationFrom).Where(where)
	err := get(ctx, repo.getExec(exec), &app, b, application.ErrNotFound)
	return app, err
}

func (repo *applicationRepository) GetApplication(ctx context.Context, id string, exec ...core.DBExecutor) (application.Application, error) {
	return repo.getApplication(ctx, sq.Eq{"a.id": id}, exec)
}

func (repo *applicationRepository) GetApplicationByJobAndTeacher(ctx context.Context, jobID, teacherID string, exec ...core.DBExecutor) (application.Application, error) {
	return repo.getApplication(ctx, sq.Eq{"a.job_id": jobID, "a.teacher_id": teacherID}, exec)
}

func (repo *applicationRepository) QueryApplications(
	ctx context.Context,
	filter application.Filter,
	ordering []core.DBOrdering,
	page core.Page,
	exec ...core.DBExecutor,
) ([]application.Application, int, error) {
	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		eq := sq.Eq{}
		if filter.JobID != "" {
			eq["a.job_id"] = filter.JobID
		}
		if filter.TeacherID != "" {
			eq["a.teacher_id"] = filter.TeacherID
		}
		if filter.Status != "" {
			eq["a.status"] = filter.Status
		}
		if len(eq) > 0 {
			b = b.Where(eq)
		}
		return b
	}

	apps := make([]application.Application, 0)
	total, err := paginate(ctx, repo.getExec(exec), &apps, applicationFrom, applicationColumns, where, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying applications")
	}
	return apps, total, nil
}

func (repo *applicationRepository) UpdateApplicationStatus(ctx context.Context, app application.Application, exec ...core.DBExecutor) (application.Application, error) {
	b := builder.Update("applications").
		Set("status", app.Status).
		Set("updated_at", app.UpdatedAt).
		Where(sq.Eq{"id": app.ID})
	if err := executeOne(ctx, repo.getExec(exec), b, application.ErrNotFound); err != nil {
		return application.Application{}, err
	}
	return app, nil
}

func (repo *applicationRepository) RejectPendingApplications(ctx context.Context, jobID, exceptID string, exec ...core.DBExecutor) ([]string, error) {
	ex := repo.getExec(exec)
	where := sq.And{
		sq.Eq{"job_id": jobID, "status": application.StatusPending},
		sq.NotEq{"id": exceptID},
	}

	var ids []string
	if err := selectRows(ctx, ex, &ids, builder.Select("id").From("applications").Where(where)); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}

	b := builder.Update("applications").
		Set("status", application.StatusRejected).
		Set("updated_at", core.NowFunc()).
		Where(sq.Eq{"id": ids})
	if _, err := execute(ctx, ex, b); err != nil {
		return nil, err
	}
	return ids, nil
}
