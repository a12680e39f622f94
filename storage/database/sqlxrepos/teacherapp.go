package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/teacherapp"
)

var (
	teacherAppColumns = append(
		prefixed("a", []string{
			"id", "user_id", "bio", "experience_years", "hourly_rate", "education", "city",
			"subjects", "levels", "qualifications", "status", "interview_at", "interview_url",
			"admin_notes", "rejection_reason", "reviewed_by", "created_at", "updated_at",
		}),
		"u.full_name AS full_name",
		"u.email AS email",
	)
	teacherAppFrom = "teacher_applications a JOIN user_profiles u ON u.id = a.user_id"
)

type teacherAppRepository struct {
	baseRepo
}

var _ teacherapp.Repository = (*teacherAppRepository)(nil)

func NewTeacherAppRepository(db core.DB) teacherapp.Repository {
	return &teacherAppRepository{baseRepo{db: db}}
}

func (repo *teacherAppRepository) CreateApplication(ctx context.Context, app teacherapp.Application, exec ...core.DBExecutor) (teacherapp.Application, error) {
	b := builder.Insert("teacher_applications").SetMap(map[string]interface{}{
		"id":               app.ID,
		"user_id":          app.UserID,
		"bio":              app.Bio,
		"experience_years": app.ExperienceYears,
		"hourly_rate":      app.HourlyRate,
		"education":        app.Education,
		"city":             app.City,
		"subjects":         app.Subjects,
		"levels":           app.Levels,
		"qualifications":   app.Qualifications,
		"status":           app.Status,
		"interview_at":     app.InterviewAt,
		"interview_url":    app.InterviewURL,
		"admin_notes":      app.AdminNotes,
		"rejection_reason": app.RejectionReason,
		"reviewed_by":      app.ReviewedBy,
		"created_at":       app.CreatedAt,
		"updated_at":       app.UpdatedAt,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return teacherapp.Application{}, errors.Wrap(err, "inserting teacher application")
	}
	return app, nil
}

func (repo *teacherAppRepository) GetApplication(ctx context.Context, id string, exec ...core.DBExecutor) (teacherapp.Application, error) {
	var app teacherapp.Application
	b := builder.Select(teacherAppColumns...).From(teacherAppFrom).Where(sq.Eq{"a.id": id})
	err := get(ctx, repo.getExec(exec), &app, b, teacherapp.ErrNotFound)
	return app, err
}

func (repo *teacherAppRepository) GetLatestApplication(ctx context.Context, userID string, exec ...core.DBExecutor) (teacherapp.Application, error) {
	var app teacherapp.Application
	b := builder.Select(teacherAppColumns...).From(teacherAppFrom).
		Where(sq.Eq{"a.user_id": userID}).
		OrderBy("a.created_at DESC").
		Limit(1)
	err := get(ctx, repo.getExec(exec), &app, b, teacherapp.ErrNotFound)
	return app, err
}

func (repo *teacherAppRepository) CountOpenApplications(ctx context.Context, userID string, exec ...core.DBExecutor) (int, error) {
	b := builder.Select("COUNT(*)").From("teacher_applications").Where(sq.And{
		sq.Eq{"user_id": userID},
		sq.NotEq{"status": []string{teacherapp.StatusApproved, teacherapp.StatusRejected}},
	})
	return count(ctx, repo.getExec(exec), b)
}

func (repo *teacherAppRepository) QueryApplications(
	ctx context.Context,
	filter *teacherapp.QueryFilter,
	ordering []core.DBOrdering,
	page core.Page,
	exec ...core.DBExecutor,
) ([]teacherapp.Application, int, error) {
	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		if filter.Status != "" {
			b = b.Where(sq.Eq{"a.status": filter.Status})
		}
		if filter.Search != "" {
			b = b.Where(like(filter.Search, "u.full_name", "u.email", "a.city"))
		}
		return b
	}

	apps := make([]teacherapp.Application, 0)
	total, err := paginate(ctx, repo.getExec(exec), &apps, teacherAppFrom, teacherAppColumns, where, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying teacher applications")
	}
	return apps, total, nil
}

func (repo *teacherAppRepository) UpdateApplication(ctx context.Context, app teacherapp.Application, exec ...core.DBExecutor) (teacherapp.Application, error) {
	ex := repo.getExec(exec)
	b := builder.Update("teacher_applications").SetMap(map[string]interface{}{
		"status":           app.Status,
		"interview_at":     app.InterviewAt,
		"interview_url":    app.InterviewURL,
		"admin_notes":      app.AdminNotes,
		"rejection_reason": app.RejectionReason,
		"reviewed_by":      app.ReviewedBy,
		"updated_at":       app.UpdatedAt,
	}).Where(sq.Eq{"id": app.ID})
	if err := executeOne(ctx, ex, b, teacherapp.ErrNotFound); err != nil {
		return teacherapp.Application{}, err
	}
	return repo.GetApplication(ctx, app.ID, ex)
}
