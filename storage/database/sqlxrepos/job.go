package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/application"
	"github.com/tutorly/tutorly/core/job"
)

var jobColumns = []string{
	"id", "parent_id", "student_id", "title", "description", "subject", "level", "location", "mode",
	"sessions_per_week", "budget_min", "budget_max", "status", "created_at", "updated_at",
}

type jobRepository struct {
	baseRepo
}

var _ job.Repository = (*jobRepository)(nil)

func NewJobRepository(db core.DB) job.Repository {
	return &jobRepository{baseRepo{db: db}}
}

func (repo *jobRepository) CreateJob(ctx context.Context, j job.Job, exec ...core.DBExecutor) (job.Job, error) {
	b := builder.Insert("job_postings").SetMap(map[string]interface{}{
		"id":                j.ID,
		"parent_id":         j.ParentID,
		"student_id":        j.StudentID,
		"title":             j.Title,
		"description":       j.Description,
		"subject":           j.Subject,
		"level":             j.Level,
		"location":          j.Location,
		"mode":              j.Mode,
		"sessions_per_week": j.SessionsPerWeek,
		"budget_min":        j.BudgetMin,
		"budget_max":        j.BudgetMax,
		"status":            j.Status,
		"created_at":        j.CreatedAt,
		"updated_at":        j.UpdatedAt,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return job.Job{}, errors.Wrap(err, "inserting job")
	}
	return j, nil
}

func (repo *jobRepository) GetJob(ctx context.Context, id string, exec ...core.DBExecutor) (job.Job, error) {
	var j job.Job
	b := builder.Select(jobColumns...).From("job_postings").Where(sq.Eq{"id": id})
	err := get(ctx, repo.getExec(exec), &j, b, job.ErrNotFound)
	return j, err
}

func (repo *jobRepository) QueryJobs(
	ctx context.Context,
	filter *job.QueryFilter,
	ordering []core.DBOrdering,
	page core.Page,
	exec ...core.DBExecutor,
) ([]job.Job, int, error) {
	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		if filter == nil {
			return b
		}
		if filter.Search != "" {
			b = b.Where(like(filter.Search, "title", "description"))
		}
		if filter.Subject != "" {
			b = b.Where(sq.Expr("LOWER(subject) = LOWER(?)", filter.Subject))
		}
		if filter.Location != "" {
			b = b.Where(like(filter.Location, "location"))
		}
		eq := sq.Eq{}
		if filter.Level != "" {
			eq["level"] = filter.Level
		}
		if filter.Mode != "" {
			eq["mode"] = filter.Mode
		}
		if filter.Status != "" {
			eq["status"] = filter.Status
		}
		if filter.ParentID != "" {
			eq["parent_id"] = filter.ParentID
		}
		if len(eq) > 0 {
			b = b.Where(eq)
		}
		return b
	}

	jobs := make([]job.Job, 0)
	total, err := paginate(ctx, repo.getExec(exec), &jobs, "job_postings", jobColumns, where, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying jobs")
	}
	return jobs, total, nil
}

func (repo *jobRepository) UpdateJob(ctx context.Context, j job.Job, exec ...core.DBExecutor) (job.Job, error) {
	b := builder.Update("job_postings").SetMap(map[string]interface{}{
		"student_id":        j.StudentID,
		"title":             j.Title,
		"description":       j.Description,
		"subject":           j.Subject,
		"level":             j.Level,
		"location":          j.Location,
		"mode":              j.Mode,
		"sessions_per_week": j.SessionsPerWeek,
		"budget_min":        j.BudgetMin,
		"budget_max":        j.BudgetMax,
		"status":            j.Status,
		"updated_at":        j.UpdatedAt,
	}).Where(sq.Eq{"id": j.ID})
	if err := executeOne(ctx, repo.getExec(exec), b, job.ErrNotFound); err != nil {
		return job.Job{}, err
	}
	return j, nil
}

func (repo *jobRepository) DeleteJob(ctx context.Context, id string, exec ...core.DBExecutor) error {
	return executeOne(ctx, repo.getExec(exec), builder.Delete("job_postings").Where(sq.Eq{"id": id}), job.ErrNotFound)
}

func (repo *jobRepository) HasAcceptedApplication(ctx context.Context, jobID string, exec ...core.DBExecutor) (bool, error) {
	b := builder.Select("COUNT(*)").From("applications").
		Where(sq.Eq{"job_id": jobID, "status": application.StatusAccepted})
	n, err := count(ctx, repo.getExec(exec), b)
	return n > 0, err
}
