package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/contract"
)

var (
	contractColumns = append(
		prefixed("c", []string{
			"id", "job_id", "application_id", "parent_id", "teacher_id", "student_id", "hourly_rate",
			"start_date", "end_date", "terms", "status", "created_at", "updated_at",
		}),
		"j.title AS job_title",
		"p.full_name AS parent_name",
		"t.user_id AS teacher_user_id",
		"tu.full_name AS teacher_name",
	)
	contractFrom = "contracts c" +
		" JOIN job_postings j ON j.id = c.job_id" +
		" JOIN user_profiles p ON p.id = c.parent_id" +
		" JOIN teacher_profiles t ON t.id = c.teacher_id" +
		" JOIN user_profiles tu ON tu.id = t.user_id"
)

type contractRepository struct {
	baseRepo
}

var _ contract.Repository = (*contractRepository)(nil)

func NewContractRepository(db core.DB) contract.Repository {
	return &contractRepository{baseRepo{db: db}}
}

func (repo *contractRepository) CreateContract(ctx context.Context, c contract.Contract, exec ...core.DBExecutor) (contract.Contract, error) {
	b := builder.Insert("contracts").SetMap(map[string]interface{}{
		"id":             c.ID,
		"job_id":         c.JobID,
		"application_id": c.ApplicationID,
		"parent_id":      c.ParentID,
		"teacher_id":     c.TeacherID,
		"student_id":     c.StudentID,
		"hourly_rate":    c.HourlyRate,
		"start_date":     c.StartDate,
		"end_date":       c.EndDate,
		"terms":          c.Terms,
		"status":         c.Status,
		"created_at":     c.CreatedAt,
		"updated_at":     c.UpdatedAt,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return contract.Contract{}, errors.Wrap(err, "inserting contract")
	}
	return c, nil
}

func (repo *contractRepository) GetContract(ctx context.Context, id string, exec ...core.DBExecutor) (contract.Contract, error) {
	var c contract.Contract
	b := builder.Select(contractColumns...).From(contractFrom).Where(sq.Eq{"c.id": id})
	err := get(ctx, repo.getExec(exec), &c, b, contract.ErrNotFound)
	return c, err
}

func (repo *contractRepository) QueryContracts(
	ctx context.Context,
	userID string,
	filter *contract.QueryFilter,
	ordering []core.DBOrdering,
	page core.Page,
	exec ...core.DBExecutor,
) ([]contract.Contract, int, error) {
	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		if userID != "" {
			b = b.Where(sq.Or{sq.Eq{"c.parent_id": userID}, sq.Eq{"t.user_id": userID}})
		}
		if filter != nil && filter.Status != "" {
			b = b.Where(sq.Eq{"c.status": filter.Status})
		}
		return b
	}

	contracts := make([]contract.Contract, 0)
	total, err := paginate(ctx, repo.getExec(exec), &contracts, contractFrom, contractColumns, where, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying contracts")
	}
	return contracts, total, nil
}

func (repo *contractRepository) UpdateContract(ctx context.Context, c contract.Contract, exec ...core.DBExecutor) (contract.Contract, error) {
	b := builder.Update("contracts").SetMap(map[string]interface{}{
		"end_date":   c.EndDate,
		"terms":      c.Terms,
		"status":     c.Status,
		"updated_at": c.UpdatedAt,
	}).Where(sq.Eq{"id": c.ID})
	if err := executeOne(ctx, repo.getExec(exec), b, contract.ErrNotFound); err != nil {
		return contract.Contract{}, err
	}
	return c, nil
}
