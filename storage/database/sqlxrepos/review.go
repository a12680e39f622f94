package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/review"
)

var (
	reviewColumns = append(
		prefixed("r", []string{"id", "contract_id", "teacher_id", "parent_id", "rating", "comment", "created_at"}),
		"u.full_name AS parent_name",
	)
	reviewFrom = "reviews r JOIN user_profiles u ON u.id = r.parent_id"
)

type reviewRepository struct {
	baseRepo
}

var _ review.Repository = (*reviewRepository)(nil)

func NewReviewRepository(db core.DB) review.Repository {
	return &reviewRepository{baseRepo{db: db}}
}

func (repo *reviewRepository) CreateReview(ctx context.Context, r review.Review, exec ...core.DBExecutor) (review.Review, error) {
	b := builder.Insert("reviews").SetMap(map[string]interface{}{
		"id":          r.ID,
		"contract_id": r.ContractID,
		"teacher_id":  r.TeacherID,
		"parent_id":   r.ParentID,
		"rating":      r.Rating,
		"comment":     r.Comment,
		"created_at":  r.CreatedAt,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return review.Review{}, errors.Wrap(err, "inserting review")
	}
	return r, nil
}

func (repo *reviewRepository) getReview(ctx context.Context, where sq.Sqlizer, exec []core.DBExecutor) (review.Review, error) {
	var r review.Review
	b := builder.Select(reviewColumns...).From(reviewFrom).Where(where)
	err := get(ctx, repo.getExec(exec), &r, b, review.ErrNotFound)
	return r, err
}

func (repo *reviewRepository) GetReview(ctx context.Context, id string, exec ...core.DBExecutor) (review.Review, error) {
	return repo.getReview(ctx, sq.Eq{"r.id": id}, exec)
}

func (repo *reviewRepository) GetReviewByContract(ctx context.Context, contractID string, exec ...core.DBExecutor) (review.Review, error) {
	return repo.getReview(ctx, sq.Eq{"r.contract_id": contractID}, exec)
}

func (repo *reviewRepository) QueryReviewsByTeacher(ctx context.Context, teacherID string, page core.Page, exec ...core.DBExecutor) ([]review.Review, int, error) {
	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"r.teacher_id": teacherID})
	}
	reviews := make([]review.Review, 0)
	ordering := []core.DBOrdering{{Field: "r.created_at"}}
	total, err := paginate(ctx, repo.getExec(exec), &reviews, reviewFrom, reviewColumns, where, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying reviews")
	}
	return reviews, total, nil
}

func (repo *reviewRepository) DeleteReview(ctx context.Context, id string, exec ...core.DBExecutor) error {
	return executeOne(ctx, repo.getExec(exec), builder.Delete("reviews").Where(sq.Eq{"id": id}), review.ErrNotFound)
}
