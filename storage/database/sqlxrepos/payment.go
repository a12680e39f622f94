package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/payment"
)

var (
	paymentColumns = append(
		prefixed("p", []string{
			"id", "contract_id", "class_id", "parent_id", "teacher_id", "amount", "currency", "method",
			"reference", "status", "paid_at", "created_at", "updated_at",
		}),
		"t.user_id AS teacher_user_id",
	)
	paymentFrom = "payments p JOIN teacher_profiles t ON t.id = p.teacher_id"
)

type paymentRepository struct {
	baseRepo
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db core.DB) payment.Repository {
	return &paymentRepository{baseRepo{db: db}}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment, exec ...core.DBExecutor) (payment.Payment, error) {
	b := builder.Insert("payments").SetMap(map[string]interface{}{
		"id":          p.ID,
		"contract_id": p.ContractID,
		"class_id":    p.ClassID,
		"parent_id":   p.ParentID,
		"teacher_id":  p.TeacherID,
		"amount":      p.Amount,
		"currency":    p.Currency,
		"method":      p.Method,
		"reference":   p.Reference,
		"status":      p.Status,
		"paid_at":     p.PaidAt,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo *paymentRepository) GetPayment(ctx context.Context, id string, exec ...core.DBExecutor) (payment.Payment, error) {
	var p payment.Payment
	b := builder.Select(paymentColumns...).From(paymentFrom).Where(sq.Eq{"p.id": id})
	err := get(ctx, repo.getExec(exec), &p, b, payment.ErrNotFound)
	return p, err
}

func (repo *paymentRepository) QueryPayments(ctx context.Context, filter payment.Filter, page core.Page, exec ...core.DBExecutor) ([]payment.Payment, int, error) {
	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		if filter.ContractID != "" {
			b = b.Where(sq.Eq{"p.contract_id": filter.ContractID})
		}
		if filter.UserID != "" {
			b = b.Where(sq.Or{sq.Eq{"p.parent_id": filter.UserID}, sq.Eq{"t.user_id": filter.UserID}})
		}
		if filter.Status != "" {
			b = b.Where(sq.Eq{"p.status": filter.Status})
		}
		return b
	}

	payments := make([]payment.Payment, 0)
	ordering := []core.DBOrdering{{Field: "p.created_at"}}
	total, err := paginate(ctx, repo.getExec(exec), &payments, paymentFrom, paymentColumns, where, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying payments")
	}
	return payments, total, nil
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment, exec ...core.DBExecutor) (payment.Payment, error) {
	b := builder.Update("payments").SetMap(map[string]interface{}{
		"status":     p.Status,
		"paid_at":    p.PaidAt,
		"updated_at": p.UpdatedAt,
	}).Where(sq.Eq{"id": p.ID})
	if err := executeOne(ctx, repo.getExec(exec), b, payment.ErrNotFound); err != nil {
		return payment.Payment{}, err
	}
	return p, nil
}
