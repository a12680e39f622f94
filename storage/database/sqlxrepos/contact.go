package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/contact"
)

var contactColumns = []string{"id", "name", "email", "subject", "message", "status", "created_at", "resolved_at"}

type contactRepository struct {
	baseRepo
}

var _ contact.Repository = (*contactRepository)(nil)

func NewContactRepository(db core.DB) contact.Repository {
	return &contactRepository{baseRepo{db: db}}
}

func (repo *contactRepository) CreateContact(ctx context.Context, c contact.Contact, exec ...core.DBExecutor) (contact.Contact, error) {
	b := builder.Insert("contacts").SetMap(map[string]interface{}{
		"id":          c.ID,
		"name":        c.Name,
		"email":       c.Email,
		"subject":     c.Subject,
		"message":     c.Message,
		"status":      c.Status,
		"created_at":  c.CreatedAt,
		"resolved_at": c.ResolvedAt,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return contact.Contact{}, errors.Wrap(err, "inserting contact")
	}
	return c, nil
}

func (repo *contactRepository) GetContact(ctx context.Context, id string, exec ...core.DBExecutor) (contact.Contact, error) {
	var c contact.Contact
	b := builder.Select(contactColumns...).From("contacts").Where(sq.Eq{"id": id})
	err := get(ctx, repo.getExec(exec), &c, b, contact.ErrNotFound)
	return c, err
}

func (repo *contactRepository) QueryContacts(ctx context.Context, filter *contact.QueryFilter, page core.Page, exec ...core.DBExecutor) ([]contact.Contact, int, error) {
	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		if filter.Status != "" {
			b = b.Where(sq.Eq{"status": filter.Status})
		}
		return b
	}
	contacts := make([]contact.Contact, 0)
	ordering := []core.DBOrdering{{Field: "created_at"}}
	total, err := paginate(ctx, repo.getExec(exec), &contacts, "contacts", contactColumns, where, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying contacts")
	}
	return contacts, total, nil
}

func (repo *contactRepository) UpdateContact(ctx context.Context, c contact.Contact, exec ...core.DBExecutor) (contact.Contact, error) {
	b := builder.Update("contacts").
		Set("status", c.Status).
		Set("resolved_at", c.ResolvedAt).
		Where(sq.Eq{"id": c.ID})
	if err := executeOne(ctx, repo.getExec(exec), b, contact.ErrNotFound); err != nil {
		return contact.Contact{}, err
	}
	return c, nil
}
