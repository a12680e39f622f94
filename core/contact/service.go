package contact

import (
	"context"
	"net/mail"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
)

const table = "contacts"

var (
	// errors
	ErrNotFound = core.NewNotFoundError("contact")
)

type (
	Repository interface {
		CreateContact(ctx context.Context, c Contact, exec ...core.DBExecutor) (Contact, error)
		GetContact(ctx context.Context, id string, exec ...core.DBExecutor) (Contact, error)
		QueryContacts(ctx context.Context, filter *QueryFilter, page core.Page, exec ...core.DBExecutor) ([]Contact, int, error)
		UpdateContact(ctx context.Context, c Contact, exec ...core.DBExecutor) (Contact, error)
	}

	Service interface {
		Submit(ctx context.Context, nc NewContact) (Contact, error)
		Query(ctx context.Context, actor user.User, filter *QueryFilter, page core.Page) ([]Contact, int, error)
		// Resolve marks a contact as resolved, keeping the first resolved_at.
		Resolve(ctx context.Context, actor user.User, id string) (Contact, error)
	}

	service struct {
		repo       Repository
		mailSvc    core.EmailService
		pub        core.Publisher
		adminEmail string
	}
)

var _ Service = (*service)(nil)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService, pub core.Publisher) Service {
	return &service{repo: repo, mailSvc: mailSvc, pub: pub, adminEmail: conf.AdminEmail}
}

func (svc *service) Submit(ctx context.Context, nc NewContact) (Contact, error) {
	c := Contact{
		ID:        uuid.NewString(),
		Name:      nc.Name,
		Email:     nc.Email,
		Subject:   nc.Subject,
		Message:   nc.Message,
		Status:    StatusNew,
		CreatedAt: core.NowFunc(),
	}
	c, err := svc.repo.CreateContact(ctx, c)
	if err != nil {
		return Contact{}, errors.Wrap(err, "creating contact")
	}

	if svc.adminEmail != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Address: svc.adminEmail}},
			ReplyTo:      &mail.Address{Name: c.Name, Address: c.Email},
			Subject:      "Contact: " + c.Subject,
			TemplateName: "contact_received",
			TemplateData: receivedMailData{
				Name:    c.Name,
				Email:   c.Email,
				Subject: c.Subject,
				Message: c.Message,
			},
		})
	}
	return c, nil
}

func (svc *service) Query(ctx context.Context, actor user.User, filter *QueryFilter, page core.Page) ([]Contact, int, error) {
	if !actor.IsAdmin() {
		return nil, 0, core.ErrForbidden
	}
	filter.Clean()
	page.Clean()
	return svc.repo.QueryContacts(ctx, filter, page)
}

func (svc *service) Resolve(ctx context.Context, actor user.User, id string) (Contact, error) {
	if !actor.IsAdmin() {
		return Contact{}, core.ErrForbidden
	}
	c, err := svc.repo.GetContact(ctx, id)
	if err != nil {
		return Contact{}, err
	}
	if c.Status == StatusResolved {
		return c, nil
	}
	c.Status = StatusResolved
	c.ResolvedAt = null.TimeFrom(core.NowFunc())
	if c, err = svc.repo.UpdateContact(ctx, c); err != nil {
		return Contact{}, errors.Wrap(err, "resolving contact")
	}
	svc.pub.Publish(ctx, core.NewEvent(table, core.EventUpdate, c, actor.ID))
	return c, nil
}
