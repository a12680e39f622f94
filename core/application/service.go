package application

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/contract"
	"github.com/tutorly/tutorly/core/job"
	"github.com/tutorly/tutorly/core/teacher"
	"github.com/tutorly/tutorly/core/user"
)

const table = "applications"

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("application")
	ErrAlreadyApplied = errors.New("you already applied to this job")
	ErrNotPending     = errors.New("this application is no longer pending")
	ErrNotVerified    = errors.Wrap(core.ErrForbidden, "only verified teachers can apply")
)

type (
	Repository interface {
		CreateApplication(ctx context.Context, app Application, exec ...core.DBExecutor) (Application, error)
		GetApplication(ctx context.Context, id string, exec ...core.DBExecutor) (Application, error)
		GetApplicationByJobAndTeacher(ctx context.Context, jobID, teacherID string, exec ...core.DBExecutor) (Application, error)
		QueryApplications(ctx context.Context, filter Filter, ordering []core.DBOrdering, page core.Page, exec ...core.DBExecutor) ([]Application, int, error)
		UpdateApplicationStatus(ctx context.Context, app Application, exec ...core.DBExecutor) (Application, error)
		// RejectPendingApplications rejects the pending applications of jobID but exceptID,
		// returning the IDs of the rejected ones.
		RejectPendingApplications(ctx context.Context, jobID, exceptID string, exec ...core.DBExecutor) ([]string, error)
	}

	// Filter restricts a query to a job and/or a teacher.
	Filter struct {
		JobID     string
		TeacherID string
		Status    string
	}

	Service interface {
		Apply(ctx context.Context, actor user.User, jobID string, na NewApplication) (Application, error)
		ListForJob(ctx context.Context, actor user.User, jobID string, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Application, int, error)
		ListMine(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Application, int, error)
		Get(ctx context.Context, actor user.User, id string) (Application, error)
		Withdraw(ctx context.Context, actor user.User, id string) (Application, error)
		Reject(ctx context.Context, actor user.User, id string) (Application, error)
		// Accept accepts a pending application: its contract is created, the job is filled
		// and the other pending applications of the job are rejected.
		Accept(ctx context.Context, actor user.User, id string, terms contract.Terms) (contract.Contract, error)
	}

	service struct {
		repo        Repository
		db          core.DB
		userSvc     user.Service
		teacherSvc  teacher.Service
		jobSvc      job.Service
		contractSvc contract.Service
		mailSvc     core.EmailService
		logger      core.Logger
		pub         core.Publisher
	}
)

var (
	_ Service = (*service)(nil)

	orderingFields = map[string]string{
		"created_at":    "a.created_at",
		"proposed_rate": "a.proposed_rate",
		"status":        "a.status",
	}
	defaultOrdering = core.DBOrdering{Field: "a.created_at"}
)

func NewService(
	repo Repository,
	db core.DB,
	userSvc user.Service,
	teacherSvc teacher.Service,
	jobSvc job.Service,
	contractSvc contract.Service,
	mailSvc core.EmailService,
	logger core.Logger,
	pub core.Publisher,
) Service {
	return &service{
		repo:        repo,
		db:          db,
		userSvc:     userSvc,
		teacherSvc:  teacherSvc,
		jobSvc:      jobSvc,
		contractSvc: contractSvc,
		mailSvc:     mailSvc,
		logger:      logger,
		pub:         pub,
	}
}

func (svc *service) Apply(ctx context.Context, actor user.User, jobID string, na NewApplication) (Application, error) {
	t, err := svc.teacherSvc.GetMine(ctx, actor)
	if err != nil {
		if core.IsNotFound(err) {
			return Application{}, ErrNotVerified
		}
		return Application{}, err
	}
	if !t.IsVerified {
		return Application{}, ErrNotVerified
	}

	j, err := svc.jobSvc.Get(ctx, actor, jobID)
	if err != nil {
		return Application{}, err
	}
	if !j.IsOpen() {
		return Application{}, core.NewValidationError(job.ErrNotOpen, core.FieldError{Field: "job_id", Error: job.ErrNotOpen.Error()})
	}

	if _, err = svc.repo.GetApplicationByJobAndTeacher(ctx, j.ID, t.ID); err == nil {
		return Application{}, core.NewValidationError(ErrAlreadyApplied, core.FieldError{Field: "job_id", Error: ErrAlreadyApplied.Error()})
	} else if !core.IsNotFound(err) {
		return Application{}, errors.Wrap(err, "checking application")
	}

	now := core.NowFunc()
	app := Application{
		ID:           uuid.NewString(),
		JobID:        j.ID,
		TeacherID:    t.ID,
		CoverLetter:  na.CoverLetter,
		ProposedRate: na.ProposedRate,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err = svc.repo.CreateApplication(ctx, app); err != nil {
		return Application{}, errors.Wrap(err, "creating application")
	}
	if app, err = svc.repo.GetApplication(ctx, app.ID); err != nil {
		return Application{}, err
	}

	svc.pub.Publish(ctx, NewEvent(core.EventInsert, app))
	svc.sendReceivedMail(ctx, app)
	return app, nil
}

func (svc *service) sendReceivedMail(ctx context.Context, app Application) {
	parent, err := svc.userSvc.GetByID(ctx, app.ParentID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("application %s: getting parent for mail: %v", app.ID, err), err)
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: parent.FullName, Address: parent.Email}},
		Subject:      "New application to " + app.JobTitle,
		TemplateName: "application_received",
		TemplateData: receivedMailData{
			ParentName:   parent.FullName,
			TeacherName:  app.TeacherName,
			JobTitle:     app.JobTitle,
			ProposedRate: app.ProposedRate,
			JobID:        app.JobID,
		},
	})
}

func (svc *service) ListForJob(
	ctx context.Context,
	actor user.User,
	jobID string,
	filter *QueryFilter,
	ordering []core.DBOrdering,
	page core.Page,
) ([]Application, int, error) {
	if !actor.IsAdmin() {
		if _, err := svc.jobSvc.GetOwned(ctx, actor, jobID); err != nil {
			return nil, 0, err
		}
	}
	filter.Clean()
	return svc.query(ctx, Filter{JobID: jobID, Status: filter.Status}, ordering, page)
}

func (svc *service) ListMine(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Application, int, error) {
	t, err := svc.teacherSvc.GetMine(ctx, actor)
	if err != nil {
		return nil, 0, err
	}
	filter.Clean()
	return svc.query(ctx, Filter{TeacherID: t.ID, Status: filter.Status}, ordering, page)
}

func (svc *service) query(ctx context.Context, filter Filter, ordering []core.DBOrdering, page core.Page) ([]Application, int, error) {
	page.Clean()
	ordering = core.FilterOrderings(ordering, orderingFields, defaultOrdering)
	return svc.repo.QueryApplications(ctx, filter, ordering, page)
}

func (svc *service) Get(ctx context.Context, actor user.User, id string) (Application, error) {
	app, err := svc.repo.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if !app.canView(actor) {
		return Application{}, core.ErrForbidden
	}
	return app, nil
}

func (svc *service) Withdraw(ctx context.Context, actor user.User, id string) (Application, error) {
	app, err := svc.repo.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.TeacherUserID != actor.ID {
		return Application{}, core.ErrForbidden
	}
	return svc.setStatus(ctx, app, StatusWithdrawn)
}

func (svc *service) Reject(ctx context.Context, actor user.User, id string) (Application, error) {
	app, err := svc.repo.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.ParentID != actor.ID {
		return Application{}, core.ErrForbidden
	}
	return svc.setStatus(ctx, app, StatusRejected)
}

func (svc *service) setStatus(ctx context.Context, app Application, status string) (Application, error) {
	if !app.IsPending() {
		return Application{}, core.NewValidationError(ErrNotPending, core.FieldError{Field: "status", Error: ErrNotPending.Error()})
	}
	app.Status = status
	app.UpdatedAt = core.NowFunc()
	app, err := svc.repo.UpdateApplicationStatus(ctx, app)
	if err != nil {
		return Application{}, errors.Wrap(err, "updating application")
	}
	svc.pub.Publish(ctx, NewEvent(core.EventUpdate, app))
	return app, nil
}

func (svc *service) Accept(ctx context.Context, actor user.User, id string, terms contract.Terms) (contract.Contract, error) {
	var (
		app      Application
		j        job.Job
		c        contract.Contract
		rejected []string
	)

	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		if app, err = svc.repo.GetApplication(ctx, id, exec); err != nil {
			return err
		}
		if app.ParentID != actor.ID {
			return core.ErrForbidden
		}
		if !app.IsPending() {
			return core.NewValidationError(ErrNotPending, core.FieldError{Field: "status", Error: ErrNotPending.Error()})
		}

		if j, err = svc.jobSvc.GetOwned(ctx, actor, app.JobID, exec); err != nil {
			return err
		}
		if j, err = svc.jobSvc.Fill(ctx, j, exec); err != nil {
			return err
		}

		app.Status = StatusAccepted
		app.UpdatedAt = core.NowFunc()
		if app, err = svc.repo.UpdateApplicationStatus(ctx, app, exec); err != nil {
			return errors.Wrap(err, "accepting application")
		}
		if rejected, err = svc.repo.RejectPendingApplications(ctx, j.ID, app.ID, exec); err != nil {
			return errors.Wrap(err, "rejecting other applications")
		}

		c, err = svc.contractSvc.Create(ctx, contract.NewContract{
			JobID:         j.ID,
			ApplicationID: app.ID,
			ParentID:      j.ParentID,
			TeacherID:     app.TeacherID,
			StudentID:     j.StudentID,
			HourlyRate:    app.ProposedRate,
			Terms:         terms,
		}, exec)
		return err
	})
	if err != nil {
		return contract.Contract{}, err
	}

	svc.pub.Publish(ctx, NewEvent(core.EventUpdate, app))
	svc.pub.Publish(ctx, job.NewEvent(core.EventUpdate, j))
	svc.pub.Publish(ctx, contract.NewEvent(core.EventInsert, c))
	for _, rid := range rejected {
		if other, err := svc.repo.GetApplication(ctx, rid); err == nil {
			svc.pub.Publish(ctx, NewEvent(core.EventUpdate, other))
		}
	}
	svc.sendAcceptedMail(ctx, app, c)
	return c, nil
}

func (svc *service) sendAcceptedMail(ctx context.Context, app Application, c contract.Contract) {
	tUsr, err := svc.userSvc.GetByID(ctx, app.TeacherUserID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("contract %s: getting teacher for mail: %v", c.ID, err), err)
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: tUsr.FullName, Address: tUsr.Email}},
		Subject:      "Your application was accepted",
		TemplateName: "application_accepted",
		TemplateData: acceptedMailData{
			TeacherName: tUsr.FullName,
			JobTitle:    app.JobTitle,
			StartDate:   c.StartDate,
			ContractID:  c.ID,
		},
	})
}

// NewEvent builds the realtime event of an application row change, sent to the parent and the teacher.
func NewEvent(typ string, app Application) core.Event {
	return core.NewEvent(table, typ, app, app.Audience()...)
}
