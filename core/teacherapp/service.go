package teacherapp

import (
	"context"
	"net/mail"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/teacher"
	"github.com/tutorly/tutorly/core/user"
)

const table = "teacher_applications"

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("teacher application")
	ErrNotTeacher        = errors.Wrap(core.ErrForbidden, "only teachers can apply")
	ErrAlreadySubmitted  = errors.New("you already have an application under consideration")
	ErrInvalidTransition = errors.New("this status change is not allowed")
)

type (
	Repository interface {
		CreateApplication(ctx context.Context, app Application, exec ...core.DBExecutor) (Application, error)
		GetApplication(ctx context.Context, id string, exec ...core.DBExecutor) (Application, error)
		// GetLatestApplication returns the most recent application of userID.
		GetLatestApplication(ctx context.Context, userID string, exec ...core.DBExecutor) (Application, error)
		// CountOpenApplications counts the applications of userID not in a terminal status.
		CountOpenApplications(ctx context.Context, userID string, exec ...core.DBExecutor) (int, error)
		QueryApplications(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page, exec ...core.DBExecutor) ([]Application, int, error)
		UpdateApplication(ctx context.Context, app Application, exec ...core.DBExecutor) (Application, error)
	}

	Service interface {
		Submit(ctx context.Context, actor user.User, na NewApplication) (Application, error)
		GetMine(ctx context.Context, actor user.User) (Application, error)
		Query(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Application, int, error)
		Get(ctx context.Context, actor user.User, id string) (Application, error)
		StartReview(ctx context.Context, actor user.User, id string) (Application, error)
		ScheduleInterview(ctx context.Context, actor user.User, id string, si ScheduleInterview) (Application, error)
		CompleteInterview(ctx context.Context, actor user.User, id string, ci CompleteInterview) (Application, error)
		// Approve approves an application and creates, or updates, the verified Teacher of the applicant.
		Approve(ctx context.Context, actor user.User, id string) (Application, error)
		Reject(ctx context.Context, actor user.User, id string, r Reject) (Application, error)
	}

	service struct {
		repo       Repository
		db         core.DB
		teacherSvc teacher.Service
		meetSvc    core.MeetingService
		mailSvc    core.EmailService
		pub        core.Publisher
	}
)

var (
	_ Service = (*service)(nil)

	orderingFields = map[string]string{
		"created_at": "a.created_at",
		"updated_at": "a.updated_at",
		"status":     "a.status",
	}
	defaultOrdering = core.DBOrdering{Field: "a.created_at"}
)

func NewService(
	repo Repository,
	db core.DB,
	teacherSvc teacher.Service,
	meetSvc core.MeetingService,
	mailSvc core.EmailService,
	pub core.Publisher,
) Service {
	return &service{
		repo:       repo,
		db:         db,
		teacherSvc: teacherSvc,
		meetSvc:    meetSvc,
		mailSvc:    mailSvc,
		pub:        pub,
	}
}

func (svc *service) Submit(ctx context.Context, actor user.User, na NewApplication) (Application, error) {
	if !actor.IsTeacher() {
		return Application{}, ErrNotTeacher
	}
	n, err := svc.repo.CountOpenApplications(ctx, actor.ID)
	if err != nil {
		return Application{}, errors.Wrap(err, "counting applications")
	}
	if n > 0 {
		return Application{}, core.NewValidationError(ErrAlreadySubmitted, core.FieldError{Field: "status", Error: ErrAlreadySubmitted.Error()})
	}

	now := core.NowFunc()
	app := Application{
		ID:              uuid.NewString(),
		UserID:          actor.ID,
		Bio:             na.Bio,
		ExperienceYears: na.ExperienceYears,
		HourlyRate:      na.HourlyRate,
		Education:       na.Education,
		City:            na.City,
		Subjects:        na.Subjects,
		Levels:          na.Levels,
		Qualifications:  na.Qualifications,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err = svc.repo.CreateApplication(ctx, app); err != nil {
		return Application{}, errors.Wrap(err, "creating teacher application")
	}
	if app, err = svc.repo.GetApplication(ctx, app.ID); err != nil {
		return Application{}, err
	}
	svc.pub.Publish(ctx, NewEvent(core.EventInsert, app))
	return app, nil
}

func (svc *service) GetMine(ctx context.Context, actor user.User) (Application, error) {
	return svc.repo.GetLatestApplication(ctx, actor.ID)
}

func (svc *service) Query(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Application, int, error) {
	if !actor.IsAdmin() {
		return nil, 0, core.ErrForbidden
	}
	filter.Clean()
	page.Clean()
	ordering = core.FilterOrderings(ordering, orderingFields, defaultOrdering)
	return svc.repo.QueryApplications(ctx, filter, ordering, page)
}

func (svc *service) Get(ctx context.Context, actor user.User, id string) (Application, error) {
	app, err := svc.repo.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if !actor.IsAdmin() && app.UserID != actor.ID {
		return Application{}, core.ErrForbidden
	}
	return app, nil
}

func (svc *service) StartReview(ctx context.Context, actor user.User, id string) (Application, error) {
	app, err := svc.getForTransition(ctx, actor, id, StatusUnderReview)
	if err != nil {
		return Application{}, err
	}
	app, err = svc.save(ctx, actor, app, StatusUnderReview)
	if err != nil {
		return Application{}, err
	}
	svc.sendStatusMail(app)
	return app, nil
}

func (svc *service) ScheduleInterview(ctx context.Context, actor user.User, id string, si ScheduleInterview) (Application, error) {
	app, err := svc.getForTransition(ctx, actor, id, StatusInterviewScheduled)
	if err != nil {
		return Application{}, err
	}
	space, err := svc.meetSvc.CreateSpace(ctx)
	if err != nil {
		return Application{}, errors.Wrap(err, "creating interview meeting")
	}
	app.InterviewAt = null.TimeFrom(si.InterviewAt.UTC())
	app.InterviewURL = space.URL
	if app, err = svc.save(ctx, actor, app, StatusInterviewScheduled); err != nil {
		return Application{}, err
	}
	svc.sendStatusMail(app)
	return app, nil
}

func (svc *service) CompleteInterview(ctx context.Context, actor user.User, id string, ci CompleteInterview) (Application, error) {
	app, err := svc.getForTransition(ctx, actor, id, StatusInterviewCompleted)
	if err != nil {
		return Application{}, err
	}
	if ci.AdminNotes != "" {
		app.AdminNotes = ci.AdminNotes
	}
	if app, err = svc.save(ctx, actor, app, StatusInterviewCompleted); err != nil {
		return Application{}, err
	}
	svc.sendStatusMail(app)
	return app, nil
}

func (svc *service) Approve(ctx context.Context, actor user.User, id string) (Application, error) {
	if !actor.IsAdmin() {
		return Application{}, core.ErrForbidden
	}

	var (
		app Application
		t   teacher.Teacher
	)
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		if app, err = svc.repo.GetApplication(ctx, id, exec); err != nil {
			return err
		}
		if !CanTransition(app.Status, StatusApproved) {
			return invalidTransition()
		}
		app.Status = StatusApproved
		app.ReviewedBy = null.StringFrom(actor.ID)
		app.UpdatedAt = core.NowFunc()
		if app, err = svc.repo.UpdateApplication(ctx, app, exec); err != nil {
			return errors.Wrap(err, "approving teacher application")
		}
		t, err = svc.teacherSvc.UpsertFromProfile(ctx, app.Profile(), exec)
		return err
	})
	if err != nil {
		return Application{}, err
	}

	svc.pub.Publish(ctx, NewEvent(core.EventUpdate, app))
	svc.pub.Publish(ctx, teacher.NewEvent(core.EventUpdate, t))
	svc.sendStatusMail(app)
	return app, nil
}

func (svc *service) Reject(ctx context.Context, actor user.User, id string, r Reject) (Application, error) {
	app, err := svc.getForTransition(ctx, actor, id, StatusRejected)
	if err != nil {
		return Application{}, err
	}
	app.RejectionReason = r.Reason
	if app, err = svc.save(ctx, actor, app, StatusRejected); err != nil {
		return Application{}, err
	}
	svc.sendStatusMail(app)
	return app, nil
}

func invalidTransition() error {
	return core.NewValidationError(ErrInvalidTransition, core.FieldError{Field: "status", Error: ErrInvalidTransition.Error()})
}

func (svc *service) getForTransition(ctx context.Context, actor user.User, id, to string) (Application, error) {
	if !actor.IsAdmin() {
		return Application{}, core.ErrForbidden
	}
	app, err := svc.repo.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if !CanTransition(app.Status, to) {
		return Application{}, invalidTransition()
	}
	return app, nil
}

func (svc *service) save(ctx context.Context, actor user.User, app Application, status string) (Application, error) {
	app.Status = status
	app.ReviewedBy = null.StringFrom(actor.ID)
	app.UpdatedAt = core.NowFunc()
	app, err := svc.repo.UpdateApplication(ctx, app)
	if err != nil {
		return Application{}, errors.Wrap(err, "updating teacher application")
	}
	svc.pub.Publish(ctx, NewEvent(core.EventUpdate, app))
	return app, nil
}

func (svc *service) sendStatusMail(app Application) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: app.FullName, Address: app.Email}},
		Subject:      "Your teacher application",
		TemplateName: "teacher_application_status",
		TemplateData: statusMailData{
			Name:         app.FullName,
			Status:       app.Status,
			InterviewAt:  app.InterviewAt.Time,
			InterviewURL: app.InterviewURL,
			Reason:       app.RejectionReason,
		},
	})
}

// NewEvent builds the realtime event of a teacher application row change, sent to the applicant.
func NewEvent(typ string, app Application) core.Event {
	return core.NewEvent(table, typ, app, app.UserID)
}
