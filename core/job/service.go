package job

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/student"
	"github.com/tutorly/tutorly/core/user"
)

const table = "job_postings"

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("job")
	ErrNotOpen          = errors.New("this job is no longer open")
	ErrHasAcceptedApp   = errors.New("a job with an accepted application cannot be deleted")
	ErrStudentNotParent = errors.New("student not found")
)

type (
	Repository interface {
		CreateJob(ctx context.Context, j Job, exec ...core.DBExecutor) (Job, error)
		GetJob(ctx context.Context, id string, exec ...core.DBExecutor) (Job, error)
		// QueryJobs applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Job.Title or Job.Description.
		QueryJobs(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page, exec ...core.DBExecutor) ([]Job, int, error)
		UpdateJob(ctx context.Context, j Job, exec ...core.DBExecutor) (Job, error)
		DeleteJob(ctx context.Context, id string, exec ...core.DBExecutor) error
		HasAcceptedApplication(ctx context.Context, jobID string, exec ...core.DBExecutor) (bool, error)
	}

	Service interface {
		Create(ctx context.Context, actor user.User, nj NewJob) (Job, error)
		// Query lists jobs. Parents only see their own jobs, others see OPEN jobs unless filtered by status.
		Query(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Job, int, error)
		Get(ctx context.Context, actor user.User, id string) (Job, error)
		Update(ctx context.Context, actor user.User, id string, nj NewJob) (Job, error)
		Close(ctx context.Context, actor user.User, id string) (Job, error)
		Delete(ctx context.Context, actor user.User, id string) error

		// GetOwned returns the job of id when actor posted it.
		GetOwned(ctx context.Context, actor user.User, id string, exec ...core.DBExecutor) (Job, error)
		// Fill marks an open job as FILLED on the caller's executor.
		Fill(ctx context.Context, j Job, exec core.DBExecutor) (Job, error)
	}

	service struct {
		repo       Repository
		studentSvc student.Service
		pub        core.Publisher
	}
)

var (
	_ Service = (*service)(nil)

	orderingFields = map[string]string{
		"created_at": "created_at",
		"budget_max": "budget_max",
		"budget_min": "budget_min",
		"title":      "title",
	}
	defaultOrdering = core.DBOrdering{Field: "created_at"}
)

func NewService(repo Repository, studentSvc student.Service, pub core.Publisher) Service {
	return &service{repo: repo, studentSvc: studentSvc, pub: pub}
}

func (svc *service) checkStudent(ctx context.Context, actor user.User, studentID string) (null.String, error) {
	if studentID == "" {
		return null.String{}, nil
	}
	if _, err := svc.studentSvc.Get(ctx, actor, studentID); err != nil {
		if core.IsNotFound(err) || errors.Cause(err) == core.ErrForbidden {
			return null.String{}, core.NewValidationError(ErrStudentNotParent, core.FieldError{Field: "student_id", Error: ErrStudentNotParent.Error()})
		}
		return null.String{}, errors.Wrap(err, "getting student")
	}
	return null.StringFrom(studentID), nil
}

func (svc *service) Create(ctx context.Context, actor user.User, nj NewJob) (Job, error) {
	if !actor.IsParent() {
		return Job{}, core.ErrForbidden
	}
	studentID, err := svc.checkStudent(ctx, actor, nj.StudentID)
	if err != nil {
		return Job{}, err
	}

	now := core.NowFunc()
	j := Job{
		ID:              uuid.NewString(),
		ParentID:        actor.ID,
		StudentID:       studentID,
		Title:           nj.Title,
		Description:     nj.Description,
		Subject:         nj.Subject,
		Level:           nj.Level,
		Location:        nj.Location,
		Mode:            nj.Mode,
		SessionsPerWeek: nj.SessionsPerWeek,
		BudgetMin:       nj.BudgetMin,
		BudgetMax:       nj.BudgetMax,
		Status:          StatusOpen,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if j, err = svc.repo.CreateJob(ctx, j); err != nil {
		return Job{}, errors.Wrap(err, "creating job")
	}
	svc.publish(ctx, core.EventInsert, j)
	return j, nil
}

func (svc *service) Query(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Job, int, error) {
	filter.Clean()
	page.Clean()
	if actor.IsParent() {
		filter.ParentID = actor.ID
	} else if filter.Status == "" {
		filter.Status = StatusOpen
	}
	ordering = core.FilterOrderings(ordering, orderingFields, defaultOrdering)
	return svc.repo.QueryJobs(ctx, filter, ordering, page)
}

func (svc *service) Get(ctx context.Context, actor user.User, id string) (Job, error) {
	j, err := svc.repo.GetJob(ctx, id)
	if err != nil {
		return Job{}, err
	}
	if actor.IsParent() && j.ParentID != actor.ID {
		return Job{}, core.ErrForbidden
	}
	return j, nil
}

func (svc *service) GetOwned(ctx context.Context, actor user.User, id string, exec ...core.DBExecutor) (Job, error) {
	j, err := svc.repo.GetJob(ctx, id, exec...)
	if err != nil {
		return Job{}, err
	}
	if j.ParentID != actor.ID {
		return Job{}, core.ErrForbidden
	}
	return j, nil
}

func (svc *service) Update(ctx context.Context, actor user.User, id string, nj NewJob) (Job, error) {
	j, err := svc.GetOwned(ctx, actor, id)
	if err != nil {
		return Job{}, err
	}
	if !j.IsOpen() {
		return Job{}, core.NewValidationError(ErrNotOpen, core.FieldError{Field: "status", Error: ErrNotOpen.Error()})
	}
	if j.StudentID, err = svc.checkStudent(ctx, actor, nj.StudentID); err != nil {
		return Job{}, err
	}

	j.Title = nj.Title
	j.Description = nj.Description
	j.Subject = nj.Subject
	j.Level = nj.Level
	j.Location = nj.Location
	j.Mode = nj.Mode
	j.SessionsPerWeek = nj.SessionsPerWeek
	j.BudgetMin = nj.BudgetMin
	j.BudgetMax = nj.BudgetMax
	return svc.update(ctx, j)
}

func (svc *service) Close(ctx context.Context, actor user.User, id string) (Job, error) {
	j, err := svc.GetOwned(ctx, actor, id)
	if err != nil {
		return Job{}, err
	}
	if !j.IsOpen() {
		return Job{}, core.NewValidationError(ErrNotOpen, core.FieldError{Field: "status", Error: ErrNotOpen.Error()})
	}
	j.Status = StatusClosed
	return svc.update(ctx, j)
}

func (svc *service) update(ctx context.Context, j Job, exec ...core.DBExecutor) (Job, error) {
	j.UpdatedAt = core.NowFunc()
	j, err := svc.repo.UpdateJob(ctx, j, exec...)
	if err != nil {
		return Job{}, errors.Wrap(err, "updating job")
	}
	if len(exec) == 0 {
		svc.publish(ctx, core.EventUpdate, j)
	}
	return j, nil
}

func (svc *service) Fill(ctx context.Context, j Job, exec core.DBExecutor) (Job, error) {
	if !j.IsOpen() {
		return Job{}, core.NewValidationError(ErrNotOpen, core.FieldError{Field: "job_id", Error: ErrNotOpen.Error()})
	}
	j.Status = StatusFilled
	return svc.update(ctx, j, exec)
}

func (svc *service) Delete(ctx context.Context, actor user.User, id string) error {
	j, err := svc.GetOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	accepted, err := svc.repo.HasAcceptedApplication(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking applications")
	}
	if accepted {
		return core.NewValidationError(ErrHasAcceptedApp, core.FieldError{Field: "status", Error: ErrHasAcceptedApp.Error()})
	}
	if err = svc.repo.DeleteJob(ctx, id); err != nil {
		return errors.Wrap(err, "deleting job")
	}
	svc.publish(ctx, core.EventDelete, j)
	return nil
}

func (svc *service) publish(ctx context.Context, typ string, j Job) {
	svc.pub.Publish(ctx, NewEvent(typ, j))
}

// NewEvent builds the realtime event of a job row change, sent to its parent.
func NewEvent(typ string, j Job) core.Event {
	return core.NewEvent(table, typ, j, j.ParentID)
}
