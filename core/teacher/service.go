package teacher

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
)

const table = "teacher_profiles"

var (
	// errors
	ErrNotFound              = core.NewNotFoundError("teacher")
	ErrQualificationNotFound = core.NewNotFoundError("qualification")
)

type (
	Repository interface {
		CreateTeacher(ctx context.Context, t Teacher, exec ...core.DBExecutor) (Teacher, error)
		GetTeacher(ctx context.Context, id string, exec ...core.DBExecutor) (Teacher, error)
		GetTeacherByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (Teacher, error)
		// SearchTeachers only returns verified teachers of active users.
		SearchTeachers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page, exec ...core.DBExecutor) ([]Teacher, int, error)
		UpdateTeacher(ctx context.Context, t Teacher, exec ...core.DBExecutor) (Teacher, error)
		SetSubjects(ctx context.Context, teacherID string, subjects []string, exec ...core.DBExecutor) error
		SetLevels(ctx context.Context, teacherID string, levels []string, exec ...core.DBExecutor) error
		// RecomputeRating sets the average rating and the number of reviews from the teacher's reviews.
		RecomputeRating(ctx context.Context, teacherID string, exec ...core.DBExecutor) error

		CreateQualification(ctx context.Context, q Qualification, exec ...core.DBExecutor) (Qualification, error)
		GetQualification(ctx context.Context, id string, exec ...core.DBExecutor) (Qualification, error)
		DeleteQualification(ctx context.Context, id string, exec ...core.DBExecutor) error
		DeleteQualifications(ctx context.Context, teacherID string, exec ...core.DBExecutor) error
	}

	Service interface {
		Search(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Teacher, int, error)
		Get(ctx context.Context, id string) (Teacher, error)
		GetMine(ctx context.Context, actor user.User) (Teacher, error)
		UpdateMine(ctx context.Context, actor user.User, ut UpdateTeacher) (Teacher, error)
		SetSubjects(ctx context.Context, actor user.User, subjects []string) (Teacher, error)
		SetLevels(ctx context.Context, actor user.User, levels []string) (Teacher, error)
		AddQualification(ctx context.Context, actor user.User, nq NewQualification) (Qualification, error)
		DeleteQualification(ctx context.Context, actor user.User, id string) error

		UpsertFromProfile(ctx context.Context, p Profile, exec core.DBExecutor) (Teacher, error)
		RecomputeRating(ctx context.Context, teacherID string, exec ...core.DBExecutor) (Teacher, error)
	}

	service struct {
		repo Repository
		pub  core.Publisher
	}
)

var (
	_ Service = (*service)(nil)

	orderingFields = map[string]string{
		"rating":      "t.average_rating",
		"reviews":     "t.total_reviews",
		"hourly_rate": "t.hourly_rate",
		"experience":  "t.experience_years",
		"created_at":  "t.created_at",
	}
	defaultOrdering = core.DBOrdering{Field: "t.average_rating"}
)

func NewService(repo Repository, pub core.Publisher) Service {
	return &service{repo: repo, pub: pub}
}

func (svc *service) Search(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Teacher, int, error) {
	filter.Clean()
	page.Clean()
	ordering = core.FilterOrderings(ordering, orderingFields, defaultOrdering)
	return svc.repo.SearchTeachers(ctx, filter, ordering, page)
}

// Get returns a verified teacher.
func (svc *service) Get(ctx context.Context, id string) (Teacher, error) {
	t, err := svc.repo.GetTeacher(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	if !t.IsVerified {
		return Teacher{}, ErrNotFound
	}
	return t, nil
}

func (svc *service) GetMine(ctx context.Context, actor user.User) (Teacher, error) {
	if !actor.IsTeacher() {
		return Teacher{}, core.ErrForbidden
	}
	return svc.repo.GetTeacherByUserID(ctx, actor.ID)
}

func (svc *service) UpdateMine(ctx context.Context, actor user.User, ut UpdateTeacher) (Teacher, error) {
	t, err := svc.GetMine(ctx, actor)
	if err != nil {
		return Teacher{}, err
	}
	if ut.Bio != "" {
		t.Bio = ut.Bio
	}
	if ut.ExperienceYears != nil {
		t.ExperienceYears = *ut.ExperienceYears
	}
	if ut.HourlyRate != nil {
		t.HourlyRate = *ut.HourlyRate
	}
	if ut.Education != "" {
		t.Education = ut.Education
	}
	if ut.City != "" {
		t.City = ut.City
	}
	if ut.IsAvailable != nil {
		t.IsAvailable = *ut.IsAvailable
	}
	t.UpdatedAt = core.NowFunc()
	if t, err = svc.repo.UpdateTeacher(ctx, t); err != nil {
		return Teacher{}, errors.Wrap(err, "updating teacher")
	}
	svc.publish(ctx, core.EventUpdate, t)
	return t, nil
}

func (svc *service) SetSubjects(ctx context.Context, actor user.User, subjects []string) (Teacher, error) {
	t, err := svc.GetMine(ctx, actor)
	if err != nil {
		return Teacher{}, err
	}
	if err = svc.repo.SetSubjects(ctx, t.ID, subjects); err != nil {
		return Teacher{}, errors.Wrap(err, "setting subjects")
	}
	return svc.reload(ctx, t.ID)
}

func (svc *service) SetLevels(ctx context.Context, actor user.User, levels []string) (Teacher, error) {
	t, err := svc.GetMine(ctx, actor)
	if err != nil {
		return Teacher{}, err
	}
	if err = svc.repo.SetLevels(ctx, t.ID, levels); err != nil {
		return Teacher{}, errors.Wrap(err, "setting levels")
	}
	return svc.reload(ctx, t.ID)
}

func (svc *service) AddQualification(ctx context.Context, actor user.User, nq NewQualification) (Qualification, error) {
	t, err := svc.GetMine(ctx, actor)
	if err != nil {
		return Qualification{}, err
	}
	q := Qualification{
		ID:           uuid.NewString(),
		TeacherID:    t.ID,
		Title:        nq.Title,
		Institution:  nq.Institution,
		YearObtained: nq.YearObtained,
	}
	if q, err = svc.repo.CreateQualification(ctx, q); err != nil {
		return Qualification{}, errors.Wrap(err, "creating qualification")
	}
	return q, nil
}

func (svc *service) DeleteQualification(ctx context.Context, actor user.User, id string) error {
	t, err := svc.GetMine(ctx, actor)
	if err != nil {
		return err
	}
	q, err := svc.repo.GetQualification(ctx, id)
	if err != nil {
		return err
	}
	if q.TeacherID != t.ID {
		return core.ErrForbidden
	}
	return svc.repo.DeleteQualification(ctx, id)
}

// UpsertFromProfile creates the verified Teacher of p.UserID, or updates the existing one,
// replacing its subjects, levels and qualifications. It runs on the caller's executor,
// publishing is left to the caller once committed.
func (svc *service) UpsertFromProfile(ctx context.Context, p Profile, exec core.DBExecutor) (Teacher, error) {
	now := core.NowFunc()

	t, err := svc.repo.GetTeacherByUserID(ctx, p.UserID, exec)
	switch {
	case err == nil:
		t.Bio = p.Bio
		t.ExperienceYears = p.ExperienceYears
		t.HourlyRate = p.HourlyRate
		t.Education = p.Education
		t.City = p.City
		t.IsVerified = true
		t.UpdatedAt = now
		if t, err = svc.repo.UpdateTeacher(ctx, t, exec); err != nil {
			return Teacher{}, errors.Wrap(err, "updating teacher")
		}
	case core.IsNotFound(err):
		t = Teacher{
			ID:              uuid.NewString(),
			UserID:          p.UserID,
			Bio:             p.Bio,
			ExperienceYears: p.ExperienceYears,
			HourlyRate:      p.HourlyRate,
			Education:       p.Education,
			City:            p.City,
			IsVerified:      true,
			IsAvailable:     true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if t, err = svc.repo.CreateTeacher(ctx, t, exec); err != nil {
			return Teacher{}, errors.Wrap(err, "creating teacher")
		}
	default:
		return Teacher{}, errors.Wrap(err, "getting teacher")
	}

	if err = svc.repo.SetSubjects(ctx, t.ID, core.CleanStrings(p.Subjects), exec); err != nil {
		return Teacher{}, errors.Wrap(err, "setting subjects")
	}
	if err = svc.repo.SetLevels(ctx, t.ID, core.CleanStrings(p.Levels), exec); err != nil {
		return Teacher{}, errors.Wrap(err, "setting levels")
	}
	if err = svc.repo.DeleteQualifications(ctx, t.ID, exec); err != nil {
		return Teacher{}, errors.Wrap(err, "deleting qualifications")
	}
	for _, nq := range p.Qualifications {
		q := Qualification{
			ID:           uuid.NewString(),
			TeacherID:    t.ID,
			Title:        nq.Title,
			Institution:  nq.Institution,
			YearObtained: nq.YearObtained,
		}
		if _, err = svc.repo.CreateQualification(ctx, q, exec); err != nil {
			return Teacher{}, errors.Wrap(err, "creating qualification")
		}
	}

	return svc.repo.GetTeacher(ctx, t.ID, exec)
}

func (svc *service) RecomputeRating(ctx context.Context, teacherID string, exec ...core.DBExecutor) (Teacher, error) {
	if err := svc.repo.RecomputeRating(ctx, teacherID, exec...); err != nil {
		return Teacher{}, errors.Wrap(err, "recomputing rating")
	}
	return svc.repo.GetTeacher(ctx, teacherID, exec...)
}

func (svc *service) reload(ctx context.Context, id string) (Teacher, error) {
	t, err := svc.repo.GetTeacher(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	svc.publish(ctx, core.EventUpdate, t)
	return t, nil
}

func (svc *service) publish(ctx context.Context, typ string, t Teacher) {
	svc.pub.Publish(ctx, NewEvent(typ, t))
}

// NewEvent builds the realtime event of a teacher row change, sent to the teacher.
func NewEvent(typ string, t Teacher) core.Event {
	return core.NewEvent(table, typ, t, t.UserID)
}
