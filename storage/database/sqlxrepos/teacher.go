package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/teacher"
)

var (
	teacherColumns = append(
		prefixed("t", []string{
			"id", "user_id", "bio", "experience_years", "hourly_rate", "education", "city",
			"is_verified", "is_available", "average_rating", "total_reviews", "created_at", "updated_at",
		}),
		"u.full_name", "u.avatar_url",
	)
	teacherFrom          = "teacher_profiles t JOIN user_profiles u ON u.id = t.user_id"
	qualificationColumns = []string{"id", "teacher_id", "title", "institution", "year_obtained"}
)

type teacherRepository struct {
	baseRepo
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db core.DB) teacher.Repository {
	return &teacherRepository{baseRepo{db: db}}
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	b := builder.Insert("teacher_profiles").SetMap(map[string]interface{}{
		"id":               t.ID,
		"user_id":          t.UserID,
		"bio":              t.Bio,
		"experience_years": t.ExperienceYears,
		"hourly_rate":      t.HourlyRate,
		"education":        t.Education,
		"city":             t.City,
		"is_verified":      t.IsVerified,
		"is_available":     t.IsAvailable,
		"average_rating":   t.AverageRating,
		"total_reviews":    t.TotalReviews,
		"created_at":       t.CreatedAt,
		"updated_at":       t.UpdatedAt,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return t, nil
}

func (repo *teacherRepository) getTeacher(ctx context.Context, where sq.Sqlizer, exec []core.DBExecutor) (teacher.Teacher, error) {
	ex := repo.getExec(exec)

	var t teacher.Teacher
	b := builder.Select(teacherColumns...).From(teacherFrom).Where(where)
	if err := get(ctx, ex, &t, b, teacher.ErrNotFound); err != nil {
		return teacher.Teacher{}, err
	}

	teachers := []teacher.Teacher{t}
	if err := repo.loadSubjectsAndLevels(ctx, ex, teachers); err != nil {
		return teacher.Teacher{}, err
	}
	t = teachers[0]

	t.Qualifications = make([]teacher.Qualification, 0)
	qb := builder.Select(qualificationColumns...).From("qualifications").
		Where(sq.Eq{"teacher_id": t.ID}).
		OrderBy("year_obtained DESC", "title")
	if err := selectRows(ctx, ex, &t.Qualifications, qb); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "selecting qualifications")
	}
	return t, nil
}

// loadSubjectsAndLevels fills the subjects and levels of teachers in place.
func (repo *teacherRepository) loadSubjectsAndLevels(ctx context.Context, exec core.DBExecutor, teachers []teacher.Teacher) error {
	if len(teachers) == 0 {
		return nil
	}
	ids := make([]string, 0, len(teachers))
	for _, t := range teachers {
		ids = append(ids, t.ID)
	}

	var subjects []struct {
		TeacherID string `db:"teacher_id"`
		Value     string `db:"subject"`
	}
	sb := builder.Select("teacher_id", "subject").From("teacher_subjects").
		Where(sq.Eq{"teacher_id": ids}).
		OrderBy("subject")
	if err := selectRows(ctx, exec, &subjects, sb); err != nil {
		return errors.Wrap(err, "selecting subjects")
	}

	var levels []struct {
		TeacherID string `db:"teacher_id"`
		Value     string `db:"level"`
	}
	lb := builder.Select("teacher_id", "level").From("teacher_levels").
		Where(sq.Eq{"teacher_id": ids}).
		OrderBy("level")
	if err := selectRows(ctx, exec, &levels, lb); err != nil {
		return errors.Wrap(err, "selecting levels")
	}

	idx := make(map[string]int, len(teachers))
	for i := range teachers {
		idx[teachers[i].ID] = i
		teachers[i].Subjects = make([]string, 0)
		teachers[i].Levels = make([]string, 0)
	}
	for _, s := range subjects {
		i := idx[s.TeacherID]
		teachers[i].Subjects = append(teachers[i].Subjects, s.Value)
	}
	for _, l := range levels {
		i := idx[l.TeacherID]
		teachers[i].Levels = append(teachers[i].Levels, l.Value)
	}
	return nil
}

func (repo *teacherRepository) GetTeacher(ctx context.Context, id string, exec ...core.DBExecutor) (teacher.Teacher, error) {
	if id == "" {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return repo.getTeacher(ctx, sq.Eq{"t.id": id}, exec)
}

func (repo *teacherRepository) GetTeacherByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (teacher.Teacher, error) {
	if userID == "" {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return repo.getTeacher(ctx, sq.Eq{"t.user_id": userID}, exec)
}

func (repo *teacherRepository) SearchTeachers(
	ctx context.Context,
	filter *teacher.QueryFilter,
	ordering []core.DBOrdering,
	page core.Page,
	exec ...core.DBExecutor,
) ([]teacher.Teacher, int, error) {
	ex := repo.getExec(exec)

	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		b = b.Where(sq.Eq{"t.is_verified": true, "u.is_active": true})
		if filter == nil {
			return b
		}
		if filter.Search != "" {
			b = b.Where(like(filter.Search, "u.full_name", "t.bio", "t.education"))
		}
		if filter.Subject != "" {
			b = b.Where(sq.Expr(
				"t.id IN (SELECT teacher_id FROM teacher_subjects WHERE LOWER(subject) = LOWER(?))",
				filter.Subject,
			))
		}
		if filter.Level != "" {
			b = b.Where(sq.Expr("t.id IN (SELECT teacher_id FROM teacher_levels WHERE level = ?)", filter.Level))
		}
		if filter.City != "" {
			b = b.Where(sq.Expr("LOWER(t.city) = LOWER(?)", filter.City))
		}
		if filter.MinRating != nil {
			b = b.Where(sq.GtOrEq{"t.average_rating": *filter.MinRating})
		}
		if filter.MaxRate != nil {
			b = b.Where(sq.LtOrEq{"t.hourly_rate": *filter.MaxRate})
		}
		if filter.Available != nil {
			b = b.Where(sq.Eq{"t.is_available": *filter.Available})
		}
		return b
	}

	teachers := make([]teacher.Teacher, 0)
	total, err := paginate(ctx, ex, &teachers, teacherFrom, teacherColumns, where, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "searching teachers")
	}
	if err = repo.loadSubjectsAndLevels(ctx, ex, teachers); err != nil {
		return nil, 0, err
	}
	return teachers, total, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	b := builder.Update("teacher_profiles").SetMap(map[string]interface{}{
		"bio":              t.Bio,
		"experience_years": t.ExperienceYears,
		"hourly_rate":      t.HourlyRate,
		"education":        t.Education,
		"city":             t.City,
		"is_verified":      t.IsVerified,
		"is_available":     t.IsAvailable,
		"updated_at":       t.UpdatedAt,
	}).Where(sq.Eq{"id": t.ID})
	if err := executeOne(ctx, repo.getExec(exec), b, teacher.ErrNotFound); err != nil {
		return teacher.Teacher{}, err
	}
	return t, nil
}

// replaceSet replaces the (teacher_id, column) rows of table with values.
func (repo *teacherRepository) replaceSet(ctx context.Context, table, column, teacherID string, values []string, exec []core.DBExecutor) error {
	ex := repo.getExec(exec)
	if _, err := execute(ctx, ex, builder.Delete(table).Where(sq.Eq{"teacher_id": teacherID})); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	b := builder.Insert(table).Columns("teacher_id", column)
	for _, v := range values {
		b = b.Values(teacherID, v)
	}
	_, err := execute(ctx, ex, b)
	return err
}

func (repo *teacherRepository) SetSubjects(ctx context.Context, teacherID string, subjects []string, exec ...core.DBExecutor) error {
	return repo.replaceSet(ctx, "teacher_subjects", "subject", teacherID, subjects, exec)
}

func (repo *teacherRepository) SetLevels(ctx context.Context, teacherID string, levels []string, exec ...core.DBExecutor) error {
	return repo.replaceSet(ctx, "teacher_levels", "level", teacherID, levels, exec)
}

func (repo *teacherRepository) RecomputeRating(ctx context.Context, teacherID string, exec ...core.DBExecutor) error {
	b := builder.Update("teacher_profiles").
		Set("average_rating", sq.Expr("(SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE teacher_id = ?)", teacherID)).
		Set("total_reviews", sq.Expr("(SELECT COUNT(*) FROM reviews WHERE teacher_id = ?)", teacherID)).
		Set("updated_at", core.NowFunc()).
		Where(sq.Eq{"id": teacherID})
	return executeOne(ctx, repo.getExec(exec), b, teacher.ErrNotFound)
}

func (repo *teacherRepository) CreateQualification(ctx context.Context, q teacher.Qualification, exec ...core.DBExecutor) (teacher.Qualification, error) {
	b := builder.Insert("qualifications").SetMap(map[string]interface{}{
		"id":            q.ID,
		"teacher_id":    q.TeacherID,
		"title":         q.Title,
		"institution":   q.Institution,
		"year_obtained": q.YearObtained,
	})
	if _, err := execute(ctx, repo.getExec(exec), b); err != nil {
		return teacher.Qualification{}, errors.Wrap(err, "inserting qualification")
	}
	return q, nil
}

func (repo *teacherRepository) GetQualification(ctx context.Context, id string, exec ...core.DBExecutor) (teacher.Qualification, error) {
	var q teacher.Qualification
	b := builder.Select(qualificationColumns...).From("qualifications").Where(sq.Eq{"id": id})
	err := get(ctx, repo.getExec(exec), &q, b, teacher.ErrQualificationNotFound)
	return q, err
}

func (repo *teacherRepository) DeleteQualification(ctx context.Context, id string, exec ...core.DBExecutor) error {
	return executeOne(ctx, repo.getExec(exec), builder.Delete("qualifications").Where(sq.Eq{"id": id}), teacher.ErrQualificationNotFound)
}

func (repo *teacherRepository) DeleteQualifications(ctx context.Context, teacherID string, exec ...core.DBExecutor) error {
	_, err := execute(ctx, repo.getExec(exec), builder.Delete("qualifications").Where(sq.Eq{"teacher_id": teacherID}))
	return err
}
