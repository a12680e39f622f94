package testutil

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/application"
	"github.com/tutorly/tutorly/core/class"
	"github.com/tutorly/tutorly/core/contact"
	"github.com/tutorly/tutorly/core/contract"
	"github.com/tutorly/tutorly/core/job"
	"github.com/tutorly/tutorly/core/message"
	"github.com/tutorly/tutorly/core/payment"
	"github.com/tutorly/tutorly/core/review"
	"github.com/tutorly/tutorly/core/student"
	"github.com/tutorly/tutorly/core/teacher"
	"github.com/tutorly/tutorly/core/teacherapp"
	"github.com/tutorly/tutorly/core/user"
	emailsvc "github.com/tutorly/tutorly/services/email"
	logsvc "github.com/tutorly/tutorly/services/logger"
	meetingsvc "github.com/tutorly/tutorly/services/meeting"
	"github.com/tutorly/tutorly/services/realtime"
	"github.com/tutorly/tutorly/storage/database"
	"github.com/tutorly/tutorly/storage/database/sqlxrepos"
)

// PrepareDB opens a migrated SQLite database living in the test's temp dir.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	database.SilenceMigrations()
	if err = database.Migrate(db.DB, database.EngineSQLite); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// Env is the full service graph of the app, backed by a fresh database.
type Env struct {
	Conf       *core.Config
	Logger     core.Logger
	DB         *sqlx.DB
	Validate   *validator.Validate
	Translator ut.Translator
	Mail       *emailsvc.ConsoleServiceMock
	Hub        *realtime.Hub

	UserSvc        user.Service
	TeacherSvc     teacher.Service
	StudentSvc     student.Service
	JobSvc         job.Service
	ApplicationSvc application.Service
	ContractSvc    contract.Service
	ClassSvc       class.Service
	PaymentSvc     payment.Service
	ReviewSvc      review.Service
	MessageSvc     message.Service
	TeacherAppSvc  teacherapp.Service
	ContactSvc     contact.Service
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	conf := core.NewTestConfig()
	logger := NewLogger(conf)
	db := PrepareDB(t)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	job.InitValidators(validate, translator)
	payment.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, logger)

	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	meetSvc := meetingsvc.NewConsoleService(conf, logger)
	hub := realtime.NewHub(logger)

	env := &Env{
		Conf:       conf,
		Logger:     logger,
		DB:         db,
		Validate:   validate,
		Translator: translator,
		Mail:       mailSvc,
		Hub:        hub,
	}
	env.UserSvc = user.NewService(sqlxrepos.NewUserRepository(db), db, hub)
	env.TeacherSvc = teacher.NewService(sqlxrepos.NewTeacherRepository(db), hub)
	env.StudentSvc = student.NewService(sqlxrepos.NewStudentRepository(db), hub)
	env.JobSvc = job.NewService(sqlxrepos.NewJobRepository(db), env.StudentSvc, hub)
	env.ContractSvc = contract.NewService(sqlxrepos.NewContractRepository(db), hub)
	env.ApplicationSvc = application.NewService(
		sqlxrepos.NewApplicationRepository(db), db, env.UserSvc, env.TeacherSvc, env.JobSvc, env.ContractSvc, mailSvc, logger, hub,
	)
	env.ClassSvc = class.NewService(sqlxrepos.NewClassRepository(db), env.ContractSvc, meetSvc, hub)
	env.PaymentSvc = payment.NewService(sqlxrepos.NewPaymentRepository(db), env.ContractSvc, env.ClassSvc, hub)
	env.ReviewSvc = review.NewService(sqlxrepos.NewReviewRepository(db), db, env.ContractSvc, env.TeacherSvc, hub)
	env.MessageSvc = message.NewService(sqlxrepos.NewMessageRepository(db), env.UserSvc, hub)
	env.TeacherAppSvc = teacherapp.NewService(sqlxrepos.NewTeacherAppRepository(db), db, env.TeacherSvc, meetSvc, mailSvc, hub)
	env.ContactSvc = contact.NewService(conf, sqlxrepos.NewContactRepository(db), mailSvc, hub)
	return env
}

// CreateUser creates an active user of role, named after it unless name is given.
func (env *Env) CreateUser(t *testing.T, role string, name ...string) user.User {
	t.Helper()

	id := uuid.NewString()
	fullName := role + " " + id[:8]
	if len(name) > 0 {
		fullName = name[0]
	}
	nu := user.NewUser{FullName: fullName, Role: role}
	if role == user.RoleAdmin {
		nu.Role = user.RoleParent
	}
	usr, err := env.UserSvc.Create(context.Background(), id, fmt.Sprintf("%s@tutorly.test", id), nu)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if role == user.RoleAdmin {
		if usr, err = env.UserSvc.Promote(context.Background(), usr.Email); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	return usr
}

// CreateTeacher creates a teacher user along with its verified Teacher.
func (env *Env) CreateTeacher(t *testing.T) (user.User, teacher.Teacher) {
	t.Helper()

	usr := env.CreateUser(t, user.RoleTeacher)
	var tchr teacher.Teacher
	err := core.RunInTx(context.Background(), env.DB, func(exec core.DBExecutor) error {
		var err error
		tchr, err = env.TeacherSvc.UpsertFromProfile(context.Background(), teacher.Profile{
			UserID:     usr.ID,
			Bio:        "Maths teacher",
			HourlyRate: 20,
			City:       "Kinshasa",
			Subjects:   []string{"Mathematics"},
			Levels:     []string{core.LevelPrimary},
		}, exec)
		return err
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return usr, tchr
}

func (env *Env) CreateJob(t *testing.T, parent user.User) job.Job {
	t.Helper()

	j, err := env.JobSvc.Create(context.Background(), parent, job.NewJob{
		Title:           "Maths tutor needed",
		Subject:         "Mathematics",
		Level:           core.LevelPrimary,
		Mode:            job.ModeOnline,
		SessionsPerWeek: 2,
		BudgetMin:       10,
		BudgetMax:       25,
	})
	if err != nil {
		t.Fatalf("CreateJob() failed: %v", err)
	}
	return j
}

func (env *Env) Apply(t *testing.T, tchr user.User, j job.Job) application.Application {
	t.Helper()

	app, err := env.ApplicationSvc.Apply(context.Background(), tchr, j.ID, application.NewApplication{ProposedRate: 20})
	if err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	return app
}

// CreateContract runs a job through to an ACTIVE contract between a new parent and a new teacher.
func (env *Env) CreateContract(t *testing.T) (parent, tchr user.User, c contract.Contract) {
	t.Helper()

	parent = env.CreateUser(t, user.RoleParent)
	tchr, _ = env.CreateTeacher(t)
	app := env.Apply(t, tchr, env.CreateJob(t, parent))

	c, err := env.ApplicationSvc.Accept(context.Background(), parent, app.ID, contract.Terms{StartDate: time.Now().UTC()})
	if err != nil {
		t.Fatalf("CreateContract() failed: %v", err)
	}
	return parent, tchr, c
}

// ValidationErr returns the cause of err when it is a validation error, nil otherwise.
func ValidationErr(err error) *core.ValidationError {
	vErr, _ := errors.Cause(err).(*core.ValidationError)
	return vErr
}
