package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/tutorly/tutorly/apps/api/echo"
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

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Realtime holds the local hub and, when Redis is configured, the broker relaying events between instances.
type Realtime struct {
	Hub    *realtime.Hub
	Broker *realtime.RedisBroker
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB) {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB, conf.Database.Engine); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridAPIKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newMeetingService(conf *core.Config, logger core.Logger) core.MeetingService {
	if conf.MeetCredentials == "" {
		return meetingsvc.NewConsoleService(conf, logger)
	}
	svc, err := meetingsvc.NewGoogleMeetService(context.Background(), conf.MeetCredentials)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up google meet: %v", err), err)
	}
	return svc
}

func newRealtime(conf *core.Config, logger core.Logger) Realtime {
	rt := Realtime{Hub: realtime.NewHub(logger)}
	if conf.Redis.Address != "" {
		rt.Broker = realtime.NewRedisBroker(realtime.NewRedisClient(conf), conf.Redis.Channel, rt.Hub, logger)
	}
	return rt
}

func newHub(rt Realtime) *realtime.Hub {
	return rt.Hub
}

func newPublisher(rt Realtime) core.Publisher {
	if rt.Broker != nil {
		return rt.Broker
	}
	return rt.Hub
}

func newValidator() *validator.Validate {
	return validator.New()
}

func newTranslator() ut.Translator {
	return core.NewTranslator()
}

// New returns a new dependency injection dig.Container
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(newMeetingService))
	must(c.Provide(newRealtime))
	must(c.Provide(newHub))
	must(c.Provide(newPublisher))
	must(c.Provide(newValidator))
	must(c.Provide(newTranslator))

	// repositories
	must(c.Provide(sqlxrepos.NewUserRepository))
	must(c.Provide(sqlxrepos.NewTeacherRepository))
	must(c.Provide(sqlxrepos.NewStudentRepository))
	must(c.Provide(sqlxrepos.NewJobRepository))
	must(c.Provide(sqlxrepos.NewApplicationRepository))
	must(c.Provide(sqlxrepos.NewContractRepository))
	must(c.Provide(sqlxrepos.NewClassRepository))
	must(c.Provide(sqlxrepos.NewPaymentRepository))
	must(c.Provide(sqlxrepos.NewReviewRepository))
	must(c.Provide(sqlxrepos.NewMessageRepository))
	must(c.Provide(sqlxrepos.NewTeacherAppRepository))
	must(c.Provide(sqlxrepos.NewContactRepository))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(teacher.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(job.NewService))
	must(c.Provide(contract.NewService))
	must(c.Provide(application.NewService))
	must(c.Provide(class.NewService))
	must(c.Provide(payment.NewService))
	must(c.Provide(review.NewService))
	must(c.Provide(message.NewService))
	must(c.Provide(teacherapp.NewService))
	must(c.Provide(contact.NewService))

	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
