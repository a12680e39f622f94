package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/dig"

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
	"github.com/tutorly/tutorly/services/realtime"
)

// ServerDeps are the services the API is built upon.
type ServerDeps struct {
	dig.In

	Validate   *validator.Validate
	Translator ut.Translator

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
	Hub            *realtime.Hub
}

type Server struct {
	conf   *core.Config
	logger core.Logger
	deps   ServerDeps
	app    *echo.Echo

	errors   chan error
	shutdown chan os.Signal
}

func NewServer(conf *core.Config, logger core.Logger, deps ServerDeps) *Server {
	s := &Server{
		conf:     conf,
		logger:   logger,
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: s.conf.Server.AllowOrigins}))
	s.app.Server.ReadTimeout = s.conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = s.conf.Server.WriteTimeout

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = s.conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	auth := authMiddleware(s.conf)
	profile := profileMiddleware(s.deps.UserSvc)

	realtime.SetAllowedOrigins(s.conf.Server.AllowOrigins)
	registerRealtimeAPI(v1, auth, profile, s.deps)
	registerContactAPI(v1, auth, profile, s.deps)
	registerProfileAPI(v1, auth, profile, s.deps)
	registerTeacherAPI(v1, auth, profile, s.deps)
	registerStudentAPI(v1, auth, profile, s.deps)
	registerJobAPI(v1, auth, profile, s.deps)
	registerApplicationAPI(v1, auth, profile, s.deps)
	registerContractAPI(v1, auth, profile, s.deps)
	registerPaymentAPI(v1, auth, profile, s.deps)
	registerReviewAPI(v1, auth, profile, s.deps)
	registerMessageAPI(v1, auth, profile, s.deps)
	registerTeacherAppAPI(v1, auth, profile, s.deps)
	registerAdminAPI(v1, auth, profile, s.deps)
}

// Start blocks until the server stops; its error is sent to Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
