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
	"github.com/pkg/errors"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/academy"
	"github.com/trezcool/coachdesk/core/admin"
	"github.com/trezcool/coachdesk/core/session"
	"github.com/trezcool/coachdesk/core/sms"
	"github.com/trezcool/coachdesk/services/metrics"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		AdminSvc   admin.Service
		Codec      *session.Codec
		Revoker    session.Revoker
		AcademySvc *academy.Service
		SMSSvc     *sms.Service
		Dispatcher *sms.Dispatcher
		Metrics    *metrics.Metrics

		DisableReqLogs bool
	}

	Server struct {
		ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	if deps.Revoker == nil {
		deps.Revoker = session.NewMemoryRevoker()
	}
	s := &Server{
		ServerDeps: deps,
		app:        echo.New(),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.Conf.Debug && !s.Conf.TestMode
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(requestID())
	if !s.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "0",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "no-referrer",
	}))
	s.app.Use(middleware.BodyLimit("1M"))
	if s.Metrics != nil {
		s.app.Use(s.Metrics.EchoMiddleware())
	}

	gate := newGate(s.Conf, s.Codec, s.Revoker, s.Logger)

	// public
	s.app.GET("/health", health)
	if s.Metrics != nil {
		s.app.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}
	registerPages(s.app, gate)

	api := s.app.Group("/api")
	registerAuthAPI(api, gate, s.ServerDeps)

	// protected
	authed := api.Group("", gate.api)
	registerSMSAPI(authed.Group("/sms"), s.ServerDeps)
	registerAcademyAPI(authed, s.ServerDeps)
}

// Start blocks until the server stops; a failure is reported on Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.Conf.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
