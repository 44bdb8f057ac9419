package echoweb

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/category"
	"github.com/coursecatalog/backend/core/course"
	"github.com/coursecatalog/backend/core/image"
	"github.com/coursecatalog/backend/core/review"
	"github.com/coursecatalog/backend/core/user"
	appfs "github.com/coursecatalog/backend/fs"
	"github.com/coursecatalog/backend/services/metrics"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Metrics        *metrics.Metrics
		SessionStore   sessions.Store
		DisableReqLogs bool

		UserSvc     *user.Service
		CategorySvc *category.Service
		CourseSvc   *course.Service
		ReviewSvc   *review.Service
		ImageSvc    *image.Service

		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) (*Server, error) {
	s := &Server{
		ServerDeps: deps,
		app:        echo.New(),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	if s.SessionStore == nil {
		s.SessionStore = newSessionStore(deps.Conf)
	}
	if s.Metrics == nil {
		s.Metrics = metrics.New()
	}

	renderer, err := NewRenderer(appfs.FS)
	if err != nil {
		return nil, errors.Wrap(err, "parsing templates")
	}
	s.app.Renderer = renderer

	s.setup()
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	return s, nil
}

func (s *Server) setup() {
	debug := s.Conf.Debug

	s.app.HideBanner = true
	s.app.Debug = debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.Metrics.Middleware())
	s.app.Use(s.loadUserMiddleware)

	s.app.GET("/", home)

	registerAuthRoutes(s.app.Group("/auth"), s)
	registerCourseRoutes(s.app.Group("/courses"), s)
	registerImageRoutes(s.app.Group("/images"), s)
}

// Start blocks until the server stops; failures are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
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

func home(ctx echo.Context) error {
	return ctx.Redirect(http.StatusFound, "/courses")
}
