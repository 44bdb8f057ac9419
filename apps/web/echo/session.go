package echoweb

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
)

const (
	sessionName    = "session"
	sessionUserID  = "user_id"
	flashKey       = "_flash_"
	contextSessKey = "_session"
)

// flash levels, also used as CSS classes
const (
	flashSuccess = "success"
	flashWarning = "warning"
	flashDanger  = "danger"
)

var flashLevels = []string{flashSuccess, flashWarning, flashDanger}

type flash struct {
	Level   string
	Message string
}

func newSessionStore(conf *core.Config) sessions.Store {
	store := sessions.NewCookieStore([]byte(conf.SecretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(conf.Server.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   !conf.Debug && !conf.TestMode,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// session returns the request session, decoded once per request.
func (s *Server) session(ctx echo.Context) *sessions.Session {
	if sess, ok := ctx.Get(contextSessKey).(*sessions.Session); ok {
		return sess
	}
	// a cookie that fails to decode yields a fresh session
	sess, _ := s.SessionStore.Get(ctx.Request(), sessionName)
	ctx.Set(contextSessKey, sess)
	return sess
}

func (s *Server) saveSession(ctx echo.Context, sess *sessions.Session) error {
	if err := sess.Save(ctx.Request(), ctx.Response()); err != nil {
		return errors.Wrap(err, "saving session")
	}
	return nil
}

func (s *Server) addFlash(ctx echo.Context, level, msg string) error {
	sess := s.session(ctx)
	sess.AddFlash(msg, flashKey+level)
	return s.saveSession(ctx, sess)
}

// popFlashes returns and clears the pending flash messages.
func (s *Server) popFlashes(ctx echo.Context) []flash {
	sess := s.session(ctx)
	var flashes []flash
	for _, level := range flashLevels {
		for _, f := range sess.Flashes(flashKey + level) {
			if msg, ok := f.(string); ok {
				flashes = append(flashes, flash{Level: level, Message: msg})
			}
		}
	}
	if len(flashes) > 0 {
		_ = s.saveSession(ctx, sess)
	}
	return flashes
}

func (s *Server) logIn(ctx echo.Context, userID int) error {
	sess := s.session(ctx)
	sess.Values[sessionUserID] = userID
	return s.saveSession(ctx, sess)
}

// logOut forgets the user; msg, if not empty, is flashed on the next page.
func (s *Server) logOut(ctx echo.Context, msg string) error {
	sess := s.session(ctx)
	delete(sess.Values, sessionUserID)
	if msg != "" {
		sess.AddFlash(msg, flashKey+flashSuccess)
	}
	return s.saveSession(ctx, sess)
}

func (s *Server) sessionUserID(ctx echo.Context) (int, bool) {
	id, ok := s.session(ctx).Values[sessionUserID].(int)
	return id, ok && id > 0
}
