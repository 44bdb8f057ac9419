package echoweb

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/user"
)

const (
	contextUserKey = "user"
	bearerPrefix   = "Bearer "
	loginPath      = "/auth/login"
)

var errInvalidToken = errors.New("invalid token")

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Login string `json:"login,omitempty"`
}

func GetUserClaims(usr user.User, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Login: usr.Login,
	}
}

// GenerateToken generates a signed JWT token string for usr.
func GenerateToken(usr user.User, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, GetUserClaims(usr, conf))
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(tokenStr string, conf *core.Config) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errInvalidToken
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// loadUserMiddleware puts the authenticated user, if any, in the context.
// A bearer token takes precedence over the session cookie.
func (s *Server) loadUserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var userID int
		if auth := ctx.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, bearerPrefix) {
			claims, err := parseToken(strings.TrimPrefix(auth, bearerPrefix), s.Conf)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			if userID, err = strconv.Atoi(claims.Subject); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, errInvalidToken.Error())
			}
		} else if id, ok := s.sessionUserID(ctx); ok {
			userID = id
		}

		if userID > 0 {
			usr, err := s.UserSvc.GetByID(ctx.Request().Context(), userID)
			switch err {
			case nil:
				ctx.Set(contextUserKey, usr)
			case user.ErrNotFound:
				// stale session
			default:
				return errors.Wrap(err, "loading context user")
			}
		}
		return next(ctx)
	}
}

func getContextUser(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	return usr, ok
}

// loginRequired redirects anonymous users to the login page.
func loginRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, ok := getContextUser(ctx); ok {
			return next(ctx)
		}
		return ctx.Redirect(http.StatusSeeOther, loginPath+"?next="+url.QueryEscape(ctx.Request().URL.RequestURI()))
	}
}

// safeNext only allows local redirects.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/courses"
	}
	return next
}
