package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core/user"
)

const msgLoggedOut = "You have been logged out."

type loginPage struct {
	Login string
	Next  string
	Error string
}

func registerAuthRoutes(g *echo.Group, s *Server) {
	g.GET("/login", s.loginForm)
	g.POST("/login", s.login)
	g.GET("/logout", s.logout)
	g.POST("/logout", s.logout)
	g.POST("/token", s.token)
}

func (s *Server) loginForm(ctx echo.Context) error {
	if _, ok := getContextUser(ctx); ok {
		return ctx.Redirect(http.StatusSeeOther, safeNext(ctx.QueryParam("next")))
	}
	return s.render(ctx, http.StatusOK, "login", loginPage{Next: ctx.QueryParam("next")})
}

func (s *Server) login(ctx echo.Context) error {
	creds := user.Credentials{
		Login:    ctx.FormValue("login"),
		Password: ctx.FormValue("password"),
	}
	next := ctx.FormValue("next")

	usr, err := s.UserSvc.Authenticate(ctx.Request().Context(), creds)
	if err != nil {
		if err == user.ErrInvalidCredentials {
			return s.render(ctx, http.StatusUnauthorized, "login", loginPage{
				Login: creds.Login,
				Next:  next,
				Error: err.Error(),
			})
		}
		return errors.Wrap(err, "authenticating user")
	}

	if err = s.logIn(ctx, usr.ID); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, safeNext(next))
}

func (s *Server) logout(ctx echo.Context) error {
	if err := s.logOut(ctx, msgLoggedOut); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/courses")
}

// token exchanges credentials for a bearer token.
func (s *Server) token(ctx echo.Context) error {
	var creds user.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid credentials payload")
	}

	usr, err := s.UserSvc.Authenticate(ctx.Request().Context(), creds)
	if err != nil {
		if err == user.ErrInvalidCredentials {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
		}
		return errors.Wrap(err, "authenticating user")
	}

	tkn, err := GenerateToken(usr, s.Conf)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"token": tkn})
}
