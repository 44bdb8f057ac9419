package user

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrLoginExists        = errors.New("a user with this login already exists")
	ErrInvalidCredentials = errors.New("invalid login or password")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		QueryAllUsers(ctx context.Context, exec ...core.DBExecutor) ([]User, error)
		GetUserByID(ctx context.Context, id int, exec ...core.DBExecutor) (User, error)
		GetUserByLogin(ctx context.Context, login string, exec ...core.DBExecutor) (User, error)
		SetUserPassword(ctx context.Context, id int, hash []byte, exec ...core.DBExecutor) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, err
	}
	usr := User{
		FirstName:  nu.FirstName,
		LastName:   nu.LastName,
		MiddleName: nu.MiddleName,
		Login:      nu.Login,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err == ErrLoginExists {
		return User{}, core.NewValidationError(err, core.FieldError{Field: "login", Error: err.Error()})
	}
	return usr, err
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByLogin(ctx context.Context, login string) (User, error) {
	return svc.repo.GetUserByLogin(ctx, core.CleanString(login, true /* lower */))
}

// Authenticate returns the User matching creds, or ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	usr, err := svc.GetByLogin(ctx, creds.Login)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) ResetPassword(ctx context.Context, login string, rp ResetUserPassword) error {
	usr, err := svc.GetByLogin(ctx, login)
	if err != nil {
		return err
	}
	rp.usr = usr
	if err = rp.Validate(svc.validate); err != nil {
		return err
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.SetUserPassword(ctx, usr.ID, usr.PasswordHash)
}
