package postgres

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/user"
)

var userColumns = []string{
	"id", "first_name", "last_name", "COALESCE(middle_name, '') AS middle_name", "login", "password_hash", "created_at",
}

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{repository{exec: exec}}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = time.Now().UTC()
	}
	q, args, err := psql.Insert("users").
		Columns("first_name", "last_name", "middle_name", "login", "password_hash", "created_at").
		Values(usr.FirstName, usr.LastName, nullString(usr.MiddleName), usr.Login, usr.PasswordHash, usr.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}

	if err = repo.getExec(exec).QueryRowxContext(ctx, q, args...).Scan(&usr.ID); err != nil {
		if constraint, ok := constraintViolation(err, uniqueViolation); ok && constraint == "uq_users_login" {
			return user.User{}, user.ErrLoginExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context, exec ...core.DBExecutor) ([]user.User, error) {
	var users []user.User
	query := psql.Select(userColumns...).From("users").OrderBy("id ASC")
	if err := selectAll(ctx, repo.getExec(exec), &users, query); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	return users, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	query := psql.Select(userColumns...).From("users").Where(sq.Eq{"id": id})
	if err := get(ctx, repo.getExec(exec), &usr, query); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "selecting user by id")
	}
	return usr, nil
}

func (repo userRepository) GetUserByLogin(ctx context.Context, login string, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	query := psql.Select(userColumns...).From("users").Where(sq.Eq{"login": login})
	if err := get(ctx, repo.getExec(exec), &usr, query); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "selecting user by login")
	}
	return usr, nil
}

func (repo userRepository) SetUserPassword(ctx context.Context, id int, hash []byte, exec ...core.DBExecutor) error {
	n, err := execute(ctx, repo.getExec(exec), psql.Update("users").Set("password_hash", hash).Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "updating user password")
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}
