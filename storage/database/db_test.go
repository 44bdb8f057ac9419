package database

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursecatalog/backend/core"
)

func newMockTransactor(t *testing.T) (*Transactor, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewTransactor(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestTransactor_RunInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		tx, mock := newMockTransactor(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE courses").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tx.RunInTx(ctx, func(exec core.DBExecutor) error {
			_, err := exec.ExecContext(ctx, "UPDATE courses SET rating_num = rating_num + 1")
			return err
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		tx, mock := newMockTransactor(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		errBoom := errors.New("boom")
		err := tx.RunInTx(ctx, func(exec core.DBExecutor) error { return errBoom })
		assert.Equal(t, errBoom, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		tx, mock := newMockTransactor(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = tx.RunInTx(ctx, func(exec core.DBExecutor) error { panic("boom") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		tx, mock := newMockTransactor(t)
		mock.ExpectBegin().WillReturnError(errors.New("no conn"))

		called := false
		err := tx.RunInTx(ctx, func(exec core.DBExecutor) error { called = true; return nil })
		assert.Error(t, err)
		assert.False(t, called)
	})
}

func TestDSN(t *testing.T) {
	conf := &core.Config{Database: core.DatabaseConfig{
		Engine:        "postgres",
		Host:          "db",
		Port:          "5432",
		Name:          "catalog",
		User:          "app",
		Password:      "secret",
		AdminUser:     "postgres",
		AdminPassword: "root",
		DisableTLS:    true,
	}}

	u, err := url.Parse(dsn(conf.Database.Name, false, conf))
	require.NoError(t, err)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/catalog", u.Path)
	assert.Equal(t, "app", u.User.Username())
	assert.Equal(t, "disable", u.Query().Get("sslmode"))

	u, err = url.Parse(dsn("postgres", true, conf))
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.User.Username())
	pwd, _ := u.User.Password()
	assert.Equal(t, "root", pwd)
}
