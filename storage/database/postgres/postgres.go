package postgres

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
)

// postgres error codes
const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// fullNameExpr renders users.FullName in SQL for the users table aliased as alias.
func fullNameExpr(alias string) string {
	return "TRIM(CONCAT_WS(' ', " + alias + ".last_name, " + alias + ".first_name, " + alias + ".middle_name))"
}

type repository struct {
	exec core.DBExecutor
}

func (repo repository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

func get(ctx context.Context, exec core.DBExecutor, dest interface{}, query sq.Sqlizer) error {
	q, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.GetContext(ctx, exec, dest, q, args...)
}

func selectAll(ctx context.Context, exec core.DBExecutor, dest interface{}, query sq.Sqlizer) error {
	q, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.SelectContext(ctx, exec, dest, q, args...)
}

func execute(ctx context.Context, exec core.DBExecutor, query sq.Sqlizer) (int64, error) {
	q, args, err := query.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := exec.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// constraintViolation returns the name of the violated constraint when err is a postgres error with one of codes.
func constraintViolation(err error, codes ...string) (string, bool) {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	if !ok {
		return "", false
	}
	for _, code := range codes {
		if string(pqErr.Code) == code {
			return pqErr.Constraint, true
		}
	}
	return "", false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern is a LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
