package core

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx,
	// so repositories run the same queries in and out of a transaction.
	DBExecutor interface {
		sqlx.ExtContext
	}

	// TxFunc is the unit of work run by a Transactor.
	TxFunc func(exec DBExecutor) error

	// Transactor runs a TxFunc inside a single transaction.
	// The transaction is committed when fn returns nil and rolled back on error or panic;
	// it is released on every exit path.
	Transactor interface {
		RunInTx(ctx context.Context, fn TxFunc) error
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
