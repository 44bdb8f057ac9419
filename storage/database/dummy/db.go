package dummydb

import (
	"context"
	"sync"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/category"
	"github.com/coursecatalog/backend/core/course"
	"github.com/coursecatalog/backend/core/image"
	"github.com/coursecatalog/backend/core/review"
	"github.com/coursecatalog/backend/core/user"
)

type (
	// DB is an in-memory stand-in for the Postgres database.
	DB struct {
		sync.RWMutex
		tables tables

		txMu sync.Mutex
	}

	tables struct {
		users      map[int]user.User
		categories map[int]category.Category
		images     map[string]image.Image
		courses    map[int]course.Course
		reviews    map[int]review.Review
		seq        map[string]int
	}
)

func Open() *DB {
	return &DB{tables: tables{
		users:      make(map[int]user.User),
		categories: make(map[int]category.Category),
		images:     make(map[string]image.Image),
		courses:    make(map[int]course.Course),
		reviews:    make(map[int]review.Review),
		seq:        make(map[string]int),
	}}
}

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int {
	db.tables.seq[table]++
	return db.tables.seq[table]
}

func (t tables) clone() tables {
	c := tables{
		users:      make(map[int]user.User, len(t.users)),
		categories: make(map[int]category.Category, len(t.categories)),
		images:     make(map[string]image.Image, len(t.images)),
		courses:    make(map[int]course.Course, len(t.courses)),
		reviews:    make(map[int]review.Review, len(t.reviews)),
		seq:        make(map[string]int, len(t.seq)),
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.categories {
		c.categories[k] = v
	}
	for k, v := range t.images {
		c.images[k] = v
	}
	for k, v := range t.courses {
		c.courses[k] = v
	}
	for k, v := range t.reviews {
		c.reviews[k] = v
	}
	for k, v := range t.seq {
		c.seq[k] = v
	}
	return c
}

// Transactor serialises units of work and restores the tables when one fails.
type Transactor struct {
	db *DB
}

var _ core.Transactor = (*Transactor)(nil) // interface compliance check

func NewTransactor(db *DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) RunInTx(ctx context.Context, fn core.TxFunc) (err error) {
	t.db.txMu.Lock()
	defer t.db.txMu.Unlock()

	if err = ctx.Err(); err != nil {
		return err
	}

	t.db.RLock()
	snapshot := t.db.tables.clone()
	t.db.RUnlock()

	rollback := func() {
		t.db.Lock()
		t.db.tables = snapshot
		t.db.Unlock()
	}
	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
		if err != nil {
			rollback()
		}
	}()
	return fn(nil)
}
