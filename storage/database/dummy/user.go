package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User, _ ...core.DBExecutor) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.db.tables.users {
		if u.Login == usr.Login {
			return user.User{}, user.ErrLoginExists
		}
	}
	usr.ID = repo.db.nextID("users")
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = time.Now().UTC()
	}
	repo.db.tables.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(_ context.Context, _ ...core.DBExecutor) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0, len(repo.db.tables.users))
	for _, u := range repo.db.tables.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id int, _ ...core.DBExecutor) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.tables.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByLogin(_ context.Context, login string, _ ...core.DBExecutor) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.tables.users {
		if usr.Login == login {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) SetUserPassword(_ context.Context, id int, hash []byte, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.tables.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.PasswordHash = hash
	repo.db.tables.users[id] = usr
	return nil
}
