package dummydb

import (
	"context"
	"sort"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/category"
)

type categoryRepository struct {
	db *DB
}

var _ category.Repository = (*categoryRepository)(nil) // interface compliance check

func NewCategoryRepository(db *DB) category.Repository {
	return &categoryRepository{db: db}
}

func (repo *categoryRepository) CreateCategory(_ context.Context, cat category.Category, _ ...core.DBExecutor) (category.Category, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if cat.ParentID != nil {
		if _, ok := repo.db.tables.categories[*cat.ParentID]; !ok {
			return category.Category{}, category.ErrNotFound
		}
	}
	cat.ID = repo.db.nextID("categories")
	repo.db.tables.categories[cat.ID] = cat
	return cat, nil
}

func (repo *categoryRepository) QueryAllCategories(_ context.Context, _ ...core.DBExecutor) ([]category.Category, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cats := make([]category.Category, 0, len(repo.db.tables.categories))
	for _, c := range repo.db.tables.categories {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].ID < cats[j].ID })
	return cats, nil
}

func (repo *categoryRepository) GetCategoryByID(_ context.Context, id int, _ ...core.DBExecutor) (category.Category, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cat, ok := repo.db.tables.categories[id]; ok {
		return cat, nil
	}
	return category.Category{}, category.ErrNotFound
}
