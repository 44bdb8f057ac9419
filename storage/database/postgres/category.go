package postgres

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/category"
)

type categoryRepository struct {
	repository
}

var _ category.Repository = (*categoryRepository)(nil) // interface compliance check

func NewCategoryRepository(exec core.DBExecutor) *categoryRepository {
	return &categoryRepository{repository{exec: exec}}
}

func (repo categoryRepository) CreateCategory(ctx context.Context, cat category.Category, exec ...core.DBExecutor) (category.Category, error) {
	q, args, err := psql.Insert("categories").
		Columns("name", "parent_id").
		Values(cat.Name, cat.ParentID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return category.Category{}, errors.Wrap(err, "building query")
	}
	if err = repo.getExec(exec).QueryRowxContext(ctx, q, args...).Scan(&cat.ID); err != nil {
		if _, ok := constraintViolation(err, foreignKeyViolation); ok {
			return category.Category{}, category.ErrNotFound
		}
		return category.Category{}, errors.Wrap(err, "inserting category")
	}
	return cat, nil
}

func (repo categoryRepository) QueryAllCategories(ctx context.Context, exec ...core.DBExecutor) ([]category.Category, error) {
	var cats []category.Category
	query := psql.Select("id", "name", "parent_id").From("categories").OrderBy("id ASC")
	if err := selectAll(ctx, repo.getExec(exec), &cats, query); err != nil {
		return nil, errors.Wrap(err, "selecting categories")
	}
	return cats, nil
}

func (repo categoryRepository) GetCategoryByID(ctx context.Context, id int, exec ...core.DBExecutor) (category.Category, error) {
	var cat category.Category
	query := psql.Select("id", "name", "parent_id").From("categories").Where(sq.Eq{"id": id})
	if err := get(ctx, repo.getExec(exec), &cat, query); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return category.Category{}, category.ErrNotFound
		}
		return category.Category{}, errors.Wrap(err, "selecting category")
	}
	return cat, nil
}
