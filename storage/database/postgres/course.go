package postgres

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/course"
)

type courseRepository struct {
	repository
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{repository{exec: exec}}
}

func (repo courseRepository) selectCourses() sq.SelectBuilder {
	return psql.Select(
		"c.id", "c.name", "c.short_desc", "c.full_desc", "c.rating_sum", "c.rating_num",
		"c.category_id", "c.author_id", "c.background_image_id", "c.created_at",
		"cat.name AS category_name", fullNameExpr("u")+" AS author_name",
	).
		From("courses c").
		Join("categories cat ON cat.id = c.category_id").
		Join("users u ON u.id = c.author_id")
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	if crs.CreatedAt.IsZero() {
		crs.CreatedAt = time.Now().UTC()
	}
	q, args, err := psql.Insert("courses").
		Columns("name", "short_desc", "full_desc", "category_id", "author_id", "background_image_id", "created_at").
		Values(crs.Name, crs.ShortDesc, crs.FullDesc, crs.CategoryID, crs.AuthorID, crs.BackgroundImageID, crs.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return course.Course{}, errors.Wrap(err, "building query")
	}

	ex := repo.getExec(exec)
	if err = ex.QueryRowxContext(ctx, q, args...).Scan(&crs.ID); err != nil {
		if constraint, ok := constraintViolation(err, foreignKeyViolation); ok {
			switch constraint {
			case "fk_courses_category_id_categories":
				return course.Course{}, course.ErrCategoryNotFound
			case "fk_courses_author_id_users":
				return course.Course{}, course.ErrAuthorNotFound
			default:
				return course.Course{}, core.ErrDataIntegrity
			}
		}
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return repo.GetCourseByID(ctx, crs.ID, ex)
}

// filter applies the QueryFilter conditions to b.
func (repo courseRepository) filter(b sq.SelectBuilder, filter course.QueryFilter) sq.SelectBuilder {
	if filter.Name != "" {
		b = b.Where(sq.ILike{"c.name": containsPattern(filter.Name)})
	}
	if ids := filter.Categories(); len(ids) > 0 {
		b = b.Where(sq.Eq{"c.category_id": ids})
	}
	return b
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter, page core.Pagination, exec ...core.DBExecutor) ([]course.Course, int, error) {
	ex := repo.getExec(exec)

	var total int
	count := repo.filter(psql.Select("COUNT(*)").From("courses c"), filter)
	if err := get(ctx, ex, &total, count); err != nil {
		return nil, 0, errors.Wrap(err, "counting courses")
	}

	courses := make([]course.Course, 0, page.Limit())
	query := repo.filter(repo.selectCourses(), filter).
		OrderBy("c.id ASC").
		Limit(uint64(page.Limit())).
		Offset(uint64(page.Offset()))
	if err := selectAll(ctx, ex, &courses, query); err != nil {
		return nil, 0, errors.Wrap(err, "selecting courses")
	}
	return courses, total, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id int, exec ...core.DBExecutor) (course.Course, error) {
	var crs course.Course
	if err := get(ctx, repo.getExec(exec), &crs, repo.selectCourses().Where(sq.Eq{"c.id": id})); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return crs, nil
}

func (repo courseRepository) IncrementRating(ctx context.Context, id, rating int, exec ...core.DBExecutor) error {
	query := psql.Update("courses").
		Set("rating_sum", sq.Expr("rating_sum + ?", rating)).
		Set("rating_num", sq.Expr("rating_num + 1")).
		Where(sq.Eq{"id": id})
	n, err := execute(ctx, repo.getExec(exec), query)
	if err != nil {
		return errors.Wrap(err, "incrementing course rating")
	}
	if n == 0 {
		return course.ErrNotFound
	}
	return nil
}
