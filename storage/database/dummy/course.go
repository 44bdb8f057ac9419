package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

// join must be called with the lock held.
func (repo *courseRepository) join(crs course.Course) course.Course {
	crs.CategoryName = repo.db.tables.categories[crs.CategoryID].Name
	crs.AuthorName = repo.db.tables.users[crs.AuthorID].FullName()
	return crs
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course, _ ...core.DBExecutor) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.tables.categories[crs.CategoryID]; !ok {
		return course.Course{}, course.ErrCategoryNotFound
	}
	if _, ok := repo.db.tables.users[crs.AuthorID]; !ok {
		return course.Course{}, course.ErrAuthorNotFound
	}
	if crs.BackgroundImageID != nil {
		if _, ok := repo.db.tables.images[*crs.BackgroundImageID]; !ok {
			return course.Course{}, core.ErrDataIntegrity
		}
	}

	crs.ID = repo.db.nextID("courses")
	crs.RatingSum, crs.RatingNum = 0, 0
	if crs.CreatedAt.IsZero() {
		crs.CreatedAt = time.Now().UTC()
	}
	repo.db.tables.courses[crs.ID] = crs
	return repo.join(crs), nil
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter, page core.Pagination, _ ...core.DBExecutor) ([]course.Course, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	name := strings.ToLower(filter.Name)
	catIDs := make(map[int]bool)
	for _, id := range filter.Categories() {
		catIDs[id] = true
	}

	matches := make([]course.Course, 0)
	for _, crs := range repo.db.tables.courses {
		if name != "" && !strings.Contains(strings.ToLower(crs.Name), name) {
			continue
		}
		if len(catIDs) > 0 && !catIDs[crs.CategoryID] {
			continue
		}
		matches = append(matches, repo.join(crs))
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return paginate(matches, page), len(matches), nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id int, _ ...core.DBExecutor) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.tables.courses[id]; ok {
		return repo.join(crs), nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) IncrementRating(_ context.Context, id, rating int, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs, ok := repo.db.tables.courses[id]
	if !ok {
		return course.ErrNotFound
	}
	crs.RatingSum += rating
	crs.RatingNum++
	repo.db.tables.courses[id] = crs
	return nil
}

func paginate[T any](items []T, page core.Pagination) []T {
	start := page.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + page.Limit()
	if end < start || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
