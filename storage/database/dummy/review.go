package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/course"
	"github.com/coursecatalog/backend/core/review"
)

type reviewRepository struct {
	db *DB
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db}
}

func (repo *reviewRepository) join(rev review.Review) review.Review {
	rev.UserFullName = repo.db.tables.users[rev.UserID].FullName()
	return rev
}

func (repo *reviewRepository) CreateReview(_ context.Context, rev review.Review, _ ...core.DBExecutor) (review.Review, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.tables.courses[rev.CourseID]; !ok {
		return review.Review{}, course.ErrNotFound
	}
	if _, ok := repo.db.tables.users[rev.UserID]; !ok {
		return review.Review{}, core.ErrDataIntegrity
	}
	for _, r := range repo.db.tables.reviews {
		if r.CourseID == rev.CourseID && r.UserID == rev.UserID {
			return review.Review{}, review.ErrAlreadyReviewed
		}
	}

	rev.ID = repo.db.nextID("reviews")
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now().UTC()
	}
	repo.db.tables.reviews[rev.ID] = rev
	return repo.join(rev), nil
}

func (repo *reviewRepository) QueryCourseReviews(_ context.Context, courseID int, ordering []core.DBOrdering, page core.Pagination, _ ...core.DBExecutor) ([]review.Review, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reviews := make([]review.Review, 0)
	for _, r := range repo.db.tables.reviews {
		if r.CourseID == courseID {
			reviews = append(reviews, repo.join(r))
		}
	}
	sort.SliceStable(reviews, func(i, j int) bool { return reviewLess(reviews[i], reviews[j], ordering) })
	return paginate(reviews, page), len(reviews), nil
}

func (repo *reviewRepository) GetUserReview(_ context.Context, courseID, userID int, _ ...core.DBExecutor) (review.Review, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, r := range repo.db.tables.reviews {
		if r.CourseID == courseID && r.UserID == userID {
			return repo.join(r), nil
		}
	}
	return review.Review{}, review.ErrNotFound
}

// reviewLess compares a and b field by field following ordering.
func reviewLess(a, b review.Review, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		var cmp int
		switch ord.Field {
		case "rating":
			cmp = a.Rating - b.Rating
		case "created_at":
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		case "id":
			cmp = a.ID - b.ID
		}
		if cmp == 0 {
			continue
		}
		if ord.Ascending {
			return cmp < 0
		}
		return cmp > 0
	}
	return false
}
