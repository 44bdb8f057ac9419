package review

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
)

var (
	// errors
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("You have already reviewed this course.")
)

type (
	Repository interface {
		// CreateReview returns ErrAlreadyReviewed when the user already reviewed the course.
		CreateReview(ctx context.Context, rev Review, exec ...core.DBExecutor) (Review, error)
		QueryCourseReviews(ctx context.Context, courseID int, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]Review, int, error)
		GetUserReview(ctx context.Context, courseID, userID int, exec ...core.DBExecutor) (Review, error)
	}

	// RatingCounter keeps the course rating counters.
	RatingCounter interface {
		IncrementRating(ctx context.Context, id, rating int, exec ...core.DBExecutor) error
	}

	Service struct {
		repo     Repository
		courses  RatingCounter
		tx       core.Transactor
		validate *validator.Validate
	}
)

func NewService(repo Repository, courses RatingCounter, tx core.Transactor, validate *validator.Validate) *Service {
	return &Service{repo: repo, courses: courses, tx: tx, validate: validate}
}

// Submit records the user's review and adds its rating to the course counters, both or neither.
func (svc *Service) Submit(ctx context.Context, courseID, userID int, nr NewReview) (Review, error) {
	nr.Clean()
	if err := svc.validate.Struct(nr); err != nil {
		return Review{}, err
	}

	var rev Review
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		_, err := svc.repo.GetUserReview(ctx, courseID, userID, exec)
		switch err {
		case nil:
			return ErrAlreadyReviewed
		case ErrNotFound:
		default:
			return err
		}

		rev, err = svc.repo.CreateReview(ctx, Review{
			Rating:    nr.Rating,
			Text:      nr.Text,
			CourseID:  courseID,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}, exec)
		if err != nil {
			return err
		}
		return svc.courses.IncrementRating(ctx, courseID, nr.Rating, exec)
	})
	if err != nil {
		if errors.Cause(err) == core.ErrDataIntegrity {
			return Review{}, core.NewValidationError(core.ErrDataIntegrity)
		}
		return Review{}, err
	}
	return rev, nil
}

func (svc *Service) Query(ctx context.Context, courseID int, sort SortMode, page core.Pagination) ([]Review, core.Pagination, error) {
	reviews, total, err := svc.repo.QueryCourseReviews(ctx, courseID, sort.Ordering(), page)
	if err != nil {
		return nil, page, err
	}
	page.Total = total
	return reviews, page, nil
}

// Latest returns the n newest reviews of the course.
func (svc *Service) Latest(ctx context.Context, courseID, n int) ([]Review, error) {
	reviews, _, err := svc.repo.QueryCourseReviews(ctx, courseID, SortNewest.Ordering(), core.NewPagination(1, n))
	return reviews, err
}

func (svc *Service) GetUserReview(ctx context.Context, courseID, userID int) (Review, error) {
	return svc.repo.GetUserReview(ctx, courseID, userID)
}
