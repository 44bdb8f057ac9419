package postgres

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/course"
	"github.com/coursecatalog/backend/core/review"
)

// sortable review columns
var reviewOrderFields = map[string]bool{"rating": true, "created_at": true, "id": true}

type reviewRepository struct {
	repository
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(exec core.DBExecutor) *reviewRepository {
	return &reviewRepository{repository{exec: exec}}
}

func (repo reviewRepository) selectReviews() sq.SelectBuilder {
	return psql.Select(
		"r.id", "r.rating", "r.text", "r.course_id", "r.user_id", "r.created_at",
		fullNameExpr("u")+" AS user_full_name",
	).
		From("reviews r").
		Join("users u ON u.id = r.user_id")
}

func (repo reviewRepository) CreateReview(ctx context.Context, rev review.Review, exec ...core.DBExecutor) (review.Review, error) {
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now().UTC()
	}
	q, args, err := psql.Insert("reviews").
		Columns("rating", "text", "created_at", "course_id", "user_id").
		Values(rev.Rating, rev.Text, rev.CreatedAt, rev.CourseID, rev.UserID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return review.Review{}, errors.Wrap(err, "building query")
	}

	if err = repo.getExec(exec).QueryRowxContext(ctx, q, args...).Scan(&rev.ID); err != nil {
		if constraint, ok := constraintViolation(err, uniqueViolation, foreignKeyViolation); ok {
			switch constraint {
			case "uq_reviews_course_id_user_id":
				return review.Review{}, review.ErrAlreadyReviewed
			case "fk_reviews_course_id_courses":
				return review.Review{}, course.ErrNotFound
			default:
				return review.Review{}, core.ErrDataIntegrity
			}
		}
		return review.Review{}, errors.Wrap(err, "inserting review")
	}
	return rev, nil
}

func (repo reviewRepository) QueryCourseReviews(ctx context.Context, courseID int, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]review.Review, int, error) {
	ex := repo.getExec(exec)

	var total int
	count := psql.Select("COUNT(*)").From("reviews").Where(sq.Eq{"course_id": courseID})
	if err := get(ctx, ex, &total, count); err != nil {
		return nil, 0, errors.Wrap(err, "counting reviews")
	}

	orderBy := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if reviewOrderFields[ord.Field] {
			orderBy = append(orderBy, "r."+ord.String())
		}
	}
	query := repo.selectReviews().
		Where(sq.Eq{"r.course_id": courseID}).
		OrderBy(orderBy...).
		Limit(uint64(page.Limit())).
		Offset(uint64(page.Offset()))

	reviews := make([]review.Review, 0, page.Limit())
	if err := selectAll(ctx, ex, &reviews, query); err != nil {
		return nil, 0, errors.Wrap(err, "selecting reviews")
	}
	return reviews, total, nil
}

func (repo reviewRepository) GetUserReview(ctx context.Context, courseID, userID int, exec ...core.DBExecutor) (review.Review, error) {
	var rev review.Review
	query := repo.selectReviews().Where(sq.Eq{"r.course_id": courseID, "r.user_id": userID})
	if err := get(ctx, repo.getExec(exec), &rev, query); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return review.Review{}, review.ErrNotFound
		}
		return review.Review{}, errors.Wrap(err, "selecting user review")
	}
	return rev, nil
}
