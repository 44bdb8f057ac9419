package review_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/course"
	"github.com/coursecatalog/backend/core/review"
	"github.com/coursecatalog/backend/core/user"
	testutil "github.com/coursecatalog/backend/tests"
)

type fixture struct {
	app    *testutil.App
	course course.Course
	users  []user.User
}

func setUp(t *testing.T, nUsers int) fixture {
	app := testutil.NewApp()
	author := testutil.CreateUser(t, app.UserRepo, "Ada", "Lovelace", "ada", "")
	cat := testutil.CreateCategory(t, app.CategoryRepo, "Programming")
	crs := testutil.CreateCourse(t, app.CourseRepo, "Go", cat, author)

	users := make([]user.User, 0, nUsers)
	for i := 0; i < nUsers; i++ {
		users = append(users, testutil.CreateUser(t, app.UserRepo, "Student", "Number", "student"+string(rune('a'+i)), ""))
	}
	return fixture{app: app, course: crs, users: users}
}

func countReviews(t *testing.T, app *testutil.App, courseID int) int {
	_, page, err := app.Reviews.Query(context.Background(), courseID, review.SortNewest, core.NewPagination(1, 100))
	require.NoError(t, err)
	return page.Total
}

func TestService_Submit_UpdatesCounters(t *testing.T) {
	ctx := context.Background()
	fx := setUp(t, 3)

	for i, rating := range []int{5, 3, 4} {
		_, err := fx.app.Reviews.Submit(ctx, fx.course.ID, fx.users[i].ID, review.NewReview{Rating: rating, Text: "nice"})
		require.NoError(t, err)
	}

	crs, err := fx.app.Courses.GetByID(ctx, fx.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, crs.RatingSum)
	assert.Equal(t, 3, crs.RatingNum)
	assert.Equal(t, 4.0, crs.Rating())
}

func TestService_Submit_Duplicate(t *testing.T) {
	ctx := context.Background()
	fx := setUp(t, 1)
	usr := fx.users[0]

	_, err := fx.app.Reviews.Submit(ctx, fx.course.ID, usr.ID, review.NewReview{Rating: 4, Text: "first"})
	require.NoError(t, err)

	_, err = fx.app.Reviews.Submit(ctx, fx.course.ID, usr.ID, review.NewReview{Rating: 1, Text: "second"})
	assert.Equal(t, review.ErrAlreadyReviewed, errors.Cause(err))

	crs, err := fx.app.Courses.GetByID(ctx, fx.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, crs.RatingSum)
	assert.Equal(t, 1, crs.RatingNum)
	assert.Equal(t, 1, countReviews(t, fx.app, fx.course.ID))

	rev, err := fx.app.Reviews.GetUserReview(ctx, fx.course.ID, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", rev.Text)
}

func TestService_Submit_Invalid(t *testing.T) {
	ctx := context.Background()
	fx := setUp(t, 1)

	tests := []struct {
		name string
		nr   review.NewReview
	}{
		{name: "zero rating", nr: review.NewReview{Rating: 0, Text: "meh"}},
		{name: "rating too high", nr: review.NewReview{Rating: 6, Text: "wow"}},
		{name: "negative rating", nr: review.NewReview{Rating: -1, Text: "bad"}},
		{name: "blank text", nr: review.NewReview{Rating: 3, Text: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.app.Reviews.Submit(ctx, fx.course.ID, fx.users[0].ID, tt.nr)
			var verrs validator.ValidationErrors
			assert.True(t, errors.As(err, &verrs), "want validation errors, got %v", err)
		})
	}

	crs, err := fx.app.Courses.GetByID(ctx, fx.course.ID)
	require.NoError(t, err)
	assert.Zero(t, crs.RatingNum)
	assert.Zero(t, countReviews(t, fx.app, fx.course.ID))
}

func TestService_Submit_MissingCourse(t *testing.T) {
	fx := setUp(t, 1)

	_, err := fx.app.Reviews.Submit(context.Background(), 999, fx.users[0].ID, review.NewReview{Rating: 5, Text: "?"})
	assert.Equal(t, course.ErrNotFound, errors.Cause(err))
	assert.Zero(t, countReviews(t, fx.app, 999))
}

type failingCounter struct{}

func (failingCounter) IncrementRating(context.Context, int, int, ...core.DBExecutor) error {
	return errors.New("disk full")
}

func TestService_Submit_RollsBack(t *testing.T) {
	ctx := context.Background()
	fx := setUp(t, 1)
	svc := review.NewService(fx.app.ReviewRepo, failingCounter{}, fx.app.Tx, fx.app.Validate)

	_, err := svc.Submit(ctx, fx.course.ID, fx.users[0].ID, review.NewReview{Rating: 5, Text: "lost"})
	assert.Error(t, err)

	_, err = fx.app.Reviews.GetUserReview(ctx, fx.course.ID, fx.users[0].ID)
	assert.Equal(t, review.ErrNotFound, err, "the review insert must be rolled back with the counter update")
}

func TestService_Submit_Concurrent(t *testing.T) {
	ctx := context.Background()
	fx := setUp(t, 2)

	var wg sync.WaitGroup
	errs := make([]error, len(fx.users))
	for i, usr := range fx.users {
		wg.Add(1)
		go func(i int, usr user.User) {
			defer wg.Done()
			_, errs[i] = fx.app.Reviews.Submit(ctx, fx.course.ID, usr.ID, review.NewReview{Rating: 4 + i, Text: "concurrent"})
		}(i, usr)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	crs, err := fx.app.Courses.GetByID(ctx, fx.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, crs.RatingNum)
	assert.Equal(t, 9, crs.RatingSum)
}

func TestService_Query_Sort(t *testing.T) {
	ctx := context.Background()
	fx := setUp(t, 3)

	base := time.Now().Add(-time.Hour)
	for i, rating := range []int{2, 5, 3} { // oldest first
		testutil.CreateReview(t, fx.app.ReviewRepo, fx.course, fx.users[i], rating, base.Add(time.Duration(i)*time.Minute))
	}

	tests := []struct {
		sortBy string
		want   []int
	}{
		{sortBy: "newest", want: []int{3, 5, 2}},
		{sortBy: "positive", want: []int{5, 3, 2}},
		{sortBy: "negative", want: []int{2, 3, 5}},
		{sortBy: "bogus", want: []int{3, 5, 2}},
		{sortBy: "", want: []int{3, 5, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.sortBy, func(t *testing.T) {
			reviews, page, err := fx.app.Reviews.Query(ctx, fx.course.ID, review.ParseSortMode(tt.sortBy), core.NewPagination(1, 5))
			require.NoError(t, err)
			assert.Equal(t, 3, page.Total)

			got := make([]int, 0, len(reviews))
			for _, r := range reviews {
				got = append(got, r.Rating)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Query_Pagination(t *testing.T) {
	ctx := context.Background()
	fx := setUp(t, 7)

	base := time.Now().Add(-time.Hour)
	for i, usr := range fx.users {
		testutil.CreateReview(t, fx.app.ReviewRepo, fx.course, usr, 1+i%5, base.Add(time.Duration(i)*time.Minute))
	}

	reviews, page, err := fx.app.Reviews.Query(ctx, fx.course.ID, review.SortNewest, core.NewPagination(2, 5))
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
	assert.Equal(t, 2, page.Pages())
	assert.True(t, page.HasPrev())
	assert.False(t, page.HasNext())

	latest, err := fx.app.Reviews.Latest(ctx, fx.course.ID, 5)
	require.NoError(t, err)
	require.Len(t, latest, 5)
	assert.Equal(t, fx.users[6].ID, latest[0].UserID)
	assert.Equal(t, "Number Student", latest[0].UserFullName)
}

func TestParseSortMode(t *testing.T) {
	assert.Equal(t, review.SortPositive, review.ParseSortMode("positive"))
	assert.Equal(t, review.SortNegative, review.ParseSortMode("negative"))
	assert.Equal(t, review.SortNewest, review.ParseSortMode("newest"))
	assert.Equal(t, review.SortNewest, review.ParseSortMode("POSITIVE"))
}
