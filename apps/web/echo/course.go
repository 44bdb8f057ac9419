package echoweb

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core/category"
	"github.com/coursecatalog/backend/core/course"
	"github.com/coursecatalog/backend/core/review"
	"github.com/coursecatalog/backend/core/user"
	"github.com/coursecatalog/backend/services/metrics"
)

const (
	latestReviews   = 5
	msgCourseSaved  = "The course has been created."
	msgReviewSaved  = "Thank you for your review!"
	msgInvalidInput = "Please correct the errors below."
)

type (
	courseIndexPage struct {
		Courses    []course.Course
		Categories []*category.Node
		Filter     course.QueryFilter
		Pager      Pager
	}

	courseFormPage struct {
		Form       course.NewCourse
		Errors     map[string]string
		Categories []*category.Node
		Users      []user.User
	}

	courseShowPage struct {
		Course     course.Course
		Reviews    []review.Review
		UserReview *review.Review
	}

	courseReviewsPage struct {
		Course  course.Course
		Reviews []review.Review
		SortBy  review.SortMode
		Sorts   []review.SortMode
		Pager   Pager
	}
)

func registerCourseRoutes(g *echo.Group, s *Server) {
	g.GET("", s.courseIndex)
	g.GET("/new", s.courseNew, loginRequired)
	g.POST("/create", s.courseCreate, loginRequired)
	g.GET("/:id", s.courseShow)
	g.POST("/:id", s.courseReview, loginRequired)
	g.GET("/:id/reviews", s.courseReviews)
	g.POST("/:id/reviews", s.courseReviewsReview, loginRequired)
}

func (s *Server) courseIndex(ctx echo.Context) error {
	filter, err := bindCourseFilter(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	courses, pg, err := s.CourseSvc.Query(rctx, filter, bindPage(ctx, s.Conf.Pagination.CoursesPerPage))
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	cats, err := s.CategorySvc.Tree(rctx)
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}

	return s.render(ctx, http.StatusOK, "courses_index", courseIndexPage{
		Courses:    courses,
		Categories: category.Flatten(cats),
		Filter:     filter,
		Pager:      newPager(ctx, pg),
	})
}

func (s *Server) courseNew(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)
	return s.renderCourseForm(ctx, http.StatusOK, course.NewCourse{AuthorID: usr.ID}, nil, "")
}

func (s *Server) courseCreate(ctx echo.Context) error {
	nc := bindNewCourse(ctx)
	if nc.AuthorID == 0 {
		usr, _ := getContextUser(ctx)
		nc.AuthorID = usr.ID
	}

	up, file, err := bindBackground(ctx)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	if _, err = s.CourseSvc.Create(ctx.Request().Context(), nc, up); err != nil {
		if fields, ok := formErrors(err, s.Translator); ok {
			s.Metrics.CourseCreated(metrics.OutcomeRejected)
			msg := msgInvalidInput
			if len(fields) == 0 {
				msg = err.Error()
			}
			return s.renderCourseForm(ctx, http.StatusBadRequest, nc, fields, msg)
		}
		s.Metrics.CourseCreated(metrics.OutcomeFailed)
		return errors.Wrap(err, "creating course")
	}

	s.Metrics.CourseCreated(metrics.OutcomeOK)
	if err = s.addFlash(ctx, flashSuccess, msgCourseSaved); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/courses")
}

func (s *Server) renderCourseForm(ctx echo.Context, code int, nc course.NewCourse, fields map[string]string, danger string) error {
	rctx := ctx.Request().Context()
	cats, err := s.CategorySvc.Tree(rctx)
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	users, err := s.UserSvc.QueryAll(rctx)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}

	p := page(ctx, courseFormPage{
		Form:       nc,
		Errors:     fields,
		Categories: category.Flatten(cats),
		Users:      users,
	})
	p.Flashes = s.popFlashes(ctx)
	if danger != "" {
		p.Flashes = append(p.Flashes, flash{Level: flashDanger, Message: danger})
	}
	return ctx.Render(code, "courses_new", p)
}

func (s *Server) getCourse(ctx echo.Context) (course.Course, error) {
	id, err := intParam(ctx, "id")
	if err != nil {
		return course.Course{}, err
	}
	crs, err := s.CourseSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if err == course.ErrNotFound {
			return course.Course{}, errHttpNotFound
		}
		return course.Course{}, errors.Wrap(err, "loading course")
	}
	return crs, nil
}

func (s *Server) courseShow(ctx echo.Context) error {
	crs, err := s.getCourse(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	reviews, err := s.ReviewSvc.Latest(rctx, crs.ID, latestReviews)
	if err != nil {
		return errors.Wrap(err, "querying reviews")
	}

	data := courseShowPage{Course: crs, Reviews: reviews}
	if usr, ok := getContextUser(ctx); ok {
		rev, err := s.ReviewSvc.GetUserReview(rctx, crs.ID, usr.ID)
		switch err {
		case nil:
			data.UserReview = &rev
		case review.ErrNotFound:
		default:
			return errors.Wrap(err, "loading user review")
		}
	}
	return s.render(ctx, http.StatusOK, "courses_show", data)
}

func (s *Server) courseReviews(ctx echo.Context) error {
	crs, err := s.getCourse(ctx)
	if err != nil {
		return err
	}

	sortBy := review.ParseSortMode(ctx.QueryParam(sortParam))
	reviews, pg, err := s.ReviewSvc.Query(ctx.Request().Context(), crs.ID, sortBy, bindPage(ctx, s.Conf.Pagination.ReviewsPerPage))
	if err != nil {
		return errors.Wrap(err, "querying reviews")
	}

	return s.render(ctx, http.StatusOK, "courses_reviews", courseReviewsPage{
		Course:  crs,
		Reviews: reviews,
		SortBy:  sortBy,
		Sorts:   []review.SortMode{review.SortNewest, review.SortPositive, review.SortNegative},
		Pager:   newPager(ctx, pg),
	})
}

func (s *Server) courseReview(ctx echo.Context) error {
	return s.submitReview(ctx, func(crs course.Course) string {
		return "/courses/" + strconv.Itoa(crs.ID)
	})
}

func (s *Server) courseReviewsReview(ctx echo.Context) error {
	sortBy := review.ParseSortMode(ctx.QueryParam(sortParam))
	return s.submitReview(ctx, func(crs course.Course) string {
		return "/courses/" + strconv.Itoa(crs.ID) + "/reviews?" + url.Values{sortParam: {string(sortBy)}}.Encode()
	})
}

// submitReview records the review, then redirects to the page built by next with the outcome as a flash.
func (s *Server) submitReview(ctx echo.Context, next func(course.Course) string) error {
	crs, err := s.getCourse(ctx)
	if err != nil {
		return err
	}
	usr, _ := getContextUser(ctx)

	level, msg := flashSuccess, msgReviewSaved
	_, err = s.ReviewSvc.Submit(ctx.Request().Context(), crs.ID, usr.ID, bindReview(ctx))
	switch errors.Cause(err) {
	case nil:
		s.Metrics.ReviewSubmitted(metrics.OutcomeOK)
	case review.ErrAlreadyReviewed:
		s.Metrics.ReviewSubmitted(metrics.OutcomeRejected)
		level, msg = flashWarning, review.ErrAlreadyReviewed.Error()
	case course.ErrNotFound:
		s.Metrics.ReviewSubmitted(metrics.OutcomeRejected)
		return errHttpNotFound
	default:
		fields, ok := formErrors(err, s.Translator)
		if !ok {
			s.Metrics.ReviewSubmitted(metrics.OutcomeFailed)
			return errors.Wrap(err, "submitting review")
		}
		s.Metrics.ReviewSubmitted(metrics.OutcomeRejected)
		level, msg = flashDanger, validationMessage(err, fields)
	}

	if err = s.addFlash(ctx, level, msg); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, next(crs))
}

// validationMessage joins the field errors into a single sentence.
func validationMessage(err error, fields map[string]string) string {
	if len(fields) == 0 {
		return err.Error()
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, len(names))
	for i, name := range names {
		msgs[i] = name + ": " + fields[name]
	}
	return strings.Join(msgs, "; ")
}
