package echoweb

import (
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/course"
	"github.com/coursecatalog/backend/core/image"
	"github.com/coursecatalog/backend/core/review"
)

const (
	pageParam      = "page"
	sortParam      = "sort_by"
	backgroundFile = "background_img"
)

func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id < 1 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// atoi returns 0 for anything that is not a number.
func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func bindPage(ctx echo.Context, perPage int) core.Pagination {
	return core.NewPagination(atoi(ctx.QueryParam(pageParam)), perPage)
}

func bindCourseFilter(ctx echo.Context) (course.QueryFilter, error) {
	var filter course.QueryFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &filter); err != nil {
		return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid search parameters").SetInternal(err)
	}
	return filter, nil
}

func bindReview(ctx echo.Context) review.NewReview {
	return review.NewReview{
		Rating: atoi(ctx.FormValue("rating")),
		Text:   ctx.FormValue("text"),
	}
}

func bindNewCourse(ctx echo.Context) course.NewCourse {
	return course.NewCourse{
		AuthorID:   atoi(ctx.FormValue("author_id")),
		Name:       ctx.FormValue("name"),
		CategoryID: atoi(ctx.FormValue("category_id")),
		ShortDesc:  ctx.FormValue("short_desc"),
		FullDesc:   ctx.FormValue("full_desc"),
	}
}

// bindBackground returns the uploaded background image, nil if none was sent.
// The caller must close the returned file.
func bindBackground(ctx echo.Context) (*image.Upload, multipart.File, error) {
	fh, err := ctx.FormFile(backgroundFile)
	switch {
	case err == http.ErrMissingFile, err == http.ErrNotMultipart:
		return nil, nil, nil
	case err != nil:
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid upload").SetInternal(err)
	case fh.Filename == "" && fh.Size == 0:
		return nil, nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening upload")
	}
	return &image.Upload{
		FileName: fh.Filename,
		MimeType: fh.Header.Get(echo.HeaderContentType),
		Content:  f,
	}, f, nil
}

// Pager builds page links that keep the other query parameters.
type Pager struct {
	core.Pagination
	path  string
	query url.Values
}

func newPager(ctx echo.Context, pg core.Pagination) Pager {
	query := url.Values{}
	for k, v := range ctx.QueryParams() {
		query[k] = v
	}
	return Pager{Pagination: pg, path: ctx.Request().URL.Path, query: query}
}

func (p Pager) URL(page int) string {
	q := url.Values{}
	for k, v := range p.query {
		q[k] = v
	}
	q.Set(pageParam, strconv.Itoa(page))
	return p.path + "?" + q.Encode()
}
