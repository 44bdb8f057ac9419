package tests

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/course"
	"github.com/coursecatalog/backend/tests"
)

func Test_courseWeb_index(t *testing.T) {
	app, srv, _ := setup(t)

	author := testutil.CreateUser(t, app.UserRepo, "Ada", "Lovelace", "ada", "")
	prog := testutil.CreateCategory(t, app.CategoryRepo, "Programming")
	golang := testutil.CreateCategory(t, app.CategoryRepo, "Golang", prog)
	music := testutil.CreateCategory(t, app.CategoryRepo, "Music")
	testutil.CreateCourse(t, app.CourseRepo, "Go basics", golang, author)
	testutil.CreateCourse(t, app.CourseRepo, "Advanced Go", golang, author)
	testutil.CreateCourse(t, app.CourseRepo, "Guitar", music, author)

	path := func(name string, page int, cats ...int) string {
		v := make(url.Values)
		if name != "" {
			v.Add("name", name)
		}
		if page > 0 {
			v.Add("page", strconv.Itoa(page))
		}
		for _, c := range cats {
			v.Add("category_ids", strconv.Itoa(c))
		}
		return "/courses?" + v.Encode()
	}

	tests := []struct {
		httpTest
		wantMissing []string
	}{
		{httpTest: httpTest{name: "home", path: "/", wantCode: http.StatusFound, wantLocation: "/courses"}},
		{
			httpTest:    httpTest{name: "first page", path: "/courses/", wantBody: []string{"Go basics", "Advanced Go", "Golang", "Music"}},
			wantMissing: []string{">Guitar<"},
		},
		{httpTest: httpTest{name: "second page", path: path("", 2), wantBody: []string{">Guitar<"}}},
		{
			httpTest:    httpTest{name: "name filter", path: path("go", 0), wantBody: []string{"Go basics", "Advanced Go"}},
			wantMissing: []string{">Guitar<"},
		},
		{
			httpTest:    httpTest{name: "category filter", path: path("", 0, music.ID), wantBody: []string{">Guitar<"}},
			wantMissing: []string{"Go basics"},
		},
		{
			httpTest:    httpTest{name: "name and category", path: path("basics", 0, golang.ID, music.ID), wantBody: []string{"Go basics"}},
			wantMissing: []string{"Advanced Go", ">Guitar<"},
		},
		{httpTest: httpTest{name: "no match", path: path("cooking", 0), wantBody: []string{"No courses found."}}},
		{httpTest: httpTest{name: "page past the end", path: path("", math.MaxInt), wantBody: []string{"No courses found."}}},
		{httpTest: httpTest{name: "page beyond int range", path: "/courses?page=92233720368547758070", wantBody: []string{"Go basics"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			srv.ServeHTTP(rec, req)
			checkResponse(t, tt.httpTest, rec)
			for _, missing := range tt.wantMissing {
				assert.NotContains(t, rec.Body.String(), missing)
			}
		})
	}
}

func Test_courseWeb_show(t *testing.T) {
	app, srv, conf := setup(t)

	author := testutil.CreateUser(t, app.UserRepo, "Ada", "Lovelace", "ada", "")
	reader := testutil.CreateUser(t, app.UserRepo, "Alan", "Turing", "alan", "")
	cat := testutil.CreateCategory(t, app.CategoryRepo, "Programming")
	crs := testutil.CreateCourse(t, app.CourseRepo, "Go basics", cat, author)
	_, err := app.Reviews.Submit(context.Background(), crs.ID, reader.ID, reviewForm(4, "Solid"))
	require.NoError(t, err)

	crsPath := "/courses/" + strconv.Itoa(crs.ID)
	tests := []httpTest{
		{name: "anonymous", path: crsPath, wantBody: []string{"Go basics", "4.00", "Solid", "Turing Alan", "Log in</a> to review"}},
		{name: "reviewer sees own review", path: crsPath, token: getToken(t, reader, conf), wantBody: []string{"Your review"}},
		{name: "author may review", path: crsPath, token: getToken(t, author, conf), wantBody: []string{"Leave a review"}},
		{name: "unknown course", path: "/courses/999", wantCode: http.StatusNotFound},
		{name: "bad id", path: "/courses/abc", wantCode: http.StatusNotFound},
		{name: "reviews page", path: crsPath + "/reviews?sort_by=negative", wantBody: []string{"Solid", "<strong>negative</strong>"}},
		{name: "reviews of unknown course", path: "/courses/999/reviews", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token, nil)
			srv.ServeHTTP(rec, req)
			checkResponse(t, tt, rec)
		})
	}
}

func Test_courseWeb_reviewsSort(t *testing.T) {
	app, srv, _ := setup(t)

	author := testutil.CreateUser(t, app.UserRepo, "Ada", "Lovelace", "ada", "")
	cat := testutil.CreateCategory(t, app.CategoryRepo, "Programming")
	crs := testutil.CreateCourse(t, app.CourseRepo, "Go basics", cat, author)

	now := time.Now()
	for i, rating := range []int{2, 5, 3} { // newest last
		usr := testutil.CreateUser(t, app.UserRepo, "User", "Number"+strconv.Itoa(i), "user"+strconv.Itoa(i), "")
		testutil.CreateReview(t, app.ReviewRepo, crs, usr, rating, now.Add(time.Duration(i)*time.Minute))
	}

	tests := []struct {
		sortBy    string
		wantOrder []string
	}{
		{sortBy: "", wantOrder: []string{"Number2", "Number1"}},
		{sortBy: "newest", wantOrder: []string{"Number2", "Number1"}},
		{sortBy: "positive", wantOrder: []string{"Number1", "Number2"}},
		{sortBy: "negative", wantOrder: []string{"Number0", "Number2"}},
		{sortBy: "bogus", wantOrder: []string{"Number2", "Number1"}},
	}
	for _, tt := range tests {
		t.Run("sort_by="+tt.sortBy, func(t *testing.T) {
			path := "/courses/" + strconv.Itoa(crs.ID) + "/reviews?sort_by=" + tt.sortBy
			req, rec := newRequest(http.MethodGet, path)
			srv.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)

			body := rec.Body.String()
			first, second := strings.Index(body, tt.wantOrder[0]), strings.Index(body, tt.wantOrder[1])
			require.True(t, first >= 0 && second >= 0, "reviewers missing from page")
			assert.Less(t, first, second)
			assert.Contains(t, body, "page 1 of 2")
		})
	}
}

func Test_courseWeb_create(t *testing.T) {
	app, srv, conf := setup(t)

	author := testutil.CreateUser(t, app.UserRepo, "Ada", "Lovelace", "ada", "")
	cat := testutil.CreateCategory(t, app.CategoryRepo, "Programming")
	token := getToken(t, author, conf)

	fields := func(name string, catID int) map[string]string {
		return map[string]string{
			"name":        name,
			"category_id": strconv.Itoa(catID),
			"short_desc":  "short",
			"full_desc":   "full",
		}
	}

	t.Run("login required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/courses/new")
		srv.ServeHTTP(rec, req)
		checkResponse(t, httpTest{wantCode: http.StatusSeeOther, wantLocation: "/auth/login?next=%2Fcourses%2Fnew"}, rec)
	})

	t.Run("form", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/courses/new", token, nil)
		srv.ServeHTTP(rec, req)
		checkResponse(t, httpTest{wantBody: []string{"Programming", "Lovelace Ada", `name="background_img"`}}, rec)
	})

	t.Run("with background image", func(t *testing.T) {
		req, rec := newMultipartRequest(t, "/courses/create", token, fields("Go basics", cat.ID), "bg.PNG", pngBytes)
		srv.ServeHTTP(rec, req)
		checkResponse(t, httpTest{wantCode: http.StatusSeeOther, wantLocation: "/courses"}, rec)
		assert.Contains(t, follow(t, srv, rec), "The course has been created.")

		courses, _, err := app.Courses.Query(context.Background(), course.QueryFilter{Name: "Go basics"}, core.NewPagination(1, 10))
		require.NoError(t, err)
		require.Len(t, courses, 1)
		crs := courses[0]
		assert.Equal(t, author.ID, crs.AuthorID)
		require.NotNil(t, crs.BackgroundImageID)
		assert.Len(t, app.MediaFiles(t), 1)

		req, rec = newRequest(http.MethodGet, crs.BackgroundImageURL())
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, pngBytes, rec.Body.Bytes())
	})

	t.Run("unknown category", func(t *testing.T) {
		req, rec := newMultipartRequest(t, "/courses/create", token, fields("Orphan", 999), "bg2.png", append(pngBytes, 1))
		srv.ServeHTTP(rec, req)
		checkResponse(t, httpTest{wantCode: http.StatusBadRequest, wantBody: []string{
			"Please correct the errors below.",
			course.ErrCategoryNotFound.Error(),
			`value="Orphan"`,
		}}, rec)

		courses, _, err := app.Courses.Query(context.Background(), course.QueryFilter{Name: "Orphan"}, core.NewPagination(1, 10))
		require.NoError(t, err)
		assert.Empty(t, courses)
		assert.Len(t, app.MediaFiles(t), 1)
	})

	t.Run("not an image", func(t *testing.T) {
		req, rec := newMultipartRequest(t, "/courses/create", token, fields("Text", cat.ID), "notes.png", []byte("just some text"))
		srv.ServeHTTP(rec, req)
		checkResponse(t, httpTest{wantCode: http.StatusBadRequest}, rec)
	})

	t.Run("missing fields", func(t *testing.T) {
		req, rec := newMultipartRequest(t, "/courses/create", token, fields("", cat.ID), "", nil)
		srv.ServeHTTP(rec, req)
		checkResponse(t, httpTest{wantCode: http.StatusBadRequest, wantBody: []string{"this field is required"}}, rec)
	})
}

func Test_imageWeb_notFound(t *testing.T) {
	_, srv, _ := setup(t)
	req, rec := newRequest(http.MethodGet, "/images/missing")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
