package tests

import (
	"bytes"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	. "github.com/coursecatalog/backend/apps/web/echo"
	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/user"
	logsvc "github.com/coursecatalog/backend/services/logger"
	"github.com/coursecatalog/backend/tests"
)

func testConfig() *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "courses",
		SecretKey: "test-secret-key",
		Server: core.ServerConfig{
			SessionMaxAge:      time.Hour,
			JWTExpirationDelta: time.Hour,
		},
		Pagination: core.PaginationConfig{CoursesPerPage: 2, ReviewsPerPage: 2},
	}
}

func setup(t *testing.T) (*testutil.App, *Server, *core.Config) {
	t.Helper()
	app := testutil.NewApp()
	conf := testConfig()

	srv, err := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf),
		DisableReqLogs: true,
		UserSvc:        app.Users,
		CategorySvc:    app.Categories,
		CourseSvc:      app.Courses,
		ReviewSvc:      app.Reviews,
		ImageSvc:       app.Images,
		Validate:       app.Validate,
		Translator:     app.Translator,
	})
	require.NoError(t, err)
	return app, srv, conf
}

type httpTest struct {
	name         string
	method       string
	path         string
	form         url.Values
	token        string
	wantCode     int
	wantLocation string
	wantBody     []string
}

func newAuthRequest(method, path, token string, form url.Values, cookies ...*http.Cookie) (*http.Request, *httptest.ResponseRecorder) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req, httptest.NewRecorder()
}

func newRequest(method, path string, cookies ...*http.Cookie) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", nil, cookies...)
}

func newMultipartRequest(t *testing.T, path, token string, fields map[string]string, fileName string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("background_img", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func getToken(t *testing.T, usr user.User, conf *core.Config) string {
	token, err := GenerateToken(usr, conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func checkResponse(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, wantCode)
	}
	if tt.wantLocation != "" {
		if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
			t.Errorf("failed! location = %v; wantLocation %v", loc, tt.wantLocation)
		}
	}
	body := rec.Body.String()
	for _, want := range tt.wantBody {
		if !strings.Contains(body, want) {
			t.Errorf("failed! body does not contain %q", want)
		}
	}
}

// follow replays the redirect of rec with the cookies it set and returns the rendered page.
func follow(t *testing.T, srv *Server, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	req, next := newRequest(http.MethodGet, rec.Header().Get("Location"), rec.Result().Cookies()...)
	srv.ServeHTTP(next, req)
	require.Equal(t, http.StatusOK, next.Code)
	return next.Body.String()
}

// pngBytes is enough for content sniffing to report image/png.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
