package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/handler"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
	"github.com/sakif/portfolio/internal/repository/sqlite"
	"github.com/sakif/portfolio/internal/service"
	"github.com/sakif/portfolio/internal/upload"
)

// testAPI wires real services over an in-memory SQLite database and mounts
// the handlers on a chi router, so URL parameters resolve as in production.
type testAPI struct {
	router    chi.Router
	db        *sqlite.DB
	uploadDir string
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var testStatic = service.Static{
	Projects: func() []model.Project {
		return []model.Project{
			model.NewProject(model.ProjectFields{ID: "1", Title: "Bundled One", Description: "first"}),
			model.NewProject(model.ProjectFields{ID: "2", Title: "Bundled Two", Description: "second"}),
		}
	},
	Certificates: func() []model.Certificate {
		return []model.Certificate{
			model.NewCertificate(model.CertificateFields{ID: "c1", Title: "Web Cert", Issuer: "x", Year: "2023", Category: "web"}),
			model.NewCertificate(model.CertificateFields{ID: "c2", Title: "Data Cert", Issuer: "x", Year: "2024", Category: "data"}),
		}
	},
}

func newTestAPI(t *testing.T) *testAPI {
	return newTestAPIWithStore(t, nil)
}

// newTestAPIWithStore uses store as the document store, or the SQLite
// database itself when store is nil.
func newTestAPIWithStore(t *testing.T, store repository.Store) *testAPI {
	t.Helper()
	logger := quietLogger()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	if store == nil {
		store = db
	}

	uploadDir := t.TempDir()
	catalog := service.NewCatalogService(store, db, testStatic, service.CatalogOptions{}, logger)
	profile := service.NewProfileService(db, logger)
	comments := service.NewCommentService(store, logger)
	uploads := upload.NewService(upload.NewDiskStore(uploadDir, "https://example.com"), 1<<20, logger)

	catalogHandler := handler.NewCatalogHandler(catalog, profile, logger)
	commentHandler := handler.NewCommentHandler(comments, logger)
	sitemapHandler := handler.NewSitemapHandler(catalog, "https://example.com/", logger)
	adminHandler := handler.NewAdminHandler(
		service.NewProjectService(store, catalog, logger),
		service.NewCertificateService(store, catalog, logger),
		uploads,
		profile,
		logger,
	)

	r := chi.NewRouter()
	r.Get("/api/projects", catalogHandler.HandleProjects)
	r.Get("/api/projects/{id}", catalogHandler.HandleProject)
	r.Get("/api/certificates", catalogHandler.HandleCertificates)
	r.Get("/api/stats", catalogHandler.HandleStats)
	r.Get("/api/profile-photo", catalogHandler.HandleProfilePhoto)
	r.Get("/api/comments", commentHandler.HandleList)
	r.Post("/api/comments", commentHandler.HandleSubmit)
	r.Get("/sitemap.xml", sitemapHandler.HandleSitemap)
	r.Get("/healthz", handler.HandleHealth)

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/projects", adminHandler.HandleCreateProject)
		r.Put("/projects/{id}", adminHandler.HandleUpdateProject)
		r.Delete("/projects/{id}", adminHandler.HandleDeleteProject)
		r.Post("/certificates", adminHandler.HandleCreateCertificate)
		r.Put("/certificates/{id}", adminHandler.HandleUpdateCertificate)
		r.Delete("/certificates/{id}", adminHandler.HandleDeleteCertificate)
		r.Post("/comments", commentHandler.HandleAdminPost)
		r.Put("/comments/{id}/pin", commentHandler.HandlePin)
		r.Delete("/comments/{id}", commentHandler.HandleDelete)
		r.Post("/upload", adminHandler.HandleUpload)
		r.Put("/profile-photo", adminHandler.HandleSetProfilePhoto)
		r.Get("/tab", adminHandler.HandleGetTab)
		r.Put("/tab", adminHandler.HandleSetTab)
	})

	return &testAPI{router: r, db: db, uploadDir: uploadDir}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func titles(ps []model.Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Title
	}
	return out
}

// =========================================================================
// PUBLIC CATALOG
// =========================================================================

func TestCatalogHandler_Projects(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/projects", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	got := decode[[]model.Project](t, rr)
	assert.Equal(t, []string{"Bundled One", "Bundled Two"}, titles(got))
	for _, p := range got {
		assert.NotNil(t, p.TechStack)
		assert.NotNil(t, p.Features)
	}
}

func TestCatalogHandler_Project(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/projects/2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Bundled Two", decode[model.Project](t, rr).Title)

	rr = api.do(t, http.MethodGet, "/api/projects/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decode[handler.ErrorResponse](t, rr).Error)
}

func TestCatalogHandler_Certificates(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/certificates", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]model.Certificate](t, rr), 2)

	rr = api.do(t, http.MethodGet, "/api/certificates?category=data", "")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[[]model.Certificate](t, rr)
	require.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ID)

	rr = api.do(t, http.MethodGet, "/api/certificates?category=none", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestCatalogHandler_Stats(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rr.Code)

	got := decode[service.Stats](t, rr)
	assert.Equal(t, 2, got.TotalProjects)
	assert.Equal(t, 2, got.TotalCertificates)
	assert.False(t, got.Degraded)
}

func TestCatalogHandler_StoreDownStillServes(t *testing.T) {
	api := newTestAPIWithStore(t, repository.Disabled{})

	rr := api.do(t, http.MethodGet, "/api/projects", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"Bundled One", "Bundled Two"}, titles(decode[[]model.Project](t, rr)))

	rr = api.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[service.Stats](t, rr).Degraded)
}

func TestCatalogHandler_ClientGone(t *testing.T) {
	api := newTestAPI(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)

	// nothing written: the recorder keeps its defaults
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestSitemap(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/sitemap.xml", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/xml")

	body := rr.Body.String()
	assert.Contains(t, body, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, loc := range []string{
		"https://example.com/",
		"https://example.com/about",
		"https://example.com/contact",
		"https://example.com/portfolio",
		"https://example.com/project/1",
		"https://example.com/project/2",
	} {
		assert.Contains(t, body, "<loc>"+loc+"</loc>")
	}
}

// =========================================================================
// COMMENTS
// =========================================================================

func TestCommentHandler_SubmitAndList(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/api/comments", `{"content":"Really enjoyed the projects!","userName":"Rafi"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[model.Comment](t, rr)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.IsAdmin)
	require.NotNil(t, created.CreatedAt)

	rr = api.do(t, http.MethodPost, "/api/admin/comments", `{"content":"Thanks for visiting!","userName":"Owner"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	adminComment := decode[model.Comment](t, rr)
	assert.True(t, adminComment.IsAdmin)

	rr = api.do(t, http.MethodPut, "/api/admin/comments/"+created.ID+"/pin", `{"pinned":true}`)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = api.do(t, http.MethodGet, "/api/comments", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]model.Comment](t, rr)
	require.Len(t, list, 2)
	assert.Equal(t, created.ID, list[0].ID, "pinned comment comes first")
	assert.True(t, list[0].IsPinned)

	rr = api.do(t, http.MethodDelete, "/api/admin/comments/"+adminComment.ID, "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = api.do(t, http.MethodDelete, "/api/admin/comments/"+adminComment.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCommentHandler_SubmitRejected(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "too short", body: `{"content":"hi","userName":"Rafi"}`, wantField: "content"},
		{name: "script", body: `{"content":"<script>alert(1)</script> hello","userName":"Rafi"}`, wantField: "content"},
		{name: "no name", body: `{"content":"Nice portfolio you have","userName":""}`, wantField: "userName"},
		{name: "bad json", body: `{"content":`, wantField: "body"},
		{name: "unknown field", body: `{"content":"Nice portfolio you have","userName":"R","isAdmin":true}`, wantField: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)

			rr := api.do(t, http.MethodPost, "/api/comments", tt.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)

			got := decode[handler.ErrorResponse](t, rr)
			assert.Equal(t, "validation_error", got.Error)
			assert.Equal(t, tt.wantField, got.Field)
		})
	}
}

func TestCommentHandler_NoStore(t *testing.T) {
	api := newTestAPIWithStore(t, repository.Disabled{})

	rr := api.do(t, http.MethodGet, "/api/comments", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())

	rr = api.do(t, http.MethodPost, "/api/comments", `{"content":"Nice portfolio you have","userName":"Rafi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

// =========================================================================
// ADMIN CRUD
// =========================================================================

func TestAdminHandler_ProjectLifecycle(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/api/admin/projects",
		`{"title":"Chat App","description":"Realtime chat","techStack":["Go","WebSocket"]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[model.Project](t, rr)
	require.NotEmpty(t, created.ID)

	rr = api.do(t, http.MethodGet, "/api/projects", "")
	assert.Contains(t, titles(decode[[]model.Project](t, rr)), "Chat App")

	rr = api.do(t, http.MethodPut, "/api/admin/projects/"+created.ID,
		`{"title":"Chat App v2","description":"Realtime chat"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = api.do(t, http.MethodGet, "/api/projects/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Chat App v2", decode[model.Project](t, rr).Title)

	rr = api.do(t, http.MethodDelete, "/api/admin/projects/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = api.do(t, http.MethodGet, "/api/projects", "")
	assert.NotContains(t, titles(decode[[]model.Project](t, rr)), "Chat App v2")
}

func TestAdminHandler_ProjectErrors(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/api/admin/projects", `{"title":"","description":"d"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, http.MethodPut, "/api/admin/projects/nope", `{"title":"t","description":"d"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(t, http.MethodDelete, "/api/admin/projects/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	disabled := newTestAPIWithStore(t, repository.Disabled{})
	rr = disabled.do(t, http.MethodPost, "/api/admin/projects", `{"title":"t","description":"d"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "not_configured", decode[handler.ErrorResponse](t, rr).Error)
}

func TestAdminHandler_CertificateLifecycle(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/api/admin/certificates",
		`{"title":"Go","issuer":"Academy","year":"2025","category":"backend"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[model.Certificate](t, rr)
	assert.Equal(t, model.CertificateTypeAchievement, created.Type)

	rr = api.do(t, http.MethodGet, "/api/certificates?category=backend", "")
	require.Len(t, decode[[]model.Certificate](t, rr), 1)

	rr = api.do(t, http.MethodPut, "/api/admin/certificates/"+created.ID,
		`{"title":"Go","issuer":"Academy","year":"25","category":"backend"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "year", decode[handler.ErrorResponse](t, rr).Field)

	rr = api.do(t, http.MethodDelete, "/api/admin/certificates/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
}

// =========================================================================
// UPLOADS
// =========================================================================

func multipartBody(t *testing.T, filename, contentType string, content []byte, directory string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	if directory != "" {
		require.NoError(t, mw.WriteField("directory", directory))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (a *testAPI) upload(t *testing.T, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func TestAdminHandler_Upload(t *testing.T) {
	api := newTestAPI(t)

	body, ct := multipartBody(t, "Screen Shot.PNG", "image/png", []byte("\x89PNG fake"), "projects/screens")
	rr := api.upload(t, body, ct)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	res := decode[upload.Result](t, rr)
	assert.True(t, strings.HasPrefix(res.FileName, "projects/screens/"), res.FileName)
	assert.True(t, strings.HasSuffix(res.FileName, ".png"), res.FileName)
	assert.Equal(t, "https://example.com/uploads/"+res.FileName, res.URL)
	assert.Equal(t, upload.CacheControl, res.CacheControl)

	stored, err := os.ReadFile(filepath.Join(api.uploadDir, filepath.FromSlash(res.FileName)))
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG fake", string(stored))
}

func TestAdminHandler_UploadRejected(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		directory   string
		wantMsg     string
	}{
		{
			name:        "disallowed type",
			filename:    "archive.zip",
			contentType: "application/zip",
			content:     []byte("PK"),
			wantMsg:     "file type not allowed",
		},
		{
			name:        "too large",
			filename:    "big.png",
			contentType: "image/png",
			content:     bytes.Repeat([]byte("x"), 3<<19),
			wantMsg:     "file too large",
		},
		{
			name:        "escaping directory",
			filename:    "a.png",
			contentType: "image/png",
			content:     []byte("x"),
			directory:   "../etc",
		},
		{
			name:    "no file",
			wantMsg: "no file provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)

			body, ct := multipartBody(t, tt.filename, tt.contentType, tt.content, tt.directory)
			rr := api.upload(t, body, ct)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Contains(t, decode[handler.ErrorResponse](t, rr).Message, tt.wantMsg)

			entries, err := os.ReadDir(api.uploadDir)
			require.NoError(t, err)
			assert.Empty(t, entries, "nothing stored")
		})
	}
}

// =========================================================================
// PROFILE
// =========================================================================

func TestAdminHandler_ProfilePhoto(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/profile-photo", "")
	assert.JSONEq(t, `{"url":"`+service.DefaultProfilePhoto+`"}`, rr.Body.String())

	rr = api.do(t, http.MethodPut, "/api/admin/profile-photo", `{"url":"https://example.com/uploads/profile/me.png"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, http.MethodGet, "/api/profile-photo", "")
	assert.JSONEq(t, `{"url":"https://example.com/uploads/profile/me.png"}`, rr.Body.String())

	rr = api.do(t, http.MethodPut, "/api/admin/profile-photo", `{"url":"javascript:alert(1)"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminHandler_Tab(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/admin/tab", "")
	assert.JSONEq(t, `{"tab":"projects"}`, rr.Body.String())

	rr = api.do(t, http.MethodPut, "/api/admin/tab", `{"tab":"comments"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, http.MethodGet, "/api/admin/tab", "")
	assert.JSONEq(t, `{"tab":"comments"}`, rr.Body.String())

	rr = api.do(t, http.MethodPut, "/api/admin/tab", `{"tab":"billing"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// =========================================================================
// AUTH
// =========================================================================

func newAuthHandler(t *testing.T, github service.GitHubIdentity) (*handler.AuthHandler, *auth.TokenService) {
	t.Helper()
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	hash, err := passwords.Hash("correct-horse")
	require.NoError(t, err)

	tokens, err := auth.NewTokenService("handler-test-secret-123")
	require.NoError(t, err)

	svc := service.NewAuthService(
		service.AdminCredentials{Email: "owner@example.com", PasswordHash: hash, GitHubLogin: "owner"},
		tokens, passwords, github, quietLogger(),
	)
	return handler.NewAuthHandler(svc, true, quietLogger()), tokens
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	h, tokens := newAuthHandler(t, nil)

	t.Run("success sets session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"owner@example.com","password":"correct-horse"}`))
		rr := httptest.NewRecorder()
		h.HandleLogin(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		c := sessionCookie(rr)
		require.NotNil(t, c)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)

		subject, err := tokens.Validate(c.Value)
		require.NoError(t, err)
		assert.Equal(t, "admin:owner@example.com", subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"owner@example.com","password":"nope-nope"}`))
		rr := httptest.NewRecorder()
		h.HandleLogin(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, sessionCookie(rr))
		assert.Equal(t, "invalid email or password", decode[handler.ErrorResponse](t, rr).Message)
	})
}

func TestAuthHandler_LogoutAndMe(t *testing.T) {
	h, _ := newAuthHandler(t, nil)

	rr := httptest.NewRecorder()
	h.HandleLogout(rr, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	c := sessionCookie(rr)
	require.NotNil(t, c)
	assert.Less(t, c.MaxAge, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req = req.WithContext(auth.WithSubject(req.Context(), "github:owner"))
	rr = httptest.NewRecorder()
	h.HandleMe(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"subject":"github:owner"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.HandleMe(rr, httptest.NewRequest(http.MethodGet, "/api/admin/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

type fakeGitHub struct{ login string }

func (f fakeGitHub) AuthURL(state string) string {
	return "https://github.example/authorize?state=" + state
}

func (f fakeGitHub) Exchange(context.Context, string) (*auth.GitHubUser, error) {
	return &auth.GitHubUser{ID: 1, Login: f.login}, nil
}

func TestAuthHandler_GitHubFlow(t *testing.T) {
	h, _ := newAuthHandler(t, fakeGitHub{login: "owner"})

	// start: state cookie + redirect carrying the same state
	rr := httptest.NewRecorder()
	h.HandleGitHubLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/github/login", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)

	var state *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "oauth_state" {
			state = c
		}
	}
	require.NotNil(t, state)
	assert.Contains(t, rr.Header().Get("Location"), "state="+state.Value)

	t.Run("matching state signs in", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state="+state.Value, nil)
		req.AddCookie(state)
		rr := httptest.NewRecorder()
		h.HandleGitHubCallback(rr, req)

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/admin", rr.Header().Get("Location"))
		assert.NotNil(t, sessionCookie(rr))
	})

	t.Run("state mismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=forged", nil)
		req.AddCookie(state)
		rr := httptest.NewRecorder()
		h.HandleGitHubCallback(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Nil(t, sessionCookie(rr))
	})

	t.Run("denied on GitHub", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?error=access_denied&state="+state.Value, nil)
		req.AddCookie(state)
		rr := httptest.NewRecorder()
		h.HandleGitHubCallback(rr, req)

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/admin?auth=denied", rr.Header().Get("Location"))
	})
}

func TestAuthHandler_GitHubWrongAccount(t *testing.T) {
	h, _ := newAuthHandler(t, fakeGitHub{login: "someone-else"})

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "s1"})
	rr := httptest.NewRecorder()
	h.HandleGitHubCallback(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Nil(t, sessionCookie(rr))
}

func TestAuthHandler_GitHubDisabled(t *testing.T) {
	h, _ := newAuthHandler(t, nil)

	rr := httptest.NewRecorder()
	h.HandleGitHubLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/github/login", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
