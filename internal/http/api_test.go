package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/repository/sqlite"
	"devconnector/internal/service"
	"devconnector/internal/storage"
)

type memoryObjects struct {
	keys []string
}

func (m *memoryObjects) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	m.keys = append(m.keys, key)
	return "https://cdn.test/" + key, nil
}

func (m *memoryObjects) ListObjects(context.Context, string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (m *memoryObjects) DeletePrefix(context.Context, string) error { return nil }

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.NewStore(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tokens, err := service.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	users := service.NewUserService(store.Users)
	avatars := service.NewAvatarService(&memoryObjects{}, users, "avatars")

	handler := NewHandler(Deps{
		Users:    users,
		Tokens:   tokens,
		Profiles: service.NewProfileService(store.Profiles, store.Posts, store.Users, avatars, logger),
		Posts:    service.NewPostService(store.Posts, store.Users),
		GitHub:   service.NewGitHubService(service.GitHubConfig{ClientID: "client"}),
		Avatars:  avatars,
		Store:    store,
		Logger:   logger,
	})

	router := gin.New()
	handler.RegisterRoutes(router)
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(name, email string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/users", "", gin.H{"name": name, "email": email, "password": "secret123"})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp tokenResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPostFeedFlow(t *testing.T) {
	srv := newTestServer(t)
	annToken := srv.register("Ann", "ann@example.com")

	rec := srv.do(http.MethodPost, "/api/auth", "", gin.H{"email": "ann@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	annToken = decode[tokenResponse](t, rec).Token

	rec = srv.do(http.MethodPost, "/api/posts", annToken, gin.H{"text": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[PostResponse](t, rec)
	assert.Equal(t, "hello", created.Text)
	assert.Equal(t, "Ann", created.Name)

	rec = srv.do(http.MethodGet, "/api/posts", annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"likes":[]`)
	assert.Contains(t, rec.Body.String(), `"comments":[]`)
	feed := decode[[]PostResponse](t, rec)
	require.Len(t, feed, 1)

	bobToken := srv.register("Bob", "bob@example.com")
	rec = srv.do(http.MethodPut, "/api/posts/like/"+created.ID, bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[PostResponse](t, rec).Likes, 1)

	rec = srv.do(http.MethodPut, "/api/posts/like/"+created.ID, bobToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Post already liked", decode[errorMessage](t, rec).Msg)

	rec = srv.do(http.MethodPut, "/api/posts/unlike/"+created.ID, bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[PostResponse](t, rec).Likes)

	rec = srv.do(http.MethodPost, "/api/posts/comment/"+created.ID, bobToken, gin.H{"text": "nice"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	withComment := decode[PostResponse](t, rec)
	require.Len(t, withComment.Comments, 1)
	commentID := withComment.Comments[0].ID

	rec = srv.do(http.MethodDelete, "/api/posts/comment/"+created.ID+"/"+commentID, annToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/posts/comment/"+created.ID+"/"+commentID, bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]CommentResponse](t, rec))

	rec = srv.do(http.MethodDelete, "/api/posts/"+created.ID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "User not authorized", decode[errorMessage](t, rec).Msg)

	rec = srv.do(http.MethodDelete, "/api/posts/"+created.ID, annToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Post removed", decode[errorMessage](t, rec).Msg)

	rec = srv.do(http.MethodGet, "/api/posts/"+created.ID, annToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = srv.do(http.MethodGet, "/api/posts/not-an-id", annToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthentication(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register("Ann", "ann@example.com")

	rec := srv.do(http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token, authorization denied", decode[errorMessage](t, rec).Msg)

	rec = srv.do(http.MethodGet, "/api/auth", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is not valid", decode[errorMessage](t, rec).Msg)

	req := httptest.NewRequest(http.MethodGet, "/api/auth", nil)
	req.Header.Set("x-auth-token", token)
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decode[UserResponse](t, rec)
	assert.Equal(t, "ann@example.com", me.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = srv.do(http.MethodPost, "/api/auth", "", gin.H{"email": "ann@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"errors":[{"msg":"Invalid Credentials"}]}`, rec.Body.String())
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/users", "", gin.H{"name": "", "email": "nope", "password": "abc"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":[
		{"msg":"Name is required"},
		{"msg":"Please include a valid email"},
		{"msg":"Password must contain min 5 characters"}
	]}`, rec.Body.String())

	srv.register("Ann", "ann@example.com")
	rec = srv.do(http.MethodPost, "/api/users", "", gin.H{"name": "Ann", "email": "ann@example.com", "password": "secret123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":[{"msg":"User already exists"}]}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterLongPassword(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/users", "", gin.H{"name": "Ann", "email": "ann@example.com", "password": strings.Repeat("p", 80)})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":[{"msg":"Password must contain at most 72 bytes"}]}`, rec.Body.String())

	// 40 runes pass the binding check but are 80 bytes
	rec = srv.do(http.MethodPost, "/api/users", "", gin.H{"name": "Ann", "email": "ann@example.com", "password": strings.Repeat("é", 40)})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":[{"msg":"Password must contain at most 72 bytes"}]}`, rec.Body.String())
}

func TestBindErrorsDoNotLeakDetails(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users", iotest.ErrReader(errors.New("read tcp 10.0.0.7:5000: connection reset by peer")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":[{"msg":"Invalid request body"}]}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":[{"msg":"Request body is not valid JSON"}]}`, rec.Body.String())
}

func TestProfileFlow(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register("Ann", "ann@example.com")

	rec := srv.do(http.MethodGet, "/api/profiles/me", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "There is no profile for this user", decode[errorMessage](t, rec).Msg)

	rec = srv.do(http.MethodPost, "/api/profiles", token, gin.H{"bio": "hi"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":[{"msg":"Status is required"},{"msg":"Skills is required"}]}`, rec.Body.String())

	rec = srv.do(http.MethodPost, "/api/profiles", token, gin.H{
		"status": "Developer",
		"skills": "go, sql",
		"github": "ann",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decode[ProfileResponse](t, rec)
	assert.Equal(t, []string{"go", "sql"}, profile.Skills)
	assert.Equal(t, "Ann", profile.User.Name)

	rec = srv.do(http.MethodPut, "/api/profiles/experience", token, gin.H{
		"title": "Engineer", "company": "Acme", "from": "2020-01-15",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile = decode[ProfileResponse](t, rec)
	require.Len(t, profile.Experience, 1)
	assert.Equal(t, "2020-01-15T00:00:00Z", profile.Experience[0].From)

	rec = srv.do(http.MethodPut, "/api/profiles/education", token, gin.H{
		"school": "MIT", "degree": "BSc", "from": "yesterday",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/profiles/experience/unknown", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/profiles/experience/"+profile.Experience[0].ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[ProfileResponse](t, rec).Experience)

	rec = srv.do(http.MethodGet, "/api/profiles/all", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ProfileResponse](t, rec), 1)

	rec = srv.do(http.MethodGet, "/api/profiles/user/"+profile.User.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodPost, "/api/posts", token, gin.H{"text": "bye"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(http.MethodDelete, "/api/profiles", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User deleted", decode[errorMessage](t, rec).Msg)

	rec = srv.do(http.MethodGet, "/api/profiles/user/"+profile.User.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = srv.do(http.MethodGet, "/api/users/all", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]UserResponse](t, rec))
}

func TestAvatarUpload(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register("Ann", "ann@example.com")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/users/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decode[UserResponse](t, rec)
	assert.True(t, strings.HasPrefix(user.Avatar, "https://cdn.test/avatars/"+user.ID+"/"), user.Avatar)

	rec = srv.do(http.MethodPut, "/api/users/avatar", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGitHubRedirectAndHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/api/profiles/github/octo", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "login=octo")

	rec = srv.do(http.MethodGet, "/api/profiles/github/callback", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	h := WithCORS(srv.router, []string{"http://app.test"})

	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "x-auth-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))
}
