package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"catapi/internal/auth"
	"catapi/internal/config"
	"catapi/internal/handler"
	"catapi/internal/metrics"
	"catapi/internal/repository/memory"
	"catapi/internal/service"
)

// tokenStore keeps tokens in a map so the tests need no redis.
type tokenStore struct {
	mu        sync.Mutex
	refresh   map[string]string
	blacklist map[string]bool
}

func newTokenStore() *tokenStore {
	return &tokenStore{refresh: map[string]string{}, blacklist: map[string]bool{}}
}

func (s *tokenStore) StoreRefreshToken(_ context.Context, tokenID, userID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[tokenID] = userID
	return nil
}

func (s *tokenStore) GetRefreshToken(_ context.Context, tokenID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.refresh[tokenID]; ok {
		return id, nil
	}
	return "", assert.AnError
}

func (s *tokenStore) DeleteRefreshToken(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, tokenID)
	return nil
}

func (s *tokenStore) BlacklistAccessToken(_ context.Context, tokenID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[tokenID] = true
	return nil
}

func (s *tokenStore) IsAccessTokenBlacklisted(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blacklist[tokenID], nil
}

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *api {
	t.Helper()
	return newAPIWithUploads(t, t.TempDir())
}

func newAPIWithUploads(t *testing.T, uploadDir string) *api {
	t.Helper()
	cfg := &config.Config{UploadDir: uploadDir, DefaultLocation: "60.17,24.94"}
	cats := memory.NewCatRepo()
	users := memory.NewUserRepo()
	jwtService := auth.NewJWTService("test-secret")
	tokens := newTokenStore()

	e := echo.New()
	Register(e, cfg, zap.NewNop(), metrics.New(),
		Handlers{
			Cat:  handler.NewCatHandler(service.NewCatService(cats, users)),
			User: handler.NewUserHandler(service.NewUserService(users)),
			Auth: handler.NewAuthHandler(service.NewAuthService(users, jwtService, tokens)),
		},
		Security{JWT: jwtService, Tokens: tokens},
	)
	return &api{t: t, e: e}
}

func (a *api) do(method, path, token string, body interface{}) (int, map[string]interface{}, string) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return a.send(req, token)
}

func (a *api) send(req *http.Request, token string) (int, map[string]interface{}, string) {
	a.t.Helper()
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	raw := rec.Body.String()
	var obj map[string]interface{}
	if strings.HasPrefix(strings.TrimSpace(raw), "{") {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &obj))
	}
	return rec.Code, obj, raw
}

func (a *api) list(path, token string) (int, []map[string]interface{}) {
	a.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var arr []map[string]interface{}
	if rec.Code == http.StatusOK {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &arr))
	}
	return rec.Code, arr
}

func (a *api) signup(name, email, role string) string {
	a.t.Helper()
	body := map[string]string{"user_name": name, "email": email, "password": "secret1"}
	if role != "" {
		body["role"] = role
	}
	status, res, _ := a.do(http.MethodPost, "/users", "", body)
	require.Equal(a.t, http.StatusOK, status)
	assert.Equal(a.t, handler.MsgUserCreated, res["message"])
	return res["data"].(map[string]interface{})["_id"].(string)
}

func (a *api) login(email string) (string, string) {
	a.t.Helper()
	status, res, raw := a.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "secret1"})
	require.Equal(a.t, http.StatusOK, status, raw)
	return res["access_token"].(string), res["refresh_token"].(string)
}

func (a *api) createCat(token string, body map[string]interface{}) map[string]interface{} {
	a.t.Helper()
	status, res, raw := a.do(http.MethodPost, "/cats", token, body)
	require.Equal(a.t, http.StatusOK, status, raw)
	assert.Equal(a.t, handler.MsgCatCreated, res["message"])
	return res["data"].(map[string]interface{})
}

func catAt(name string, lat, lng float64) map[string]interface{} {
	return map[string]interface{}{
		"cat_name":  name,
		"weight":    4.2,
		"filename":  name + ".jpg",
		"birthdate": "2020-02-02",
		"location":  map[string]interface{}{"type": "Point", "coordinates": []float64{lng, lat}},
	}
}

func assertError(t *testing.T, status int, res map[string]interface{}, wantStatus int, wantMessage string) {
	t.Helper()
	assert.Equal(t, wantStatus, status)
	assert.Equal(t, float64(wantStatus), res["status"])
	if wantMessage != "" {
		assert.Equal(t, wantMessage, res["message"])
	}
	_, hasData := res["data"]
	assert.False(t, hasData)
}

func TestCreateThenGet_RoundTrip(t *testing.T) {
	a := newAPI(t)
	aliceID := a.signup("alice", "alice@example.com", "")
	token, _ := a.login("alice@example.com")

	created := a.createCat(token, catAt("miso", 5, 5))
	assert.Equal(t, aliceID, created["owner"])
	id := created["_id"].(string)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	status, got, _ := a.do(http.MethodGet, "/cats/"+id, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, got["_id"])
	assert.Equal(t, "miso", got["cat_name"])
	assert.Equal(t, 4.2, got["weight"])
	assert.Equal(t, "miso.jpg", got["filename"])
	assert.Equal(t, "2020-02-02T00:00:00Z", got["birthdate"])
	assert.Equal(t, created["location"], got["location"])
	assert.Equal(t, map[string]interface{}{
		"_id":       aliceID,
		"user_name": "alice",
		"email":     "alice@example.com",
	}, got["owner"])
}

func TestListCatsInArea(t *testing.T) {
	a := newAPI(t)
	a.signup("alice", "alice@example.com", "")
	token, _ := a.login("alice@example.com")

	status, res, _ := a.do(http.MethodGet, "/cats/area?topRight=10,10&bottomLeft=0,0", "", nil)
	assertError(t, status, res, http.StatusNotFound, "Cats not found")

	a.createCat(token, catAt("inside", 5, 5))
	a.createCat(token, catAt("outside", 15, 15))

	status, cats := a.list("/cats/area?topRight=10,10&bottomLeft=0,0", "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, cats, 1)
	assert.Equal(t, "inside", cats[0]["cat_name"])

	status, res, _ = a.do(http.MethodGet, "/cats/area?topRight=91,10", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, res["message"], "topRight")
	assert.Contains(t, res["message"], "Field is required: bottomLeft")
}

func TestListCats(t *testing.T) {
	a := newAPI(t)
	a.signup("alice", "alice@example.com", "")
	a.signup("bob", "bob@example.com", "")
	alice, _ := a.login("alice@example.com")
	bob, _ := a.login("bob@example.com")

	a.createCat(alice, catAt("miso", 1, 1))
	a.createCat(bob, catAt("mochi", 2, 2))

	status, all := a.list("/cats", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, all, 2)

	status, mine := a.list("/cats/user", bob)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, mine, 1)
	assert.Equal(t, "mochi", mine[0]["cat_name"])
	assert.Equal(t, "bob", mine[0]["owner"].(map[string]interface{})["user_name"])

	a.signup("carol", "carol@example.com", "")
	carol, _ := a.login("carol@example.com")
	status, none := a.list("/cats/user", carol)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, none)
}

func TestAuthenticatedRoutesRequireToken(t *testing.T) {
	a := newAPI(t)

	status, res, _ := a.do(http.MethodGet, "/cats/user", "", nil)
	assertError(t, status, res, http.StatusForbidden, "token not valid")

	status, res, _ = a.do(http.MethodGet, "/users/token", "garbage", nil)
	assertError(t, status, res, http.StatusForbidden, "token not valid")

	status, res, _ = a.do(http.MethodPost, "/cats", "", catAt("miso", 1, 1))
	assertError(t, status, res, http.StatusForbidden, "token not valid")
}

func TestUpdateCat_SelfPath(t *testing.T) {
	a := newAPI(t)
	aliceID := a.signup("alice", "alice@example.com", "")
	bobID := a.signup("bob", "bob@example.com", "")
	alice, _ := a.login("alice@example.com")
	bob, _ := a.login("bob@example.com")

	cat := a.createCat(alice, catAt("miso", 1, 1))
	id := cat["_id"].(string)

	status, res, _ := a.do(http.MethodPut, "/cats/"+id, bob, map[string]interface{}{"cat_name": "stolen"})
	assertError(t, status, res, http.StatusNotFound, "Cat not found")

	status, res, raw := a.do(http.MethodPut, "/cats/"+id, alice, map[string]interface{}{"cat_name": "mochi", "owner": bobID})
	require.Equal(t, http.StatusOK, status, raw)
	assert.Equal(t, handler.MsgCatUpdated, res["message"])
	data := res["data"].(map[string]interface{})
	assert.Equal(t, "mochi", data["cat_name"])
	assert.Equal(t, aliceID, data["owner"].(map[string]interface{})["_id"])

	status, res, _ = a.do(http.MethodPut, "/cats/"+id, alice, map[string]interface{}{"filename": "ab"})
	assertError(t, status, res, http.StatusBadRequest, "Must be at least 3 characters: filename")

	status, res, _ = a.do(http.MethodPut, "/cats/not-a-uuid", alice, map[string]interface{}{"cat_name": "mochi"})
	assertError(t, status, res, http.StatusBadRequest, "Must be a valid id: id")

	status, res, _ = a.do(http.MethodPut, "/cats/not-a-uuid/admin", alice, map[string]interface{}{"cat_name": "mochi"})
	assertError(t, status, res, http.StatusBadRequest, "Must be a valid id: id")
}

func TestCreateCat_ReportsEveryInvalidField(t *testing.T) {
	a := newAPI(t)
	a.signup("alice", "alice@example.com", "")
	alice, _ := a.login("alice@example.com")

	status, res, _ := a.do(http.MethodPost, "/cats", alice, map[string]interface{}{"weight": 1, "birthdate": "2020-01-01"})
	assertError(t, status, res, http.StatusBadRequest, "")
	msg := res["message"].(string)
	assert.Contains(t, msg, "Field is required: cat_name")
	assert.Contains(t, msg, "Field is required: filename")

	status, res, _ = a.do(http.MethodPost, "/cats", alice, map[string]interface{}{
		"cat_name": "miso", "weight": 1, "filename": "ab", "birthdate": "2020-01-01",
	})
	assertError(t, status, res, http.StatusBadRequest, "Must be at least 3 characters: filename")

	status, res, raw := a.do(http.MethodPost, "/cats", alice, map[string]interface{}{
		"cat_name": "miso", "weight": 0, "filename": "miso.jpg", "birthdate": "2020-01-01",
	})
	require.Equal(t, http.StatusOK, status, raw)
	assert.Equal(t, 0.0, res["data"].(map[string]interface{})["weight"])
}

func TestAdminRoutes(t *testing.T) {
	a := newAPI(t)
	a.signup("alice", "alice@example.com", "")
	bobID := a.signup("bob", "bob@example.com", "")
	a.signup("root", "root@example.com", "admin")
	alice, _ := a.login("alice@example.com")
	admin, _ := a.login("root@example.com")

	cat := a.createCat(alice, catAt("miso", 1, 1))
	id := cat["_id"].(string)
	missing := uuid.NewString()

	for _, target := range []string{id, missing} {
		status, res, _ := a.do(http.MethodPut, "/cats/"+target+"/admin", alice, map[string]interface{}{"owner": bobID})
		assertError(t, status, res, http.StatusNotFound, "You are not admin")

		status, res, _ = a.do(http.MethodDelete, "/cats/"+target+"/admin", alice, nil)
		assertError(t, status, res, http.StatusNotFound, "You are not admin")
	}

	status, res, raw := a.do(http.MethodPut, "/cats/"+id+"/admin", admin, map[string]interface{}{"owner": bobID})
	require.Equal(t, http.StatusOK, status, raw)
	assert.Equal(t, bobID, res["data"].(map[string]interface{})["owner"])

	status, res, _ = a.do(http.MethodDelete, "/cats/"+missing+"/admin", admin, nil)
	assertError(t, status, res, http.StatusNotFound, "Cat not found")

	status, res, _ = a.do(http.MethodDelete, "/cats/"+id+"/admin", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, handler.MsgCatDeleted, res["message"])
}

func TestDeleteCat(t *testing.T) {
	a := newAPI(t)
	a.signup("alice", "alice@example.com", "")
	alice, _ := a.login("alice@example.com")

	status, res, _ := a.do(http.MethodDelete, "/cats/"+uuid.NewString(), alice, nil)
	assertError(t, status, res, http.StatusNotFound, "Cat not found")

	status, res, _ = a.do(http.MethodDelete, "/cats/not-a-uuid", alice, nil)
	assertError(t, status, res, http.StatusBadRequest, "Must be a valid id: id")

	cat := a.createCat(alice, catAt("miso", 1, 1))
	id := cat["_id"].(string)
	status, res, _ = a.do(http.MethodDelete, "/cats/"+id, alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, handler.MsgCatDeleted, res["message"])
	assert.Equal(t, "alice", res["data"].(map[string]interface{})["owner"].(map[string]interface{})["user_name"])

	status, res, _ = a.do(http.MethodGet, "/cats/"+id, "", nil)
	assertError(t, status, res, http.StatusNotFound, "Cat not found")
}

func TestCreateCat_Multipart(t *testing.T) {
	a := newAPI(t)
	aliceID := a.signup("alice", "alice@example.com", "")
	alice, _ := a.login("alice@example.com")

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("cat", "photo.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, w.WriteField("cat_name", "miso"))
	require.NoError(t, w.WriteField("weight", "3.3"))
	require.NoError(t, w.WriteField("birthdate", "2021-03-04"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/cats", body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	status, res, raw := a.send(req, alice)
	require.Equal(t, http.StatusOK, status, raw)

	data := res["data"].(map[string]interface{})
	assert.Equal(t, aliceID, data["owner"])
	assert.True(t, strings.HasSuffix(data["filename"].(string), ".png"))
	assert.Equal(t, []interface{}{24.94, 60.17}, data["location"].(map[string]interface{})["coordinates"])
}

func TestCreateCat_MultipartInvalidLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	a := newAPIWithUploads(t, dir)
	a.signup("alice", "alice@example.com", "")
	alice, _ := a.login("alice@example.com")

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("cat", "photo.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, w.WriteField("weight", "3.3"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/cats", body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	status, res, _ := a.send(req, alice)
	assertError(t, status, res, http.StatusBadRequest, "")
	assert.Contains(t, res["message"].(string), "Field is required: cat_name")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUsers(t *testing.T) {
	a := newAPI(t)
	aliceID := a.signup("alice", "alice@example.com", "")

	status, res, raw := a.do(http.MethodPost, "/users", "", map[string]string{
		"user_name": "dup", "email": "alice@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, float64(http.StatusInternalServerError), res["status"])
	assert.NotContains(t, raw, "password")

	status, res, _ = a.do(http.MethodPost, "/users", "", map[string]string{"email": "nope", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, res["message"], "Field is required: user_name")
	assert.Contains(t, res["message"], "Must be a valid email: email")
	assert.Contains(t, res["message"], "Must be at least 6 characters: password")

	status, res, raw = a.do(http.MethodGet, "/users/"+aliceID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", res["user_name"])
	assert.NotContains(t, raw, "password")
	assert.NotContains(t, raw, "role")

	status, res, _ = a.do(http.MethodGet, "/users/"+uuid.NewString(), "", nil)
	assertError(t, status, res, http.StatusNotFound, "User not found")

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "role")

	token, _ := a.login("alice@example.com")
	status, res, _ = a.do(http.MethodGet, "/users/token", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"_id": aliceID, "user_name": "alice", "email": "alice@example.com"}, res)

	status, res, raw = a.do(http.MethodPut, "/users/current", token, map[string]string{"user_name": "alicia", "password": "newsecret", "role": "admin"})
	require.Equal(t, http.StatusOK, status, raw)
	assert.Equal(t, handler.MsgUserUpdated, res["message"])
	assert.Equal(t, "alicia", res["data"].(map[string]interface{})["user_name"])
	assert.NotContains(t, raw, "password")
	assert.NotContains(t, raw, "role")

	status, _, _ = a.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "alice@example.com", "password": "newsecret"})
	assert.Equal(t, http.StatusOK, status)

	status, res, raw = a.do(http.MethodDelete, "/users/current", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, handler.MsgUserDeleted, res["message"])
	assert.NotContains(t, raw, "password")

	status, res, _ = a.do(http.MethodDelete, "/users/current", token, nil)
	assertError(t, status, res, http.StatusNotFound, "User not found")
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t)
	a.signup("alice", "alice@example.com", "")

	status, res, _ := a.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "alice@example.com", "password": "wrong-pass"})
	assertError(t, status, res, http.StatusUnauthorized, "invalid email or password")

	access, refresh := a.login("alice@example.com")

	status, res, _ = a.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, status)
	renewed := res["access_token"].(string)
	assert.NotEmpty(t, renewed)

	status, res, _ = a.do(http.MethodPost, "/auth/logout", access, map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, handler.MsgLoggedOut, res["message"])

	status, res, _ = a.do(http.MethodGet, "/users/token", access, nil)
	assertError(t, status, res, http.StatusForbidden, "token not valid")

	status, res, _ = a.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": refresh})
	assertError(t, status, res, http.StatusUnauthorized, "invalid or expired refresh token")

	status, _, _ = a.do(http.MethodGet, "/users/token", renewed, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	a := newAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	status, res, _ := a.do(http.MethodGet, "/nope", "", nil)
	assertError(t, status, res, http.StatusNotFound, "Not Found")
}
