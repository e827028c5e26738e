package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"commerce-api/internal/token"
	"commerce-api/internal/user"
)

type apiHarness struct {
	router http.Handler
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	manager, err := token.NewManager(token.Config{
		Secret:     []byte("test-secret-with-enough-entropy"),
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 14 * 24 * time.Hour,
	})
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := token.NewStore(rdb)

	router := NewRouter(Deps{
		Users:  user.NewService(user.NewMemoryRepository(), log),
		Tokens: token.NewService(manager, store, log),
		Store:  store,
		Log:    log,
	})

	return &apiHarness{router: router}
}

func (h *apiHarness) do(t *testing.T, method, path, bearer string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	parsed := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func (h *apiHarness) signupAndLogin(t *testing.T, email string) (accessToken, refreshToken, publicID string) {
	t.Helper()

	w, _ := h.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email": email, "password": "hunter2hunter2", "name": "Test User",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := h.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": email, "password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]any)
	require.Equal(t, "Bearer", data["grantType"])

	w, me := h.do(t, http.MethodGet, "/api/users/me", data["accessToken"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	id := me["data"].(map[string]any)["publicId"].(string)

	return data["accessToken"].(string), data["refreshToken"].(string), id
}

func TestAPI_SignupValidation(t *testing.T) {
	h := newAPIHarness(t)

	w, _ := h.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email": "not-an-email", "password": "hunter2hunter2", "name": "X",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = h.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email": "a@example.com", "password": "short", "name": "X",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_SignupDuplicateEmailConflicts(t *testing.T) {
	h := newAPIHarness(t)

	payload := gin.H{"email": "a@example.com", "password": "hunter2hunter2", "name": "A"}
	w, _ := h.do(t, http.MethodPost, "/api/auth/signup", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := h.do(t, http.MethodPost, "/api/auth/signup", "", payload)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, false, body["success"])
}

func TestAPI_LoginWrongPassword(t *testing.T) {
	h := newAPIHarness(t)
	h.signupAndLogin(t, "a@example.com")

	w, _ := h.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "a@example.com", "password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_UserLookups(t *testing.T) {
	h := newAPIHarness(t)
	_, _, publicID := h.signupAndLogin(t, "a@example.com")

	w, body := h.do(t, http.MethodGet, "/api/users/"+publicID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "a@example.com", body["data"].(map[string]any)["email"])

	w, body = h.do(t, http.MethodGet, "/api/users/email/a@example.com", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, publicID, body["data"].(map[string]any)["publicId"])

	w, _ = h.do(t, http.MethodGet, "/api/users/does-not-exist", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_RefreshAndLogoutLifecycle(t *testing.T) {
	h := newAPIHarness(t)
	accessToken, refreshToken, _ := h.signupAndLogin(t, "a@example.com")

	// refresh mints a usable access token
	w, body := h.do(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": refreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	newAccess := body["data"].(map[string]any)["accessToken"].(string)

	w, _ = h.do(t, http.MethodGet, "/api/users/me", newAccess, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// logout revokes the presented access token and the refresh session
	w, _ = h.do(t, http.MethodPost, "/api/auth/logout", accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(t, http.MethodGet, "/api/users/me", accessToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = h.do(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": refreshToken})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_RefreshSupersededByNewLogin(t *testing.T) {
	h := newAPIHarness(t)
	_, firstRefresh, _ := h.signupAndLogin(t, "a@example.com")

	// a second login overwrites the stored refresh entry
	w, _ := h.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "a@example.com", "password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": firstRefresh})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_DeactivateAccount(t *testing.T) {
	h := newAPIHarness(t)
	accessToken, _, publicID := h.signupAndLogin(t, "a@example.com")

	w, _ := h.do(t, http.MethodDelete, "/api/users/me", accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(t, http.MethodGet, "/api/users/"+publicID, "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_Health(t *testing.T) {
	h := newAPIHarness(t)

	w, body := h.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["success"])
}
