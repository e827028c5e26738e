package server

import (
	"context"
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
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGateHarness(t *testing.T) (*gin.Engine, *token.Service) {
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
	tokens := token.NewService(manager, token.NewStore(rdb), log)

	r := gin.New()
	r.Use(AuthGate(tokens, log))
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := identityFrom(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		// the identity must also be visible through the request context
		ctxID, ctxOK := token.IdentityFromContext(c.Request.Context())
		require.True(t, ctxOK)
		require.Equal(t, id.Subject, ctxID.Subject)

		c.JSON(http.StatusOK, gin.H{"anonymous": false, "subject": id.Subject})
	})
	r.GET("/protected", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return r, tokens
}

func doGet(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthGate_NoHeaderProceedsAnonymously(t *testing.T) {
	r, _ := newGateHarness(t)

	w := doGet(r, "/whoami", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"anonymous":true`)
}

func TestAuthGate_WrongPrefixEqualsNoToken(t *testing.T) {
	r, _ := newGateHarness(t)

	for _, header := range []string{
		"Basic xyz",
		"bearer sometoken", // lowercase prefix does not count
		"Bearer",           // missing trailing space
		"Bearer ",          // empty token
	} {
		w := doGet(r, "/whoami", header)
		require.Equal(t, http.StatusOK, w.Code, "header %q", header)
		require.Contains(t, w.Body.String(), `"anonymous":true`, "header %q", header)
	}
}

func TestAuthGate_ValidTokenEstablishesIdentity(t *testing.T) {
	r, tokens := newGateHarness(t)

	pair, err := tokens.Issue(context.Background(), "u-123", []string{"ROLE_USER"})
	require.NoError(t, err)

	w := doGet(r, "/whoami", "Bearer "+pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"subject":"u-123"`)
}

func TestAuthGate_InvalidTokenProceedsAnonymously(t *testing.T) {
	r, _ := newGateHarness(t)

	w := doGet(r, "/whoami", "Bearer not.a.jwt")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"anonymous":true`)
}

func TestAuthGate_RevokedTokenProceedsAnonymously(t *testing.T) {
	r, tokens := newGateHarness(t)
	ctx := context.Background()

	pair, err := tokens.Issue(ctx, "u-123", []string{"ROLE_USER"})
	require.NoError(t, err)
	require.NoError(t, tokens.Revoke(ctx, pair.AccessToken))

	w := doGet(r, "/whoami", "Bearer "+pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"anonymous":true`)
}

func TestRequireAuth(t *testing.T) {
	r, tokens := newGateHarness(t)

	w := doGet(r, "/protected", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doGet(r, "/protected", "Basic xyz")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	pair, err := tokens.Issue(context.Background(), "u-123", []string{"ROLE_USER"})
	require.NoError(t, err)

	w = doGet(r, "/protected", "Bearer "+pair.AccessToken)
	require.Equal(t, http.StatusNoContent, w.Code)
}
