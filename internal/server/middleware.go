package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"commerce-api/internal/token"
)

const bearerPrefix = "Bearer "

// identityKey is the gin-context key the gate stores the identity under.
const identityKey = "identity"

// bearerToken extracts the token from an Authorization header value. The
// prefix match is exact: "Bearer " with a single trailing space, case
// sensitive. Anything else counts as no token presented.
func bearerToken(value string) (string, bool) {
	if !strings.HasPrefix(value, bearerPrefix) {
		return "", false
	}
	tok := value[len(bearerPrefix):]
	if tok == "" {
		return "", false
	}
	return tok, true
}

// AuthGate is the per-request authentication filter. A valid bearer token
// establishes the request identity; an absent, malformed, expired, or
// blacklisted one leaves the request anonymous. The gate itself never
// rejects a request and never lets a token failure escape.
func AuthGate(tokens *token.Service, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if ok && tokens.IsValid(c.Request.Context(), raw) {
			id, err := tokens.Authenticate(raw)
			if err != nil {
				log.Debug("token rejected at gate", "path", c.Request.URL.Path, "error", err)
			} else {
				c.Set(identityKey, id)
				c.Request = c.Request.WithContext(token.WithIdentity(c.Request.Context(), id))
			}
		}
		c.Next()
	}
}

// RequireAuth converts an anonymous request into a 401 on routes that
// demand an authenticated principal.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identityFrom(c); !ok {
			abortError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) (*token.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*token.Identity)
	return id, ok
}

// CORS applies the fixed cross-origin policy for browser clients.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Max-Age", "86400")
		h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Origin, Authorization, Accept, Accept-Encoding")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request with method, path, status, and
// duration, tagged with the request ID.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", requestid.Get(c),
		)
	}
}
