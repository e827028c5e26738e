package server

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"commerce-api/internal/token"
	"commerce-api/internal/user"
)

// Deps bundles everything the router needs.
type Deps struct {
	Users  *user.Service
	Tokens *token.Service
	Store  *token.Store
	Log    *slog.Logger
}

// NewRouter builds the gin engine: middleware chain, authentication gate,
// and all routes.
func NewRouter(deps Deps) *gin.Engine {
	binding.Validator = &defaultValidator{}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORS())
	r.Use(requestid.New())
	r.Use(RequestLogger(deps.Log))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(AuthGate(deps.Tokens, deps.Log))

	health := NewHealthController(deps.Store)
	auth := NewAuthController(deps.Users, deps.Tokens, deps.Log)
	users := NewUserController(deps.Users, deps.Log)

	r.GET("/healthz", health.Health)

	api := r.Group("/api")
	{
		a := api.Group("/auth")
		{
			a.POST("/signup", auth.Signup)
			a.POST("/login", auth.Login)
			a.POST("/refresh", auth.Refresh)
			a.POST("/logout", RequireAuth(), auth.Logout)
		}

		u := api.Group("/users")
		{
			u.GET("/me", RequireAuth(), users.Me)
			u.DELETE("/me", RequireAuth(), users.Deactivate)
			u.GET("/:publicId", users.GetByPublicID)
			u.GET("/email/:email", users.GetByEmail)
		}
	}

	return r
}
