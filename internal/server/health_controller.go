package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"commerce-api/internal/token"
)

// HealthController reports service liveness and credential-store health.
type HealthController struct {
	store *token.Store
}

func NewHealthController(store *token.Store) *HealthController {
	return &HealthController{store: store}
}

// Health handles GET /healthz.
func (ctrl *HealthController) Health(c *gin.Context) {
	if ctrl.store != nil {
		if err := ctrl.store.Ping(c.Request.Context()); err != nil {
			respondError(c, http.StatusServiceUnavailable, "credential store unreachable")
			return
		}
	}
	respondOK(c, http.StatusOK, "ok", nil)
}
