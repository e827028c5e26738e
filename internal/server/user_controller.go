package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"commerce-api/internal/user"
)

// UserView is the public projection of a user record. Password hash and
// internal numeric ID never leave the service.
type UserView struct {
	PublicID  string    `json:"publicId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func userView(u *user.User) UserView {
	return UserView{
		PublicID:  u.PublicID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserController exposes directory lookups.
type UserController struct {
	users *user.Service
	log   *slog.Logger
}

// NewUserController wires a UserController.
func NewUserController(users *user.Service, log *slog.Logger) *UserController {
	return &UserController{users: users, log: log}
}

// Me handles GET /api/users/me for the authenticated principal.
func (ctrl *UserController) Me(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		abortError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	u, err := ctrl.users.FindByPublicID(c.Request.Context(), id.Subject)
	if err != nil {
		ctrl.respondLookupError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "lookup successful", userView(u))
}

// GetByPublicID handles GET /api/users/:publicId.
func (ctrl *UserController) GetByPublicID(c *gin.Context) {
	u, err := ctrl.users.FindByPublicID(c.Request.Context(), c.Param("publicId"))
	if err != nil {
		ctrl.respondLookupError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "lookup successful", userView(u))
}

// GetByEmail handles GET /api/users/email/:email.
func (ctrl *UserController) GetByEmail(c *gin.Context) {
	u, err := ctrl.users.FindByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		ctrl.respondLookupError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "lookup successful", userView(u))
}

// Deactivate handles DELETE /api/users/me: soft-deletes the caller.
func (ctrl *UserController) Deactivate(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		abortError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := ctrl.users.Deactivate(c.Request.Context(), id.Subject); err != nil {
		ctrl.respondLookupError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "account deactivated", nil)
}

func (ctrl *UserController) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, user.ErrNotFound) {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	ctrl.log.Error("user lookup failed", "error", err)
	respondError(c, http.StatusInternalServerError, "lookup failed")
}
