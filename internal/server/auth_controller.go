package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"commerce-api/internal/token"
	"commerce-api/internal/user"
)

// AuthController exposes signup, login, refresh, and logout.
type AuthController struct {
	users  *user.Service
	tokens *token.Service
	log    *slog.Logger
}

// NewAuthController wires an AuthController.
func NewAuthController(users *user.Service, tokens *token.Service, log *slog.Logger) *AuthController {
	return &AuthController{users: users, tokens: tokens, log: log}
}

// Signup handles POST /api/auth/signup.
func (ctrl *AuthController) Signup(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid signup request")
		return
	}

	u, err := ctrl.users.SignUp(c.Request.Context(), user.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			respondError(c, http.StatusConflict, "email already in use")
			return
		}
		ctrl.log.Error("signup failed", "error", err)
		respondError(c, http.StatusInternalServerError, "signup failed")
		return
	}

	respondOK(c, http.StatusCreated, "signup successful", userView(u))
}

// Login handles POST /api/auth/login: credentials in, token pair out.
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid login request")
		return
	}

	u, err := ctrl.users.VerifyCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		ctrl.log.Error("login failed", "error", err)
		respondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	pair, err := ctrl.tokens.Issue(c.Request.Context(), u.PublicID, u.Authorities())
	if err != nil {
		ctrl.log.Error("token issue failed", "error", err, "public_id", u.PublicID)
		respondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	respondOK(c, http.StatusOK, "login successful", pair)
}

// Refresh handles POST /api/auth/refresh, exchanging a refresh token for
// a new access token.
func (ctrl *AuthController) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid refresh request")
		return
	}

	accessToken, expiresAt, err := ctrl.tokens.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrSessionMismatch):
			respondError(c, http.StatusUnauthorized, "refresh token superseded or revoked")
		case errors.Is(err, token.ErrStoreUnavailable):
			ctrl.log.Error("refresh failed", "error", err)
			respondError(c, http.StatusInternalServerError, "refresh failed")
		default:
			respondError(c, http.StatusUnauthorized, "invalid refresh token")
		}
		return
	}

	respondOK(c, http.StatusOK, "token refreshed", gin.H{
		"grantType":            token.GrantType,
		"accessToken":          accessToken,
		"accessTokenExpiresAt": expiresAt,
	})
}

// Logout handles POST /api/auth/logout. The access token from the
// Authorization header is revoked: its refresh entry is deleted and the
// token itself blacklisted until natural expiry.
func (ctrl *AuthController) Logout(c *gin.Context) {
	raw, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		respondError(c, http.StatusBadRequest, "missing bearer token")
		return
	}

	if err := ctrl.tokens.Revoke(c.Request.Context(), raw); err != nil {
		if errors.Is(err, token.ErrStoreUnavailable) {
			ctrl.log.Error("logout failed", "error", err)
			respondError(c, http.StatusInternalServerError, "logout failed")
			return
		}
		respondError(c, http.StatusUnauthorized, "invalid token")
		return
	}

	respondOK(c, http.StatusOK, "logout successful", nil)
}
