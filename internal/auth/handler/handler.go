package handler

import (
	"net/http"
	"time"

	"inspection_portal/internal/auth/service"
	"inspection_portal/internal/auth/transport"
	"inspection_portal/platform/config"
	"inspection_portal/platform/httpkit"
	"inspection_portal/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	cfg config.SessionConfig
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, cfg config.SessionConfig, val *validator.Validator) *Handler {
	return &Handler{svc: svc, cfg: cfg, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.POST("/forgot-password", h.ForgotPassword)
	rg.POST("/reset-password", h.ResetPassword)
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return false
	}
	return true
}

// Login POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password, httpkit.Meta(c))
	if httpkit.HandleError(c, err) {
		return
	}

	h.setSessionCookie(c, result.Token, time.Until(result.ExpiresAt))
	httpkit.OK(c, result)
}

// Logout POST /api/v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	if raw, ok := httpkit.SessionToken(c, h.cfg.GetSessionCookieName()); ok {
		h.svc.Logout(c.Request.Context(), raw)
	}

	h.clearSessionCookie(c)
	httpkit.OK(c, gin.H{"message": "signed out"})
}

// Me GET /api/v1/auth/me
func (h *Handler) Me(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	profile, err := h.svc.Me(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, profile)
}

// ChangePassword POST /api/v1/auth/change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}

	err := h.svc.ChangePassword(c.Request.Context(), identity.UserID(), identity.SessionID(), req.CurrentPassword, req.NewPassword)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "password updated"})
}

// ListUsers GET /api/v1/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, users)
}

// ForgotPassword POST /api/v1/auth/forgot-password
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req transport.ForgotPasswordRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		_ = c.Error(err)
	}
	httpkit.OK(c, gin.H{"message": "if the account exists, a reset link will be sent"})
}

// ResetPassword POST /api/v1/auth/reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var req transport.ResetPasswordRequest
	if !h.bind(c, &req) {
		return
	}

	if httpkit.HandleError(c, h.svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)) {
		return
	}

	h.clearSessionCookie(c)
	httpkit.OK(c, gin.H{"message": "password reset"})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, ttl time.Duration) {
	c.SetSameSite(h.cfg.GetSessionCookieSameSite())
	c.SetCookie(
		h.cfg.GetSessionCookieName(),
		value,
		int(ttl/time.Second),
		h.cfg.GetSessionCookiePath(),
		h.cfg.GetSessionCookieDomain(),
		h.cfg.GetSessionCookieSecure(),
		true,
	)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(h.cfg.GetSessionCookieSameSite())
	c.SetCookie(
		h.cfg.GetSessionCookieName(),
		"",
		-1,
		h.cfg.GetSessionCookiePath(),
		h.cfg.GetSessionCookieDomain(),
		h.cfg.GetSessionCookieSecure(),
		true,
	)
}
