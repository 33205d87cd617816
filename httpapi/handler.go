package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authkit "github.com/zetsy/authkit"
)

// Handler serves the /auth endpoints backed by an engine.
type Handler struct {
	engine *authkit.Engine
	logger *slog.Logger
}

// NewHandler binds an engine to the HTTP surface. A nil logger disables
// request-scoped logging.
func NewHandler(engine *authkit.Engine, logger *slog.Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: logger,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
	Picture  string `json:"picture"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and returns the user plus the initial token
// pair.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := authkit.WithClientIP(c.Request.Context(), c.ClientIP())
	result, err := h.engine.Register(ctx, authkit.RegisterRequest{
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
		Picture:  req.Picture,
		Social:   isSocial(c),
	})
	if err != nil {
		h.fail(c, "register", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"savedUser":    result.User,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

// Login authenticates an existing account.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := authkit.WithClientIP(c.Request.Context(), c.ClientIP())
	result, err := h.engine.Login(ctx, authkit.LoginRequest{
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
		Social:   isSocial(c),
	})
	if err != nil {
		h.fail(c, "login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         result.User,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

// ForgotPassword mails a single-use reset link.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := authkit.WithClientIP(c.Request.Context(), c.ClientIP())
	if err := h.engine.RequestPasswordReset(ctx, normalizeEmail(req.Email)); err != nil {
		h.fail(c, "forgot-password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reset link sent"})
}

// ResetPassword spends a mailed reset token and installs the new password.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := authkit.WithClientIP(c.Request.Context(), c.ClientIP())
	if _, err := h.engine.ConfirmPasswordReset(ctx, req.Token, req.Password); err != nil {
		h.fail(c, "reset-password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// VerifyEmail accepts the mailed verification link.
func (h *Handler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}

	ctx := authkit.WithClientIP(c.Request.Context(), c.ClientIP())
	result, err := h.engine.VerifyEmail(ctx, token)
	if err != nil {
		h.fail(c, "verify-email", err)
		return
	}

	if result.Already {
		c.String(http.StatusOK, "Email already verified.")
		return
	}
	c.String(http.StatusOK, "Email verified.")
}

// fail translates engine sentinels into HTTP statuses. Anything outside
// the public taxonomy becomes an opaque 500 with the detail logged.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, authkit.ErrDuplicateUser):
		status, message = http.StatusBadRequest, "user already exists"
	case errors.Is(err, authkit.ErrEmailRequired):
		status, message = http.StatusBadRequest, "email is required"
	case errors.Is(err, authkit.ErrPasswordPolicy):
		status, message = http.StatusBadRequest, "password does not meet policy"
	case errors.Is(err, authkit.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, authkit.ErrUserNotFound):
		if op == "login" {
			status, message = http.StatusUnauthorized, "email is not registered"
		} else {
			status, message = http.StatusNotFound, "user not found"
		}
	case errors.Is(err, authkit.ErrInvalidOrExpiredToken):
		status, message = http.StatusBadRequest, "invalid or expired token"
	case errors.Is(err, authkit.ErrTokenExpired),
		errors.Is(err, authkit.ErrTokenInvalid),
		errors.Is(err, authkit.ErrTokenMalformed):
		status, message = http.StatusBadRequest, "invalid token"
	case errors.Is(err, authkit.ErrNotifierFailure):
		status, message = http.StatusBadGateway, "mail delivery failed"
	}

	if h.logger != nil && status == http.StatusInternalServerError {
		h.logger.Error("auth operation failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}

	c.JSON(status, gin.H{"error": message})
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// isSocial reads the ?social= query flag used by login and register when
// the client completed a third-party provider flow first.
func isSocial(c *gin.Context) bool {
	return c.Query("social") == "true"
}
