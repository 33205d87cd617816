package httpapi

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	authkit "github.com/zetsy/authkit"
)

// Router builds a gin engine with the /auth route group mounted.
func Router(engine *authkit.Engine, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if logger != nil {
		router.Use(RequestLogger(logger))
	}

	handler := NewHandler(engine, logger)

	group := router.Group("/auth")
	group.POST("/register", handler.Register)
	group.POST("/login", handler.Login)
	group.POST("/forgot-password", handler.ForgotPassword)
	group.POST("/reset-password", handler.ResetPassword)
	group.GET("/verify-email", handler.VerifyEmail)

	return router
}

// RequestLogger logs HTTP request/response metadata.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if logger == nil {
			return
		}
		logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.String("client_ip", c.ClientIP()),
			slog.String("latency", time.Since(start).String()),
		)
	}
}
