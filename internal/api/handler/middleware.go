package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"campusvoice/backend/internal/account"
)

// RequestLogger logs one line per request, at error level for 5xx and warn
// level for 4xx responses.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			slog.ErrorContext(ctx, "request", attrs...)
		case status >= http.StatusBadRequest:
			slog.WarnContext(ctx, "request", attrs...)
		default:
			slog.InfoContext(ctx, "request", attrs...)
		}
	}
}

func (h *Handler) token(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := c.Cookie(h.CookieName); err == nil {
		return cookie
	}
	return ""
}

// RequireAuth resolves the session token and stores the caller's Actor,
// rebuilt from the stored user, on the context.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := h.token(c)
		if tokenString == "" {
			h.unauthenticated(c, "error.unauthenticated")
			return
		}
		user, cl, err := h.Accounts.Authenticate(c.Request.Context(), tokenString)
		switch {
		case errors.Is(err, account.ErrInactive):
			h.unauthenticated(c, "auth.inactive")
			return
		case errors.Is(err, account.ErrInvalidToken):
			h.unauthenticated(c, "error.unauthenticated")
			return
		case err != nil:
			h.fail(c, err, failure{})
			return
		}
		c.Set(ctxActor, user.Actor())
		c.Set(ctxClaims, cl)
		c.Next()
	}
}

func (h *Handler) unauthenticated(c *gin.Context, key string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
		Error:    "unauthenticated",
		Message:  h.msg(c, key),
		Redirect: "/login",
	})
}

// WithCORS lets the external presentation layer call the API from origins.
func WithCORS(next http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept-Language"},
		AllowCredentials: true,
	}).Handler(next)
}
