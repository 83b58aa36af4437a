package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusvoice/backend/internal/apperr"
)

type errorResponse struct {
	Error         string              `json:"error"`
	Message       string              `json:"message"`
	Redirect      string              `json:"redirect,omitempty"`
	Fields        []apperr.FieldError `json:"fields,omitempty"`
	AvailableAt   *time.Time          `json:"available_at,omitempty"`
	DaysRemaining int                 `json:"days_remaining,omitempty"`
}

// failure customizes how a workflow error is reported for one route.
type failure struct {
	// forbidden is the message key used for ErrUnauthorized.
	forbidden string
	// invalid overrides the message key used for field errors.
	invalid string
	// form is where the user is sent back to on field errors.
	form string
}

// fail reports err as a JSON error with a localized message and the page
// the user should return to. Unknown errors become 500s.
func (h *Handler) fail(c *gin.Context, err error, f failure) {
	var (
		status int
		resp   errorResponse
		cd     *apperr.CooldownError
		verr   *apperr.ValidationError
	)
	switch {
	case errors.As(err, &cd):
		status = http.StatusTooManyRequests
		days := int((cd.Remaining + 24*time.Hour - 1) / (24 * time.Hour))
		at := cd.AvailableAt
		resp = errorResponse{
			Error:         "cooldown_active",
			Message:       h.Localizer.Format(h.lang(c), "complaint.cooldown_days", cd.Category.Label(), days),
			Redirect:      "/complaints/new/" + string(cd.Category),
			AvailableAt:   &at,
			DaysRemaining: days,
		}
	case errors.Is(err, apperr.ErrCooldownActive):
		status = http.StatusTooManyRequests
		resp = errorResponse{Error: "cooldown_active", Message: h.msg(c, "complaint.cooldown"), Redirect: "/complaints/new"}
	case errors.Is(err, apperr.ErrUnauthorized):
		key := f.forbidden
		if key == "" {
			key = "error.unauthorized"
		}
		status = http.StatusForbidden
		resp = errorResponse{Error: "unauthorized", Message: h.msg(c, key), Redirect: "/dashboard"}
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
		resp = errorResponse{Error: "not_found", Message: h.msg(c, "error.not_found"), Redirect: "/complaints"}
	case errors.Is(err, apperr.ErrInvalidCategory):
		status = http.StatusBadRequest
		resp = errorResponse{Error: "invalid_category", Message: h.msg(c, "complaint.invalid_category"), Redirect: "/complaints/new"}
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		key := f.invalid
		if key == "" {
			key = "error.validation"
		}
		resp = errorResponse{Error: "validation_failed", Message: h.msg(c, key), Redirect: f.form, Fields: verr.Fields}
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		status = http.StatusInternalServerError
		resp = errorResponse{Error: "internal", Message: h.msg(c, "error.internal")}
	}
	c.AbortWithStatusJSON(status, resp)
}
