package handler

import (
	"github.com/gin-gonic/gin"

	"campusvoice/backend/internal/account"
	"campusvoice/backend/internal/complaint"
	"campusvoice/backend/internal/localization"
	"campusvoice/backend/internal/models"
)

const (
	defaultCookieName = "campus_session"
	// maxUploadBytes caps the multipart body of a submission.
	maxUploadBytes = 10 << 20

	ctxActor  = "actor"
	ctxClaims = "claims"
)

// Handler holds the services the HTTP routes call into.
type Handler struct {
	Complaints *complaint.Service
	Accounts   *account.Service
	Localizer  *localization.Localizer
	CookieName string
}

func NewHandler(complaints *complaint.Service, accounts *account.Service, loc *localization.Localizer, cookieName string) *Handler {
	if loc == nil {
		loc = localization.Default()
	}
	if cookieName == "" {
		cookieName = defaultCookieName
	}
	return &Handler{Complaints: complaints, Accounts: accounts, Localizer: loc, CookieName: cookieName}
}

func (h *Handler) lang(c *gin.Context) string {
	return h.Localizer.Match(c.GetHeader("Accept-Language"))
}

func (h *Handler) msg(c *gin.Context, key string) string {
	return h.Localizer.GetString(h.lang(c), key)
}

// actor returns the caller set by the authentication middleware.
func actor(c *gin.Context) models.Actor {
	if a, ok := c.Get(ctxActor); ok {
		return a.(models.Actor)
	}
	return models.Actor{}
}

func claims(c *gin.Context) *account.Claims {
	if v, ok := c.Get(ctxClaims); ok {
		return v.(*account.Claims)
	}
	return nil
}
