package handler

import (
	"github.com/gin-gonic/gin"
)

// StaticMedia serves locally stored attachments. Dir empty disables it.
type StaticMedia struct {
	URLPrefix string
	Dir       string
}

// NewRouter wires every route onto a new gin engine.
func NewRouter(h *Handler, media StaticMedia) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())
	r.MaxMultipartMemory = maxUploadBytes

	if media.Dir != "" && media.URLPrefix != "" {
		r.Static(media.URLPrefix, media.Dir)
	}

	r.GET("/", h.Welcome)
	r.GET("/healthz", h.Health)
	r.POST("/register/student", h.RegisterStudent)
	r.POST("/register/staff", h.RegisterStaff)
	r.POST("/login", h.Login)

	auth := r.Group("/", h.RequireAuth())
	{
		auth.POST("/logout", h.Logout)
		auth.GET("/dashboard", h.Dashboard)
		auth.GET("/notifications", h.Notifications)
		auth.GET("/credits", h.Credits)

		auth.GET("/complaints", h.List)
		auth.POST("/complaints", h.Submit)
		auth.GET("/complaints/new", h.Categories)
		auth.POST("/complaints/new/:category", h.Submit)
		auth.GET("/complaints/:id", h.Detail)
		auth.POST("/complaints/:id/validate", h.Validate)
		auth.POST("/complaints/:id/status", h.UpdateStatus)
	}
	return r
}
