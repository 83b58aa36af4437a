package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": h.msg(c, "welcome")})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.Complaints.Dashboard(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, err, failure{})
		return
	}
	c.JSON(http.StatusOK, d)
}

// Notifications returns the reviewer's open complaint count, or an empty
// object for callers that get no count.
func (h *Handler) Notifications(c *gin.Context) {
	n, ok, err := h.Complaints.NotificationCount(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, err, failure{})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications_count": n})
}

func (h *Handler) Credits(c *gin.Context) {
	ledger, err := h.Complaints.Credits(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, err, failure{})
		return
	}
	c.JSON(http.StatusOK, ledger)
}
