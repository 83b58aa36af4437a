package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusvoice/backend/internal/account"
)

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login checks the credentials and returns a token, also set as a cookie.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.unauthenticated(c, "auth.invalid_credentials")
		return
	}

	sess, err := h.Accounts.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		h.unauthenticated(c, "auth.invalid_credentials")
		return
	case errors.Is(err, account.ErrInactive):
		h.unauthenticated(c, "auth.inactive")
		return
	case err != nil:
		h.fail(c, err, failure{})
		return
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.CookieName, sess.Token, maxAge, "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, gin.H{
		"message":    h.msg(c, "auth.logged_in"),
		"redirect":   "/dashboard",
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
		"user":       sess.User,
	})
}

// Logout revokes the current token and clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Accounts.Logout(c.Request.Context(), claims(c)); err != nil {
		h.fail(c, err, failure{})
		return
	}
	c.SetCookie(h.CookieName, "", -1, "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, gin.H{"message": h.msg(c, "auth.logged_out"), "redirect": "/"})
}

func (h *Handler) RegisterStudent(c *gin.Context) {
	var req account.StudentRegistration
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, badRequest(err), failure{form: "/register/student"})
		return
	}
	user, err := h.Accounts.RegisterStudent(c.Request.Context(), req)
	if err != nil {
		f := failure{form: "/register/student"}
		if errors.Is(err, account.ErrEnrollmentTaken) {
			f.invalid = "register.enrollment_taken"
		}
		h.fail(c, err, f)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": h.msg(c, "register.student_ok"), "redirect": "/login", "user": user})
}

func (h *Handler) RegisterStaff(c *gin.Context) {
	var req account.StaffRegistration
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, badRequest(err), failure{form: "/register/staff"})
		return
	}
	user, err := h.Accounts.RegisterStaff(c.Request.Context(), req)
	if err != nil {
		f := failure{form: "/register/staff"}
		if errors.Is(err, account.ErrCollegeIDTaken) {
			f.invalid = "register.college_id_taken"
		}
		h.fail(c, err, f)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": h.msg(c, "register.staff_ok"), "redirect": "/login", "user": user})
}
