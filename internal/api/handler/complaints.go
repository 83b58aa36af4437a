package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campusvoice/backend/internal/apperr"
	"campusvoice/backend/internal/complaint"
)

// badRequest turns a request decoding failure into a validation error.
func badRequest(err error) error {
	err = apperr.FromValidator(err)
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return apperr.NewValidationError(err, apperr.FieldError{Field: "body", Error: "could not be decoded"})
}

func complaintID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("complaint %q: %w", c.Param("id"), apperr.ErrNotFound)
	}
	return uint(id), nil
}

type submitRequest struct {
	Category    string `json:"category" form:"category"`
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

// Submit files a complaint. The category comes from the path when present,
// otherwise from the body. An optional "media" file may be attached.
func (h *Handler) Submit(c *gin.Context) {
	form := "/complaints/new"
	if p := c.Param("category"); p != "" {
		form += "/" + p
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	var req submitRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, badRequest(err), failure{form: form})
		return
	}
	if p := c.Param("category"); p != "" {
		req.Category = p
	}

	sub := complaint.Submission{Category: req.Category, Title: req.Title, Description: req.Description}
	if fh, err := c.FormFile("media"); err == nil {
		f, err := fh.Open()
		if err != nil {
			h.fail(c, err, failure{})
			return
		}
		defer f.Close()
		sub.Attachment = &complaint.Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		}
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		h.fail(c, badRequest(err), failure{form: form})
		return
	}

	created, err := h.Complaints.Submit(c.Request.Context(), actor(c), sub)
	if err != nil {
		h.fail(c, err, failure{forbidden: "complaint.submit_students_only", form: form})
		return
	}
	detail, err := h.Complaints.Detail(c.Request.Context(), actor(c), created.ID)
	if err != nil {
		h.fail(c, err, failure{})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   h.msg(c, "complaint.submitted"),
		"redirect":  fmt.Sprintf("/complaints/%d", created.ID),
		"complaint": detail,
	})
}

// Categories serves the category selection page.
func (h *Handler) Categories(c *gin.Context) {
	opts, err := h.Complaints.Categories(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, err, failure{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": opts})
}

func (h *Handler) List(c *gin.Context) {
	views, err := h.Complaints.List(c.Request.Context(), actor(c), complaint.ListFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Level:    c.Query("level"),
		Valid:    c.Query("valid"),
		Search:   c.Query("q"),
	})
	if err != nil {
		h.fail(c, err, failure{forbidden: "complaint.list_forbidden"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": views})
}

func (h *Handler) Detail(c *gin.Context) {
	id, err := complaintID(c)
	if err != nil {
		h.fail(c, err, failure{})
		return
	}
	d, err := h.Complaints.Detail(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, err, failure{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaint": d})
}

type validateRequest struct {
	Valid string `json:"valid" form:"valid"`
	Note  string `json:"note" form:"note"`
}

// Validate records a verdict. Only the exact value "true" counts as valid.
func (h *Handler) Validate(c *gin.Context) {
	id, err := complaintID(c)
	if err != nil {
		h.fail(c, err, failure{})
		return
	}
	var req validateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, badRequest(err), failure{form: c.Request.URL.Path})
		return
	}
	if err := h.Complaints.Validate(c.Request.Context(), actor(c), id, req.Valid == "true", req.Note); err != nil {
		h.fail(c, err, failure{forbidden: "complaint.validate_forbidden"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.msg(c, "complaint.validated"), "redirect": fmt.Sprintf("/complaints/%d", id)})
}

type statusRequest struct {
	Status string `json:"status" form:"status"`
	Level  string `json:"level" form:"level"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := complaintID(c)
	if err != nil {
		h.fail(c, err, failure{})
		return
	}
	var req statusRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, badRequest(err), failure{form: c.Request.URL.Path})
		return
	}
	if err := h.Complaints.UpdateStatus(c.Request.Context(), actor(c), id, req.Status, req.Level); err != nil {
		h.fail(c, err, failure{forbidden: "complaint.status_forbidden"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.msg(c, "complaint.status_updated"), "redirect": fmt.Sprintf("/complaints/%d", id)})
}
