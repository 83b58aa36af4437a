package complaint

import (
	"context"
	"strconv"
	"strings"
	"time"

	"campusvoice/backend/internal/apperr"
	"campusvoice/backend/internal/models"
	"campusvoice/backend/internal/policy"
	"campusvoice/backend/internal/storage"
)

// View is a complaint as shown to a particular viewer. Student is set only
// for the owner; StudentDepartment only for the owner and staff.
type View struct {
	ID                uint            `json:"id"`
	Category          models.Category `json:"category"`
	CategoryLabel     string          `json:"category_label"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	MediaURL          string          `json:"media_url,omitempty"`
	Status            models.Status   `json:"status"`
	Level             models.Level    `json:"level"`
	IsValid           bool            `json:"is_valid"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	IsOwner           bool            `json:"is_owner"`
	StudentDepartment string          `json:"student_department,omitempty"`
	Student           *StudentInfo    `json:"student,omitempty"`
}

type StudentInfo struct {
	ID               uint   `json:"id"`
	Username         string `json:"username"`
	FullName         string `json:"full_name"`
	EnrollmentNumber string `json:"enrollment_number,omitempty"`
	Department       string `json:"department"`
}

// DetailView adds the review history, which only staff receive.
type DetailView struct {
	View
	Validations []models.ValidationLog `json:"validations,omitempty"`
}

func (s *Service) view(viewer models.Actor, c *models.Complaint) View {
	v := View{
		ID:            c.ID,
		Category:      c.Category,
		CategoryLabel: c.Category.Label(),
		Title:         c.Title,
		Description:   c.Description,
		Status:        c.Status,
		Level:         c.Level,
		IsValid:       c.IsValid,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if c.Media != "" && s.Media != nil {
		v.MediaURL = s.Media.URL(c.Media)
	}

	switch policy.StudentExposure(viewer, c) {
	case policy.ExposeFull:
		v.IsOwner = true
		if c.Student != nil {
			v.StudentDepartment = c.Student.Department
			v.Student = &StudentInfo{
				ID:               c.Student.ID,
				Username:         c.Student.Username,
				FullName:         c.Student.FullName(),
				EnrollmentNumber: c.Student.EnrollmentNumber,
				Department:       c.Student.Department,
			}
		}
	case policy.ExposeDepartment:
		if c.Student != nil {
			v.StudentDepartment = c.Student.Department
		}
	}
	return v
}

// ListFilter holds raw query values. Values that do not parse are ignored
// rather than rejected.
type ListFilter struct {
	Category string
	Status   string
	Level    string
	Valid    string
	Search   string
}

func (f ListFilter) storageFilter() storage.ComplaintFilter {
	var out storage.ComplaintFilter
	if c, ok := models.ParseCategory(f.Category); ok {
		out.Category = c
	}
	if st, ok := models.ParseStatus(strings.ToUpper(f.Status)); ok {
		out.Status = st
	}
	if lv, ok := models.ParseLevel(strings.ToUpper(f.Level)); ok {
		out.Level = lv
	}
	if f.Valid != "" {
		if b, err := strconv.ParseBool(f.Valid); err == nil {
			out.IsValid = &b
		}
	}
	out.Search = strings.TrimSpace(f.Search)
	return out
}

// List returns the student's own complaints, or every complaint for staff.
func (s *Service) List(ctx context.Context, actor models.Actor, f ListFilter) ([]View, error) {
	filter := f.storageFilter()
	switch {
	case policy.CanPerform(actor.Role, policy.ViewOwnComplaints):
		id := actor.UserID
		filter.StudentID = &id
	case policy.CanPerform(actor.Role, policy.ViewAllComplaints):
	default:
		return nil, apperr.Unauthorized(string(policy.ViewAllComplaints))
	}

	complaints, err := s.Storage.ListComplaints(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(complaints))
	for i := range complaints {
		views = append(views, s.view(actor, &complaints[i]))
	}
	return views, nil
}

// Detail shows one complaint to any authenticated viewer.
func (s *Service) Detail(ctx context.Context, actor models.Actor, complaintID uint) (*DetailView, error) {
	if _, ok := models.ParseRole(string(actor.Role)); !ok {
		return nil, apperr.Unauthorized("viewComplaint")
	}
	c, err := s.Storage.GetComplaintByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	d := &DetailView{View: s.view(actor, c)}
	if actor.Role.IsStaff() {
		if d.Validations, err = s.Storage.ListValidationLogs(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	return d, nil
}
