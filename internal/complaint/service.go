// Package complaint is the workflow engine of the complaint subsystem: it
// enforces the submission cooldown, the validation and credit reward
// transaction and the status and level updates done by staff.
package complaint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"campusvoice/backend/internal/apperr"
	"campusvoice/backend/internal/media"
	"campusvoice/backend/internal/models"
	"campusvoice/backend/internal/notify"
	"campusvoice/backend/internal/policy"
	"campusvoice/backend/internal/storage"
)

// Service handles the business logic for complaints.
type Service struct {
	Storage  storage.Storage
	Media    media.Store
	Notifier notify.Notifier
	now      func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMedia(m media.Store) Option {
	return func(s *Service) { s.Media = m }
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.Notifier = n }
}

// NewService creates a new complaint service.
func NewService(s storage.Storage, opts ...Option) *Service {
	svc := &Service{Storage: s, Notifier: notify.Noop{}, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Attachment is an optional file uploaded with a submission.
type Attachment struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type Submission struct {
	// Category is matched case-insensitively.
	Category    string
	Title       string
	Description string
	Attachment  *Attachment
}

const maxTitleLength = 200

func (sub Submission) validate() error {
	var fields []apperr.FieldError
	title := strings.TrimSpace(sub.Title)
	switch {
	case title == "":
		fields = append(fields, apperr.FieldError{Field: "title", Error: "required"})
	case len([]rune(title)) > maxTitleLength:
		fields = append(fields, apperr.FieldError{Field: "title", Error: fmt.Sprintf("at most %d characters", maxTitleLength)})
	}
	if strings.TrimSpace(sub.Description) == "" {
		fields = append(fields, apperr.FieldError{Field: "description", Error: "required"})
	}
	if len(fields) > 0 {
		return apperr.NewValidationError(errors.New("invalid complaint"), fields...)
	}
	return nil
}

// Submit files a new complaint for the student actor. The complaint insert
// and the student's last complaint timestamp are written in one transaction.
func (s *Service) Submit(ctx context.Context, actor models.Actor, sub Submission) (*models.Complaint, error) {
	if !policy.CanPerform(actor.Role, policy.SubmitComplaint) {
		return nil, apperr.Unauthorized(string(policy.SubmitComplaint))
	}
	category, ok := models.ParseCategory(sub.Category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidCategory, sub.Category)
	}
	if err := sub.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	// Checked before the upload so a blocked student does not store a file.
	if err := s.checkCooldown(ctx, s.Storage, actor.UserID, category, now); err != nil {
		return nil, err
	}

	mediaKey, err := s.saveAttachment(ctx, sub.Attachment)
	if err != nil {
		return nil, err
	}

	complaint := &models.Complaint{
		StudentID:   actor.UserID,
		Category:    category,
		Title:       strings.TrimSpace(sub.Title),
		Description: strings.TrimSpace(sub.Description),
		Media:       mediaKey,
		Status:      models.StatusOpen,
		Level:       models.LevelClass,
		CreatedAt:   now,
	}
	err = s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		if err := s.checkCooldown(ctx, tx, actor.UserID, category, now); err != nil {
			return err
		}
		if err := tx.CreateComplaint(ctx, complaint); err != nil {
			return err
		}
		return tx.SetLastComplaintAt(ctx, actor.UserID, now)
	})
	if err != nil {
		s.discardAttachment(ctx, mediaKey)
		return nil, err
	}

	slog.InfoContext(ctx, "complaint submitted",
		"complaint_id", complaint.ID, "student_id", actor.UserID, "category", category)

	alert := notify.Alert{ComplaintID: complaint.ID, Category: category, Title: complaint.Title, Department: actor.Department}
	if err := s.Notifier.ComplaintSubmitted(ctx, alert); err != nil {
		slog.WarnContext(ctx, "staff notification failed", "complaint_id", complaint.ID, "error", err)
	}
	return complaint, nil
}

func (s *Service) saveAttachment(ctx context.Context, a *Attachment) (string, error) {
	if a == nil || a.Body == nil {
		return "", nil
	}
	if s.Media == nil {
		return "", apperr.NewValidationError(errors.New("attachments are disabled"),
			apperr.FieldError{Field: "media", Error: "attachments are not accepted"})
	}
	return s.Media.Save(ctx, a.Filename, a.Body, a.ContentType)
}

func (s *Service) discardAttachment(ctx context.Context, key string) {
	if key == "" || s.Media == nil {
		return
	}
	if err := s.Media.Delete(ctx, key); err != nil {
		slog.ErrorContext(ctx, "failed to remove orphaned attachment", "key", key, "error", err)
	}
}

// Validate records a reviewer's verdict on a complaint. A true verdict
// credits the student every time it is given, including repeats.
func (s *Service) Validate(ctx context.Context, actor models.Actor, complaintID uint, verdict bool, note string) error {
	if !policy.CanPerform(actor.Role, policy.ValidateComplaint) {
		return apperr.Unauthorized(string(policy.ValidateComplaint))
	}

	now := s.now()
	var studentID uint
	err := s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		c, err := tx.GetComplaintByID(ctx, complaintID)
		if err != nil {
			return err
		}
		studentID = c.StudentID
		if err := tx.SetComplaintValidity(ctx, c.ID, verdict); err != nil {
			return err
		}
		entry := &models.ValidationLog{ComplaintID: c.ID, Valid: verdict, Note: note, CreatedAt: now}
		if actor.UserID != 0 {
			reviewer := actor.UserID
			entry.ReviewerID = &reviewer
		}
		if err := tx.CreateValidationLog(ctx, entry); err != nil {
			return err
		}
		if !verdict {
			return nil
		}
		return s.reward(ctx, tx, c.StudentID, now)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "complaint validated",
		"complaint_id", complaintID, "reviewer_id", actor.UserID, "valid", verdict, "student_id", studentID)
	return nil
}

func (s *Service) reward(ctx context.Context, tx storage.Storage, studentID uint, now time.Time) error {
	if err := tx.AddCredits(ctx, studentID, rewardAmount); err != nil {
		return err
	}
	return tx.CreateCreditTransaction(ctx, &models.CreditTransaction{
		UserID:    studentID,
		Amount:    rewardAmount,
		Reason:    rewardReason,
		CreatedAt: now,
	})
}

// UpdateStatus moves a complaint to the given status and level. Values that
// are empty or not recognized leave the current value in place, and any
// direction of movement is allowed.
func (s *Service) UpdateStatus(ctx context.Context, actor models.Actor, complaintID uint, status, level string) error {
	if !policy.CanPerform(actor.Role, policy.UpdateStatus) {
		return apperr.Unauthorized(string(policy.UpdateStatus))
	}

	var from, to models.Complaint
	err := s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		c, err := tx.GetComplaintByID(ctx, complaintID)
		if err != nil {
			return err
		}
		from = *c
		to = *c
		if st, ok := models.ParseStatus(status); ok {
			to.Status = st
		}
		if lv, ok := models.ParseLevel(level); ok {
			to.Level = lv
		}
		return tx.UpdateComplaintProgress(ctx, c.ID, to.Status, to.Level)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "complaint progress updated",
		"complaint_id", complaintID, "actor_id", actor.UserID,
		"status_from", from.Status, "status_to", to.Status,
		"level_from", from.Level, "level_to", to.Level)
	return nil
}
