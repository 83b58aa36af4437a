package storage

import (
	"context"
	"time"

	"campusvoice/backend/internal/models"
)

// Storage is the persistence contract of the workflow: the complaint store
// (complaints, validation logs, credit ledger) together with the parts of the
// identity provider the workflow reads and mutates.
type Storage interface {
	// Transaction runs fn against a Storage bound to a single transaction.
	// Every write made through tx commits together or not at all.
	Transaction(ctx context.Context, fn func(tx Storage) error) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateUser(ctx context.Context, user *models.User) error
	SetLastComplaintAt(ctx context.Context, userID uint, at time.Time) error
	SetLastLoginAt(ctx context.Context, userID uint, at time.Time) error
	AddCredits(ctx context.Context, userID uint, amount int) error

	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	// GetComplaintByID loads the complaint with its Student.
	GetComplaintByID(ctx context.Context, id uint) (*models.Complaint, error)
	// LatestComplaintInCategory returns nil without error when the student has
	// never filed in the category.
	LatestComplaintInCategory(ctx context.Context, studentID uint, category models.Category) (*models.Complaint, error)
	ListComplaints(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error)
	CountComplaints(ctx context.Context, filter CountFilter) (int64, error)
	SetComplaintValidity(ctx context.Context, id uint, valid bool) error
	UpdateComplaintProgress(ctx context.Context, id uint, status models.Status, level models.Level) error

	CreateValidationLog(ctx context.Context, log *models.ValidationLog) error
	ListValidationLogs(ctx context.Context, complaintID uint) ([]models.ValidationLog, error)
	CreateCreditTransaction(ctx context.Context, txn *models.CreditTransaction) error
	ListCreditTransactions(ctx context.Context, userID uint) ([]models.CreditTransaction, error)

	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ComplaintFilter narrows ListComplaints. Zero fields match everything.
// Results are ordered newest first and have Student loaded.
type ComplaintFilter struct {
	StudentID *uint
	Category  models.Category
	Status    models.Status
	Level     models.Level
	IsValid   *bool
	// Search does a case-insensitive substring match on title or description.
	Search string
}

// CountFilter narrows CountComplaints.
type CountFilter struct {
	StudentID *uint
	Status    models.Status
	// Department, when set, keeps complaints whose student department equals
	// it case-insensitively or whose student has no department.
	Department *string
}
