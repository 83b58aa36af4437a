package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campusvoice/backend/internal/apperr"
	"campusvoice/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Service implements Storage on GORM, with Redis holding revoked token ids.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

var _ Storage = (*Service)(nil)

// NewStorageService Constructor. rdb may be nil, in which case token
// revocation is not persisted.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apperr.ErrNotFound)
	}
	return err
}

func (s *Service) Transaction(ctx context.Context, fn func(tx Storage) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Service{DB: tx, Redis: s.Redis})
	})
}

func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.NewValidationError(err, apperr.FieldError{Field: "username", Error: "already registered"})
		}
		slog.Error("failed to create user", "username", user.Username, "error", err)
		return err
	}
	return nil
}

func (s *Service) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (s *Service) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

// UpdateUser saves every column of user.
func (s *Service) UpdateUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Save(user).Error
}

func (s *Service) updateUserColumn(ctx context.Context, userID uint, column string, value interface{}) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", userID, apperr.ErrNotFound)
	}
	return nil
}

func (s *Service) SetLastComplaintAt(ctx context.Context, userID uint, at time.Time) error {
	return s.updateUserColumn(ctx, userID, "last_complaint_at", at)
}

func (s *Service) SetLastLoginAt(ctx context.Context, userID uint, at time.Time) error {
	return s.updateUserColumn(ctx, userID, "last_login_at", at)
}

// AddCredits changes the balance in SQL so concurrent rewards do not overwrite each other.
func (s *Service) AddCredits(ctx context.Context, userID uint, amount int) error {
	return s.updateUserColumn(ctx, userID, "credits", gorm.Expr("credits + ?", amount))
}

func (s *Service) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	if err := s.DB.WithContext(ctx).Omit("Student").Create(complaint).Error; err != nil {
		slog.Error("failed to save complaint", "student_id", complaint.StudentID, "error", err)
		return err
	}
	return nil
}

func (s *Service) GetComplaintByID(ctx context.Context, id uint) (*models.Complaint, error) {
	var c models.Complaint
	if err := s.DB.WithContext(ctx).Preload("Student").First(&c, id).Error; err != nil {
		return nil, notFound(err, "complaint")
	}
	return &c, nil
}

func (s *Service) LatestComplaintInCategory(ctx context.Context, studentID uint, category models.Category) (*models.Complaint, error) {
	var c models.Complaint
	err := s.DB.WithContext(ctx).
		Where("student_id = ? AND category = ?", studentID, category).
		Order("created_at desc").
		Order("id desc").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) ListComplaints(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error) {
	q := s.DB.WithContext(ctx).Model(&models.Complaint{}).Preload("Student")
	if filter.StudentID != nil {
		q = q.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Level != "" {
		q = q.Where("level = ?", filter.Level)
	}
	if filter.IsValid != nil {
		q = q.Where("is_valid = ?", *filter.IsValid)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	var complaints []models.Complaint
	if err := q.Order("created_at desc").Order("id desc").Find(&complaints).Error; err != nil {
		slog.Error("failed to list complaints", "error", err)
		return nil, err
	}
	return complaints, nil
}

func (s *Service) CountComplaints(ctx context.Context, filter CountFilter) (int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Complaint{})
	if filter.StudentID != nil {
		q = q.Where("complaints.student_id = ?", *filter.StudentID)
	}
	if filter.Status != "" {
		q = q.Where("complaints.status = ?", filter.Status)
	}
	if filter.Department != nil {
		q = q.Joins("JOIN users ON users.id = complaints.student_id").
			Where("(LOWER(users.department) = LOWER(?) OR users.department IS NULL OR users.department = '')", *filter.Department)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (s *Service) SetComplaintValidity(ctx context.Context, id uint, valid bool) error {
	res := s.DB.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", id).Update("is_valid", valid)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.complaintExists(ctx, id)
	}
	return nil
}

func (s *Service) UpdateComplaintProgress(ctx context.Context, id uint, status models.Status, level models.Level) error {
	res := s.DB.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "level": level})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.complaintExists(ctx, id)
	}
	return nil
}

// complaintExists tells a missing row apart from an update that changed
// nothing, which some MySQL configurations report as zero affected rows.
func (s *Service) complaintExists(ctx context.Context, id uint) error {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("complaint %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (s *Service) CreateValidationLog(ctx context.Context, log *models.ValidationLog) error {
	return s.DB.WithContext(ctx).Create(log).Error
}

func (s *Service) ListValidationLogs(ctx context.Context, complaintID uint) ([]models.ValidationLog, error) {
	var logs []models.ValidationLog
	err := s.DB.WithContext(ctx).Where("complaint_id = ?", complaintID).Order("created_at asc").Order("id asc").Find(&logs).Error
	return logs, err
}

func (s *Service) CreateCreditTransaction(ctx context.Context, txn *models.CreditTransaction) error {
	return s.DB.WithContext(ctx).Create(txn).Error
}

func (s *Service) ListCreditTransactions(ctx context.Context, userID uint) ([]models.CreditTransaction, error) {
	var txns []models.CreditTransaction
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Order("id desc").Find(&txns).Error
	return txns, err
}
