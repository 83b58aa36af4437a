package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusvoice/backend/internal/apperr"
	"campusvoice/backend/internal/models"
	"campusvoice/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*storage.MemoryStore, *time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := storage.NewMemoryStore()
	s.SetClock(func() time.Time { return now })
	return s, &now
}

func addUser(t *testing.T, s storage.Storage, username string, role models.Role, dept string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Role: role, Department: dept, Credits: 20, IsActive: true}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func addComplaint(t *testing.T, s storage.Storage, studentID uint, cat models.Category, title string, at time.Time) *models.Complaint {
	t.Helper()
	c := &models.Complaint{StudentID: studentID, Category: cat, Title: title, Description: "details of " + title, CreatedAt: at}
	require.NoError(t, s.CreateComplaint(context.Background(), c))
	return c
}

func TestMemoryStore_TransactionRollsBack(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	student := addUser(t, s, "S1", models.RoleStudent, "BCA")
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx storage.Storage) error {
		require.NoError(t, tx.AddCredits(ctx, student.ID, 5))
		require.NoError(t, tx.CreateCreditTransaction(ctx, &models.CreditTransaction{UserID: student.ID, Amount: 5, Reason: "x"}))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	got, err := s.GetUserByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Credits, "credits must not change when the transaction fails")
	txns, err := s.ListCreditTransactions(ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestMemoryStore_TransactionCommits(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	student := addUser(t, s, "S1", models.RoleStudent, "BCA")

	err := s.Transaction(ctx, func(tx storage.Storage) error {
		if err := tx.AddCredits(ctx, student.ID, 5); err != nil {
			return err
		}
		return tx.CreateCreditTransaction(ctx, &models.CreditTransaction{UserID: student.ID, Amount: 5, Reason: "x"})
	})

	require.NoError(t, err)
	got, _ := s.GetUserByID(ctx, student.ID)
	assert.Equal(t, 25, got.Credits)
	txns, _ := s.ListCreditTransactions(ctx, student.ID)
	assert.Len(t, txns, 1)
}

func TestMemoryStore_DuplicateUsername(t *testing.T) {
	s, _ := newStore(t)
	addUser(t, s, "S1", models.RoleStudent, "BCA")

	err := s.CreateUser(context.Background(), &models.User{Username: "S1"})

	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
	exists, err := s.UsernameExists(context.Background(), "S1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryStore_NotFound(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.GetComplaintByID(ctx, 42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.GetUserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, s.SetComplaintValidity(ctx, 42, true), apperr.ErrNotFound)
	assert.ErrorIs(t, s.AddCredits(ctx, 99, 5), apperr.ErrNotFound)
}

func TestMemoryStore_LatestComplaintInCategory(t *testing.T) {
	s, now := newStore(t)
	ctx := context.Background()
	student := addUser(t, s, "S1", models.RoleStudent, "BCA")

	none, err := s.LatestComplaintInCategory(ctx, student.ID, models.CategoryCleaning)
	require.NoError(t, err)
	assert.Nil(t, none)

	addComplaint(t, s, student.ID, models.CategoryCleaning, "old", now.Add(-10*24*time.Hour))
	recent := addComplaint(t, s, student.ID, models.CategoryCleaning, "recent", now.Add(-1*time.Hour))
	addComplaint(t, s, student.ID, models.CategoryInfra, "other", *now)

	latest, err := s.LatestComplaintInCategory(ctx, student.ID, models.CategoryCleaning)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, recent.ID, latest.ID)
}

func TestMemoryStore_ListComplaintsFilters(t *testing.T) {
	s, now := newStore(t)
	ctx := context.Background()
	a := addUser(t, s, "A", models.RoleStudent, "BCA")
	b := addUser(t, s, "B", models.RoleStudent, "MCA")
	c1 := addComplaint(t, s, a.ID, models.CategoryCleaning, "Dusty lab", now.Add(-2*time.Hour))
	c2 := addComplaint(t, s, b.ID, models.CategoryInfra, "Broken projector", now.Add(-1*time.Hour))
	require.NoError(t, s.SetComplaintValidity(ctx, c2.ID, true))

	all, err := s.ListComplaints(ctx, storage.ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, c2.ID, all[0].ID, "newest first")
	require.NotNil(t, all[0].Student)
	assert.Equal(t, "MCA", all[0].Student.Department)

	own, _ := s.ListComplaints(ctx, storage.ComplaintFilter{StudentID: &a.ID})
	require.Len(t, own, 1)
	assert.Equal(t, c1.ID, own[0].ID)

	valid := true
	validOnly, _ := s.ListComplaints(ctx, storage.ComplaintFilter{IsValid: &valid})
	require.Len(t, validOnly, 1)
	assert.Equal(t, c2.ID, validOnly[0].ID)

	searched, _ := s.ListComplaints(ctx, storage.ComplaintFilter{Search: "PROJECTOR"})
	require.Len(t, searched, 1)
	assert.Equal(t, c2.ID, searched[0].ID)

	byCat, _ := s.ListComplaints(ctx, storage.ComplaintFilter{Category: models.CategoryCleaning, Status: models.StatusOpen})
	require.Len(t, byCat, 1)
}

func TestMemoryStore_CountComplaintsByDepartment(t *testing.T) {
	s, now := newStore(t)
	ctx := context.Background()
	bca := addUser(t, s, "A", models.RoleStudent, "bca")
	mca := addUser(t, s, "B", models.RoleStudent, "MCA")
	none := addUser(t, s, "C", models.RoleStudent, "")
	addComplaint(t, s, bca.ID, models.CategoryCleaning, "1", *now)
	addComplaint(t, s, mca.ID, models.CategoryCleaning, "2", *now)
	addComplaint(t, s, none.ID, models.CategoryCleaning, "3", *now)
	closed := addComplaint(t, s, bca.ID, models.CategoryInfra, "4", *now)
	require.NoError(t, s.UpdateComplaintProgress(ctx, closed.ID, models.StatusClosed, models.LevelClass))

	dept := "BCA"
	n, err := s.CountComplaints(ctx, storage.CountFilter{Status: models.StatusOpen, Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "BCA (case-insensitive) plus the student without department")

	n, _ = s.CountComplaints(ctx, storage.CountFilter{Status: models.StatusOpen})
	assert.Equal(t, int64(3), n)

	n, _ = s.CountComplaints(ctx, storage.CountFilter{StudentID: &bca.ID})
	assert.Equal(t, int64(2), n)
}

func TestMemoryStore_RevokedTokensExpire(t *testing.T) {
	s, now := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.RevokeToken(ctx, "jti-1", time.Hour))
	revoked, _ := s.IsTokenRevoked(ctx, "jti-1")
	assert.True(t, revoked)

	*now = now.Add(2 * time.Hour)
	revoked, _ = s.IsTokenRevoked(ctx, "jti-1")
	assert.False(t, revoked)

	revoked, _ = s.IsTokenRevoked(ctx, "unknown")
	assert.False(t, revoked)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	u := addUser(t, s, "S1", models.RoleStudent, "BCA")

	got, _ := s.GetUserByID(ctx, u.ID)
	got.Credits = 1000

	again, _ := s.GetUserByID(ctx, u.ID)
	assert.Equal(t, 20, again.Credits)
}
