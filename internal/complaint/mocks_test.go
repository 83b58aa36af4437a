package complaint_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"campusvoice/backend/internal/models"
	"campusvoice/backend/internal/notify"
	"campusvoice/backend/internal/storage"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type MockMedia struct {
	mock.Mock
}

func (m *MockMedia) Save(ctx context.Context, filename string, body io.Reader, contentType string) (string, error) {
	args := m.Called(filename, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockMedia) Delete(ctx context.Context, key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockMedia) URL(key string) string {
	return "/media/" + key
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ComplaintSubmitted(ctx context.Context, alert notify.Alert) error {
	args := m.Called(alert)
	return args.Error(0)
}

// failingStore hands the transaction callback a Storage whose named write
// fails, so rollback of the earlier writes can be observed.
type failingStore struct {
	*storage.MemoryStore
	failOn string
}

func (f *failingStore) Transaction(ctx context.Context, fn func(tx storage.Storage) error) error {
	return f.MemoryStore.Transaction(ctx, func(tx storage.Storage) error {
		return fn(&failingTx{Storage: tx, failOn: f.failOn})
	})
}

type failingTx struct {
	storage.Storage
	failOn string
}

func (f *failingTx) SetLastComplaintAt(ctx context.Context, userID uint, at time.Time) error {
	if f.failOn == "SetLastComplaintAt" {
		return errBoom
	}
	return f.Storage.SetLastComplaintAt(ctx, userID, at)
}

func (f *failingTx) CreateCreditTransaction(ctx context.Context, txn *models.CreditTransaction) error {
	if f.failOn == "CreateCreditTransaction" {
		return errBoom
	}
	return f.Storage.CreateCreditTransaction(ctx, txn)
}

func seedUser(t *testing.T, s storage.Storage, username string, role models.Role, dept string) *models.User {
	t.Helper()
	u := &models.User{Username: username, FirstName: username, Role: role, Department: dept, IsActive: true}
	if role == models.RoleStudent {
		u.Credits = 20
		u.EnrollmentNumber = username
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func seedComplaint(t *testing.T, s storage.Storage, student *models.User, category models.Category, status models.Status) *models.Complaint {
	t.Helper()
	c := &models.Complaint{StudentID: student.ID, Category: category, Title: "t", Description: "d", Status: status}
	require.NoError(t, s.CreateComplaint(context.Background(), c))
	return c
}
