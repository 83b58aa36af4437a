package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"campusvoice/backend/internal/apperr"
	"campusvoice/backend/internal/models"
)

// MemoryStore is an in-process Storage used by the "memory" database driver
// and by tests. Transactions work on a copy of the data that replaces the
// original only when the callback succeeds.
type MemoryStore struct {
	mu    *sync.Mutex
	state *memState
	inTx  bool
	now   func() time.Time
}

var _ Storage = (*MemoryStore)(nil)

type memState struct {
	users      map[uint]models.User
	complaints map[uint]models.Complaint
	logs       []models.ValidationLog
	txns       []models.CreditTransaction
	revoked    map[string]time.Time

	lastUserID, lastComplaintID, lastLogID, lastTxnID uint
}

func (st *memState) clone() *memState {
	c := *st
	c.users = maps.Clone(st.users)
	c.complaints = maps.Clone(st.complaints)
	c.logs = slices.Clone(st.logs)
	c.txns = slices.Clone(st.txns)
	c.revoked = maps.Clone(st.revoked)
	return &c
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		state: &memState{
			users:      make(map[uint]models.User),
			complaints: make(map[uint]models.Complaint),
			revoked:    make(map[string]time.Time),
		},
		now: time.Now,
	}
}

// SetClock replaces the time source used for timestamps the store fills in.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.now = now
}

func (m *MemoryStore) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemoryStore) Transaction(ctx context.Context, fn func(tx Storage) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &MemoryStore{mu: m.mu, state: m.state.clone(), inTx: true, now: m.now}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	defer m.lock()()
	if err := user.BeforeCreate(nil); err != nil {
		return err
	}
	for _, u := range m.state.users {
		if u.Username == user.Username {
			return apperr.NewValidationError(fmt.Errorf("username %q exists", user.Username),
				apperr.FieldError{Field: "username", Error: "already registered"})
		}
	}
	m.state.lastUserID++
	user.ID = m.state.lastUserID
	now := m.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	m.state.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	defer m.lock()()
	u, ok := m.state.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", apperr.ErrNotFound)
	}
	return &u, nil
}

func (m *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	defer m.lock()()
	for _, u := range m.state.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", apperr.ErrNotFound)
}

func (m *MemoryStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetUserByUsername(ctx, username)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (m *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	defer m.lock()()
	if _, ok := m.state.users[user.ID]; !ok {
		return fmt.Errorf("user %d: %w", user.ID, apperr.ErrNotFound)
	}
	user.UpdatedAt = m.now()
	m.state.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) mutateUser(userID uint, fn func(u *models.User)) error {
	defer m.lock()()
	u, ok := m.state.users[userID]
	if !ok {
		return fmt.Errorf("user %d: %w", userID, apperr.ErrNotFound)
	}
	fn(&u)
	u.UpdatedAt = m.now()
	m.state.users[userID] = u
	return nil
}

func (m *MemoryStore) SetLastComplaintAt(ctx context.Context, userID uint, at time.Time) error {
	return m.mutateUser(userID, func(u *models.User) { u.LastComplaintAt = &at })
}

func (m *MemoryStore) SetLastLoginAt(ctx context.Context, userID uint, at time.Time) error {
	return m.mutateUser(userID, func(u *models.User) { u.LastLoginAt = &at })
}

func (m *MemoryStore) AddCredits(ctx context.Context, userID uint, amount int) error {
	return m.mutateUser(userID, func(u *models.User) { u.Credits += amount })
}

func (m *MemoryStore) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	defer m.lock()()
	if _, ok := m.state.users[complaint.StudentID]; !ok {
		return fmt.Errorf("student %d: %w", complaint.StudentID, apperr.ErrNotFound)
	}
	if err := complaint.BeforeCreate(nil); err != nil {
		return err
	}
	m.state.lastComplaintID++
	complaint.ID = m.state.lastComplaintID
	now := m.now()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	complaint.UpdatedAt = complaint.CreatedAt
	stored := *complaint
	stored.Student = nil
	m.state.complaints[complaint.ID] = stored
	return nil
}

// withStudent returns a copy of c carrying a copy of its student.
func (m *MemoryStore) withStudent(c models.Complaint) models.Complaint {
	if u, ok := m.state.users[c.StudentID]; ok {
		c.Student = &u
	}
	return c
}

func (m *MemoryStore) GetComplaintByID(ctx context.Context, id uint) (*models.Complaint, error) {
	defer m.lock()()
	c, ok := m.state.complaints[id]
	if !ok {
		return nil, fmt.Errorf("complaint: %w", apperr.ErrNotFound)
	}
	c = m.withStudent(c)
	return &c, nil
}

func newestFirst(cs []models.Complaint) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.After(cs[j].CreatedAt)
		}
		return cs[i].ID > cs[j].ID
	})
}

func (m *MemoryStore) LatestComplaintInCategory(ctx context.Context, studentID uint, category models.Category) (*models.Complaint, error) {
	defer m.lock()()
	var matches []models.Complaint
	for _, c := range m.state.complaints {
		if c.StudentID == studentID && c.Category == category {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	newestFirst(matches)
	return &matches[0], nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (m *MemoryStore) ListComplaints(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error) {
	defer m.lock()()
	search := strings.TrimSpace(filter.Search)
	var out []models.Complaint
	for _, c := range m.state.complaints {
		switch {
		case filter.StudentID != nil && c.StudentID != *filter.StudentID:
			continue
		case filter.Category != "" && c.Category != filter.Category:
			continue
		case filter.Status != "" && c.Status != filter.Status:
			continue
		case filter.Level != "" && c.Level != filter.Level:
			continue
		case filter.IsValid != nil && c.IsValid != *filter.IsValid:
			continue
		case search != "" && !containsFold(c.Title, search) && !containsFold(c.Description, search):
			continue
		}
		out = append(out, m.withStudent(c))
	}
	newestFirst(out)
	return out, nil
}

func (m *MemoryStore) CountComplaints(ctx context.Context, filter CountFilter) (int64, error) {
	defer m.lock()()
	var n int64
	for _, c := range m.state.complaints {
		if filter.StudentID != nil && c.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Department != nil {
			student, ok := m.state.users[c.StudentID]
			if !ok {
				continue
			}
			if student.Department != "" && !strings.EqualFold(student.Department, *filter.Department) {
				continue
			}
		}
		n++
	}
	return n, nil
}

func (m *MemoryStore) mutateComplaint(id uint, fn func(c *models.Complaint)) error {
	defer m.lock()()
	c, ok := m.state.complaints[id]
	if !ok {
		return fmt.Errorf("complaint %d: %w", id, apperr.ErrNotFound)
	}
	fn(&c)
	c.UpdatedAt = m.now()
	m.state.complaints[id] = c
	return nil
}

func (m *MemoryStore) SetComplaintValidity(ctx context.Context, id uint, valid bool) error {
	return m.mutateComplaint(id, func(c *models.Complaint) { c.IsValid = valid })
}

func (m *MemoryStore) UpdateComplaintProgress(ctx context.Context, id uint, status models.Status, level models.Level) error {
	return m.mutateComplaint(id, func(c *models.Complaint) {
		c.Status = status
		c.Level = level
	})
}

func (m *MemoryStore) CreateValidationLog(ctx context.Context, log *models.ValidationLog) error {
	defer m.lock()()
	if _, ok := m.state.complaints[log.ComplaintID]; !ok {
		return fmt.Errorf("complaint %d: %w", log.ComplaintID, apperr.ErrNotFound)
	}
	m.state.lastLogID++
	log.ID = m.state.lastLogID
	if log.CreatedAt.IsZero() {
		log.CreatedAt = m.now()
	}
	m.state.logs = append(m.state.logs, *log)
	return nil
}

func (m *MemoryStore) ListValidationLogs(ctx context.Context, complaintID uint) ([]models.ValidationLog, error) {
	defer m.lock()()
	var out []models.ValidationLog
	for _, l := range m.state.logs {
		if l.ComplaintID == complaintID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateCreditTransaction(ctx context.Context, txn *models.CreditTransaction) error {
	defer m.lock()()
	if _, ok := m.state.users[txn.UserID]; !ok {
		return fmt.Errorf("user %d: %w", txn.UserID, apperr.ErrNotFound)
	}
	m.state.lastTxnID++
	txn.ID = m.state.lastTxnID
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = m.now()
	}
	m.state.txns = append(m.state.txns, *txn)
	return nil
}

func (m *MemoryStore) ListCreditTransactions(ctx context.Context, userID uint) ([]models.CreditTransaction, error) {
	defer m.lock()()
	var out []models.CreditTransaction
	for i := len(m.state.txns) - 1; i >= 0; i-- {
		if m.state.txns[i].UserID == userID {
			out = append(out, m.state.txns[i])
		}
	}
	return out, nil
}

func (m *MemoryStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	defer m.lock()()
	if ttl > 0 {
		m.state.revoked[tokenID] = m.now().Add(ttl)
	}
	return nil
}

func (m *MemoryStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	defer m.lock()()
	until, ok := m.state.revoked[tokenID]
	return ok && m.now().Before(until), nil
}
