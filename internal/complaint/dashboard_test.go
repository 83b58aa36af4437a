package complaint_test

import (
	"context"
	"testing"
	"time"

	"campusvoice/backend/internal/complaint"
	"campusvoice/backend/internal/models"
	"campusvoice/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysRemaining(t *testing.T) {
	last := t0
	tests := []struct {
		name string
		last *time.Time
		now  time.Time
		want int
	}{
		{"never filed", nil, t0, 0},
		{"just filed", &last, t0, 5},
		{"partial day rounds up", &last, t0.Add(2*24*time.Hour + time.Minute), 3},
		{"exact day boundary", &last, t0.Add(4 * 24 * time.Hour), 1},
		{"cooldown over", &last, t0.Add(5 * 24 * time.Hour), 0},
		{"long ago clamps to zero", &last, t0.Add(30 * 24 * time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, complaint.DaysRemaining(tt.last, tt.now))
		})
	}
}

func TestNotificationCount(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc, _ := newEngine(store)

	bca := seedUser(t, store, "EN200", models.RoleStudent, "BCA")
	bcaLower := seedUser(t, store, "EN201", models.RoleStudent, "bca")
	noDept := seedUser(t, store, "EN202", models.RoleStudent, "")
	mca := seedUser(t, store, "EN203", models.RoleStudent, "MCA")
	seedComplaint(t, store, bca, models.CategoryCleaning, models.StatusOpen)
	seedComplaint(t, store, bcaLower, models.CategoryInfra, models.StatusOpen)
	seedComplaint(t, store, noDept, models.CategoryStaff, models.StatusOpen)
	seedComplaint(t, store, mca, models.CategoryFaculty, models.StatusOpen)
	seedComplaint(t, store, bca, models.CategoryFaculty, models.StatusClosed)
	seedComplaint(t, store, mca, models.CategoryStudent, models.StatusInProcess)

	tests := []struct {
		name   string
		actor  models.Actor
		want   int64
		wantOK bool
	}{
		{"admin counts every open complaint", models.Actor{UserID: 90, Role: models.RoleAdmin}, 4, true},
		{"faculty counts own department and unassigned", models.Actor{UserID: 91, Role: models.RoleFaculty, Department: "BCA"}, 3, true},
		{"hod in MCA", models.Actor{UserID: 92, Role: models.RoleHOD, Department: "mca"}, 2, true},
		{"faculty without department counts all open", models.Actor{UserID: 93, Role: models.RoleFaculty}, 4, true},
		{"staff get no count", models.Actor{UserID: 94, Role: models.RoleStaff, Department: "BCA"}, 0, false},
		{"students get no count", bca.Actor(), 0, false},
		{"anonymous gets no count", models.Actor{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok, err := svc.NotificationCount(ctx, tt.actor)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestDashboard_Student(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc, clock := newEngine(store)
	student := seedUser(t, store, "EN210", models.RoleStudent, "BCA")

	_, err := svc.Submit(ctx, student.Actor(), submission("CLEANING"))
	require.NoError(t, err)
	clock.Advance(36 * time.Hour)

	d, err := svc.Dashboard(ctx, student.Actor())
	require.NoError(t, err)
	require.NotNil(t, d.Credits)
	assert.Equal(t, 20, *d.Credits)
	require.NotNil(t, d.DaysRemaining)
	assert.Equal(t, 4, *d.DaysRemaining)
	assert.Nil(t, d.NotificationCount)
	assert.Equal(t, int64(1), d.StatusCounts[models.StatusOpen])

	require.Len(t, d.Categories, len(models.Categories))
	for _, opt := range d.Categories {
		if opt.Category == models.CategoryCleaning {
			assert.Equal(t, 4, opt.DaysRemaining)
			assert.False(t, opt.Available)
		} else {
			assert.Zero(t, opt.DaysRemaining)
			assert.True(t, opt.Available)
		}
	}
}

func TestDashboard_Staff(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc, _ := newEngine(store)
	student := seedUser(t, store, "EN220", models.RoleStudent, "BCA")
	hod := seedUser(t, store, "HOD220", models.RoleHOD, "BCA")
	seedComplaint(t, store, student, models.CategoryCleaning, models.StatusOpen)
	seedComplaint(t, store, student, models.CategoryInfra, models.StatusClosed)

	d, err := svc.Dashboard(ctx, hod.Actor())
	require.NoError(t, err)
	assert.Nil(t, d.Credits)
	assert.Nil(t, d.Categories)
	require.NotNil(t, d.NotificationCount)
	assert.Equal(t, int64(1), *d.NotificationCount)
	assert.Equal(t, int64(1), d.StatusCounts[models.StatusClosed])
}

func TestCredits(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc, _ := newEngine(store)
	student := seedUser(t, store, "EN230", models.RoleStudent, "BCA")
	admin := seedUser(t, store, "ADM230", models.RoleAdmin, "")
	c := seedComplaint(t, store, student, models.CategoryInfra, models.StatusOpen)

	ledger, err := svc.Credits(ctx, student.Actor())
	require.NoError(t, err)
	assert.Equal(t, 20, ledger.Balance)
	assert.Empty(t, ledger.Transactions)

	require.NoError(t, svc.Validate(ctx, admin.Actor(), c.ID, true, ""))
	ledger, err = svc.Credits(ctx, student.Actor())
	require.NoError(t, err)
	assert.Equal(t, 25, ledger.Balance)
	require.Len(t, ledger.Transactions, 1)
	assert.Equal(t, 5, ledger.Transactions[0].Amount)
}
