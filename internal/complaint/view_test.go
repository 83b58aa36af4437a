package complaint_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"campusvoice/backend/internal/apperr"
	"campusvoice/backend/internal/complaint"
	"campusvoice/backend/internal/models"
	"campusvoice/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetail_Visibility(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc, _ := newEngine(store)
	owner := seedUser(t, store, "EN100", models.RoleStudent, "BCA")
	other := seedUser(t, store, "EN101", models.RoleStudent, "MCA")
	faculty := seedUser(t, store, "FAC100", models.RoleFaculty, "MCA")
	c := seedComplaint(t, store, owner, models.CategoryCleaning, models.StatusOpen)
	require.NoError(t, svc.Validate(ctx, faculty.Actor(), c.ID, true, "checked"))

	t.Run("owner sees identity", func(t *testing.T) {
		d, err := svc.Detail(ctx, owner.Actor(), c.ID)
		require.NoError(t, err)
		assert.True(t, d.IsOwner)
		require.NotNil(t, d.Student)
		assert.Equal(t, "EN100", d.Student.Username)
		assert.Equal(t, "BCA", d.StudentDepartment)
		assert.Empty(t, d.Validations)
	})

	t.Run("staff see department only", func(t *testing.T) {
		d, err := svc.Detail(ctx, faculty.Actor(), c.ID)
		require.NoError(t, err)
		assert.False(t, d.IsOwner)
		assert.Nil(t, d.Student)
		assert.Equal(t, "BCA", d.StudentDepartment)
		require.Len(t, d.Validations, 1)
		assert.Equal(t, "checked", d.Validations[0].Note)

		raw, err := json.Marshal(d)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "EN100")
		assert.NotContains(t, string(raw), "student_id")
		assert.NotContains(t, string(raw), `"student"`)
	})

	t.Run("other students are not blocked but see nothing of the author", func(t *testing.T) {
		d, err := svc.Detail(ctx, other.Actor(), c.ID)
		require.NoError(t, err)
		assert.False(t, d.IsOwner)
		assert.Nil(t, d.Student)
		assert.Empty(t, d.StudentDepartment)
	})

	t.Run("missing complaint", func(t *testing.T) {
		_, err := svc.Detail(ctx, faculty.Actor(), 12345)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("anonymous viewer", func(t *testing.T) {
		_, err := svc.Detail(ctx, models.Actor{}, c.ID)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
}

func TestList_ScopesByRole(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc, clock := newEngine(store)
	a := seedUser(t, store, "EN110", models.RoleStudent, "BCA")
	b := seedUser(t, store, "EN111", models.RoleStudent, "MBA")
	admin := seedUser(t, store, "ADM110", models.RoleAdmin, "")

	_, err := svc.Submit(ctx, a.Actor(), complaint.Submission{Category: "INFRA", Title: "Broken fan", Description: "Room 12"})
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = svc.Submit(ctx, b.Actor(), complaint.Submission{Category: "CLEANING", Title: "Dusty lab", Description: "Lab 3"})
	require.NoError(t, err)

	own, err := svc.List(ctx, a.Actor(), complaint.ListFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Broken fan", own[0].Title)
	assert.True(t, own[0].IsOwner)

	all, err := svc.List(ctx, admin.Actor(), complaint.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Dusty lab", all[0].Title, "newest first")
	assert.Equal(t, "MBA", all[0].StudentDepartment)
	assert.Nil(t, all[0].Student)

	_, err = svc.List(ctx, models.Actor{Role: "GUEST"}, complaint.ListFilter{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestList_Filters(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc, _ := newEngine(store)
	student := seedUser(t, store, "EN120", models.RoleStudent, "BCA")
	staff := seedUser(t, store, "STF120", models.RoleStaff, "")
	first := seedComplaint(t, store, student, models.CategoryInfra, models.StatusOpen)
	seedComplaint(t, store, student, models.CategoryCleaning, models.StatusClosed)
	require.NoError(t, svc.Validate(ctx, staff.Actor(), first.ID, true, ""))

	tests := []struct {
		name   string
		filter complaint.ListFilter
		want   int
	}{
		{"no filter", complaint.ListFilter{}, 2},
		{"category", complaint.ListFilter{Category: "infra"}, 1},
		{"status", complaint.ListFilter{Status: "closed"}, 1},
		{"valid", complaint.ListFilter{Valid: "true"}, 1},
		{"unparseable values are ignored", complaint.ListFilter{Category: "x", Status: "y", Level: "z", Valid: "maybe"}, 2},
		{"search", complaint.ListFilter{Search: "T"}, 2},
		{"search miss", complaint.ListFilter{Search: "nothing"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := svc.List(ctx, staff.Actor(), tt.filter)
			require.NoError(t, err)
			assert.Len(t, views, tt.want)
		})
	}
}
