// Package policy holds the role table that gates every workflow operation and
// the visibility rule applied when a complaint is shown to someone.
package policy

import "campusvoice/backend/internal/models"

// Operation names a gated workflow action.
type Operation string

const (
	SubmitComplaint   Operation = "submitComplaint"
	ViewOwnComplaints Operation = "viewOwnComplaints"
	ViewAllComplaints Operation = "viewAllComplaints"
	ValidateComplaint Operation = "validateComplaint"
	UpdateStatus      Operation = "updateStatus"
	ViewNotifications Operation = "viewNotifications"
)

var reviewers = []models.Role{models.RoleFaculty, models.RoleHOD, models.RoleAdmin, models.RoleStaff}

var table = map[Operation][]models.Role{
	SubmitComplaint:   {models.RoleStudent},
	ViewOwnComplaints: {models.RoleStudent},
	ViewAllComplaints: reviewers,
	ValidateComplaint: reviewers,
	UpdateStatus:      reviewers,
	// Plain STAFF members are not counted as department reviewers.
	ViewNotifications: {models.RoleFaculty, models.RoleHOD, models.RoleAdmin},
}

// CanPerform reports whether role may perform op. Unknown operations are denied.
func CanPerform(role models.Role, op Operation) bool {
	for _, allowed := range table[op] {
		if allowed == role {
			return true
		}
	}
	return false
}

// AllowedRoles returns a copy of the roles permitted for op.
func AllowedRoles(op Operation) []models.Role {
	return append([]models.Role(nil), table[op]...)
}

// Exposure describes how much of the submitting student a viewer may see.
type Exposure int

const (
	// ExposeNone hides both identity and department.
	ExposeNone Exposure = iota
	// ExposeDepartment hides identity but shows the student's department.
	ExposeDepartment
	// ExposeFull shows identity and department.
	ExposeFull
)

// StudentExposure decides what viewer may learn about the owner of complaint c.
// The owner sees everything, staff see the department only. Other students
// are not blocked from reading the complaint but learn nothing about its author.
func StudentExposure(viewer models.Actor, c *models.Complaint) Exposure {
	switch {
	case viewer.UserID != 0 && viewer.UserID == c.StudentID:
		return ExposeFull
	case viewer.Role.IsStaff():
		return ExposeDepartment
	default:
		return ExposeNone
	}
}
