package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is an account known to the identity side of the system.
// Credits and LastComplaintAt are mutated by the complaint workflow.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash []byte `json:"-"`
	FirstName    string `gorm:"size:150" json:"first_name"`
	LastName     string `gorm:"size:150" json:"last_name"`
	Email        string `gorm:"size:254" json:"email,omitempty"`
	Phone        string `gorm:"size:15" json:"phone,omitempty"`
	Role         Role   `gorm:"size:10;not null;index" json:"role"`
	// Department is a stream code for students (BCA, MCA...) or a staff group.
	Department string `gorm:"size:20;index" json:"department"`
	IsActive   bool   `gorm:"not null" json:"is_active"`

	// Student-specific
	EnrollmentNumber string     `gorm:"size:50" json:"enrollment_number,omitempty"`
	Stream           Stream     `gorm:"size:10" json:"stream,omitempty"`
	Credits          int        `gorm:"not null" json:"credits"`
	LastComplaintAt  *time.Time `json:"last_complaint_at"`

	// Staff-specific
	CollegeID         string                      `gorm:"size:100" json:"college_id,omitempty"`
	WorkingAt         string                      `gorm:"size:30" json:"working_at,omitempty"`
	FacultyDepartment string                      `gorm:"size:20" json:"faculty_department,omitempty"`
	FacultyStreams    datatypes.JSONSlice[string] `json:"faculty_streams,omitempty"`
	StaffDescription  string                      `gorm:"type:text" json:"staff_description,omitempty"`
	InfraBuilding     string                      `gorm:"size:20" json:"infra_building,omitempty"`
	HODDepartment     string                      `gorm:"size:20" json:"hod_department,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate is a GORM hook. It defaults the role to STUDENT and trims the
// department so that department matching does not depend on stray whitespace.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.Role == "" {
		u.Role = RoleStudent
	}
	u.Username = strings.TrimSpace(u.Username)
	u.Department = strings.TrimSpace(u.Department)
	return
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Actor builds the identity that workflow and policy calls receive.
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Role: u.Role, Department: u.Department}
}

// Actor is the caller of a workflow operation. It is passed explicitly into
// every engine and policy call; nothing reads the caller from ambient state.
type Actor struct {
	UserID     uint
	Role       Role
	Department string
}
