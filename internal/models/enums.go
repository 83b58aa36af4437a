package models

import "strings"

// Role is the account type that decides what a user may do in the workflow.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleFaculty Role = "FACULTY"
	RoleHOD     Role = "HOD"
	RoleAdmin   Role = "ADMIN"
	RoleStaff   Role = "STAFF"
)

// Roles lists every role in display order.
var Roles = []Role{RoleStudent, RoleFaculty, RoleHOD, RoleAdmin, RoleStaff}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// IsStaff reports whether the role belongs to the reviewing side of the campus.
func (r Role) IsStaff() bool {
	return r != RoleStudent && r != ""
}

// Category is the fixed classification of a complaint.
type Category string

const (
	CategoryCleaning Category = "CLEANING"
	CategoryFaculty  Category = "FACULTY"
	CategoryStaff    Category = "STAFF"
	CategoryInfra    Category = "INFRA"
	CategoryStudent  Category = "STUDENT"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryCleaning, CategoryFaculty, CategoryStaff, CategoryInfra, CategoryStudent}

var categoryLabels = map[Category]string{
	CategoryCleaning: "Cleaning",
	CategoryFaculty:  "Teaching Faculty",
	CategoryStaff:    "Staff Behavior",
	CategoryInfra:    "Infrastructure",
	CategoryStudent:  "Student Behavior",
}

// ParseCategory matches s case-insensitively against the closed category set.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := categoryLabels[c]
	if !ok {
		return "", false
	}
	return c, true
}

// Label returns the human readable name of the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Status tracks how far a complaint has been handled.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusInProcess Status = "IN_PROCESS"
	StatusClosed    Status = "CLOSED"
)

var Statuses = []Status{StatusOpen, StatusInProcess, StatusClosed}

// ParseStatus reports whether s is exactly one of the known statuses.
// Unlike categories, status values coming from staff forms are not normalized.
func ParseStatus(s string) (Status, bool) {
	for _, known := range Statuses {
		if Status(s) == known {
			return known, true
		}
	}
	return "", false
}

// Level is the escalation tier currently responsible for a complaint.
type Level string

const (
	LevelClass Level = "CLASS"
	LevelHOD   Level = "HOD"
	LevelAdmin Level = "ADMIN"
)

var Levels = []Level{LevelClass, LevelHOD, LevelAdmin}

// ParseLevel reports whether s is exactly one of the known levels.
func ParseLevel(s string) (Level, bool) {
	for _, known := range Levels {
		if Level(s) == known {
			return known, true
		}
	}
	return "", false
}

// Stream is the study programme a student registers under.
type Stream string

const (
	StreamBCA   Stream = "BCA"
	StreamBTech Stream = "BTECH"
	StreamMTech Stream = "MTECH"
	StreamMScIT Stream = "MSCIT"
	StreamMBA   Stream = "MBA"
	StreamBBA   Stream = "BBA"
	StreamMCA   Stream = "MCA"
)

var Streams = []Stream{StreamBCA, StreamBTech, StreamMTech, StreamMScIT, StreamMBA, StreamBBA, StreamMCA}
