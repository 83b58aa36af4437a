package models

import (
	"time"

	"gorm.io/gorm"
)

// Complaint is a grievance filed by a student. Complaints are never deleted.
type Complaint struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	StudentID uint     `gorm:"not null;index:idx_student_category" json:"student_id"`
	Student   *User    `gorm:"foreignKey:StudentID" json:"-"`
	Category  Category `gorm:"size:20;not null;index:idx_student_category" json:"category"`
	Title     string   `gorm:"size:200;not null" json:"title"`
	// Description is free text written by the student.
	Description string `gorm:"type:text;not null" json:"description"`
	// Media is the storage key of the optional attachment.
	Media     string    `gorm:"size:255" json:"media,omitempty"`
	Status    Status    `gorm:"size:20;not null;index" json:"status"`
	Level     Level     `gorm:"size:20;not null" json:"level"`
	IsValid   bool      `gorm:"not null" json:"is_valid"`
	CreatedAt time.Time `gorm:"index:idx_student_category" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate is a GORM hook that sets the initial workflow position.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.Status == "" {
		c.Status = StatusOpen
	}
	if c.Level == "" {
		c.Level = LevelClass
	}
	return
}

// ValidationLog is an append-only audit record of one review action.
type ValidationLog struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	ComplaintID uint `gorm:"not null;index" json:"complaint_id"`
	// ReviewerID is nil when the reviewer account no longer exists.
	ReviewerID *uint     `gorm:"index" json:"reviewer_id"`
	Valid      bool      `gorm:"not null" json:"valid"`
	Note       string    `gorm:"type:text" json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreditTransaction is an append-only ledger entry on a user's credit balance.
type CreditTransaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Amount    int       `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"size:255;not null" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
