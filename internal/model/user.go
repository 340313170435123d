package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enum constants
const (
	RoleAdmin    = "admin"
	RoleApprover = "approver"
	RoleStaff    = "staff"
)

// User is an account that can create requests and act on approvals. The
// display name is what ends up in CreatedByName and the approval history.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName string         `gorm:"type:varchar(255);not null" json:"display_name"`
	Password    string         `gorm:"type:varchar(255);not null" json:"-"`
	Role        string         `gorm:"type:varchar(20);not null" json:"role"` // admin, approver, staff
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
