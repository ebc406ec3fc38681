// Package domain contains persistence models for user accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role determines which tenant data a user may touch.
type Role string

const (
	// RolePausalac is a tenant-scoped regular user.
	RolePausalac Role = "pausalac"
	// RoleAdmin is the privileged cross-tenant operator role.
	RoleAdmin Role = "admin"
)

// User represents an account. FirmaID is nulled, not cascaded, when the
// firma is deleted: the account survives its tenant.
type User struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	FirmaID      *snowflake.ID `gorm:"index" json:"firma_id,omitempty"`
	Email        string        `gorm:"type:text;not null;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash string        `gorm:"type:text;not null" json:"-"`
	ImePrezime   string        `gorm:"type:text;not null" json:"ime_prezime"`
	Role         Role          `gorm:"type:text;not null;default:'pausalac'" json:"role"`
	IsActive     bool          `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
