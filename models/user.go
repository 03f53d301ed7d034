package models

import (
	"strings"
	"time"
)

// Role is the closed set of account roles. Roles are validated at the
// boundary and never threaded through as free-form strings.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleAdvertiser Role = "advertiser"
	RoleBusiness   Role = "business"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleAdvertiser, RoleBusiness:
		return true
	}
	return false
}

// User is a registered account. Email is unique case-insensitively: it is
// lowercased on every write and lookup (see NormalizeEmail) so the plain
// unique index on users.email is enough.
type User struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string    `json:"-" gorm:"not null"`
	Role          Role      `json:"role" gorm:"type:varchar(16);default:'user';index"`
	EmailVerified bool      `json:"email_verified" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
