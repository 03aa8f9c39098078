// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/royalti/internal/principal"
)

// User is an account together with its public profile.
type User struct {
	ID           snowflake.ID   `gorm:"primaryKey" json:"id"`
	ExternalID   string         `gorm:"column:external_id;size:64;not null;uniqueIndex" json:"external_id"`
	Email        string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Username     *string        `gorm:"column:username;uniqueIndex" json:"username,omitempty"`
	FullName     string         `gorm:"column:full_name" json:"full_name"`
	AvatarURL    string         `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	Website      string         `gorm:"column:website" json:"website,omitempty"`
	Role         principal.Role `gorm:"column:role;size:32;not null;default:user" json:"role"`
	PasswordHash *string        `gorm:"column:password_hash;type:text" json:"-"`
	CreatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session represents a persisted login session.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	UserID           snowflake.ID `gorm:"column:user_id;not null;index"`
	SessionTokenHash string       `gorm:"column:session_token_hash;size:128;not null;uniqueIndex"`
	UserAgent        string       `gorm:"column:user_agent;type:text"`
	IPAddress        string       `gorm:"column:ip_address;type:text"`
	ExpiresAt        time.Time    `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt       time.Time    `gorm:"column:last_seen_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Session) TableName() string { return "sessions" }
