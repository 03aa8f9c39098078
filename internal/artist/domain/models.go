package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Artist is a partner artist registered by a user. Songs reference artists
// as royalty participants.
type Artist struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID       snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_artists_user_slug" json:"user_id"`
	Name         string            `gorm:"not null" json:"name"`
	StageName    string            `gorm:"column:stage_name;not null" json:"stage_name"`
	Slug         string            `gorm:"not null;uniqueIndex:ux_artists_user_slug" json:"slug"`
	BirthDate    *datatypes.Date   `gorm:"column:birth_date" json:"birth_date,omitempty"`
	TaxID        string            `gorm:"column:tax_id" json:"tax_id,omitempty"`
	SoundOnEmail string            `gorm:"column:soundon_email" json:"soundon_email,omitempty"`
	OneRPMEmail  string            `gorm:"column:onerpm_email" json:"onerpm_email,omitempty"`
	SpotifyURL   string            `gorm:"column:spotify_url" json:"spotify_url,omitempty"`
	YouTubeURL   string            `gorm:"column:youtube_url" json:"youtube_url,omitempty"`
	TikTokURL    string            `gorm:"column:tiktok_url" json:"tiktok_url,omitempty"`
	InstagramURL string            `gorm:"column:instagram_url" json:"instagram_url,omitempty"`
	Metadata     datatypes.JSONMap `gorm:"not null" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Artist) TableName() string { return "artists" }
