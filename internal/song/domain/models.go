package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusSubmitted           Status = "submitted"
	StatusUnderReview         Status = "under_review"
	StatusApproved            Status = "approved"
	StatusInProduction        Status = "in_production"
	StatusMastering           Status = "mastering"
	StatusDistributionPending Status = "distribution_pending"
	StatusPublished           Status = "published"
	StatusRejected            Status = "rejected"
)

// Statuses lists the workflow in display order.
var Statuses = []Status{
	StatusSubmitted,
	StatusUnderReview,
	StatusApproved,
	StatusInProduction,
	StatusMastering,
	StatusDistributionPending,
	StatusPublished,
	StatusRejected,
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Song is a track submitted by a user. Its royalty split lives in
// song_collaborators together with DistributorRoyalty.
type Song struct {
	ID                 snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID             snowflake.ID      `gorm:"not null;index" json:"user_id"`
	Title              string            `gorm:"not null" json:"title"`
	Genre              string            `gorm:"not null;index" json:"genre"`
	Lyrics             string            `gorm:"type:text" json:"lyrics,omitempty"`
	DurationSeconds    int               `gorm:"column:duration_seconds;not null" json:"duration_seconds"`
	AudioURL           string            `gorm:"column:audio_url" json:"audio_url,omitempty"`
	ReleaseDate        *datatypes.Date   `gorm:"column:release_date" json:"release_date,omitempty"`
	DistributorRoyalty int               `gorm:"column:distributor_royalty;not null" json:"distributor_royalty"`
	Streams            int64             `gorm:"not null;default:0" json:"streams"`
	RevenueCents       int64             `gorm:"column:revenue_cents;not null;default:0" json:"revenue_cents"`
	Status             Status            `gorm:"size:32;not null;index;default:submitted" json:"status"`
	StatusNotes        string            `gorm:"column:status_notes" json:"status_notes,omitempty"`
	StatusUpdatedAt    *time.Time        `gorm:"column:status_updated_at" json:"status_updated_at,omitempty"`
	StatusUpdatedBy    *snowflake.ID     `gorm:"column:status_updated_by" json:"status_updated_by,omitempty"`
	Metadata           datatypes.JSONMap `gorm:"not null" json:"metadata,omitempty"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Song) TableName() string { return "songs" }

// Collaborator is one persisted royalty participant of a song.
type Collaborator struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	SongID            snowflake.ID `gorm:"not null;index;uniqueIndex:ux_song_collaborators_song_artist" json:"song_id"`
	ArtistID          snowflake.ID `gorm:"not null;index;uniqueIndex:ux_song_collaborators_song_artist" json:"artist_id"`
	Role              string       `gorm:"size:64;not null" json:"role"`
	RoyaltyPercentage int          `gorm:"column:royalty_percentage;not null" json:"royalty_percentage"`
	Position          int          `gorm:"not null;default:0" json:"position"`
}

func (Collaborator) TableName() string { return "song_collaborators" }
