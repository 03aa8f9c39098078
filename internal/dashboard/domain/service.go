package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// SongSummary is a song row in dashboard lists.
type SongSummary struct {
	ID           snowflake.ID `json:"id"`
	Title        string       `json:"title"`
	Genre        string       `json:"genre"`
	Status       string       `json:"status"`
	Streams      int64        `json:"streams"`
	RevenueCents int64        `json:"revenue_cents"`
	CreatedAt    time.Time    `json:"created_at"`
}

type ArtistSummary struct {
	ID        snowflake.ID `json:"id"`
	Name      string       `json:"name"`
	StageName string       `json:"stage_name"`
	CreatedAt time.Time    `json:"created_at"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type UserOverview struct {
	ArtistCount       int64         `json:"artist_count"`
	SongCount         int64         `json:"song_count"`
	PublishedCount    int64         `json:"published_count"`
	TotalStreams      int64         `json:"total_streams"`
	TotalRevenueCents int64         `json:"total_revenue_cents"`
	SongsLast30Days   int64         `json:"songs_last_30_days"`
	TopSongs          []SongSummary `json:"top_songs"`
	RecentSongs       []SongSummary `json:"recent_songs"`
	GeneratedAt       time.Time     `json:"generated_at"`
}

type AdminOverview struct {
	UserCount         int64           `json:"user_count"`
	ArtistCount       int64           `json:"artist_count"`
	SongCount         int64           `json:"song_count"`
	TotalStreams      int64           `json:"total_streams"`
	TotalRevenueCents int64           `json:"total_revenue_cents"`
	SongsByStatus     []StatusCount   `json:"songs_by_status"`
	PendingReview     int64           `json:"pending_review"`
	RecentSongs       []SongSummary   `json:"recent_songs"`
	RecentArtists     []ArtistSummary `json:"recent_artists"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

type Service interface {
	UserOverview(ctx context.Context) (UserOverview, error)
	AdminOverview(ctx context.Context) (AdminOverview, error)
}
