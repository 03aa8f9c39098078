package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListSongFilter struct {
	UserID snowflake.ID
	Status Status
	Genre  string
	Search string
}

type Repository interface {
	InsertSong(ctx context.Context, db *gorm.DB, song *Song) error
	UpdateSong(ctx context.Context, db *gorm.DB, song *Song) error
	DeleteSong(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindSongByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Song, error)
	ListSongs(ctx context.Context, db *gorm.DB, filter ListSongFilter, page pagination.Pagination) ([]*Song, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, notes string, by snowflake.ID, at time.Time) error
	UpdatePerformance(ctx context.Context, db *gorm.DB, id snowflake.ID, streams, revenueCents int64, at time.Time) error

	// ReplaceCollaborators deletes every row of songID and inserts rows.
	ReplaceCollaborators(ctx context.Context, db *gorm.DB, songID snowflake.ID, rows []Collaborator) error
	ListCollaborators(ctx context.Context, db *gorm.DB, songID snowflake.ID) ([]Collaborator, error)
	DeleteCollaborators(ctx context.Context, db *gorm.DB, songID snowflake.ID) error
}
