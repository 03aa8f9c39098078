package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/royalti/internal/song/domain"
	"github.com/smallbiznis/royalti/pkg/db/option"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
	"github.com/smallbiznis/royalti/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func songs(db *gorm.DB) repository.Store[domain.Song] {
	return repository.New[domain.Song](db)
}

func collaborators(db *gorm.DB) repository.Store[domain.Collaborator] {
	return repository.New[domain.Collaborator](db)
}

func (r *repo) InsertSong(ctx context.Context, db *gorm.DB, song *domain.Song) error {
	return songs(db).Insert(ctx, song)
}

func (r *repo) UpdateSong(ctx context.Context, db *gorm.DB, song *domain.Song) error {
	return patchSong(ctx, db, song.ID, map[string]any{
		"title":            song.Title,
		"genre":            song.Genre,
		"lyrics":           song.Lyrics,
		"duration_seconds": song.DurationSeconds,
		"audio_url":        song.AudioURL,
		"release_date":     song.ReleaseDate,
		"metadata":         song.Metadata,
		"updated_at":       song.UpdatedAt,
	})
}

func (r *repo) DeleteSong(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return songs(db).Delete(ctx, option.Where("id = ?", id))
}

func (r *repo) FindSongByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Song, error) {
	return songs(db).Get(ctx, id)
}

func (r *repo) ListSongs(ctx context.Context, db *gorm.DB, filter domain.ListSongFilter, page pagination.Pagination) ([]*domain.Song, error) {
	opts := []option.QueryOption{option.ApplyPagination(page), option.WithOrder("created_at desc, id desc")}
	if filter.UserID != 0 {
		opts = append(opts, option.Where("user_id = ?", filter.UserID))
	}
	if filter.Status != "" {
		opts = append(opts, option.Where("status = ?", filter.Status))
	}
	if filter.Genre != "" {
		opts = append(opts, option.Where("LOWER(genre) = ?", strings.ToLower(filter.Genre)))
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		opts = append(opts, option.Where("LOWER(title) LIKE ?", "%"+search+"%"))
	}
	return songs(db).List(ctx, opts...)
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, notes string, by snowflake.ID, at time.Time) error {
	return patchSong(ctx, db, id, map[string]any{
		"status":            string(status),
		"status_notes":      notes,
		"status_updated_by": by,
		"status_updated_at": at,
		"updated_at":        at,
	})
}

func (r *repo) UpdatePerformance(ctx context.Context, db *gorm.DB, id snowflake.ID, streams, revenueCents int64, at time.Time) error {
	return patchSong(ctx, db, id, map[string]any{
		"streams":       streams,
		"revenue_cents": revenueCents,
		"updated_at":    at,
	})
}

func patchSong(ctx context.Context, db *gorm.DB, id snowflake.ID, columns map[string]any) error {
	n, err := songs(db).Patch(ctx, id, columns)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceCollaborators swaps the whole collaborator set. Callers run it inside
// the transaction that writes the song row.
func (r *repo) ReplaceCollaborators(ctx context.Context, db *gorm.DB, songID snowflake.ID, rows []domain.Collaborator) error {
	if err := r.DeleteCollaborators(ctx, db, songID); err != nil {
		return err
	}
	return collaborators(db).InsertMany(ctx, rows)
}

func (r *repo) ListCollaborators(ctx context.Context, db *gorm.DB, songID snowflake.ID) ([]domain.Collaborator, error) {
	rows, err := collaborators(db).List(ctx,
		option.Where("song_id = ?", songID),
		option.WithOrder("position asc, id asc"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Collaborator, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (r *repo) DeleteCollaborators(ctx context.Context, db *gorm.DB, songID snowflake.ID) error {
	return collaborators(db).Delete(ctx, option.Where("song_id = ?", songID))
}
