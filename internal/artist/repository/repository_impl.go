package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/royalti/internal/artist/domain"
	"github.com/smallbiznis/royalti/pkg/db/option"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
	"github.com/smallbiznis/royalti/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func artists(db *gorm.DB) repository.Store[domain.Artist] {
	return repository.New[domain.Artist](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, artist *domain.Artist) error {
	return artists(db).Insert(ctx, artist)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, artist *domain.Artist) error {
	n, err := artists(db).Patch(ctx, artist.ID, map[string]any{
		"name":          artist.Name,
		"stage_name":    artist.StageName,
		"slug":          artist.Slug,
		"birth_date":    artist.BirthDate,
		"tax_id":        artist.TaxID,
		"soundon_email": artist.SoundOnEmail,
		"onerpm_email":  artist.OneRPMEmail,
		"spotify_url":   artist.SpotifyURL,
		"youtube_url":   artist.YouTubeURL,
		"tiktok_url":    artist.TikTokURL,
		"instagram_url": artist.InstagramURL,
		"updated_at":    artist.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return artists(db).Delete(ctx, option.Where("id = ?", id))
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Artist, error) {
	return artists(db).Get(ctx, id)
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*domain.Artist, error) {
	return artists(db).GetMany(ctx, ids)
}

func (r *repo) SlugExists(ctx context.Context, db *gorm.DB, userID snowflake.ID, slug string, excludeID snowflake.ID) (bool, error) {
	n, err := artists(db).Count(ctx,
		option.Where("user_id = ? AND slug = ?", userID, slug),
		option.Where("id <> ?", excludeID),
	)
	return n > 0, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListArtistFilter, page pagination.Pagination) ([]*domain.Artist, error) {
	opts := []option.QueryOption{option.ApplyPagination(page), option.WithOrder("created_at desc, id desc")}
	if filter.UserID != 0 {
		opts = append(opts, option.Where("user_id = ?", filter.UserID))
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		opts = append(opts, option.Where("LOWER(name) LIKE ? OR LOWER(stage_name) LIKE ?", like, like))
	}
	return artists(db).List(ctx, opts...)
}

func (r *repo) CountCollaborations(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var row struct {
		Total int64 `gorm:"column:total"`
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total FROM song_collaborators WHERE artist_id = ?`,
		id,
	).Scan(&row).Error
	return row.Total, err
}
