package service

import (
	"context"

	"github.com/smallbiznis/royalti/internal/clock"
	"github.com/smallbiznis/royalti/internal/dashboard/domain"
	"github.com/smallbiznis/royalti/internal/principal"
	songdomain "github.com/smallbiznis/royalti/internal/song/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const listLimit = 5

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dashboard.service"),
		clock: p.Clock,
	}
}

type totalsRow struct {
	SongCount    int64 `gorm:"column:song_count"`
	Streams      int64 `gorm:"column:streams"`
	RevenueCents int64 `gorm:"column:revenue_cents"`
}

func (s *Service) UserOverview(ctx context.Context) (domain.UserOverview, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return domain.UserOverview{}, domain.ErrUnauthenticated
	}
	now := s.clock.Now()
	db := s.db.WithContext(ctx)

	var out domain.UserOverview
	out.GeneratedAt = now

	if err := db.Raw(`SELECT COUNT(*) FROM artists WHERE user_id = ?`, p.UserID).Scan(&out.ArtistCount).Error; err != nil {
		return domain.UserOverview{}, err
	}

	var totals totalsRow
	if err := db.Raw(
		`SELECT COUNT(*) AS song_count,
		        COALESCE(SUM(streams), 0) AS streams,
		        COALESCE(SUM(revenue_cents), 0) AS revenue_cents
		 FROM songs WHERE user_id = ?`,
		p.UserID,
	).Scan(&totals).Error; err != nil {
		return domain.UserOverview{}, err
	}
	out.SongCount = totals.SongCount
	out.TotalStreams = totals.Streams
	out.TotalRevenueCents = totals.RevenueCents

	if err := db.Raw(
		`SELECT COUNT(*) FROM songs WHERE user_id = ? AND status = ?`,
		p.UserID, string(songdomain.StatusPublished),
	).Scan(&out.PublishedCount).Error; err != nil {
		return domain.UserOverview{}, err
	}
	if err := db.Raw(
		`SELECT COUNT(*) FROM songs WHERE user_id = ? AND created_at >= ?`,
		p.UserID, now.AddDate(0, 0, -30),
	).Scan(&out.SongsLast30Days).Error; err != nil {
		return domain.UserOverview{}, err
	}

	top, err := s.listSongs(ctx, "user_id = ?", []any{p.UserID}, "streams DESC, id DESC")
	if err != nil {
		return domain.UserOverview{}, err
	}
	recent, err := s.listSongs(ctx, "user_id = ?", []any{p.UserID}, "created_at DESC, id DESC")
	if err != nil {
		return domain.UserOverview{}, err
	}
	out.TopSongs = top
	out.RecentSongs = recent
	return out, nil
}

func (s *Service) AdminOverview(ctx context.Context) (domain.AdminOverview, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return domain.AdminOverview{}, domain.ErrUnauthenticated
	}
	if !p.IsAdmin() {
		return domain.AdminOverview{}, domain.ErrForbidden
	}
	db := s.db.WithContext(ctx)

	var out domain.AdminOverview
	out.GeneratedAt = s.clock.Now()

	if err := db.Raw(`SELECT COUNT(*) FROM users`).Scan(&out.UserCount).Error; err != nil {
		return domain.AdminOverview{}, err
	}
	if err := db.Raw(`SELECT COUNT(*) FROM artists`).Scan(&out.ArtistCount).Error; err != nil {
		return domain.AdminOverview{}, err
	}

	var totals totalsRow
	if err := db.Raw(
		`SELECT COUNT(*) AS song_count,
		        COALESCE(SUM(streams), 0) AS streams,
		        COALESCE(SUM(revenue_cents), 0) AS revenue_cents
		 FROM songs`,
	).Scan(&totals).Error; err != nil {
		return domain.AdminOverview{}, err
	}
	out.SongCount = totals.SongCount
	out.TotalStreams = totals.Streams
	out.TotalRevenueCents = totals.RevenueCents

	byStatus, err := s.countByStatus(ctx)
	if err != nil {
		return domain.AdminOverview{}, err
	}
	out.SongsByStatus = byStatus
	for _, row := range byStatus {
		if row.Status == string(songdomain.StatusSubmitted) || row.Status == string(songdomain.StatusUnderReview) {
			out.PendingReview += row.Count
		}
	}

	recent, err := s.listSongs(ctx, "", nil, "created_at DESC, id DESC")
	if err != nil {
		return domain.AdminOverview{}, err
	}
	out.RecentSongs = recent

	var artists []domain.ArtistSummary
	if err := db.Raw(
		`SELECT id, name, stage_name, created_at FROM artists ORDER BY created_at DESC, id DESC LIMIT ?`,
		listLimit,
	).Scan(&artists).Error; err != nil {
		return domain.AdminOverview{}, err
	}
	out.RecentArtists = artists
	return out, nil
}

// countByStatus reports every workflow status, including those with no songs.
func (s *Service) countByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	var rows []domain.StatusCount
	if err := s.db.WithContext(ctx).Raw(
		`SELECT status, COUNT(*) AS count FROM songs GROUP BY status`,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	out := make([]domain.StatusCount, 0, len(songdomain.Statuses))
	for _, status := range songdomain.Statuses {
		out = append(out, domain.StatusCount{Status: string(status), Count: counts[string(status)]})
	}
	return out, nil
}

func (s *Service) listSongs(ctx context.Context, where string, args []any, order string) ([]domain.SongSummary, error) {
	stmt := s.db.WithContext(ctx).
		Table("songs").
		Select("id, title, genre, status, streams, revenue_cents, created_at")
	if where != "" {
		stmt = stmt.Where(where, args...)
	}

	var rows []domain.SongSummary
	if err := stmt.Order(order).Limit(listLimit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

