package service

import (
	"context"
	"errors"
	"time"

	artistdomain "github.com/smallbiznis/royalti/internal/artist/domain"
	"github.com/smallbiznis/royalti/internal/catalog/client"
	"github.com/smallbiznis/royalti/internal/catalog/domain"
	"github.com/smallbiznis/royalti/internal/observability/logger"
	"github.com/smallbiznis/royalti/internal/observability/metrics"
	"github.com/smallbiznis/royalti/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const refreshLockTTL = 15 * time.Second

type Params struct {
	fx.In

	Log     *zap.Logger
	Client  domain.Client
	Cache   domain.Cache
	Artists artistdomain.Service
	Locker  *ratelimit.Locker `optional:"true"`
	Metrics *metrics.Metrics  `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	client  domain.Client
	cache   domain.Cache
	artists artistdomain.Service
	locker  *ratelimit.Locker
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("catalog.service"),
		client:  p.Client,
		cache:   p.Cache,
		artists: p.Artists,
		locker:  p.Locker,
		metrics: p.Metrics,
	}
}

func (s *Service) Enrich(ctx context.Context, artistID string) (domain.Artist, error) {
	artist, err := s.artists.GetByID(ctx, artistID)
	if err != nil {
		return domain.Artist{}, err
	}
	key := artist.ID.String()
	log := logger.WithContext(ctx, s.log).With(zap.String("artist_id", key))

	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Warn("catalog cache read failed", zap.Error(err))
	} else if ok {
		s.metrics.RecordCatalogCache(ctx, true)
		return cached, nil
	}
	s.metrics.RecordCatalogCache(ctx, false)

	release, err := s.locker.Acquire(ctx, "royalti:lock:catalog:"+key, refreshLockTTL)
	if errors.Is(err, ratelimit.ErrLockHeld) {
		// Another replica is refreshing this entry; answer without caching.
		return s.fetch(ctx, artist)
	}
	if err != nil {
		log.Warn("catalog lock failed", zap.Error(err))
		release = func() {}
	}
	defer release()

	profile, err := s.fetch(ctx, artist)
	if err != nil {
		return domain.Artist{}, err
	}
	if err := s.cache.Set(ctx, key, profile); err != nil {
		log.Warn("catalog cache write failed", zap.Error(err))
	}
	return profile, nil
}

func (s *Service) Clear(ctx context.Context, artistID string) error {
	artist, err := s.artists.GetByID(ctx, artistID)
	if err != nil {
		return err
	}
	return s.cache.Clear(ctx, artist.ID.String())
}

// fetch prefers the id in the artist's Spotify link and falls back to a
// search by stage name.
func (s *Service) fetch(ctx context.Context, artist artistdomain.Artist) (domain.Artist, error) {
	var (
		profile domain.Artist
		err     error
	)
	if externalID := client.ExternalIDFromURL(artist.SpotifyURL); externalID != "" {
		profile, err = s.client.GetArtist(ctx, externalID)
	} else {
		profile, err = s.client.SearchArtist(ctx, artist.StageName)
	}

	s.metrics.RecordCatalogLookup(ctx, s.client.Name(), outcome(err))
	if err != nil && !errors.Is(err, domain.ErrNotConfigured) && !errors.Is(err, domain.ErrArtistNotFound) {
		logger.WithContext(ctx, s.log).Warn("catalog lookup failed",
			zap.String("artist_id", artist.ID.String()),
			zap.Error(err),
		)
	}
	return profile, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, domain.ErrArtistNotFound):
		return "not_found"
	default:
		return "error"
	}
}
