package service

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/royalti/internal/artist/domain"
	"github.com/smallbiznis/royalti/internal/principal"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxSlugAttempts = 50

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("artist.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.ArtistInput) (domain.Artist, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return domain.Artist{}, domain.ErrUnauthenticated
	}

	now := time.Now().UTC()
	artist := domain.Artist{
		ID:        s.genID.Generate(),
		UserID:    p.UserID,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyInput(&artist, req, now); err != nil {
		return domain.Artist{}, err
	}

	unique, err := s.uniqueSlug(ctx, artist.UserID, artist.StageName, artist.ID)
	if err != nil {
		return domain.Artist{}, err
	}
	artist.Slug = unique

	if err := s.repo.Insert(ctx, s.db, &artist); err != nil {
		return domain.Artist{}, err
	}

	s.log.Info("artist created", zap.String("artist_id", artist.ID.String()), zap.String("slug", artist.Slug))
	return artist, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.ArtistInput) (domain.Artist, error) {
	artist, err := s.load(ctx, id)
	if err != nil {
		return domain.Artist{}, err
	}

	now := time.Now().UTC()
	previousStage := artist.StageName
	if err := applyInput(&artist, req, now); err != nil {
		return domain.Artist{}, err
	}
	if artist.StageName != previousStage {
		unique, err := s.uniqueSlug(ctx, artist.UserID, artist.StageName, artist.ID)
		if err != nil {
			return domain.Artist{}, err
		}
		artist.Slug = unique
	}
	artist.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, &artist); err != nil {
		return domain.Artist{}, err
	}
	return artist, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Artist, error) {
	return s.load(ctx, id)
}

func (s *Service) List(ctx context.Context, req domain.ListArtistRequest) (domain.ListArtistResponse, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return domain.ListArtistResponse{}, domain.ErrUnauthenticated
	}

	filter := domain.ListArtistFilter{Search: strings.TrimSpace(req.Search)}
	if !p.IsAdmin() {
		filter.UserID = p.UserID
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListArtistResponse{}, err
	}

	artists, pageInfo := pagination.Trim(items, int(pageSize), func(a *domain.Artist) pagination.Cursor {
		return pagination.NewCursor(a.ID.String(), a.CreatedAt)
	})
	return domain.ListArtistResponse{PageInfo: pageInfo, Artists: artists}, nil
}

// Delete removes an artist that no song references.
func (s *Service) Delete(ctx context.Context, id string) error {
	artist, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.repo.CountCollaborations(ctx, tx, artist.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrArtistInUse
		}
		return s.repo.Delete(ctx, tx, artist.ID)
	})
}

func (s *Service) CountCollaborations(ctx context.Context, id string) (int64, error) {
	artist, err := s.load(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.repo.CountCollaborations(ctx, s.db, artist.ID)
}

func (s *Service) ResolveMany(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]domain.Artist, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	items, err := s.repo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[snowflake.ID]domain.Artist, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if !p.IsAdmin() && item.UserID != p.UserID {
			continue
		}
		out[item.ID] = *item
	}
	return out, nil
}

// load fetches an artist visible to the caller. Artists owned by someone else
// are reported as not found.
func (s *Service) load(ctx context.Context, raw string) (domain.Artist, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return domain.Artist{}, domain.ErrUnauthenticated
	}

	id, err := parseID(raw)
	if err != nil {
		return domain.Artist{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Artist{}, err
	}
	if item == nil || (!p.IsAdmin() && item.UserID != p.UserID) {
		return domain.Artist{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) uniqueSlug(ctx context.Context, userID snowflake.ID, stageName string, excludeID snowflake.ID) (string, error) {
	base := slug.Make(stageName)
	if base == "" {
		base = "artist"
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts; i++ {
		exists, err := s.repo.SlugExists(ctx, s.db, userID, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%s", base, excludeID.Base36()), nil
}

func applyInput(artist *domain.Artist, req domain.ArtistInput, now time.Time) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ErrInvalidName
	}
	stageName := strings.TrimSpace(req.StageName)
	if stageName == "" {
		return domain.ErrInvalidStageName
	}

	birthDate, err := parseBirthDate(req.BirthDate, now)
	if err != nil {
		return err
	}
	taxID, err := normalizeTaxID(req.TaxID)
	if err != nil {
		return err
	}

	soundOn, err := normalizeEmail(req.SoundOnEmail)
	if err != nil {
		return err
	}
	oneRPM, err := normalizeEmail(req.OneRPMEmail)
	if err != nil {
		return err
	}

	links := []*string{&req.SpotifyURL, &req.YouTubeURL, &req.TikTokURL, &req.InstagramURL}
	for _, link := range links {
		normalized, err := normalizeURL(*link)
		if err != nil {
			return err
		}
		*link = normalized
	}

	artist.Name = name
	artist.StageName = stageName
	artist.BirthDate = birthDate
	artist.TaxID = taxID
	artist.SoundOnEmail = soundOn
	artist.OneRPMEmail = oneRPM
	artist.SpotifyURL = req.SpotifyURL
	artist.YouTubeURL = req.YouTubeURL
	artist.TikTokURL = req.TikTokURL
	artist.InstagramURL = req.InstagramURL
	return nil
}

func parseBirthDate(raw string, now time.Time) (*datatypes.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil || t.After(now) {
		return nil, domain.ErrInvalidBirthDate
	}
	d := datatypes.Date(t)
	return &d, nil
}

// normalizeTaxID keeps digits only and expects an 11 digit individual taxpayer number.
func normalizeTaxID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		if r == '.' || r == '-' || r == ' ' {
			return -1
		}
		return 'x'
	}, raw)
	if len(digits) != 11 || strings.Contains(digits, "x") {
		return "", domain.ErrInvalidTaxID
	}
	return digits, nil
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", domain.ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", domain.ErrInvalidURL
	}
	return u.String(), nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
