package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
)

type ListArtistRequest struct {
	PageToken string
	PageSize  int32
	Search    string
}

type ListArtistFilter struct {
	UserID snowflake.ID
	Search string
}

type ListArtistResponse struct {
	pagination.PageInfo
	Artists []Artist `json:"artists"`
}

// ArtistInput carries the editable artist fields. BirthDate uses YYYY-MM-DD.
type ArtistInput struct {
	Name         string
	StageName    string
	BirthDate    string
	TaxID        string
	SoundOnEmail string
	OneRPMEmail  string
	SpotifyURL   string
	YouTubeURL   string
	TikTokURL    string
	InstagramURL string
}

type Service interface {
	Create(ctx context.Context, req ArtistInput) (Artist, error)
	Update(ctx context.Context, id string, req ArtistInput) (Artist, error)
	GetByID(ctx context.Context, id string) (Artist, error)
	List(ctx context.Context, req ListArtistRequest) (ListArtistResponse, error)
	Delete(ctx context.Context, id string) error
	CountCollaborations(ctx context.Context, id string) (int64, error)
	// ResolveMany returns the artists for ids that the caller may reference.
	ResolveMany(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]Artist, error)
}

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidStageName = errors.New("invalid_stage_name")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidURL       = errors.New("invalid_url")
	ErrInvalidBirthDate = errors.New("invalid_birth_date")
	ErrInvalidTaxID     = errors.New("invalid_tax_id")
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("artist_not_found")
	ErrArtistInUse      = errors.New("artist_in_use")
)
