package domain

import "context"

// Client talks to the external catalog.
type Client interface {
	Name() string
	SearchArtist(ctx context.Context, name string) (Artist, error)
	GetArtist(ctx context.Context, externalID string) (Artist, error)
}

// Cache stores catalog profiles keyed by internal artist id.
type Cache interface {
	Get(ctx context.Context, key string) (Artist, bool, error)
	Set(ctx context.Context, key string, value Artist) error
	Clear(ctx context.Context, key string) error
}

type Service interface {
	// Enrich returns the catalog profile of one of the caller's artists.
	Enrich(ctx context.Context, artistID string) (Artist, error)
	// Clear drops the cached profile so the next Enrich refetches it.
	Clear(ctx context.Context, artistID string) error
}
