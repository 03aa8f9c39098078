package domain

import "errors"

var (
	ErrNotConfigured    = errors.New("catalog_not_configured")
	ErrArtistNotFound   = errors.New("catalog_artist_not_found")
	ErrUpstream         = errors.New("catalog_upstream_error")
	ErrInvalidArtistRef = errors.New("invalid_artist_ref")
)
