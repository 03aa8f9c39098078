package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidID            = errors.New("invalid_id")
	ErrNotFound             = errors.New("song_not_found")
	ErrInvalidTitle         = errors.New("invalid_title")
	ErrInvalidGenre         = errors.New("invalid_genre")
	ErrInvalidDuration      = errors.New("invalid_duration")
	ErrInvalidReleaseDate   = errors.New("invalid_release_date")
	ErrInvalidAudioURL      = errors.New("invalid_audio_url")
	ErrInvalidArtistID      = errors.New("invalid_artist_id")
	ErrArtistNotFound       = errors.New("artist_not_found")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidPerformance   = errors.New("invalid_performance")
	ErrInconsistentLedger   = errors.New("inconsistent_ledger")
	ErrPersistenceFailure   = errors.New("persistence_failure")
	ErrStatementUnavailable = errors.New("statement_unavailable")
)

// ParticipantError ties a rejection to one entry of the submitted participant list.
type ParticipantError struct {
	Index int
	Field string
	Err   error
}

func (e *ParticipantError) Error() string {
	return fmt.Sprintf("participants[%d].%s: %v", e.Index, e.Field, e.Err)
}

func (e *ParticipantError) Unwrap() error {
	return e.Err
}

// Path is the request path of the offending field.
func (e *ParticipantError) Path() string {
	return fmt.Sprintf("participants[%d].%s", e.Index, e.Field)
}

// WrapPersistence keeps both the persistence sentinel and the driver error reachable through errors.Is.
func WrapPersistence(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
}
