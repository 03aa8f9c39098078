package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	artistdomain "github.com/smallbiznis/royalti/internal/artist/domain"
	catalogdomain "github.com/smallbiznis/royalti/internal/catalog/domain"
	"github.com/smallbiznis/royalti/internal/royalty"
	songdomain "github.com/smallbiznis/royalti/internal/song/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
		field  string
		code   string
	}{
		{
			name:   "participant out of range",
			err:    &songdomain.ParticipantError{Index: 2, Field: "percentage", Err: royalty.ErrOutOfRange},
			status: http.StatusBadRequest,
			typ:    "validation_error",
			field:  "participants[2].percentage",
			code:   "out_of_range",
		},
		{
			name:   "unknown artist",
			err:    &songdomain.ParticipantError{Index: 0, Field: "artist_id", Err: songdomain.ErrArtistNotFound},
			status: http.StatusBadRequest,
			typ:    "validation_error",
			field:  "participants[0].artist_id",
			code:   "artist_not_found",
		},
		{
			name:   "unbalanced",
			err:    royalty.ErrUnbalancedLedger,
			status: http.StatusBadRequest,
			typ:    "validation_error",
			field:  "participants",
			code:   "unbalanced_ledger",
		},
		{
			name:   "title",
			err:    songdomain.ErrInvalidTitle,
			status: http.StatusBadRequest,
			typ:    "validation_error",
			field:  "title",
			code:   "invalid_title",
		},
		{
			name:   "persistence",
			err:    songdomain.WrapPersistence(errors.New("connection reset")),
			status: http.StatusInternalServerError,
			typ:    "persistence_failure",
		},
		{
			name:   "inconsistent stored ledger",
			err:    fmt.Errorf("%w: %w", songdomain.ErrInconsistentLedger, royalty.ErrUnbalancedLedger),
			status: http.StatusInternalServerError,
			typ:    "internal_error",
		},
		{
			name:   "song not found",
			err:    songdomain.ErrNotFound,
			status: http.StatusNotFound,
			typ:    "not_found",
		},
		{
			name:   "artist in use",
			err:    artistdomain.ErrArtistInUse,
			status: http.StatusConflict,
			typ:    "conflict",
		},
		{
			name:   "catalog upstream",
			err:    fmt.Errorf("search: %w", catalogdomain.ErrUpstream),
			status: http.StatusBadGateway,
			typ:    "upstream_error",
		},
		{
			name:   "catalog not configured",
			err:    catalogdomain.ErrNotConfigured,
			status: http.StatusServiceUnavailable,
			typ:    "service_unavailable",
		},
		{
			name:   "unknown",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			typ:    "internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.typ, payload.Type)
			if tc.code == "" {
				assert.Empty(t, payload.Errors)
				return
			}
			require.Len(t, payload.Errors, 1)
			assert.Equal(t, tc.field, payload.Errors[0].Field)
			assert.Equal(t, tc.code, payload.Errors[0].Code)
		})
	}
}

func TestPersistenceFailureHidesDriverError(t *testing.T) {
	_, payload := mapError(songdomain.WrapPersistence(errors.New("pq: relation \"songs\" does not exist")))
	assert.Equal(t, persistenceFailureMessage, payload.Message)
	assert.NotContains(t, payload.Message, "relation")
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(&songdomain.ParticipantError{Index: 1, Field: "percentage", Err: royalty.ErrOutOfRange})
	assert.Equal(t, "validation_error", typ)
	assert.Equal(t, "out_of_range", code)

	typ, code = classifyErrorForLog(ErrForbidden)
	assert.Equal(t, "forbidden", typ)
	assert.Equal(t, "forbidden", code)
}
