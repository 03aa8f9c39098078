package domain

import (
	"context"

	"github.com/smallbiznis/royalti/internal/royalty"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
)

// ParticipantInput is one row of the royalty split form. ArtistID is the
// participant's subject reference.
type ParticipantInput struct {
	ArtistID   string `json:"artist_id"`
	Role       string `json:"role"`
	Percentage int    `json:"percentage"`
}

type SaveSongRequest struct {
	Title           string
	Genre           string
	Lyrics          string
	DurationSeconds int
	AudioURL        string
	ReleaseDate     string
	Participants    []ParticipantInput
	Metadata        map[string]any
}

// Participant is a ledger participant resolved against its artist.
type Participant struct {
	royalty.Participant
	ArtistName string `json:"artist_name"`
}

type SongDetail struct {
	Song         Song            `json:"song"`
	Participants []Participant   `json:"participants"`
	Ledger       royalty.Summary `json:"ledger"`
}

type ListSongRequest struct {
	PageToken string
	PageSize  int32
	Status    string
	Genre     string
	Search    string
	// All lists every user's songs and requires an admin.
	All bool
}

type ListSongResponse struct {
	pagination.PageInfo
	Songs []Song `json:"songs"`
}

type UpdateStatusRequest struct {
	Status string
	Notes  string
}

type RecordPerformanceRequest struct {
	Streams      int64
	RevenueCents int64
}

type PayoutLine struct {
	royalty.Payout
	ArtistID   string `json:"artist_id,omitempty"`
	ArtistName string `json:"artist_name"`
}

type PayoutReport struct {
	SongID       string       `json:"song_id"`
	Title        string       `json:"title"`
	Streams      int64        `json:"streams"`
	RevenueCents int64        `json:"revenue_cents"`
	Lines        []PayoutLine `json:"lines"`
}

type PreviewRequest struct {
	DistributorPercentage *int
	Participants          []ParticipantInput
}

// PreviewResponse is the live state of a split being edited.
type PreviewResponse struct {
	Ledger royalty.Summary `json:"ledger"`
	// NewSlotHeadroom is the slider maximum for a participant not yet added.
	NewSlotHeadroom int `json:"new_slot_headroom"`
	// ParticipantHeadroom is the slider maximum of each entry, in input order.
	ParticipantHeadroom []int `json:"participant_headroom"`
	// SubmitError is the code that would block saving, empty when the split is submittable.
	SubmitError string `json:"submit_error,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req SaveSongRequest) (SongDetail, error)
	Update(ctx context.Context, id string, req SaveSongRequest) (SongDetail, error)
	GetByID(ctx context.Context, id string) (SongDetail, error)
	List(ctx context.Context, req ListSongRequest) (ListSongResponse, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (Song, error)
	RecordPerformance(ctx context.Context, id string, req RecordPerformanceRequest) (Song, error)
	Payouts(ctx context.Context, id string) (PayoutReport, error)
	Statement(ctx context.Context, id string) ([]byte, error)
	PreviewLedger(ctx context.Context, req PreviewRequest) (PreviewResponse, error)
}
