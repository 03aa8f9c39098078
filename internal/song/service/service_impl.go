package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	artistdomain "github.com/smallbiznis/royalti/internal/artist/domain"
	"github.com/smallbiznis/royalti/internal/clock"
	"github.com/smallbiznis/royalti/internal/config"
	"github.com/smallbiznis/royalti/internal/observability/logger"
	"github.com/smallbiznis/royalti/internal/observability/metrics"
	"github.com/smallbiznis/royalti/internal/principal"
	"github.com/smallbiznis/royalti/internal/providers/pdf"
	"github.com/smallbiznis/royalti/internal/royalty"
	"github.com/smallbiznis/royalti/internal/song/domain"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxTitleLength  = 200
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Artists   artistdomain.Service
	Reference *config.ReferenceHolder
	PDF       pdf.Provider
	Clock     clock.Clock
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	artists   artistdomain.Service
	reference *config.ReferenceHolder
	pdf       pdf.Provider
	metrics   *metrics.Metrics
	clock     clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("song.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		artists:   p.Artists,
		reference: p.Reference,
		pdf:       p.PDF,
		metrics:   p.Metrics,
		clock:     p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.SaveSongRequest) (domain.SongDetail, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return domain.SongDetail{}, domain.ErrUnauthenticated
	}

	ref := s.reference.Get()
	ledger, err := s.buildLedger(ctx, ref, ref.DistributorPercentage, req.Participants)
	if err != nil {
		return domain.SongDetail{}, err
	}

	now := s.clock.Now()
	song := domain.Song{
		ID:                 s.genID.Generate(),
		UserID:             p.UserID,
		DistributorRoyalty: ledger.Distributor(),
		Status:             domain.StatusSubmitted,
		Metadata:           datatypes.JSONMap{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := applyInput(&song, req, ref); err != nil {
		return domain.SongDetail{}, err
	}

	artists, rows, err := s.resolveParticipants(ctx, song.ID, ledger)
	if err != nil {
		return domain.SongDetail{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertSong(ctx, tx, &song); err != nil {
			return err
		}
		return s.repo.ReplaceCollaborators(ctx, tx, song.ID, rows)
	})
	if err != nil {
		logger.WithContext(ctx, s.log).Error("create song failed", zap.String("song_id", song.ID.String()), zap.Error(err))
		return domain.SongDetail{}, domain.WrapPersistence(err)
	}

	s.metrics.RecordSongSaved(ctx, "create")
	logger.WithSong(logger.WithContext(ctx, s.log), song.ID.String()).Info("song created",
		zap.Int("participants", ledger.Len()),
	)
	return buildDetail(song, ledger, artists), nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.SaveSongRequest) (domain.SongDetail, error) {
	song, err := s.load(ctx, id)
	if err != nil {
		return domain.SongDetail{}, err
	}

	ref := s.reference.Get()
	ledger, err := s.buildLedger(ctx, ref, song.DistributorRoyalty, req.Participants)
	if err != nil {
		return domain.SongDetail{}, err
	}
	if err := applyInput(&song, req, ref); err != nil {
		return domain.SongDetail{}, err
	}
	song.UpdatedAt = s.clock.Now()

	artists, rows, err := s.resolveParticipants(ctx, song.ID, ledger)
	if err != nil {
		return domain.SongDetail{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateSong(ctx, tx, &song); err != nil {
			return err
		}
		return s.repo.ReplaceCollaborators(ctx, tx, song.ID, rows)
	})
	if err != nil {
		logger.WithContext(ctx, s.log).Error("update song failed", zap.String("song_id", song.ID.String()), zap.Error(err))
		return domain.SongDetail{}, domain.WrapPersistence(err)
	}

	s.metrics.RecordSongSaved(ctx, "update")
	logger.WithSong(logger.WithContext(ctx, s.log), song.ID.String()).Info("song updated",
		zap.Int("participants", ledger.Len()),
	)
	return buildDetail(song, ledger, artists), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.SongDetail, error) {
	song, err := s.load(ctx, id)
	if err != nil {
		return domain.SongDetail{}, err
	}
	ledger, err := s.storedLedger(ctx, song)
	if err != nil {
		return domain.SongDetail{}, err
	}
	artists, err := s.artists.ResolveMany(ctx, subjectIDs(ledger))
	if err != nil {
		return domain.SongDetail{}, err
	}
	return buildDetail(song, ledger, artists), nil
}

func (s *Service) List(ctx context.Context, req domain.ListSongRequest) (domain.ListSongResponse, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return domain.ListSongResponse{}, domain.ErrUnauthenticated
	}
	if req.All && !p.IsAdmin() {
		return domain.ListSongResponse{}, domain.ErrForbidden
	}

	filter := domain.ListSongFilter{
		Genre:  strings.TrimSpace(req.Genre),
		Search: strings.TrimSpace(req.Search),
	}
	if !req.All {
		filter.UserID = p.UserID
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := domain.Status(strings.ToLower(raw))
		if !status.Valid() {
			return domain.ListSongResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	items, err := s.repo.ListSongs(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListSongResponse{}, domain.WrapPersistence(err)
	}

	songs, pageInfo := pagination.Trim(items, int(pageSize), func(song *domain.Song) pagination.Cursor {
		return pagination.NewCursor(song.ID.String(), song.CreatedAt)
	})
	return domain.ListSongResponse{PageInfo: pageInfo, Songs: songs}, nil
}

// Delete removes a song together with its collaborator rows.
func (s *Service) Delete(ctx context.Context, id string) error {
	song, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteCollaborators(ctx, tx, song.ID); err != nil {
			return err
		}
		return s.repo.DeleteSong(ctx, tx, song.ID)
	})
	if err != nil {
		logger.WithContext(ctx, s.log).Error("delete song failed", zap.String("song_id", song.ID.String()), zap.Error(err))
		return domain.WrapPersistence(err)
	}
	logger.WithSong(logger.WithContext(ctx, s.log), song.ID.String()).Info("song deleted")
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, req domain.UpdateStatusRequest) (domain.Song, error) {
	p, err := requireAdmin(ctx)
	if err != nil {
		return domain.Song{}, err
	}

	status := domain.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return domain.Song{}, domain.ErrInvalidStatus
	}

	song, err := s.load(ctx, id)
	if err != nil {
		return domain.Song{}, err
	}

	now := s.clock.Now()
	notes := strings.TrimSpace(req.Notes)
	if err := s.repo.UpdateStatus(ctx, s.db, song.ID, status, notes, p.UserID, now); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Song{}, err
		}
		return domain.Song{}, domain.WrapPersistence(err)
	}

	by := p.UserID
	song.Status = status
	song.StatusNotes = notes
	song.StatusUpdatedAt = &now
	song.StatusUpdatedBy = &by
	song.UpdatedAt = now

	s.metrics.RecordStatusChange(ctx, string(status))
	logger.WithSong(logger.WithContext(ctx, s.log), song.ID.String()).Info("song status changed",
		zap.String("status", string(status)),
	)
	return song, nil
}

func (s *Service) RecordPerformance(ctx context.Context, id string, req domain.RecordPerformanceRequest) (domain.Song, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.Song{}, err
	}
	if req.Streams < 0 || req.RevenueCents < 0 {
		return domain.Song{}, domain.ErrInvalidPerformance
	}

	song, err := s.load(ctx, id)
	if err != nil {
		return domain.Song{}, err
	}

	now := s.clock.Now()
	if err := s.repo.UpdatePerformance(ctx, s.db, song.ID, req.Streams, req.RevenueCents, now); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Song{}, err
		}
		return domain.Song{}, domain.WrapPersistence(err)
	}

	song.Streams = req.Streams
	song.RevenueCents = req.RevenueCents
	song.UpdatedAt = now
	return song, nil
}

// Payouts splits the recorded revenue of a song across its ledger.
func (s *Service) Payouts(ctx context.Context, id string) (domain.PayoutReport, error) {
	song, err := s.load(ctx, id)
	if err != nil {
		return domain.PayoutReport{}, err
	}
	return s.payouts(ctx, song)
}

func (s *Service) Statement(ctx context.Context, id string) ([]byte, error) {
	if s.pdf == nil {
		return nil, domain.ErrStatementUnavailable
	}
	song, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	report, err := s.payouts(ctx, song)
	if err != nil {
		return nil, err
	}

	data := pdf.StatementData{
		Title:        song.Title,
		Genre:        song.Genre,
		Status:       string(song.Status),
		IssuedAt:     s.clock.Now().Format(time.DateOnly),
		Streams:      fmt.Sprintf("%d", song.Streams),
		Revenue:      formatCents(song.RevenueCents),
		Distributor:  fmt.Sprintf("%d%%", song.DistributorRoyalty),
		TotalPercent: fmt.Sprintf("%d%%", royalty.TotalPercentage),
		TotalAmount:  formatCents(song.RevenueCents),
	}
	if song.ReleaseDate != nil {
		data.ReleaseDate = time.Time(*song.ReleaseDate).Format(time.DateOnly)
	}
	for _, line := range report.Lines {
		data.Lines = append(data.Lines, pdf.StatementLine{
			Party:      line.ArtistName,
			Role:       string(line.Role),
			Percentage: fmt.Sprintf("%d%%", line.Percentage),
			Amount:     formatCents(line.Amount),
		})
	}

	reader, err := s.pdf.GenerateStatement(ctx, data)
	if err != nil {
		logger.WithSong(logger.WithContext(ctx, s.log), song.ID.String()).Error("render statement failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrStatementUnavailable, err)
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStatementUnavailable, err)
	}
	return out, nil
}

// PreviewLedger evaluates a split being edited without touching storage.
// Entries that fail are skipped so the rest of the split still renders.
func (s *Service) PreviewLedger(ctx context.Context, req domain.PreviewRequest) (domain.PreviewResponse, error) {
	ref := s.reference.Get()
	distributor := ref.DistributorPercentage
	if req.DistributorPercentage != nil {
		distributor = *req.DistributorPercentage
	}

	ledger, err := royalty.New(distributor, royalty.WithRoles(roleSet(ref)))
	if err != nil {
		return domain.PreviewResponse{}, err
	}

	var submitErr error
	added := make([]string, len(req.Participants))
	for i, in := range req.Participants {
		subject, err := artistRef(in.ArtistID)
		if err == nil {
			var p royalty.Participant
			p, err = ledger.Add(subject, royalty.Role(in.Role), in.Percentage)
			added[i] = p.ID
		}
		if err != nil && submitErr == nil {
			submitErr = err
		}
	}
	if submitErr == nil {
		submitErr = ledger.ValidateForSubmit()
	}

	// Rejected rows get the headroom of the slot they would take.
	resp := domain.PreviewResponse{
		Ledger:              ledger.Snapshot(),
		NewSlotHeadroom:     ledger.Headroom(""),
		ParticipantHeadroom: make([]int, len(req.Participants)),
	}
	for i, id := range added {
		resp.ParticipantHeadroom[i] = ledger.Headroom(id)
	}
	if submitErr != nil {
		resp.SubmitError = submitErr.Error()
	}
	return resp, nil
}

// buildLedger runs the submitted participants through the ledger. Nothing is
// persisted when it fails.
func (s *Service) buildLedger(ctx context.Context, ref config.Reference, distributor int, inputs []domain.ParticipantInput) (*royalty.Ledger, error) {
	ledger, err := royalty.New(distributor,
		royalty.WithRoles(roleSet(ref)),
		royalty.WithIDGenerator(func() string { return s.genID.Generate().String() }),
	)
	if err != nil {
		s.metrics.RecordLedgerRejection(ctx, err.Error())
		return nil, err
	}

	for i, in := range inputs {
		subject, err := artistRef(in.ArtistID)
		if err == nil {
			_, err = ledger.Add(subject, royalty.Role(in.Role), in.Percentage)
		}
		if err != nil {
			s.metrics.RecordLedgerRejection(ctx, err.Error())
			return nil, &domain.ParticipantError{Index: i, Field: participantField(err), Err: err}
		}
	}
	if err := ledger.ValidateForSubmit(); err != nil {
		s.metrics.RecordLedgerRejection(ctx, err.Error())
		return nil, err
	}
	return ledger, nil
}

// resolveParticipants checks every subject against the caller's artists and
// maps the ledger onto collaborator rows.
func (s *Service) resolveParticipants(ctx context.Context, songID snowflake.ID, ledger *royalty.Ledger) (map[snowflake.ID]artistdomain.Artist, []domain.Collaborator, error) {
	participants := ledger.Participants()
	ids := make([]snowflake.ID, len(participants))
	for i, p := range participants {
		id, err := snowflake.ParseString(p.SubjectRef)
		if err != nil || id <= 0 {
			return nil, nil, &domain.ParticipantError{Index: i, Field: "artist_id", Err: domain.ErrInvalidArtistID}
		}
		ids[i] = id
	}

	artists, err := s.artists.ResolveMany(ctx, ids)
	if err != nil {
		return nil, nil, domain.WrapPersistence(err)
	}

	rows := make([]domain.Collaborator, 0, len(participants))
	for i, p := range participants {
		if _, ok := artists[ids[i]]; !ok {
			return nil, nil, &domain.ParticipantError{Index: i, Field: "artist_id", Err: domain.ErrArtistNotFound}
		}
		rowID, err := snowflake.ParseString(p.ID)
		if err != nil {
			rowID = s.genID.Generate()
		}
		rows = append(rows, domain.Collaborator{
			ID:                rowID,
			SongID:            songID,
			ArtistID:          ids[i],
			Role:              string(p.Role),
			RoyaltyPercentage: p.Percentage,
			Position:          i,
		})
	}
	return artists, rows, nil
}

// storedLedger rebuilds the ledger of a persisted song. Roles are not checked
// against the current reference data since it may have changed since saving.
func (s *Service) storedLedger(ctx context.Context, song domain.Song) (*royalty.Ledger, error) {
	rows, err := s.repo.ListCollaborators(ctx, s.db, song.ID)
	if err != nil {
		return nil, domain.WrapPersistence(err)
	}

	participants := make([]royalty.Participant, 0, len(rows))
	for _, row := range rows {
		participants = append(participants, royalty.Participant{
			ID:         row.ID.String(),
			SubjectRef: row.ArtistID.String(),
			Role:       royalty.Role(row.Role),
			Percentage: row.RoyaltyPercentage,
		})
	}

	ledger, err := royalty.FromParticipants(song.DistributorRoyalty, participants, royalty.WithRoles(royalty.NewRoleSet()))
	if err != nil {
		logger.WithSong(logger.WithContext(ctx, s.log), song.ID.String()).Warn("stored ledger rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrInconsistentLedger, err)
	}
	return ledger, nil
}

func (s *Service) payouts(ctx context.Context, song domain.Song) (domain.PayoutReport, error) {
	ledger, err := s.storedLedger(ctx, song)
	if err != nil {
		return domain.PayoutReport{}, err
	}
	artists, err := s.artists.ResolveMany(ctx, subjectIDs(ledger))
	if err != nil {
		return domain.PayoutReport{}, err
	}

	payouts, err := royalty.Distribute(song.RevenueCents, ledger)
	if err != nil {
		return domain.PayoutReport{}, fmt.Errorf("%w: %w", domain.ErrInconsistentLedger, err)
	}

	report := domain.PayoutReport{
		SongID:       song.ID.String(),
		Title:        song.Title,
		Streams:      song.Streams,
		RevenueCents: song.RevenueCents,
		Lines:        make([]domain.PayoutLine, 0, len(payouts)),
	}
	for _, payout := range payouts {
		line := domain.PayoutLine{Payout: payout}
		if payout.Distributor {
			line.ArtistName = "Distributor"
		} else {
			line.ArtistID = payout.SubjectRef
			line.ArtistName = artistName(artists, payout.SubjectRef)
		}
		report.Lines = append(report.Lines, line)
	}
	return report, nil
}

// load fetches a song visible to the caller. Songs owned by someone else are
// reported as not found.
func (s *Service) load(ctx context.Context, raw string) (domain.Song, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return domain.Song{}, domain.ErrUnauthenticated
	}

	id, err := parseID(raw)
	if err != nil {
		return domain.Song{}, err
	}

	song, err := s.repo.FindSongByID(ctx, s.db, id)
	if err != nil {
		return domain.Song{}, domain.WrapPersistence(err)
	}
	if song == nil || (!p.IsAdmin() && song.UserID != p.UserID) {
		return domain.Song{}, domain.ErrNotFound
	}
	return *song, nil
}

func requireAdmin(ctx context.Context) (principal.Principal, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return principal.Principal{}, domain.ErrUnauthenticated
	}
	if !p.IsAdmin() {
		return principal.Principal{}, domain.ErrForbidden
	}
	return p, nil
}

func applyInput(song *domain.Song, req domain.SaveSongRequest, ref config.Reference) error {
	title := strings.TrimSpace(req.Title)
	if title == "" || len([]rune(title)) > maxTitleLength {
		return domain.ErrInvalidTitle
	}
	genre, ok := ref.Genre(req.Genre)
	if !ok {
		return domain.ErrInvalidGenre
	}
	if req.DurationSeconds <= 0 {
		return domain.ErrInvalidDuration
	}

	var releaseDate *datatypes.Date
	if raw := strings.TrimSpace(req.ReleaseDate); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return domain.ErrInvalidReleaseDate
		}
		d := datatypes.Date(parsed)
		releaseDate = &d
	}

	audioURL := strings.TrimSpace(req.AudioURL)
	if audioURL != "" && !validURL(audioURL) {
		return domain.ErrInvalidAudioURL
	}

	song.Title = title
	song.Genre = genre
	song.Lyrics = strings.TrimSpace(req.Lyrics)
	song.DurationSeconds = req.DurationSeconds
	song.AudioURL = audioURL
	song.ReleaseDate = releaseDate
	if req.Metadata != nil {
		song.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if song.Metadata == nil {
		song.Metadata = datatypes.JSONMap{}
	}
	return nil
}

func buildDetail(song domain.Song, ledger *royalty.Ledger, artists map[snowflake.ID]artistdomain.Artist) domain.SongDetail {
	summary := ledger.Snapshot()
	participants := make([]domain.Participant, 0, len(summary.Participants))
	for _, p := range summary.Participants {
		participants = append(participants, domain.Participant{
			Participant: p,
			ArtistName:  artistName(artists, p.SubjectRef),
		})
	}
	return domain.SongDetail{
		Song:         song,
		Participants: participants,
		Ledger:       summary,
	}
}

func artistName(artists map[snowflake.ID]artistdomain.Artist, ref string) string {
	id, err := snowflake.ParseString(ref)
	if err != nil {
		return ""
	}
	artist, ok := artists[id]
	if !ok {
		return ""
	}
	if artist.StageName != "" {
		return artist.StageName
	}
	return artist.Name
}

func subjectIDs(ledger *royalty.Ledger) []snowflake.ID {
	participants := ledger.Participants()
	ids := make([]snowflake.ID, 0, len(participants))
	for _, p := range participants {
		if id, err := snowflake.ParseString(p.SubjectRef); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func roleSet(ref config.Reference) royalty.RoleSet {
	roles := make([]royalty.Role, 0, len(ref.Roles))
	for _, r := range ref.Roles {
		roles = append(roles, royalty.Role(r))
	}
	return royalty.NewRoleSet(roles...)
}

// artistRef puts an artist id in the form the ledger compares, so "042",
// "+42" and "42" are one participant. Blank ids are left for the ledger.
func artistRef(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id <= 0 {
		return "", domain.ErrInvalidArtistID
	}
	return id.String(), nil
}

func participantField(err error) string {
	switch {
	case errors.Is(err, royalty.ErrInvalidSubject), errors.Is(err, royalty.ErrDuplicateParticipant),
		errors.Is(err, domain.ErrInvalidArtistID):
		return "artist_id"
	case errors.Is(err, royalty.ErrInvalidRole):
		return "role"
	default:
		return "percentage"
	}
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
