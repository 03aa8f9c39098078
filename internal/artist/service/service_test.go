package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/royalti/internal/artist/domain"
	"github.com/smallbiznis/royalti/internal/artist/repository"
	"github.com/smallbiznis/royalti/internal/principal"
	"github.com/smallbiznis/royalti/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc  domain.Service
	conn *gorm.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Artist{}))
	require.NoError(t, conn.Exec(`CREATE TABLE song_collaborators (
		id INTEGER PRIMARY KEY,
		song_id INTEGER NOT NULL,
		artist_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		royalty_percentage INTEGER NOT NULL
	)`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return fixture{
		svc: New(Params{
			DB:    conn,
			Log:   zap.NewNop(),
			GenID: node,
			Repo:  repository.Provide(),
		}),
		conn: conn,
	}
}

func userCtx(id int64) context.Context {
	return principal.WithPrincipal(context.Background(), principal.Principal{UserID: snowflake.ID(id), Role: principal.RoleUser})
}

func adminCtx() context.Context {
	return principal.WithPrincipal(context.Background(), principal.Principal{UserID: 999, Role: principal.RoleAdmin})
}

func validInput() domain.ArtistInput {
	return domain.ArtistInput{
		Name:         "Maria Silva",
		StageName:    "MC Maria",
		BirthDate:    "1995-04-12",
		TaxID:        "123.456.789-09",
		SoundOnEmail: "Maria@SoundOn.example",
		SpotifyURL:   "https://open.spotify.com/artist/abc123",
	}
}

func TestCreateArtist(t *testing.T) {
	f := newFixture(t)

	artist, err := f.svc.Create(userCtx(1), validInput())
	require.NoError(t, err)
	assert.Equal(t, "mc-maria", artist.Slug)
	assert.Equal(t, "12345678909", artist.TaxID)
	assert.Equal(t, "maria@soundon.example", artist.SoundOnEmail)
	require.NotNil(t, artist.BirthDate)

	again, err := f.svc.Create(userCtx(1), validInput())
	require.NoError(t, err)
	assert.Equal(t, "mc-maria-2", again.Slug)

	// slugs are unique per owner only
	other, err := f.svc.Create(userCtx(2), validInput())
	require.NoError(t, err)
	assert.Equal(t, "mc-maria", other.Slug)
}

func TestCreateArtistValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		mutate func(*domain.ArtistInput)
		want   error
	}{
		{"missing name", func(in *domain.ArtistInput) { in.Name = " " }, domain.ErrInvalidName},
		{"missing stage name", func(in *domain.ArtistInput) { in.StageName = "" }, domain.ErrInvalidStageName},
		{"future birth date", func(in *domain.ArtistInput) { in.BirthDate = "2999-01-01" }, domain.ErrInvalidBirthDate},
		{"bad birth date", func(in *domain.ArtistInput) { in.BirthDate = "12/04/1995" }, domain.ErrInvalidBirthDate},
		{"short tax id", func(in *domain.ArtistInput) { in.TaxID = "123" }, domain.ErrInvalidTaxID},
		{"letters in tax id", func(in *domain.ArtistInput) { in.TaxID = "1234567890a" }, domain.ErrInvalidTaxID},
		{"bad email", func(in *domain.ArtistInput) { in.OneRPMEmail = "nope" }, domain.ErrInvalidEmail},
		{"bad link", func(in *domain.ArtistInput) { in.TikTokURL = "tiktok.com/@maria" }, domain.ErrInvalidURL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := f.svc.Create(userCtx(1), in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := f.svc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestOwnershipScoping(t *testing.T) {
	f := newFixture(t)

	mine, err := f.svc.Create(userCtx(1), validInput())
	require.NoError(t, err)

	_, err = f.svc.GetByID(userCtx(2), mine.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.svc.GetByID(adminCtx(), mine.ID.String())
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	resolved, err := f.svc.ResolveMany(userCtx(2), []snowflake.ID{mine.ID})
	require.NoError(t, err)
	assert.Empty(t, resolved)

	resolved, err = f.svc.ResolveMany(userCtx(1), []snowflake.ID{mine.ID})
	require.NoError(t, err)
	assert.Contains(t, resolved, mine.ID)

	_, err = f.svc.GetByID(userCtx(1), "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUpdateArtistRegeneratesSlug(t *testing.T) {
	f := newFixture(t)

	artist, err := f.svc.Create(userCtx(1), validInput())
	require.NoError(t, err)

	in := validInput()
	in.StageName = "Maria Funk"
	updated, err := f.svc.Update(userCtx(1), artist.ID.String(), in)
	require.NoError(t, err)
	assert.Equal(t, "maria-funk", updated.Slug)

	got, err := f.svc.GetByID(userCtx(1), artist.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Maria Funk", got.StageName)
}

func TestListArtists(t *testing.T) {
	f := newFixture(t)

	for _, stage := range []string{"Alpha", "Beta", "Gamma"} {
		in := validInput()
		in.StageName = stage
		_, err := f.svc.Create(userCtx(1), in)
		require.NoError(t, err)
	}
	_, err := f.svc.Create(userCtx(2), validInput())
	require.NoError(t, err)

	resp, err := f.svc.List(userCtx(1), domain.ListArtistRequest{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Artists, 2)
	assert.True(t, resp.HasMore)

	next, err := f.svc.List(userCtx(1), domain.ListArtistRequest{PageSize: 2, PageToken: resp.NextPageToken})
	require.NoError(t, err)
	assert.Len(t, next.Artists, 1)
	assert.False(t, next.HasMore)

	all, err := f.svc.List(adminCtx(), domain.ListArtistRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Artists, 4)

	search, err := f.svc.List(userCtx(1), domain.ListArtistRequest{Search: "gam"})
	require.NoError(t, err)
	require.Len(t, search.Artists, 1)
	assert.Equal(t, "Gamma", search.Artists[0].StageName)
}

func TestDeleteRefusedWhileReferenced(t *testing.T) {
	f := newFixture(t)

	artist, err := f.svc.Create(userCtx(1), validInput())
	require.NoError(t, err)

	require.NoError(t, f.conn.Exec(
		`INSERT INTO song_collaborators (id, song_id, artist_id, role, royalty_percentage) VALUES (1, 10, ?, 'vocalist', 60)`,
		artist.ID,
	).Error)

	count, err := f.svc.CountCollaborations(userCtx(1), artist.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	err = f.svc.Delete(userCtx(1), artist.ID.String())
	assert.ErrorIs(t, err, domain.ErrArtistInUse)

	require.NoError(t, f.conn.Exec(`DELETE FROM song_collaborators`).Error)
	require.NoError(t, f.svc.Delete(userCtx(1), artist.ID.String()))

	_, err = f.svc.GetByID(userCtx(1), artist.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
