package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	artistdomain "github.com/smallbiznis/royalti/internal/artist/domain"
	"github.com/smallbiznis/royalti/internal/catalog/cache"
	"github.com/smallbiznis/royalti/internal/catalog/domain"
	"github.com/smallbiznis/royalti/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubArtists struct {
	artistdomain.Service
	items map[string]artistdomain.Artist
}

func (s stubArtists) GetByID(_ context.Context, id string) (artistdomain.Artist, error) {
	a, ok := s.items[id]
	if !ok {
		return artistdomain.Artist{}, artistdomain.ErrNotFound
	}
	return a, nil
}

type fakeClient struct {
	searches []string
	gets     []string
	err      error
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) SearchArtist(_ context.Context, name string) (domain.Artist, error) {
	f.searches = append(f.searches, name)
	if f.err != nil {
		return domain.Artist{}, f.err
	}
	return domain.Artist{ExternalID: "searched", Name: name}, nil
}

func (f *fakeClient) GetArtist(_ context.Context, externalID string) (domain.Artist, error) {
	f.gets = append(f.gets, externalID)
	if f.err != nil {
		return domain.Artist{}, f.err
	}
	return domain.Artist{ExternalID: externalID, Name: "linked"}, nil
}

func newService(client *fakeClient) domain.Service {
	return New(Params{
		Log:    zap.NewNop(),
		Client: client,
		Cache:  cache.NewMemory(),
		Artists: stubArtists{items: map[string]artistdomain.Artist{
			"1": {ID: snowflake.ID(1), StageName: "MC Maria"},
			"2": {ID: snowflake.ID(2), StageName: "DJ Beto", SpotifyURL: "https://open.spotify.com/artist/xyz"},
		}},
		Metrics: metrics.NewNoop(),
	})
}

func TestEnrichSearchesByStageNameAndCaches(t *testing.T) {
	client := &fakeClient{}
	svc := newService(client)
	ctx := context.Background()

	profile, err := svc.Enrich(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "searched", profile.ExternalID)

	_, err = svc.Enrich(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"MC Maria"}, client.searches)

	require.NoError(t, svc.Clear(ctx, "1"))
	_, err = svc.Enrich(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, client.searches, 2)
}

func TestEnrichUsesLinkedProfile(t *testing.T) {
	client := &fakeClient{}
	svc := newService(client)

	profile, err := svc.Enrich(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "xyz", profile.ExternalID)
	assert.Equal(t, []string{"xyz"}, client.gets)
	assert.Empty(t, client.searches)
}

func TestEnrichErrors(t *testing.T) {
	client := &fakeClient{err: domain.ErrNotConfigured}
	svc := newService(client)

	_, err := svc.Enrich(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	client.err = nil
	_, err = svc.Enrich(context.Background(), "1")
	assert.NoError(t, err, "failures are not cached")

	_, err = svc.Enrich(context.Background(), "99")
	assert.ErrorIs(t, err, artistdomain.ErrNotFound)
	assert.ErrorIs(t, svc.Clear(context.Background(), "99"), artistdomain.ErrNotFound)
}
