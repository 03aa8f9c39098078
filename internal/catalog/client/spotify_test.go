package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smallbiznis/royalti/internal/catalog/domain"
	"github.com/smallbiznis/royalti/internal/config"
	"github.com/smallbiznis/royalti/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const artistJSON = `{
	"id": "4gzpq5DPGxSnKTe4SA8HAU",
	"name": "MC Maria",
	"popularity": 61,
	"followers": {"total": 120345},
	"genres": ["funk carioca", "funk ostentacao"],
	"external_urls": {"spotify": "https://open.spotify.com/artist/4gzpq5DPGxSnKTe4SA8HAU"},
	"images": [{"url": "https://i.scdn.co/image/a", "width": 640, "height": 640}]
}`

type fakeCatalog struct {
	server      *httptest.Server
	tokenCalls  atomic.Int32
	searchCalls atomic.Int32
}

func newFakeCatalog(t *testing.T) *fakeCatalog {
	t.Helper()
	f := &fakeCatalog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		id, secret, ok := r.BasicAuth()
		if !ok || id != "id" || secret != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		f.searchCalls.Add(1)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "artist", r.URL.Query().Get("type"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		if r.URL.Query().Get("q") == "nobody" {
			_, _ = w.Write([]byte(`{"artists":{"items":[]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"artists":{"items":[` + artistJSON + `]}}`))
	})
	mux.HandleFunc("/v1/artists/4gzpq5DPGxSnKTe4SA8HAU", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(artistJSON))
	})
	mux.HandleFunc("/v1/artists/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v1/artists/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"status":502,"message":"bad gateway"}}`))
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeCatalog) client(id, secret string) *spotifyClient {
	cfg := config.Config{Catalog: config.CatalogConfig{
		ClientID:     id,
		ClientSecret: secret,
		BaseURL:      f.server.URL + "/v1/",
		TokenURL:     f.server.URL + "/token",
	}}
	return NewSpotify(Params{
		Cfg:        cfg,
		Log:        zap.NewNop(),
		Limiter:    ratelimit.NewLocal(0, 0),
		HTTPClient: f.server.Client(),
	}).(*spotifyClient)
}

func TestSearchArtist(t *testing.T) {
	f := newFakeCatalog(t)
	c := f.client("id", "secret")

	artist, err := c.SearchArtist(context.Background(), "MC Maria")
	require.NoError(t, err)
	assert.Equal(t, "4gzpq5DPGxSnKTe4SA8HAU", artist.ExternalID)
	assert.Equal(t, int64(120345), artist.Followers)
	assert.Equal(t, 61, artist.Popularity)
	assert.Equal(t, []string{"funk carioca", "funk ostentacao"}, artist.Genres)
	require.Len(t, artist.Images, 1)
	assert.Equal(t, 640, artist.Images[0].Width)

	_, err = c.SearchArtist(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrArtistNotFound)

	assert.Equal(t, int32(1), f.tokenCalls.Load())
	assert.Equal(t, int32(2), f.searchCalls.Load())
}

func TestTokenRefreshedNearExpiry(t *testing.T) {
	f := newFakeCatalog(t)
	c := f.client("id", "secret")
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.GetArtist(context.Background(), "4gzpq5DPGxSnKTe4SA8HAU")
	require.NoError(t, err)

	now = now.Add(3600*time.Second - tokenLeeway - time.Second)
	_, err = c.GetArtist(context.Background(), "4gzpq5DPGxSnKTe4SA8HAU")
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.tokenCalls.Load())

	now = now.Add(2 * time.Second)
	_, err = c.GetArtist(context.Background(), "4gzpq5DPGxSnKTe4SA8HAU")
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestGetArtistErrors(t *testing.T) {
	f := newFakeCatalog(t)
	c := f.client("id", "secret")

	_, err := c.GetArtist(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrArtistNotFound)

	_, err = c.GetArtist(context.Background(), "broken")
	assert.ErrorIs(t, err, domain.ErrUpstream)

	_, err = c.GetArtist(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidArtistRef)
}

func TestClientWithoutCredentials(t *testing.T) {
	f := newFakeCatalog(t)
	c := f.client("", "")

	_, err := c.SearchArtist(context.Background(), "MC Maria")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Zero(t, f.tokenCalls.Load())

	_, err = f.client("id", "wrong").SearchArtist(context.Background(), "MC Maria")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestExternalIDFromURL(t *testing.T) {
	assert.Equal(t, "abc123", ExternalIDFromURL("https://open.spotify.com/artist/abc123"))
	assert.Equal(t, "abc123", ExternalIDFromURL("https://open.spotify.com/intl-pt/artist/abc123?si=x"))
	assert.Empty(t, ExternalIDFromURL("https://youtube.com/artist/abc123"))
	assert.Empty(t, ExternalIDFromURL("https://open.spotify.com/album/abc123"))
	assert.Empty(t, ExternalIDFromURL(""))
}
