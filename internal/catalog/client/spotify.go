package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/royalti/internal/catalog/domain"
	"github.com/smallbiznis/royalti/internal/config"
	"github.com/smallbiznis/royalti/internal/ratelimit"
	"github.com/tidwall/gjson"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	providerSpotify = "spotify"
	tokenLeeway     = 60 * time.Second
	maxBodyBytes    = 1 << 20
)

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	Limiter    ratelimit.Limiter
	HTTPClient *http.Client `optional:"true"`
}

type spotifyClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	http         *http.Client
	limiter      ratelimit.Limiter
	log          *zap.Logger
	now          func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewSpotify returns a client using the client-credentials flow.
func NewSpotify(p Params) domain.Client {
	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	limiter := p.Limiter
	if limiter == nil {
		limiter = ratelimit.NewLocal(p.Cfg.Catalog.RatePerSec, p.Cfg.Catalog.Burst)
	}
	return &spotifyClient{
		clientID:     strings.TrimSpace(p.Cfg.Catalog.ClientID),
		clientSecret: strings.TrimSpace(p.Cfg.Catalog.ClientSecret),
		baseURL:      strings.TrimRight(p.Cfg.Catalog.BaseURL, "/"),
		tokenURL:     p.Cfg.Catalog.TokenURL,
		http:         httpClient,
		limiter:      limiter,
		log:          p.Log.Named("catalog.spotify"),
		now:          time.Now,
	}
}

func (c *spotifyClient) Name() string { return providerSpotify }

func (c *spotifyClient) SearchArtist(ctx context.Context, name string) (domain.Artist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Artist{}, domain.ErrInvalidArtistRef
	}

	query := url.Values{}
	query.Set("q", name)
	query.Set("type", "artist")
	query.Set("limit", "1")

	body, err := c.get(ctx, "/search?"+query.Encode())
	if err != nil {
		return domain.Artist{}, err
	}
	first := gjson.GetBytes(body, "artists.items.0")
	if !first.Exists() {
		return domain.Artist{}, domain.ErrArtistNotFound
	}
	return c.parseArtist(first), nil
}

func (c *spotifyClient) GetArtist(ctx context.Context, externalID string) (domain.Artist, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return domain.Artist{}, domain.ErrInvalidArtistRef
	}
	body, err := c.get(ctx, "/artists/"+url.PathEscape(externalID))
	if err != nil {
		return domain.Artist{}, err
	}
	return c.parseArtist(gjson.ParseBytes(body)), nil
}

func (c *spotifyClient) parseArtist(node gjson.Result) domain.Artist {
	artist := domain.Artist{
		ExternalID: node.Get("id").String(),
		Name:       node.Get("name").String(),
		Followers:  node.Get("followers.total").Int(),
		Popularity: int(node.Get("popularity").Int()),
		URL:        node.Get("external_urls.spotify").String(),
		FetchedAt:  c.now().UTC(),
	}
	for _, img := range node.Get("images").Array() {
		artist.Images = append(artist.Images, domain.Image{
			URL:    img.Get("url").String(),
			Width:  int(img.Get("width").Int()),
			Height: int(img.Get("height").Int()),
		})
	}
	for _, genre := range node.Get("genres").Array() {
		artist.Genres = append(artist.Genres, genre.String())
	}
	return artist
}

func (c *spotifyClient) get(ctx context.Context, path string) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrArtistNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		c.resetToken()
		return nil, fmt.Errorf("%w: token rejected", domain.ErrUpstream)
	case resp.StatusCode >= 300:
		msg := gjson.GetBytes(body, "error.message").String()
		c.log.Warn("catalog request failed", zap.Int("status", resp.StatusCode), zap.String("message", msg))
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstream, resp.StatusCode)
	}
	return body, nil
}

// accessToken returns the cached token, fetching a new one once it is within
// tokenLeeway of expiring.
func (c *spotifyClient) accessToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", domain.ErrNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("catalog token request failed", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: token status %d", domain.ErrUpstream, resp.StatusCode)
	}

	token := gjson.GetBytes(body, "access_token").String()
	if token == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrUpstream)
	}
	expiresIn := time.Duration(gjson.GetBytes(body, "expires_in").Int()) * time.Second

	c.token = token
	c.expiresAt = c.now().Add(expiresIn - tokenLeeway)
	return c.token, nil
}

func (c *spotifyClient) resetToken() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

// ExternalIDFromURL extracts the artist id from an open.spotify.com link.
func ExternalIDFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	if !strings.HasSuffix(strings.ToLower(u.Host), "spotify.com") {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "artist" {
			return parts[i+1]
		}
	}
	return ""
}
