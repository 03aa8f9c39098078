package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/royalti/internal/config"
)

const DefaultCookieName = "royalti_sid"

// Manager moves session tokens between the auth service and HTTP clients.
// Browsers get an HttpOnly cookie; API clients send a bearer token.
type Manager struct {
	cookieName string
	secure     bool
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{cookieName: DefaultCookieName, secure: cfg.AuthCookieSecure}
}

// ReadToken prefers the session cookie over the Authorization header.
func (m *Manager) ReadToken(c *gin.Context) (string, bool) {
	if raw, err := c.Cookie(m.cookieName); err == nil {
		if token := strings.TrimSpace(raw); token != "" {
			return token, true
		}
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (m *Manager) Set(c *gin.Context, token string, expiresAt time.Time) {
	m.write(c, token, max(int(time.Until(expiresAt).Seconds()), 0))
}

func (m *Manager) Clear(c *gin.Context) {
	m.write(c, "", -1)
}

func (m *Manager) write(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, value, maxAge, "/", "", m.secure, true)
}
