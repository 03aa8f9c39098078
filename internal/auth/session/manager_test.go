package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/royalti/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestReadToken(t *testing.T) {
	m := NewManager(config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")
	c, _ := testContext(req)
	token, ok := m.ReadToken(c)
	assert.True(t, ok)
	assert.Equal(t, "from-cookie", token)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "bearer  abc ")
	c, _ = testContext(req)
	token, ok = m.ReadToken(c)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	c, _ = testContext(req)
	_, ok = m.ReadToken(c)
	assert.False(t, ok)
}

func TestSetAndClearCookie(t *testing.T) {
	m := NewManager(config.Config{AuthCookieSecure: true})

	c, w := testContext(httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	m.Set(c, "tok", time.Now().Add(time.Hour))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Greater(t, cookies[0].MaxAge, 3500)

	c, w = testContext(httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	m.Clear(c)
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
