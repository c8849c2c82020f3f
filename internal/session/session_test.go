package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogCPT/internal/models"
)

func requestWith(cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestManager_LoginRoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour, true)

	rr := httptest.NewRecorder()
	require.NoError(t, m.Login(rr, 42))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	userID, err := m.UserID(requestWith(cookies))
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestManager_RejectsBadTokens(t *testing.T) {
	m := NewManager("secret", time.Hour, false)

	_, err := m.UserID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)

	other := NewManager("other-secret", time.Hour, false)
	token, _, err := other.Token(1)
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrNoSession, "foreign signature")

	expired := NewManager("secret", time.Hour, false)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err = expired.Token(1)
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrNoSession, "expired")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Parse(none)
	assert.ErrorIs(t, err, ErrNoSession, "alg none")

	_, err = m.Parse("garbage")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_Logout(t *testing.T) {
	m := NewManager("secret", time.Hour, false)
	rr := httptest.NewRecorder()

	m.Logout(rr)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestFlash(t *testing.T) {
	m := NewManager("secret", time.Hour, false)

	rr := httptest.NewRecorder()
	m.SetFlash(rr, "info", "You Have been logged out successfully.")

	next := httptest.NewRecorder()
	flash := m.PopFlash(next, requestWith(rr.Result().Cookies()))

	require.NotNil(t, flash)
	assert.Equal(t, "info", flash.Category)
	assert.Equal(t, "You Have been logged out successfully.", flash.Message)

	cleared := next.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	assert.Nil(t, m.PopFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestFlash_SecureCookie(t *testing.T) {
	m := NewManager("secret", time.Hour, true)

	rr := httptest.NewRecorder()
	m.SetFlash(rr, "success", "Comment added.")
	set := rr.Result().Cookies()
	require.Len(t, set, 1)
	assert.Equal(t, "flash", set[0].Name)
	assert.True(t, set[0].Secure)
	assert.True(t, set[0].HttpOnly)

	next := httptest.NewRecorder()
	require.NotNil(t, m.PopFlash(next, requestWith(set)))
	cleared := next.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.True(t, cleared[0].Secure)

	plain := httptest.NewRecorder()
	NewManager("secret", time.Hour, false).SetFlash(plain, "info", "x")
	assert.False(t, plain.Result().Cookies()[0].Secure)
}

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, UserFrom(ctx))

	user := &models.User{ID: 1}
	assert.Same(t, user, UserFrom(WithUser(ctx, user)))
}
