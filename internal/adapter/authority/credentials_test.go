package authority

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestCredentials_PersistAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")

	first := NewCredentials(path)
	require.NoError(t, first.Set("persisted-token"))

	second := NewCredentials(path)
	require.NoError(t, second.Load())
	assert.Equal(t, "persisted-token", second.Token())
}

func TestCredentials_LoadMissingFile(t *testing.T) {
	creds := NewCredentials(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, creds.Load())
	assert.Empty(t, creds.Token())
}

func TestCredentials_Expired(t *testing.T) {
	now := time.Now()
	creds := NewCredentials("")

	// Live JWT
	require.NoError(t, creds.Set(signedToken(t, now.Add(time.Hour))))
	assert.False(t, creds.Expired(now))

	// Expired JWT
	require.NoError(t, creds.Set(signedToken(t, now.Add(-time.Hour))))
	assert.True(t, creds.Expired(now))
}

func TestCredentials_ExpiryOfOpaqueToken(t *testing.T) {
	creds := NewCredentials("")

	// Not a JWT: the Authority remains the judge of validity
	require.NoError(t, creds.Set("opaque-session-token"))
	assert.False(t, creds.Expired(time.Now()))

	// No token at all
	require.NoError(t, creds.Set(""))
	assert.False(t, creds.Expired(time.Now()))
}
