package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/rectransport/rideshare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm, err := NewTokenManager(rideshare.AuthConfig{SecretKey: "secret", TokenLifetimeMinutes: 30})
	require.NoError(t, err)

	token, err := tm.CreateUserToken("alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	email, err := tm.GetEmailFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
}

func TestTokenRejections(t *testing.T) {
	tm, err := NewTokenManager(rideshare.AuthConfig{SecretKey: "secret", TokenLifetimeMinutes: 30})
	require.NoError(t, err)

	t.Run("WrongKey", func(t *testing.T) {
		other, err := NewTokenManager(rideshare.AuthConfig{SecretKey: "other", TokenLifetimeMinutes: 30})
		require.NoError(t, err)
		token, err := other.CreateUserToken("alice@example.com")
		require.NoError(t, err)

		_, err = tm.GetEmailFromToken(token)
		assert.Error(t, err)
	})
	t.Run("Expired", func(t *testing.T) {
		expired := *tm
		expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := expired.CreateUserToken("alice@example.com")
		require.NoError(t, err)

		_, err = tm.GetEmailFromToken(token)
		assert.Error(t, err)
	})
	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.GetEmailFromToken("not.a.token")
		assert.Error(t, err)
	})
	t.Run("NoneAlgorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.StandardClaims{
			Subject:   "alice@example.com",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tm.GetEmailFromToken(token)
		assert.Error(t, err)
	})
	t.Run("MissingSubject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = tm.GetEmailFromToken(token)
		assert.Error(t, err)
	})
}

func TestNewTokenManager(t *testing.T) {
	_, err := NewTokenManager(rideshare.AuthConfig{})
	assert.Error(t, err)

	tm, err := NewTokenManager(rideshare.AuthConfig{SecretKey: "secret"})
	require.NoError(t, err)
	assert.Equal(t, rideshare.DefaultAccessTokenLifetime, tm.lifetime)
}

func TestBearerToken(t *testing.T) {
	for header, expected := range map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"BEARER abc":   "abc",
	} {
		token, ok := BearerToken(header)
		assert.True(t, ok, header)
		assert.Equal(t, expected, token, header)
	}

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, ok := BearerToken(header)
		assert.False(t, ok, header)
	}
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("password")
	require.NoError(t, err)
	assert.NotEqual(t, "password", hash)

	assert.True(t, CheckPassword(hash, "password"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "password"))
	assert.False(t, CheckPassword("not-a-hash", "password"))

	_, err = HashPassword("")
	assert.Error(t, err)
}
