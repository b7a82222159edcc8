package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
)

// TokenType is reported to clients alongside issued access tokens.
const TokenType = "bearer"

// TokenManager issues and verifies HS256 signed access tokens whose subject
// is the user's email.
type TokenManager struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenManager returns a TokenManager using the secret and lifetime from
// the auth settings.
func NewTokenManager(conf rideshare.AuthConfig) (*TokenManager, error) {
	if conf.SecretKey == "" {
		return nil, errors.New("secret key must be set")
	}
	lifetime := conf.TokenLifetime()
	if lifetime <= 0 {
		lifetime = rideshare.DefaultAccessTokenLifetime
	}
	return &TokenManager{
		secret:   []byte(conf.SecretKey),
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// CreateUserToken returns a signed token for the email.
func (m *TokenManager) CreateUserToken(email string) (string, error) {
	now := m.now()
	claims := jwt.StandardClaims{
		Subject:   email,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(m.lifetime).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	return token, errors.Wrap(err, "signing token")
}

// GetEmailFromToken verifies the token and returns its subject.
func (m *TokenManager) GetEmailFromToken(token string) (string, error) {
	claims := &jwt.StandardClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method '%s'", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", errors.Wrap(err, "parsing token")
	}
	if !parsed.Valid {
		return "", errors.New("token is not valid")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, TokenType) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
