package auth

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-jwt-secret"

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return New(testSecret, time.Hour, map[string]string{"cli": string(hash)}, nil)
}

func TestHashSecret(t *testing.T) {
	hash, err := HashSecret("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, verifySecret("s3cret", hash))
	assert.False(t, verifySecret("wrong", hash))

	_, err = HashSecret("")
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	s := newTestService(t)

	token, expiresAt, err := s.Authenticate("cli", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cli", claims.ClientID)
	assert.Equal(t, "cli", claims.Subject)
}

func TestAuthenticateRejects(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		name, id, secret string
	}{
		{"wrong secret", "cli", "nope"},
		{"unknown client", "other", "s3cret"},
		{"empty id", "", "s3cret"},
		{"empty secret", "cli", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _, err := s.Authenticate(tt.id, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Empty(t, token)
		})
	}
}

func TestClientMapIsCopied(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	clients := map[string]string{"cli": string(hash)}
	s := New(testSecret, time.Hour, clients, nil)

	delete(clients, "cli")
	_, _, err = s.Authenticate("cli", "s3cret")
	assert.NoError(t, err)
}

func TestValidateTokenRejects(t *testing.T) {
	s := newTestService(t)

	t.Run("expired", func(t *testing.T) {
		s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		defer func() { s.now = time.Now }()

		token, _, err := s.CreateToken("cli")
		require.NoError(t, err)
		s.now = time.Now

		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := New("another-secret", time.Hour, nil, nil)
		token, _, err := other.CreateToken("cli")
		require.NoError(t, err)

		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{ClientID: "cli"})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing client id", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
		})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = s.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
