package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func generateSigningKeyPEM(t *testing.T) []byte {
	t.Helper()

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalECPrivateKey(privateKey)
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
}

func TestNewJWTIssuer(t *testing.T) {
	t.Run("empty key", func(t *testing.T) {
		issuer, err := NewJWTIssuer(nil)
		require.Error(t, err)
		require.Nil(t, issuer)
	})

	t.Run("invalid PEM", func(t *testing.T) {
		issuer, err := NewJWTIssuer([]byte("invalid pem"))
		require.Error(t, err)
		require.Nil(t, issuer)
	})

	t.Run("valid key", func(t *testing.T) {
		issuer, err := NewJWTIssuer(generateSigningKeyPEM(t))
		require.NoError(t, err)
		require.NotNil(t, issuer)
	})
}

func TestJWTIssuerRoundTrip(t *testing.T) {
	issuer, err := NewJWTIssuer(generateSigningKeyPEM(t))
	require.NoError(t, err)

	claims := &Claims{OrgID: "org-1", Email: "a@b.com"}
	claims.Subject = "admin-1"

	token, err := issuer.Issue(claims, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	verified, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "admin-1", verified.AdminID())
	require.Equal(t, "org-1", verified.OrgID)
	require.Equal(t, "a@b.com", verified.Email)
	require.WithinDuration(t, time.Now().Add(time.Hour), verified.ExpiresAt.Time, time.Minute)
}

func TestJWTIssuerVerifyRejects(t *testing.T) {
	issuer, err := NewJWTIssuer(generateSigningKeyPEM(t))
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := issuer.Verify("not.a.token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := &Claims{OrgID: "org-1"}
		claims.Subject = "admin-1"
		token, err := issuer.Issue(claims, -time.Minute)
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token from another issuer", func(t *testing.T) {
		other, err := NewJWTIssuer(generateSigningKeyPEM(t))
		require.NoError(t, err)

		claims := &Claims{OrgID: "org-1"}
		claims.Subject = "admin-1"
		token, err := other.Issue(claims, time.Hour)
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher()

	hash, err := hasher.Hash("Abcdef12")
	require.NoError(t, err)
	require.NotEqual(t, "Abcdef12", hash)

	require.True(t, hasher.Verify("Abcdef12", hash))
	require.False(t, hasher.Verify("Wrong123", hash))
}
