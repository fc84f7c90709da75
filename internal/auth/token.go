package auth

import (
	"crypto/ecdsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "tenantd"

// Claims is the payload embedded in a session token: the admin id (subject),
// the owning organization id, and the admin's email at issuance time.
// Tokens are stateless; there is no revocation list.
type Claims struct {
	OrgID string `json:"org_id"`
	Email string `json:"email"`

	jwt.RegisteredClaims
}

// AdminID returns the token subject.
func (c *Claims) AdminID() string {
	return c.Subject
}

// TokenIssuer issues and verifies signed, time-limited session tokens.
type TokenIssuer interface {
	Issue(claims *Claims, ttl time.Duration) (string, error)
	Verify(token string) (*Claims, error)
}

// JWTIssuer implements TokenIssuer with ES256-signed JWTs. The verification
// key is derived from the signing key.
type JWTIssuer struct {
	signingKey *ecdsa.PrivateKey
	publicKey  *ecdsa.PublicKey
}

// NewJWTIssuer creates an issuer from a PEM-encoded ECDSA private key.
func NewJWTIssuer(signingKeyPEM []byte) (*JWTIssuer, error) {
	if len(signingKeyPEM) == 0 {
		return nil, errors.New("JWT signing key not provided")
	}

	signingKey, err := jwt.ParseECPrivateKeyFromPEM(signingKeyPEM)
	if err != nil {
		return nil, err
	}

	return &JWTIssuer{
		signingKey: signingKey,
		publicKey:  &signingKey.PublicKey,
	}, nil
}

// Issue signs the claims with expiry = ttl from now.
func (i *JWTIssuer) Issue(claims *Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims.Issuer = issuer
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	return token.SignedString(i.signingKey)
}

// Verify checks the signature and expiry and returns the embedded claims.
// Returns ErrInvalidToken for anything malformed, expired, or unverifiable.
func (i *JWTIssuer) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodES256 {
			return nil, errors.New("invalid signing method")
		}
		return i.publicKey, nil
	}, jwt.WithExpirationRequired(), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
