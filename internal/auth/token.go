package auth

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	jwt "github.com/golang-jwt/jwt/v5"
)

// Signer mints RS256 tokens shaped like the identity provider's. The service
// only verifies tokens; Signer exists for local development and tests.
type Signer struct {
	key      *rsa.PrivateKey
	kid      string
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewSigner builds a new signer.
func NewSigner(key *rsa.PrivateKey, kid, issuer, audience string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{key: key, kid: kid, issuer: issuer, audience: audience, ttl: ttl, now: time.Now}
}

// GenerateToken builds and signs a JWT granting permissions to subject.
func (s *Signer) GenerateToken(subject string, permissions []string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := s.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Sign signs arbitrary claims with the signer's key and kid.
func (s *Signer) Sign(claims jwt.Claims) (string, error) {
	if s.key == nil {
		return "", errors.New("signer has no key")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.kid
	return token.SignedString(s.key)
}

// KeyID returns the kid placed in token headers.
func (s *Signer) KeyID() string {
	return s.kid
}

// PublicKeys returns a key provider that verifies this signer's tokens.
func (s *Signer) PublicKeys() StaticKeys {
	return StaticKeys{s.kid: &s.key.PublicKey}
}

// JWKS renders the JWKS document publishing the signer's public key.
func (s *Signer) JWKS() ([]byte, error) {
	doc := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{publicJWK(s.kid, &s.key.PublicKey)}}
	return json.MarshalIndent(doc, "", "  ")
}
