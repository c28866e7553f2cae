package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var errMissingKID = errors.New("token header has no kid")

// keySourceError marks failures to reach the key source, as opposed to a
// token that simply does not verify.
type keySourceError struct {
	err error
}

func (e *keySourceError) Error() string { return "resolve signing key: " + e.err.Error() }
func (e *keySourceError) Unwrap() error { return e.err }

// VerifierConfig holds the expected issuer and audience.
type VerifierConfig struct {
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

// Verifier validates RS256 bearer tokens against a key provider.
type Verifier struct {
	keys   KeyProvider
	cfg    VerifierConfig
	parser *jwt.Parser
}

// NewVerifier builds a verifier. now may be nil to use the wall clock.
func NewVerifier(keys KeyProvider, cfg VerifierConfig, now func() time.Time) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.ClockSkew),
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}
	return &Verifier{keys: keys, cfg: cfg, parser: jwt.NewParser(opts...)}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", newAuthError(KindMissingHeader, MsgMissingHeader, nil)
	}
	parts := strings.Split(header, " ")
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", newAuthError(KindMalformedHeader, MsgNotBearer, nil)
	}
	switch {
	case len(parts) == 1:
		return "", newAuthError(KindMalformedHeader, MsgTokenNotFound, nil)
	case len(parts) > 2:
		return "", newAuthError(KindMalformedHeader, MsgNotBearerToken, nil)
	}
	return parts[1], nil
}

// VerifyHeader extracts and verifies the bearer token in header.
func (v *Verifier) VerifyHeader(ctx context.Context, header string) (*Claims, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	return v.Verify(ctx, token)
}

// Verify checks signature, expiry, issuer and audience and returns the claims.
// Failures to reach the key source are returned as plain errors; every other
// failure is an *AuthError.
func (v *Verifier) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, newAuthError(KindMalformedHeader, MsgTokenNotFound, nil)
	}

	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errMissingKID
		}
		key, err := v.keys.PublicKey(ctx, kid)
		if err != nil {
			if errors.Is(err, ErrKeyNotFound) {
				return nil, err
			}
			return nil, &keySourceError{err: err}
		}
		return key, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return claims, nil
}

func classify(err error) error {
	var ksErr *keySourceError
	switch {
	case errors.As(err, &ksErr):
		return fmt.Errorf("verify token: %w", ksErr)
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, errMissingKID):
		return newAuthError(KindMalformedHeader, MsgMalformed, err)
	case errors.Is(err, ErrKeyNotFound):
		return newAuthError(KindInvalidSignature, MsgKeyNotFound, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return newAuthError(KindExpired, MsgExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return newAuthError(KindInvalidClaims, MsgIncorrectClaims, err)
	default:
		return newAuthError(KindInvalidSignature, MsgUnparseable, err)
	}
}
