package auth

import (
	"context"
	"slices"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims describes the JWT payload issued by the identity provider.
type Claims struct {
	Scope       string   `json:"scope,omitempty"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// HasPermission reports whether permission was granted to the token.
func (c *Claims) HasPermission(permission string) bool {
	return c != nil && slices.Contains(c.Permissions, permission)
}

// CheckPermission extracts the permission set and requires permission to be in it.
// A token without a permissions claim is rejected as having invalid claims.
func CheckPermission(claims *Claims, permission string) error {
	if claims == nil || claims.Permissions == nil {
		return newAuthError(KindInvalidClaims, MsgMissingPermissions, nil)
	}
	if !claims.HasPermission(permission) {
		return newAuthError(KindPermissionDenied, MsgPermissionDenied, nil)
	}
	return nil
}

type claimsCtxKey struct{}

// WithClaims returns a copy of ctx carrying the verified claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

// ClaimsFromContext retrieves claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(*Claims)
	return claims, ok && claims != nil
}
