package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/casting-service/pkg/util"
)

const claimsKey = "auth_claims"

// TokenVerifier validates the Authorization header of a request.
type TokenVerifier interface {
	VerifyHeader(ctx context.Context, header string) (*Claims, error)
}

// Guard enforces permission checks on routes.
type Guard struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewGuard constructs a guard.
func NewGuard(verifier TokenVerifier, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{verifier: verifier, logger: logger}
}

// Wrap returns a handler that runs next only for callers holding permission.
func (g *Guard) Wrap(permission string, next fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := g.authorize(c.UserContext(), c.Get(fiber.HeaderAuthorization), permission)
		if err != nil {
			return err
		}
		c.Locals(claimsKey, claims)
		c.SetUserContext(WithClaims(c.UserContext(), claims))
		return next(c)
	}
}

// Require is Wrap in middleware form, for use in a handler chain.
func (g *Guard) Require(permission string) fiber.Handler {
	return g.Wrap(permission, func(c *fiber.Ctx) error {
		return c.Next()
	})
}

func (g *Guard) authorize(ctx context.Context, header, permission string) (*Claims, error) {
	claims, err := g.verifier.VerifyHeader(ctx, header)
	if err == nil {
		err = CheckPermission(claims, permission)
	}
	if err == nil {
		return claims, nil
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		g.logger.Debug("request rejected",
			zap.String("kind", string(authErr.Kind)),
			zap.String("permission", permission),
			zap.Error(authErr))
		return nil, authErr.DomainError()
	}
	return nil, apperrors.NewInternalError(err)
}

// ClaimsFromCtx retrieves the claims attached by the guard.
func ClaimsFromCtx(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*Claims)
	return claims, ok && claims != nil
}
