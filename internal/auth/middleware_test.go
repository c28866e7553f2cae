package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/casting-service/pkg/util"
)

func newGuardedApp(t *testing.T, clock *testClock, signer *Signer) *fiber.App {
	t.Helper()
	verifier := NewVerifier(signer.PublicKeys(), VerifierConfig{Issuer: testIssuer, Audience: testAudience}, clock.Now)
	guard := NewGuard(verifier, nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(domainErr.Envelope())
		},
	})
	app.Get("/movies", guard.Wrap(PermGetMovies, func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromCtx(c)
		if !ok {
			return fiber.ErrTeapot
		}
		fromCtx, ok := ClaimsFromContext(c.UserContext())
		if !ok || fromCtx.Subject != claims.Subject {
			return fiber.ErrTeapot
		}
		return c.JSON(fiber.Map{"success": true, "subject": claims.Subject})
	}))
	app.Delete("/movies/:id", guard.Require(PermDeleteMovies), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "delete": c.Params("id")})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestGuardAllowsGrantedPermission(t *testing.T) {
	key, _ := testKeys(t)
	clock := newTestClock()
	signer := newTestSigner(t, key, "k1", clock)
	app := newGuardedApp(t, clock, signer)

	token, _, err := signer.GenerateToken("auth0|assistant", RoleCastingAssistant.Permissions())
	require.NoError(t, err)

	status, body := doRequest(t, app, http.MethodGet, "/movies", token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "auth0|assistant", body["subject"])
}

func TestGuardRejectsMissingHeader(t *testing.T) {
	key, _ := testKeys(t)
	clock := newTestClock()
	app := newGuardedApp(t, clock, newTestSigner(t, key, "k1", clock))

	status, body := doRequest(t, app, http.MethodGet, "/movies", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
	assert.EqualValues(t, http.StatusUnauthorized, body["error"])
	assert.Equal(t, MsgMissingHeader, body["message"])
}

func TestGuardRejectsMissingPermission(t *testing.T) {
	key, _ := testKeys(t)
	clock := newTestClock()
	signer := newTestSigner(t, key, "k1", clock)
	app := newGuardedApp(t, clock, signer)

	token, _, err := signer.GenerateToken("auth0|director", RoleCastingDirector.Permissions())
	require.NoError(t, err)

	status, body := doRequest(t, app, http.MethodDelete, "/movies/1", token)
	assert.Equal(t, http.StatusForbidden, status)
	assert.EqualValues(t, http.StatusForbidden, body["error"])
	assert.Equal(t, MsgPermissionDenied, body["message"])

	producer, _, err := signer.GenerateToken("auth0|producer", RoleExecutiveProducer.Permissions())
	require.NoError(t, err)
	status, body = doRequest(t, app, http.MethodDelete, "/movies/1", producer)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1", body["delete"])
}

func TestGuardRejectsTokenWithoutPermissionsClaim(t *testing.T) {
	key, _ := testKeys(t)
	clock := newTestClock()
	signer := newTestSigner(t, key, "k1", clock)
	app := newGuardedApp(t, clock, signer)

	token, err := signer.Sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testAudience},
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}})
	require.NoError(t, err)

	status, body := doRequest(t, app, http.MethodGet, "/movies", token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, MsgMissingPermissions, body["message"])
}

func TestGuardRejectsExpiredToken(t *testing.T) {
	key, _ := testKeys(t)
	clock := newTestClock()
	signer := newTestSigner(t, key, "k1", clock)
	app := newGuardedApp(t, clock, signer)

	token, _, err := signer.GenerateToken("auth0|x", RoleExecutiveProducer.Permissions())
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)

	status, body := doRequest(t, app, http.MethodGet, "/movies", token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, MsgExpired, body["message"])
}
