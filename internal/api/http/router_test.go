package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/casting-service/internal/api/http/handlers"
	"github.com/spec-kit/casting-service/internal/auth"
	"github.com/spec-kit/casting-service/internal/events"
	"github.com/spec-kit/casting-service/internal/observability"
	"github.com/spec-kit/casting-service/internal/repository"
	"github.com/spec-kit/casting-service/internal/service"
)

const (
	testIssuer   = "https://casting.test/"
	testAudience = "casting"
)

var (
	signerOnce sync.Once
	signer     *auth.Signer
	signerErr  error
)

func testSigner(t *testing.T) *auth.Signer {
	t.Helper()
	signerOnce.Do(func() {
		key, err := auth.GenerateKey()
		if err != nil {
			signerErr = err
			return
		}
		signer = auth.NewSigner(key, "test", testIssuer, testAudience, time.Hour)
	})
	require.NoError(t, signerErr)
	return signer
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type testServer struct {
	app     *fiber.App
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, deps ...handlers.Dependency) *testServer {
	t.Helper()
	return newLoggedTestServer(t, zap.NewNop(), deps...)
}

func newLoggedTestServer(t *testing.T, logger *zap.Logger, deps ...handlers.Dependency) *testServer {
	t.Helper()
	s := testSigner(t)
	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	verifier := auth.NewVerifier(s.PublicKeys(), auth.VerifierConfig{Issuer: testIssuer, Audience: testAudience}, nil)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("casting-service", "test", deps...),
		Movies: handlers.NewMoviesHandler(service.NewMovieService(store.Movies(), dispatcher, logger)),
		Actors: handlers.NewActorsHandler(service.NewActorService(store.Actors(), dispatcher, logger)),
		Guard:  auth.NewGuard(verifier, logger),
	})
	return &testServer{app: app, metrics: metrics}
}

func tokenFor(t *testing.T, role auth.Role) string {
	t.Helper()
	token, _, err := testSigner(t).GenerateToken("auth0|"+string(role), role.Permissions())
	require.NoError(t, err)
	return token
}

type response struct {
	status int
	body   map[string]any
	raw    string
}

func (s *testServer) do(t *testing.T, method, path, token, body string) response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := response{status: resp.StatusCode, raw: string(raw)}
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &out.body))
	}
	return out
}

func assertEnvelope(t *testing.T, r response, status int, message string) {
	t.Helper()
	assert.Equal(t, status, r.status, r.raw)
	assert.Equal(t, false, r.body["success"])
	assert.EqualValues(t, status, r.body["error"])
	assert.Equal(t, message, r.body["message"])
	assert.Len(t, r.body, 3, r.raw)
}

func TestIndex(t *testing.T) {
	s := newTestServer(t)
	r := s.do(t, nethttp.MethodGet, "/", "", "")
	assert.Equal(t, nethttp.StatusOK, r.status)
	assert.Equal(t, "hello world", r.raw)
}

func TestAuthFailures(t *testing.T) {
	s := newTestServer(t)

	assertEnvelope(t, s.do(t, nethttp.MethodGet, "/actors", "", ""),
		nethttp.StatusUnauthorized, auth.MsgMissingHeader)
	assertEnvelope(t, s.do(t, nethttp.MethodGet, "/actors", "garbage", ""),
		nethttp.StatusUnauthorized, auth.MsgMalformed)
	assertEnvelope(t, s.do(t, nethttp.MethodPost, "/movies", tokenFor(t, auth.RoleCastingAssistant), `{"title":"x","year":2020,"month":1,"day":1}`),
		nethttp.StatusForbidden, auth.MsgPermissionDenied)
	assertEnvelope(t, s.do(t, nethttp.MethodDelete, "/movies/1", tokenFor(t, auth.RoleCastingDirector), ""),
		nethttp.StatusForbidden, auth.MsgPermissionDenied)
}

func TestMovieEndpoints(t *testing.T) {
	s := newTestServer(t)
	producer := tokenFor(t, auth.RoleExecutiveProducer)
	assistant := tokenFor(t, auth.RoleCastingAssistant)

	r := s.do(t, nethttp.MethodPost, "/movies", producer, `{"title":"Heat","year":1995,"month":12,"day":15}`)
	require.Equal(t, nethttp.StatusOK, r.status, r.raw)
	assert.Equal(t, true, r.body["success"])
	created := r.body["new_movie"].(map[string]any)
	assert.Equal(t, "Heat", created["title"])
	assert.Equal(t, "1995-12-15", created["release_date"])
	id := int64(created["id"].(float64))
	assert.EqualValues(t, 1, id)

	r = s.do(t, nethttp.MethodGet, "/movies", assistant, "")
	require.Equal(t, nethttp.StatusOK, r.status)
	movies := r.body["movies"].([]any)
	require.Len(t, movies, 1)

	r = s.do(t, nethttp.MethodPatch, "/movies/1", producer, `{"title":"","day":1}`)
	require.Equal(t, nethttp.StatusOK, r.status, r.raw)
	modified := r.body["modified_movie"].(map[string]any)
	assert.Equal(t, "Heat", modified["title"])
	assert.Equal(t, "1995-12-01", modified["release_date"])

	r = s.do(t, nethttp.MethodPatch, "/movies/1", producer, `{"month":2,"day":30}`)
	assertEnvelope(t, r, nethttp.StatusUnprocessableEntity, "unprocessable")

	r = s.do(t, nethttp.MethodPatch, "/movies/1", producer, "")
	require.Equal(t, nethttp.StatusOK, r.status, r.raw)
	assert.Equal(t, "1995-12-01", r.body["modified_movie"].(map[string]any)["release_date"])

	r = s.do(t, nethttp.MethodDelete, "/movies/1", producer, "")
	require.Equal(t, nethttp.StatusOK, r.status)
	assert.Equal(t, "Heat", r.body["deleted_movie"].(map[string]any)["title"])

	assertEnvelope(t, s.do(t, nethttp.MethodDelete, "/movies/1", producer, ""),
		nethttp.StatusNotFound, "resource not found")
	assertEnvelope(t, s.do(t, nethttp.MethodPatch, "/movies/abc", producer, `{"title":"x"}`),
		nethttp.StatusNotFound, "resource not found")

	r = s.do(t, nethttp.MethodGet, "/movies", assistant, "")
	assert.Empty(t, r.body["movies"])
}

func TestMovieCreateValidation(t *testing.T) {
	s := newTestServer(t)
	producer := tokenFor(t, auth.RoleExecutiveProducer)

	assertEnvelope(t, s.do(t, nethttp.MethodPost, "/movies", producer, `{"title":"Heat","year":1995,"month":2,"day":30}`),
		nethttp.StatusUnprocessableEntity, "unprocessable")
	assertEnvelope(t, s.do(t, nethttp.MethodPost, "/movies", producer, `{"year":1995,"month":2,"day":3}`),
		nethttp.StatusUnprocessableEntity, "unprocessable")
	assertEnvelope(t, s.do(t, nethttp.MethodPost, "/movies", producer, `{"title":`),
		nethttp.StatusUnprocessableEntity, "unprocessable")
}

func TestActorEndpoints(t *testing.T) {
	s := newTestServer(t)
	director := tokenFor(t, auth.RoleCastingDirector)

	r := s.do(t, nethttp.MethodPost, "/actors", director, `{"name":"Hala","age":15,"gender":"female"}`)
	require.Equal(t, nethttp.StatusOK, r.status, r.raw)
	actor := r.body["new_actor"].(map[string]any)
	assert.Equal(t, "Hala", actor["name"])
	assert.EqualValues(t, 15, actor["age"])

	assertEnvelope(t, s.do(t, nethttp.MethodPost, "/actors", director, `{"name":"Omar","age":0,"gender":"male"}`),
		nethttp.StatusUnprocessableEntity, "unprocessable")

	r = s.do(t, nethttp.MethodPatch, "/actors/1", director, `{"age":16,"gender":""}`)
	require.Equal(t, nethttp.StatusOK, r.status, r.raw)
	modified := r.body["modified_actor"].(map[string]any)
	assert.EqualValues(t, 16, modified["age"])
	assert.Equal(t, "female", modified["gender"])

	assertEnvelope(t, s.do(t, nethttp.MethodPatch, "/actors/99", director, `{"age":16}`),
		nethttp.StatusNotFound, "resource not found")

	r = s.do(t, nethttp.MethodGet, "/actors", director, "")
	require.Equal(t, nethttp.StatusOK, r.status)
	assert.Len(t, r.body["actors"], 1)

	r = s.do(t, nethttp.MethodDelete, "/actors/1", director, "")
	require.Equal(t, nethttp.StatusOK, r.status)
	assert.EqualValues(t, 1, r.body["deleted_actor"].(map[string]any)["id"])
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	assertEnvelope(t, s.do(t, nethttp.MethodGet, "/directors", "", ""),
		nethttp.StatusNotFound, "resource not found")
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t,
		handlers.Dependency{Name: "storage", Pinger: stubPinger{}},
		handlers.Dependency{Name: "redis", Pinger: stubPinger{err: errors.New("down")}, Optional: true},
	)
	r := s.do(t, nethttp.MethodGet, "/health/live", "", "")
	assert.Equal(t, nethttp.StatusOK, r.status)
	assert.Equal(t, "alive", r.body["status"])

	r = s.do(t, nethttp.MethodGet, "/health/ready", "", "")
	assert.Equal(t, nethttp.StatusOK, r.status)
	deps := r.body["dependencies"].(map[string]any)
	assert.Equal(t, "ok", deps["storage"])
	assert.Equal(t, "down", deps["redis"])

	failing := newTestServer(t, handlers.Dependency{Name: "storage", Pinger: stubPinger{err: errors.New("refused")}})
	r = failing.do(t, nethttp.MethodGet, "/health/ready", "", "")
	assert.Equal(t, nethttp.StatusServiceUnavailable, r.status)
}

func TestRequestsAreCounted(t *testing.T) {
	s := newTestServer(t)
	s.do(t, nethttp.MethodGet, "/actors", "", "")
	snap := s.metrics.Snapshot()
	assert.EqualValues(t, 1, snap.Requests["/actors|GET|401"])
	assert.EqualValues(t, 1, snap.Errors["/actors|GET|authorization_header_missing"])
}

func TestMetricKeysFollowRouteTemplates(t *testing.T) {
	s := newTestServer(t)
	const n = 150
	for i := 0; i < n; i++ {
		s.do(t, nethttp.MethodGet, fmt.Sprintf("/scan/%d", i), "", "")
		s.do(t, nethttp.MethodDelete, fmt.Sprintf("/movies/%d", i), "", "")
	}

	snap := s.metrics.Snapshot()
	assert.Len(t, snap.Requests, 2)
	assert.EqualValues(t, n, snap.Requests[observability.UnmatchedRoute+"|GET|404"])
	assert.EqualValues(t, n, snap.Requests["/movies/:id|DELETE|401"])
	assert.Len(t, snap.Errors, 2)
	assert.EqualValues(t, n, snap.Errors[observability.UnmatchedRoute+"|GET|NOT_FOUND"])
	assert.EqualValues(t, n, snap.Errors["/movies/:id|DELETE|authorization_header_missing"])
}

func TestValidationDetailsStayOutOfBody(t *testing.T) {
	s := newTestServer(t)
	r := s.do(t, nethttp.MethodPost, "/actors", tokenFor(t, auth.RoleCastingDirector), `{"name":"Omar","gender":"male"}`)
	assertEnvelope(t, r, nethttp.StatusUnprocessableEntity, "unprocessable")
	assert.NotContains(t, r.raw, "details")
}

func TestOutOfRangeNumbersAreUnprocessable(t *testing.T) {
	s := newTestServer(t)
	producer := tokenFor(t, auth.RoleExecutiveProducer)
	assertEnvelope(t, s.do(t, nethttp.MethodPost, "/actors", producer, `{"name":"Omar","age":3000000000,"gender":"male"}`),
		nethttp.StatusUnprocessableEntity, "unprocessable")
	assertEnvelope(t, s.do(t, nethttp.MethodPost, "/movies", producer, `{"title":"Heat","year":10000,"month":1,"day":1}`),
		nethttp.StatusUnprocessableEntity, "unprocessable")

	created := s.do(t, nethttp.MethodPost, "/actors", producer, `{"name":"Omar","age":30,"gender":"male"}`)
	require.Equal(t, nethttp.StatusOK, created.status, created.raw)
	assertEnvelope(t, s.do(t, nethttp.MethodPatch, "/actors/1", producer, `{"age":3000000000}`),
		nethttp.StatusUnprocessableEntity, "unprocessable")
}

func TestRejectionsAreLoggedWithCaller(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := newLoggedTestServer(t, zap.New(core))

	assertEnvelope(t, s.do(t, nethttp.MethodDelete, "/actors/42", tokenFor(t, auth.RoleCastingDirector), ""),
		nethttp.StatusNotFound, "resource not found")

	rejected := logs.FilterMessage("request rejected").All()
	require.Len(t, rejected, 1)
	fields := rejected[0].ContextMap()
	assert.Equal(t, "auth0|casting-director", fields["subject"])
	assert.Equal(t, "NOT_FOUND", fields["code"])
	assert.Contains(t, fields, "details")
}
