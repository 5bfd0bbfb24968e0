package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/service"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	app     *fiber.App
	clock   *testClock
	tokens  *auth.TokenCodec
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	appCfg := config.AppConfig{
		Name:                  "account-service",
		Version:               "test",
		APIPrefix:             "/api",
		RequestTimeoutSeconds: 5,
		CORSAllowOrigins:      "*",
	}
	clock := &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenCodec(config.AuthConfig{
		JWTSecret:             "router-test-secret",
		JWTAlgorithm:          "HS256",
		AccessTokenTTLMinutes: 30,
	}, auth.WithClock(clock.Now))
	require.NoError(t, err)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	users := repository.NewMemoryUserRepository()

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   users,
		Hasher:     hasher,
		Tokens:     tokens,
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     logger,
	})
	guard := auth.NewGuard(tokens, repository.NewStoreResolver(users))

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, appCfg)
	RegisterRoutes(app, RouteConfig{
		BasePath:       appCfg.BasePath(),
		Health:         handlers.NewHealthHandler(appCfg.Name, appCfg.Version, map[string]handlers.Pinger{"store": users, "redis": nil}, logger),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(authService),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: auth.NewAuthMiddleware(guard),
	})

	return &testServer{app: app, clock: clock, tokens: tokens, metrics: metrics}
}

type response struct {
	status int
	header http.Header
	body   map[string]any
}

func (s *testServer) do(t *testing.T, req *http.Request) response {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := response{status: resp.StatusCode, header: resp.Header}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

func (s *testServer) register(t *testing.T, email, password string) response {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(string(payload)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return s.do(t, req)
}

func (s *testServer) login(t *testing.T, username, password string) response {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return s.do(t, req)
}

func (s *testServer) me(t *testing.T, authorization string) response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	return s.do(t, req)
}

func errorCode(t *testing.T, r response) string {
	t.Helper()
	errBody, ok := r.body["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %v", r.body)
	code, _ := errBody["code"].(string)
	return code
}

func errorMessage(r response) string {
	errBody, _ := r.body["error"].(map[string]any)
	msg, _ := errBody["message"].(string)
	return msg
}

func TestRegisterLoginMe(t *testing.T) {
	srv := newTestServer(t)

	reg := srv.register(t, "a@x.com", "pw1")
	require.Equal(t, http.StatusCreated, reg.status)
	assert.Equal(t, "a@x.com", reg.body["email"])
	assert.Equal(t, true, reg.body["is_active"])
	assert.NotEmpty(t, reg.body["id"])
	assert.NotContains(t, reg.body, "password")
	assert.NotContains(t, reg.body, "hashed_password")

	tok := srv.login(t, "a@x.com", "pw1")
	require.Equal(t, http.StatusOK, tok.status)
	assert.Equal(t, "bearer", tok.body["token_type"])
	accessToken, _ := tok.body["access_token"].(string)
	require.NotEmpty(t, accessToken)

	me := srv.me(t, "Bearer "+accessToken)
	require.Equal(t, http.StatusOK, me.status)
	assert.Equal(t, map[string]any{"id": reg.body["id"], "email": "a@x.com"}, me.body)
}

func TestRegisterDuplicate(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusCreated, srv.register(t, "a@x.com", "pw1").status)

	dup := srv.register(t, "a@x.com", "other")
	assert.Equal(t, http.StatusConflict, dup.status)
	assert.Equal(t, "CONFLICT", errorCode(t, dup))

	// the original password still works
	assert.Equal(t, http.StatusOK, srv.login(t, "a@x.com", "pw1").status)
	assert.Equal(t, http.StatusBadRequest, srv.login(t, "a@x.com", "other").status)
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "malformed email", email: "not-an-email", password: "pw1"},
		{name: "empty password", email: "a@x.com", password: ""},
		{name: "password over bcrypt limit", email: "a@x.com", password: strings.Repeat("p", 73)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := srv.register(t, tt.email, tt.password)
			assert.Equal(t, http.StatusBadRequest, r.status)
			assert.Equal(t, "VALIDATION_FAILED", errorCode(t, r))
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader("{"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	r := srv.do(t, req)
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, r))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, srv.register(t, "a@x.com", "pw1").status)

	wrongPassword := srv.login(t, "a@x.com", "nope")
	unknownUser := srv.login(t, "b@x.com", "pw1")

	for _, r := range []response{wrongPassword, unknownUser} {
		assert.Equal(t, http.StatusBadRequest, r.status)
		assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, r))
		assert.Equal(t, "Incorrect username or password", errorMessage(r))
		assert.NotContains(t, r.body, "access_token")
	}
	assert.Equal(t, wrongPassword.body, unknownUser.body)

	missing := srv.login(t, "a@x.com", "")
	assert.Equal(t, http.StatusBadRequest, missing.status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, missing))
}

func TestMeRejections(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, srv.register(t, "a@x.com", "pw1").status)

	tok := srv.login(t, "a@x.com", "pw1")
	require.Equal(t, http.StatusOK, tok.status)
	valid := tok.body["access_token"].(string)

	ghost, _, err := srv.tokens.Encode("ghost@x.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header"},
		{name: "garbage token", header: "Bearer not.a.token"},
		{name: "wrong scheme", header: "Token " + valid},
		{name: "unknown subject", header: "Bearer " + ghost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := srv.me(t, tt.header)
			assert.Equal(t, http.StatusUnauthorized, r.status)
			assert.Equal(t, "UNAUTHORIZED", errorCode(t, r))
			assert.Equal(t, "Could not validate credentials", errorMessage(r))
			assert.Equal(t, "Bearer", r.header.Get(fiber.HeaderWWWAuthenticate))
		})
	}
}

func TestMeTokenExpiry(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, srv.register(t, "a@x.com", "pw1").status)

	tok := srv.login(t, "a@x.com", "pw1")
	require.Equal(t, http.StatusOK, tok.status)
	bearer := "Bearer " + tok.body["access_token"].(string)

	srv.clock.Advance(29 * time.Minute)
	assert.Equal(t, http.StatusOK, srv.me(t, bearer).status)

	srv.clock.Advance(time.Minute)
	assert.Equal(t, http.StatusUnauthorized, srv.me(t, bearer).status)
}

func TestUnknownRouteRendersErrorEnvelope(t *testing.T) {
	srv := newTestServer(t)

	r := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, r))
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	live := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/live", nil))
	assert.Equal(t, http.StatusOK, live.status)
	assert.Equal(t, "alive", live.body["status"])

	ready := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	assert.Equal(t, http.StatusOK, ready.status)
	assert.Equal(t, map[string]any{"store": "ok", "redis": "disabled"}, ready.body["dependencies"])

	health := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, health.status)
	assert.Equal(t, "ok", health.body["status"])
}

func TestRequestIDAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/live", nil)
	req.Header.Set(observability.RequestIDHeader, "req-123")
	r := srv.do(t, req)
	assert.Equal(t, "req-123", r.header.Get(observability.RequestIDHeader))

	generated := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/live", nil))
	assert.NotEmpty(t, generated.header.Get(observability.RequestIDHeader))

	srv.me(t, "")

	snap := srv.metrics.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/v1/live|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/api/v1/users/me|GET|UNAUTHORIZED"])

	m := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))
	assert.Equal(t, http.StatusOK, m.status)
	assert.Contains(t, m.body, "requests")
}
