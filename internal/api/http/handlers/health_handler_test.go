package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

const dsnLeak = `failed to connect to host=db.internal user=accounts database=accounts: dial tcp 10.0.0.5:5432: connection refused`

func newHealthApp(t *testing.T, checks map[string]Pinger) (*fiber.App, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	h := NewHealthHandler("account-service", "test", checks, zap.New(core))

	app := fiber.New()
	app.Get("/ready", h.Ready)
	app.Get("/health", h.Health)
	return app, logs
}

func getJSON(t *testing.T, app *fiber.App, path string) (int, string, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, string(raw), body
}

func TestReadyHidesDependencyErrors(t *testing.T) {
	app, logs := newHealthApp(t, map[string]Pinger{
		"store": pingerFunc(func(context.Context) error { return errors.New(dsnLeak) }),
		"redis": nil,
	})

	status, raw, body := getJSON(t, app, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.NotContains(t, raw, "db.internal")
	assert.NotContains(t, raw, "user=accounts")

	errBody := body["error"].(map[string]any)
	assert.Equal(t, map[string]any{"store": "unavailable", "redis": "disabled"}, errBody["details"])

	entries := logs.FilterMessage("dependency check failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "store", entries[0].ContextMap()["dependency"])
	assert.Contains(t, entries[0].ContextMap()["error"], "db.internal")
}

func TestHealthReportsDegraded(t *testing.T) {
	app, _ := newHealthApp(t, map[string]Pinger{
		"store": pingerFunc(func(context.Context) error { return nil }),
		"redis": pingerFunc(func(context.Context) error { return errors.New(dsnLeak) }),
	})

	status, raw, body := getJSON(t, app, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, map[string]any{"store": "ok", "redis": "unavailable"}, body["dependencies"])
	assert.NotContains(t, raw, "10.0.0.5")
}
