package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func readyStatus(t *testing.T, deps map[string]Pinger) (int, map[string]any) {
	t.Helper()
	app := fiber.New()
	h := NewHealthHandler("assignment-service", "test", deps)
	app.Get("/ready", h.Ready)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ready", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestReadyReportsEachDependency(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	status, body := readyStatus(t, map[string]Pinger{"postgres": ok, "redis": nil})
	require.Equal(t, fiber.StatusOK, status)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "ok", deps["postgres"].(map[string]any)["status"])
	assert.Equal(t, "disabled", deps["redis"].(map[string]any)["status"])

	status, body = readyStatus(t, map[string]Pinger{"postgres": ok, "redis": down})
	require.Equal(t, fiber.StatusServiceUnavailable, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errBody["code"])
	redis := errBody["details"].(map[string]any)["redis"].(map[string]any)
	assert.Equal(t, "down", redis["status"])
	assert.Equal(t, "connection refused", redis["error"])
}

func TestReadyWithoutDependencies(t *testing.T) {
	status, body := readyStatus(t, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}
