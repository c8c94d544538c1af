package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

func TestErrorRendering(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Get("/timeout", func(c *fiber.Ctx) error {
		return fmt.Errorf("list queue: %w", context.DeadlineExceeded)
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return apperrors.NewConflict("already queued", map[string]any{"work_item_id": "W1"})
	})

	tests := map[string]struct {
		path    string
		status  int
		code    string
		details bool
	}{
		"deadline": {"/timeout", fiber.StatusServiceUnavailable, "REQUEST_TIMEOUT", false},
		"panic":    {"/panic", fiber.StatusInternalServerError, "INTERNAL_ERROR", false},
		"domain":   {"/conflict", fiber.StatusConflict, "CONFLICT", true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tc.path, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)

			var body struct {
				Error struct {
					Code    string         `json:"code"`
					Details map[string]any `json:"details"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Error.Code)
			assert.Equal(t, tc.details, body.Error.Details != nil)
		})
	}
}
