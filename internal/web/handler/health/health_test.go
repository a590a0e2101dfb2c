package health

import (
	"encoding/json"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/config"
)

func TestCheck(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	app := fiber.New()

	var alive atomic.Bool
	alive.Store(true)

	Handler.Init(app, &config.Config{}, db, &alive)

	t.Run("alive", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, Path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "OK", body["status"])
	})

	t.Run("draining", func(t *testing.T) {
		alive.Store(false)

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, Path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "shutting_down", body["status"])
	})
}
