package router

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

func TestApiRouterServesPing(t *testing.T) {
	app := fiber.New()
	NewApiRouter(&config.Config{}).InstallRouter(app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ping", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "pong", decoded["ping"])
}

func TestApiRouterRootDescribesService(t *testing.T) {
	app := fiber.New()
	NewApiRouter(&config.Config{}).InstallRouter(app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "Bear Beat API", decoded["name"])
}
