package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit Rate) (bool, RateLimitInfo) {
	args := m.Called(key, limit)
	return args.Bool(0), args.Get(1).(RateLimitInfo)
}

func (m *mockLimiter) Reset(ctx context.Context, key string) error {
	return m.Called(key).Error(0)
}

func ok(c *fiber.Ctx) error {
	return c.SendString("ok")
}

func TestAPIKeyMiddleware_RequireAPIKey(t *testing.T) {
	app := fiber.New()
	app.Post("/", NewAPIKeyMiddlewareWithKeys([]string{"secret", ""}).RequireAPIKey, func(c *fiber.Ctx) error {
		assert.NotEmpty(t, c.Locals(clientLocalKey))
		return ok(c)
	})

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{name: "missing key", status: http.StatusUnauthorized},
		{name: "wrong key", key: "guess", status: http.StatusUnauthorized},
		{name: "valid key", key: "secret", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.key != "" {
				req.Header.Set(apiKeyHeader, tt.key)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAPIKeyMiddleware_OpenWithoutKeys(t *testing.T) {
	app := fiber.New()
	app.Post("/", NewAPIKeyMiddlewareWithKeys(nil).RequireAPIKey, ok)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimitMiddleware_LimitByClient(t *testing.T) {
	limiter := new(mockLimiter)
	reset := time.Now().Add(time.Minute)
	apiKeys := NewAPIKeyMiddlewareWithKeys([]string{"secret"})

	limiter.On("Allow", "client:"+clientID("secret"), PublicAPILimit).
		Return(false, RateLimitInfo{Limit: 60, Remaining: 0, Reset: reset}).Once()
	limiter.On("Allow", "ip:10.0.0.1", PublicAPILimit).
		Return(true, RateLimitInfo{Limit: 60, Remaining: 59, Reset: reset}).Once()

	app := fiber.New()
	app.Use(apiKeys.Identify)
	app.Use(NewRateLimitMiddleware(limiter).LimitByClient(PublicAPILimit))
	app.Get("/", ok)

	withKey := httptest.NewRequest(http.MethodGet, "/", nil)
	withKey.Header.Set(apiKeyHeader, "secret")
	resp, err := app.Test(withKey)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))

	anonymous := httptest.NewRequest(http.MethodGet, "/", nil)
	anonymous.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
	resp, err = app.Test(anonymous)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "59", resp.Header.Get("X-RateLimit-Remaining"))

	limiter.AssertExpectations(t)
}
