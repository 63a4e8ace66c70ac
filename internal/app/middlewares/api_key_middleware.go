package middlewares

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/pkg"
	"github.com/safatanc/gsalt-giftcard/internal/infrastructures"
)

const (
	apiKeyHeader   = "X-API-Key"
	clientLocalKey = "client_id"
)

// APIKeyMiddleware guards mutating routes with the static keys from
// API_KEYS. With no keys configured every request is let through.
type APIKeyMiddleware struct {
	keys [][]byte
}

func NewAPIKeyMiddleware() *APIKeyMiddleware {
	return NewAPIKeyMiddlewareWithKeys(infrastructures.Config.API_KEYS)
}

func NewAPIKeyMiddlewareWithKeys(keys []string) *APIKeyMiddleware {
	m := &APIKeyMiddleware{}
	for _, key := range keys {
		if key != "" {
			m.keys = append(m.keys, []byte(key))
		}
	}
	return m
}

func (m *APIKeyMiddleware) accepts(key string) bool {
	candidate := []byte(key)
	accepted := false
	for _, k := range m.keys {
		if subtle.ConstantTimeCompare(k, candidate) == 1 {
			accepted = true
		}
	}
	return accepted
}

// clientID identifies a key in rate limit buckets and logs without
// exposing it.
func clientID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// Identify records the caller behind a valid API key, if any, so later
// middlewares can use it. It never rejects a request.
func (m *APIKeyMiddleware) Identify(c *fiber.Ctx) error {
	if key := c.Get(apiKeyHeader); key != "" && m.accepts(key) {
		c.Locals(clientLocalKey, clientID(key))
	}
	return c.Next()
}

// RequireAPIKey rejects the request unless it carries one of the configured keys.
func (m *APIKeyMiddleware) RequireAPIKey(c *fiber.Ctx) error {
	if len(m.keys) == 0 {
		return c.Next()
	}

	key := c.Get(apiKeyHeader)
	if key == "" {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Missing API key"))
	}
	if !m.accepts(key) {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Invalid API key"))
	}

	c.Locals(clientLocalKey, clientID(key))
	return c.Next()
}
