package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig controls which browser front-ends may call the API.
type CORSConfig struct {
	// Origins allowed to call the API. Empty allows any origin, but then
	// credentials are never granted.
	Origins []string

	Methods       []string
	Headers       []string
	ExposeHeaders []string
	Credentials   bool
	MaxAge        time.Duration
}

// DefaultCORSConfig lets the given front-ends call the API with a bearer
// token and read the rate limit headers.
func DefaultCORSConfig(origins ...string) CORSConfig {
	return CORSConfig{
		Origins: origins,
		Methods: []string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodPut,
			fiber.MethodDelete,
			fiber.MethodOptions,
		},
		Headers: []string{
			fiber.HeaderOrigin,
			fiber.HeaderContentType,
			fiber.HeaderAccept,
			fiber.HeaderAuthorization,
		},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", fiber.HeaderRetryAfter},
		Credentials:   true,
		MaxAge:        time.Hour,
	}
}

// CORS answers preflight requests itself and decorates every other
// cross-origin response. Requests from unknown origins pass through bare.
func CORS(cfg CORSConfig) fiber.Handler {
	anyOrigin := len(cfg.Origins) == 0
	allowed := make(map[string]bool, len(cfg.Origins))
	for _, origin := range cfg.Origins {
		allowed[origin] = true
	}

	methods := strings.Join(cfg.Methods, ", ")
	headers := strings.Join(cfg.Headers, ", ")
	exposed := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge / time.Second))

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if !anyOrigin {
			c.Vary(fiber.HeaderOrigin)
		}
		if origin == "" || (!anyOrigin && !allowed[origin]) {
			return c.Next()
		}

		if anyOrigin {
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		} else {
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			if cfg.Credentials {
				c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
			}
		}

		if c.Method() != fiber.MethodOptions || c.Get(fiber.HeaderAccessControlRequestMethod) == "" {
			if exposed != "" {
				c.Set(fiber.HeaderAccessControlExposeHeaders, exposed)
			}
			return c.Next()
		}

		c.Set(fiber.HeaderAccessControlAllowMethods, methods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, headers)
		c.Set(fiber.HeaderAccessControlMaxAge, maxAge)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
