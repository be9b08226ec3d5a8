package middleware

import "github.com/gofiber/fiber/v2"

// Security sets headers for a JSON-only API: nothing may be framed, sniffed
// or loaded from the responses. Production also pins HTTPS.
func Security(production bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set(fiber.HeaderXFrameOptions, "DENY")
		c.Set(fiber.HeaderReferrerPolicy, "no-referrer")
		c.Set(fiber.HeaderContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'")
		if production {
			c.Set(fiber.HeaderStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		}

		// Progress and ledger reads change with every completion.
		if c.Path() != "/health" {
			c.Set(fiber.HeaderCacheControl, "no-store")
		}
		return c.Next()
	}
}
