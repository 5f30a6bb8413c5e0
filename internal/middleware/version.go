package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// apiVersionAliases maps shorthand versions to their canonical form
var apiVersionAliases = map[string]string{
	"1":   "1.0.0",
	"1.0": "1.0.0",
}

// VersionMiddleware resolves the X-Api-Version request header and
// stores the canonical version in context. The resolved version is
// echoed back so clients can see what they were served.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", "1.0.0")
		if canonical, ok := apiVersionAliases[version]; ok {
			version = canonical
		}

		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", version)

		return c.Next()
	}
}
