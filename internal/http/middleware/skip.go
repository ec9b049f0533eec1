package middleware

import "github.com/gofiber/fiber/v2"

// Skip runs h for every request except those whose path is in paths,
// which go straight to the next handler.
func Skip(h fiber.Handler, paths ...string) fiber.Handler {
	skip := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		skip[p] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok {
			return c.Next()
		}
		return h(c)
	}
}
