package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the request/response header carrying the ray ID.
const HeaderName = "X-Ray-Id"

// New returns middleware that assigns every request a ray ID. An ID
// supplied by the caller is kept so traces can span services; otherwise a
// new UUID is generated. The ID is stored in locals under "ray_id" and
// echoed in the response header.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("ray_id", rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}
