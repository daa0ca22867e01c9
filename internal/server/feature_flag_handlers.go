package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags exposes the raw flag configuration plus the resolved
// snapshot for the requesting admin. Rollout percentages resolve
// deterministically per user, so the snapshot shows what this admin sees, not
// a global truth.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	return c.JSON(fiber.Map{
		"raw":      s.featureFlags.Raw(),
		"resolved": s.featureFlags.Snapshot(userID),
	})
}
