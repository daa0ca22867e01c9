package server

import (
	"koinonia/internal/featureflags"
	"koinonia/internal/models"
	"koinonia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTrending returns content ranked by engagement volume inside a window.
// @Summary Trending content
// @Description Rank content by engagement count within a rolling window
// @Tags trending
// @Produce json
// @Param kind query string false "Engagement kind (default like)"
// @Param type query string false "Content type filter"
// @Param window_days query int false "Window in days, 0 for all time"
// @Param limit query int false "Max results"
// @Success 200 {array} models.RankedContent
// @Failure 400 {object} models.ErrorResponse
// @Router /trending [get]
func (s *Server) GetTrending(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)
	if !s.featureFlags.Allows(featureflags.TrendingPage, viewerID) {
		return respondServiceError(c,
			models.NewInvalidOperationError("Trending is currently disabled"))
	}

	q := service.TrendingQuery{
		Kind:        models.Kind(c.Query("kind", string(models.KindLike))),
		ContentType: models.ContentType(c.Query("type")),
		WindowDays:  c.QueryInt("window_days", 7),
		Limit:       c.QueryInt("limit", 20),
	}

	ranked, err := s.trendingService.Trending(c.UserContext(), q)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"results":     ranked,
		"kind":        q.Kind,
		"window_days": q.WindowDays,
	})
}
