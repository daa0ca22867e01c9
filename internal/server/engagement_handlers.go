package server

import (
	"koinonia/internal/models"
	"koinonia/internal/service"

	"github.com/gofiber/fiber/v2"
)

type recordViewRequest struct {
	DurationSeconds int  `json:"duration_seconds"`
	IsComplete      bool `json:"is_complete"`
}

type recordShareRequest struct {
	Platform string `json:"platform"`
}

// ToggleHandler returns a handler that flips the caller's state for one
// toggleable kind. The route path fixes the kind, so like/bookmark/follow
// share this code.
// @Summary Toggle an engagement
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param type path string true "Content type"
// @Param id path int true "Content ID"
// @Success 200 {object} models.ToggleResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /content/{type}/{id}/like [post]
func (s *Server) ToggleHandler(kind models.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		contentType, err := parseContentType(c)
		if err != nil {
			return respondServiceError(c, err)
		}
		id, err := parseID(c, "id")
		if err != nil {
			return respondServiceError(c, err)
		}

		result, err := s.engagementService.Toggle(c.UserContext(), service.ToggleInput{
			UserID:      userID,
			ContentID:   id,
			ContentType: contentType,
			Kind:        kind,
		})
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(result)
	}
}

// RecordView appends a view event. Whether it counts toward the view total is
// decided by the view policy at write time.
func (s *Server) RecordView(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	contentType, err := parseContentType(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	var req recordViewRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	view, err := s.engagementService.RecordView(c.UserContext(), service.ViewInput{
		UserID:          userID,
		ContentID:       id,
		ContentType:     contentType,
		DurationSeconds: req.DurationSeconds,
		IsComplete:      req.IsComplete,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// RecordShare appends a share event for the given platform.
func (s *Server) RecordShare(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	contentType, err := parseContentType(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	var req recordShareRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	share, err := s.engagementService.RecordShare(c.UserContext(), service.ShareInput{
		UserID:      userID,
		ContentID:   id,
		ContentType: contentType,
		Platform:    req.Platform,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(share)
}

// GetEngagementCount returns the ledger count for one kind.
func (s *Server) GetEngagementCount(c *fiber.Ctx) error {
	contentType, err := parseContentType(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	kind := models.Kind(c.Params("kind"))
	if !models.ValidKind(kind) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown engagement kind"))
	}

	count, err := s.engagementService.Count(c.UserContext(), id, contentType, kind)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"content_id":   id,
		"content_type": contentType,
		"kind":         kind,
		"count":        count,
	})
}

// GetEngagementSummary returns all per-kind counts plus the caller's toggle
// states. Anonymous callers get an all-false viewer state.
func (s *Server) GetEngagementSummary(c *fiber.Ctx) error {
	contentType, err := parseContentType(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	userID, _ := s.optionalUserID(c)

	summary, err := s.engagementService.Summary(c.UserContext(), id, contentType, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(summary)
}
