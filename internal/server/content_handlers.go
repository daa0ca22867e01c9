package server

import (
	"koinonia/internal/models"
	"koinonia/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createContentRequest struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaURL    string `json:"media_url"`
	Published   *bool  `json:"published"`
}

// CreateContent registers a new catalog item owned by the caller.
// @Summary Create content
// @Tags content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createContentRequest true "Content details"
// @Success 201 {object} models.Content
// @Failure 400 {object} models.ErrorResponse
// @Router /content [post]
func (s *Server) CreateContent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req createContentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}

	content, err := s.contentService.CreateContent(c.UserContext(), service.CreateContentInput{
		OwnerID:     userID,
		Type:        models.ContentType(req.Type),
		Title:       req.Title,
		Description: req.Description,
		MediaURL:    req.MediaURL,
		Published:   published,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(content)
}

// GetContent fetches one catalog item.
func (s *Server) GetContent(c *fiber.Ctx) error {
	contentType, err := parseContentType(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	content, err := s.contentService.GetContent(c.UserContext(), id, contentType)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(content)
}

// ListContent returns a page of catalog items, optionally filtered by type
// via the ?type query param.
func (s *Server) ListContent(c *fiber.Ctx) error {
	contentType := models.ContentType(c.Query("type"))
	if contentType != "" && !models.ValidContentType(contentType) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown content type"))
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	items, err := s.contentService.ListContent(c.UserContext(), contentType, page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"content": items,
		"page":    page,
		"limit":   limit,
	})
}

// DeleteContent removes a catalog item. Owners and admins only.
func (s *Server) DeleteContent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	contentType, err := parseContentType(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.contentService.DeleteContent(c.UserContext(), id, contentType, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
