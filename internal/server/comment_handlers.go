package server

import (
	"koinonia/internal/featureflags"
	"koinonia/internal/models"
	"koinonia/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

type reactToCommentRequest struct {
	Tag string `json:"tag"`
}

// CreateComment posts a comment or reply on a content item.
// @Summary Create a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "Content type"
// @Param id path int true "Content ID"
// @Param request body createCommentRequest true "Comment body"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /content/{type}/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	contentType, err := parseContentType(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:      userID,
		ContentID:   id,
		ContentType: contentType,
		Content:     req.Content,
		ParentID:    req.ParentID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments returns a page of top-level comments with replies.
func (s *Server) GetComments(c *fiber.Ctx) error {
	contentType, err := parseContentType(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	comments, err := s.commentService.ListComments(c.UserContext(), id, contentType, page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// DeleteComment removes the caller's own comment.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.commentService.DeleteComment(c.UserContext(), id, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReactToComment toggles an emoji-style reaction tag on a comment.
func (s *Server) ReactToComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if !s.featureFlags.Allows(featureflags.CommentReactions, userID) {
		return respondServiceError(c,
			models.NewInvalidOperationError("Comment reactions are currently disabled"))
	}

	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	var req reactToCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.ReactToComment(c.UserContext(), id, userID, req.Tag)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}
