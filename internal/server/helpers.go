package server

import (
	"context"
	"log/slog"
	"strconv"

	"koinonia/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts and validates a positive integer path parameter.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + param + " parameter")
	}
	return uint(id), nil
}

// parseContentType extracts the :type path parameter and validates it against
// the closed content-type set.
func parseContentType(c *fiber.Ctx) (models.ContentType, error) {
	ct := models.ContentType(c.Params("type"))
	if !models.ValidContentType(ct) {
		return "", models.NewValidationError("Unknown content type")
	}
	return ct, nil
}

// statusForError maps application error codes to HTTP statuses. Unauthorized
// from a service is an ownership failure on an authenticated request, so it
// maps to 403; the auth middleware answers 401 on its own.
func statusForError(err error) int {
	appErr, ok := err.(*models.AppError)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation, models.CodeInvalidOperation:
		return fiber.StatusBadRequest
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeUnauthorized:
		return fiber.StatusForbidden
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondServiceError writes a service-layer error with the mapped status.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusForError(err), err)
}

// notifyUser is the Notify callback injected into services. It fans out via
// the local hub and the cross-instance Redis channel.
func (s *Server) notifyUser(ctx context.Context, userID uint, payload string) {
	if s.hub != nil {
		s.hub.Broadcast(userID, payload)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishUser(ctx, userID, payload); err != nil {
			slog.WarnContext(ctx, "failed to publish user notification",
				slog.Uint64("user_id", uint64(userID)), slog.Any("error", err))
		}
	}
}

func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	return s.userRepo.IsAdmin(ctx, userID)
}
