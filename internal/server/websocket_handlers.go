package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"koinonia/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const wsTicketTTL = 30 * time.Second

// IssueWSTicket mints a short-lived single-use ticket for the WebSocket
// handshake. Browsers cannot set an Authorization header on the upgrade
// request, so the client exchanges its JWT for a ticket here and passes it as
// a query param.
// @Summary Issue a WebSocket ticket
// @Tags realtime
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(fmt.Errorf("realtime unavailable")))
	}

	ticket := uuid.NewString()
	key := fmt.Sprintf("ws_ticket:%s", ticket)
	if err := s.redis.Set(c.Context(), key, fmt.Sprintf("%d", userID), wsTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// WebsocketHandler upgrades the connection and attaches it to the hub. The
// preceding AuthRequired middleware has already validated the ticket and set
// userID in locals.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	handler := websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			slog.Warn("websocket registration rejected",
				slog.Uint64("user_id", uint64(userID)), slog.Any("error", err))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
			_ = conn.Close()
			return
		}

		// The ticket has served its purpose once the upgrade completes.
		s.consumeWSTicket(context.Background(), conn.Locals("wsTicket"))

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if err := upgrade(c); err != nil {
			return err
		}
		return handler(c)
	}
}
