package handler

import (
	"sales-assistant-be/internal/pkg/logger"
	internalWS "sales-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ChatWsHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewChatWsHandler(hub *internalWS.Hub, log logger.ILogger) *ChatWsHandler {
	return &ChatWsHandler{hub: hub, logger: log}
}

// ServeWs upgrades the request into a chat session for the authenticated
// user. Every device of that user receives every outcome.
func (h *ChatWsHandler) ServeWs(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(c *websocket.Conn) {
			h.logger.Info("ChatWsHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
			internalWS.ServeWs(h.hub, c, userID)
			h.logger.Info("ChatWsHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes mounts the websocket endpoint behind auth.
func (h *ChatWsHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/chat/v1/ws", auth, h.ServeWs)
}
