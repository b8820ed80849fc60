package controller

import (
	"sales-assistant-be/internal/dto"
	"sales-assistant-be/internal/pkg/serverutils"
	"sales-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IAssistantService
	auth    fiber.Handler
}

// NewChatController mounts the message endpoint. With a nil auth handler the
// user id is taken from the request body.
func NewChatController(service service.IAssistantService, auth fiber.Handler) IChatController {
	return &chatController{service: service, auth: auth}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	if c.auth != nil {
		h.Use(c.auth)
	}
	h.Post("/messages", c.SendMessage)
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.ProcessRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	// A token always wins over the body
	if userID, ok := ctx.Locals("user_id").(string); ok && userID != "" {
		req.UserID = userID
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Process(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process message", res))
}
