package controller

import (
	"sales-assistant-be/internal/pkg/serverutils"
	"sales-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Summary(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.IAssistantService
	auth    fiber.Handler
}

func NewSessionController(service service.IAssistantService, auth fiber.Handler) ISessionController {
	return &sessionController{service: service, auth: auth}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	if c.auth != nil {
		h.Use(c.auth)
	}
	h.Get(":user_id/summary", c.Summary)
	h.Delete(":user_id", c.Reset)
}

func (c *sessionController) Summary(ctx *fiber.Ctx) error {
	res, err := c.service.Summary(ctx.UserContext(), ctx.Params("user_id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session summary", res))
}

func (c *sessionController) Reset(ctx *fiber.Ctx) error {
	if err := c.service.Reset(ctx.UserContext(), ctx.Params("user_id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success reset session", nil))
}
