package controller

import (
	"sales-assistant-be/internal/dto"
	"sales-assistant-be/internal/pkg/serverutils"
	"sales-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOrderController interface {
	RegisterRoutes(r fiber.Router)
	ByPhone(ctx *fiber.Ctx) error
}

type orderController struct {
	service service.IAssistantService
	auth    fiber.Handler
}

func NewOrderController(service service.IAssistantService, auth fiber.Handler) IOrderController {
	return &orderController{service: service, auth: auth}
}

func (c *orderController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/orders/v1")
	if c.auth != nil {
		h.Use(c.auth)
	}
	h.Get("", c.ByPhone)
}

func (c *orderController) ByPhone(ctx *fiber.Ctx) error {
	var req dto.OrdersByPhoneRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.OrdersByPhone(ctx.UserContext(), req.Phone)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get orders", res))
}
