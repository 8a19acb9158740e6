package download

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TheVish04/ecommerce2-sub001/internal/apperr"
	"github.com/TheVish04/ecommerce2-sub001/internal/auth"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/downloads/revoke", h.revoke)
}

type revokeRequest struct {
	UserID    int `json:"userId"`
	ProductID int `json:"productId"`
	OrderID   int `json:"orderId"`
}

func (h *Handler) revoke(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if !p.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": apperr.ErrNotAuthorized.Error()})
	}

	payload := new(revokeRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := h.service.Revoke(payload.UserID, payload.ProductID, payload.OrderID, p.ID); err != nil {
		return c.Status(apperr.Status(err)).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "download access revoked"})
}
