package order

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/TheVish04/ecommerce2-sub001/internal/apperr"
	"github.com/TheVish04/ecommerce2-sub001/internal/auth"
)

// AddressResolver turns a saved address id into the shipping line the
// order snapshots. The address package's service satisfies it.
type AddressResolver interface {
	Resolve(userID, addressID int) (string, error)
}

type Handler struct {
	service   *Service
	addresses AddressResolver
}

func NewHandler(service *Service, addresses AddressResolver) *Handler {
	return &Handler{service: service, addresses: addresses}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/orders", h.createOrder)
	app.Get("/api/v1/orders", h.listOrders)
	app.Get("/api/v1/orders/:id<[0-9]+>", h.getOrder)
	app.Patch("/api/v1/orders/:id<[0-9]+>/status", h.updateStatus)
	app.Get("/api/v1/orders/:id<[0-9]+>/invoice", h.getInvoice)
	app.Get("/api/v1/orders/:id<[0-9]+>/downloads/:productId<[0-9]+>", h.getDownloadURL)
	app.Post("/api/v1/payments/initiate", h.initiatePayment)
	app.Post("/api/v1/payments/verify", h.verifyPayment)
}

type createOrderRequest struct {
	Items           []ItemInput `json:"items"`
	ShippingAddress string      `json:"shippingAddress"`
	AddressID       int         `json:"addressId"`
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(createOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	shipping := payload.ShippingAddress
	if shipping == "" && payload.AddressID > 0 && h.addresses != nil {
		shipping, err = h.addresses.Resolve(p.ID, payload.AddressID)
		if err != nil {
			return c.Status(apperr.Status(err)).JSON(fiber.Map{"message": err.Error()})
		}
	}

	created, err := h.service.CreateOrder(c.UserContext(), p, payload.Items, shipping)
	if err != nil {
		return c.Status(apperr.Status(err)).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orders, err := h.service.ListByBuyer(p.ID)
	if err != nil {
		return c.Status(apperr.Status(err)).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))

	o, err := h.service.GetOrder(id, p)
	if err != nil {
		return c.Status(apperr.Status(err)).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(o)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))

	payload := new(updateStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	o, err := h.service.UpdateStatus(id, p, payload.Status)
	if err != nil {
		return c.Status(apperr.Status(err)).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(o)
}

func (h *Handler) getInvoice(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	id, _ := strconv.Atoi(c.Params("id"))

	inv, err := h.service.Invoice(id, p)
	if err != nil {
		return c.Status(apperr.Status(err)).JSON(fiber.Map{"message": err.Error()})
	}

	// default is the structured document; html gives a printable page
	if c.Query("format") == "html" {
		html, err := RenderHTML(inv)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
		c.Set("Content-Type", fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(html)
	}
	return c.JSON(inv)
}

func (h *Handler) getDownloadURL(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orderID, _ := strconv.Atoi(c.Params("id"))
	productID, _ := strconv.Atoi(c.Params("productId"))

	url, err := h.service.GetDownloadURL(orderID, productID, p)
	if err != nil {
		return c.Status(apperr.Status(err)).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"downloadUrl": url})
}

type initiatePaymentRequest struct {
	Items []ItemInput `json:"items"`
}

func (h *Handler) initiatePayment(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(initiatePaymentRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	intent, err := h.service.InitiatePayment(c.UserContext(), p, payload.Items)
	if err != nil {
		return c.Status(apperr.Status(err)).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(intent)
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string      `json:"razorpayOrderId"`
	RazorpayPaymentID string      `json:"razorpayPaymentId"`
	Signature         string      `json:"razorpaySignature"`
	Items             []ItemInput `json:"items"`
	ShippingAddress   string      `json:"shippingAddress"`
}

func (h *Handler) verifyPayment(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(verifyPaymentRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	o, err := h.service.VerifyPayment(c.UserContext(), p,
		payload.RazorpayOrderID, payload.RazorpayPaymentID, payload.Signature,
		payload.Items, payload.ShippingAddress)
	if err != nil {
		return c.Status(apperr.Status(err)).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}
