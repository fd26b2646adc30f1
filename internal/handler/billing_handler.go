package handler

import (
	"errors"

	"go-salon-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BillingHandler struct {
	billingService service.BillingService
}

func NewBillingHandler(billingService service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// Checkout bills an appointment and records the payment
// POST /api/v1/billing/checkout
func (h *BillingHandler) Checkout(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	var req service.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actorID, _ := c.Locals("user_id").(string)

	response, err := h.billingService.Checkout(c.Context(), storeID, &req, actorID)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return c.Status(422).JSON(fiber.Map{
				"error":  "Validation failed",
				"fields": validationErr.Fields,
			})
		case errors.Is(err, service.ErrAppointmentNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrAppointmentHasBill),
			errors.Is(err, service.ErrAppointmentNotReady),
			errors.Is(err, service.ErrPromoNotFound),
			errors.Is(err, service.ErrPromoUnusable):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(response)
}

// ListTransactions returns the store's transaction history
// GET /api/v1/billing/transactions
func (h *BillingHandler) ListTransactions(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	transactions, err := h.billingService.ListTransactions(c.Context(), storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch transactions"})
	}

	return c.JSON(fiber.Map{"transactions": transactions})
}

// GetTransaction returns one transaction with its line items
// GET /api/v1/billing/transactions/:id
func (h *BillingHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	transaction, err := h.billingService.GetTransaction(c.Context(), id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Transaction not found"})
	}

	return c.JSON(transaction)
}
