package handler

import (
	"errors"

	"go-salon-ws/internal/model"
	"go-salon-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PromoHandler struct {
	promoService service.PromoService
}

func NewPromoHandler(promoService service.PromoService) *PromoHandler {
	return &PromoHandler{promoService: promoService}
}

// CreatePromo adds a promo code
// POST /api/v1/promos
func (h *PromoHandler) CreatePromo(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	var promo model.PromoCode
	if err := c.BodyParser(&promo); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	promo.StoreID = storeID

	actorID, _ := c.Locals("user_id").(string)
	if err := h.promoService.CreatePromo(c.Context(), &promo, actorID); err != nil {
		if errors.Is(err, service.ErrPromoCodeExists) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(promo)
}

// UpdatePromo edits a promo code
// PUT /api/v1/promos/:id
func (h *PromoHandler) UpdatePromo(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid promo ID"})
	}

	var promo model.PromoCode
	if err := c.BodyParser(&promo); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actorID, _ := c.Locals("user_id").(string)
	updated, err := h.promoService.UpdatePromo(c.Context(), id, &promo, actorID)
	if err != nil {
		if errors.Is(err, service.ErrPromoNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(updated)
}

// ListPromos returns the store's promo codes
// GET /api/v1/promos
func (h *PromoHandler) ListPromos(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	promos, err := h.promoService.ListPromos(c.Context(), storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch promos"})
	}

	return c.JSON(fiber.Map{"promos": promos})
}

// ApplyPromoRequest quotes a promo against the caller's current subtotal
type ApplyPromoRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// ApplyPromo quotes the discount a code yields for the given subtotal
// POST /api/v1/promos/apply
func (h *PromoHandler) ApplyPromo(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	var req ApplyPromoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Promo code is required"})
	}

	quote, err := h.promoService.ApplyPromo(c.Context(), storeID, req.Code, req.Subtotal)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrPromoUnusable):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(quote)
}

// CreatePlan adds a membership plan
// POST /api/v1/memberships/plans
func (h *PromoHandler) CreatePlan(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	var plan model.MembershipPlan
	if err := c.BodyParser(&plan); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	plan.StoreID = storeID

	actorID, _ := c.Locals("user_id").(string)
	if err := h.promoService.CreatePlan(c.Context(), &plan, actorID); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(plan)
}

// ListPlans returns the store's membership plans
// GET /api/v1/memberships/plans
func (h *PromoHandler) ListPlans(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	plans, err := h.promoService.ListPlans(c.Context(), storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch plans"})
	}

	return c.JSON(fiber.Map{"plans": plans})
}

// EnrollRequest enrolls a customer into a membership plan
type EnrollRequest struct {
	CustomerID uuid.UUID `json:"customer_id"`
	PlanID     uuid.UUID `json:"plan_id"`
}

// Enroll creates an active membership for a customer
// POST /api/v1/memberships
func (h *PromoHandler) Enroll(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.CustomerID == uuid.Nil || req.PlanID == uuid.Nil {
		return c.Status(400).JSON(fiber.Map{"error": "customer_id and plan_id are required"})
	}

	actorID, _ := c.Locals("user_id").(string)
	membership, err := h.promoService.Enroll(c.Context(), storeID, req.CustomerID, req.PlanID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCustomerNotFound), errors.Is(err, service.ErrPlanNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrPlanInactive), errors.Is(err, service.ErrAlreadyEnrolled):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.Status(201).JSON(membership)
}

// ListMemberships returns a customer's membership history
// GET /api/v1/memberships/customer/:customerId
func (h *PromoHandler) ListMemberships(c *fiber.Ctx) error {
	customerID, err := uuid.Parse(c.Params("customerId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	memberships, err := h.promoService.ListMemberships(c.Context(), customerID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch memberships"})
	}

	return c.JSON(fiber.Map{"memberships": memberships})
}
