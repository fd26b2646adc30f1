package handler

import (
	"go-salon-ws/internal/license"
	"go-salon-ws/internal/repository"
	"go-salon-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	licenseGate      *license.Gate
	storeRepo        repository.StoreRepository
}

func NewDashboardHandler(dashboardService service.DashboardService, gate *license.Gate, storeRepo repository.StoreRepository) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, licenseGate: gate, storeRepo: storeRepo}
}

// Summary returns today's headline numbers for the store
// GET /api/v1/dashboard/summary
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	summary, err := h.dashboardService.Summary(c.Context(), storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to build dashboard summary"})
	}

	return c.JSON(summary)
}

// LicenseStatus reports whether license-gated features are available to the
// caller's store, and why not when they are blocked
// GET /api/v1/license/status
func (h *DashboardHandler) LicenseStatus(c *fiber.Ctx) error {
	storeID, _ := c.Locals("store_id").(string)

	status := h.licenseGate.Check(c.Context(), storeID)
	return c.JSON(status)
}

// MyStore returns the caller's own store record
// GET /api/v1/stores/me
func (h *DashboardHandler) MyStore(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	store, err := h.storeRepo.FindByID(c.Context(), storeID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Store not found"})
	}

	return c.JSON(store)
}
