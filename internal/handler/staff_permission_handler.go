package handler

import (
	"errors"

	"go-salon-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StaffPermissionHandler struct {
	staffService service.StaffPermissionService
}

func NewStaffPermissionHandler(staffService service.StaffPermissionService) *StaffPermissionHandler {
	return &StaffPermissionHandler{staffService: staffService}
}

// ReplacePermissionsRequest carries the full desired permission set for one
// staff member. The server replaces, it does not merge.
type ReplacePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// ListStaff returns every non-admin staff member of the store with their
// current permission codes
// GET /api/v1/staff
func (h *StaffPermissionHandler) ListStaff(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	staff, err := h.staffService.ListStaff(c.Context(), storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch staff"})
	}

	return c.JSON(fiber.Map{"staff": staff})
}

// ReplacePermissions overwrites a staff member's permission set
// PUT /api/v1/staff/:id/permissions
func (h *StaffPermissionHandler) ReplacePermissions(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	staffID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid staff ID"})
	}

	var req ReplacePermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Permissions == nil {
		return c.Status(400).JSON(fiber.Map{"error": "permissions array is required"})
	}

	result, err := h.staffService.ReplacePermissions(c.Context(), storeID, staffID, req.Permissions)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStaffNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrStaffIsAdmin):
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(result)
}

// storeIDFromLocals reads the store id the auth middleware placed in context
func storeIDFromLocals(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("store_id").(string)
	return uuid.Parse(raw)
}
