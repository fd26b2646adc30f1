package handler

import (
	"errors"

	"go-salon-ws/internal/model"
	"go-salon-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AppointmentHandler struct {
	appointmentService service.AppointmentService
}

func NewAppointmentHandler(appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// Create books a new appointment
// POST /api/v1/appointments
func (h *AppointmentHandler) Create(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	var appointment model.Appointment
	if err := c.BodyParser(&appointment); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	appointment.StoreID = storeID

	actorID, _ := c.Locals("user_id").(string)
	if err := h.appointmentService.Create(c.Context(), &appointment, actorID); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(appointment)
}

// List returns the store's appointments, optionally filtered by status
// GET /api/v1/appointments?status=running
func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	status := model.AppointmentStatus(c.Query("status"))

	appointments, err := h.appointmentService.List(c.Context(), storeID, status)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch appointments"})
	}

	return c.JSON(fiber.Map{"appointments": appointments})
}

// Get returns one appointment
// GET /api/v1/appointments/:id
func (h *AppointmentHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid appointment ID"})
	}

	appointment, err := h.appointmentService.Get(c.Context(), id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Appointment not found"})
	}

	return c.JSON(appointment)
}

// UpdateStatusRequest carries the requested status transition
type UpdateStatusRequest struct {
	Status model.AppointmentStatus `json:"status"`
}

// UpdateStatus moves an appointment through its lifecycle
// PATCH /api/v1/appointments/:id/status
func (h *AppointmentHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid appointment ID"})
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actorID, _ := c.Locals("user_id").(string)
	appointment, err := h.appointmentService.UpdateStatus(c.Context(), id, req.Status, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAppointmentNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidTransition):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(appointment)
}
