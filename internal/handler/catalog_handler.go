package handler

import (
	"errors"

	"go-salon-ws/internal/model"
	"go-salon-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CreateService adds a bookable service to the store catalog
// POST /api/v1/services
func (h *CatalogHandler) CreateService(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	var svc model.Service
	if err := c.BodyParser(&svc); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	svc.StoreID = storeID

	actorID, _ := c.Locals("user_id").(string)
	if err := h.catalogService.CreateService(c.Context(), &svc, actorID); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(svc)
}

// UpdateService edits a service
// PUT /api/v1/services/:id
func (h *CatalogHandler) UpdateService(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid service ID"})
	}

	var svc model.Service
	if err := c.BodyParser(&svc); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actorID, _ := c.Locals("user_id").(string)
	updated, err := h.catalogService.UpdateService(c.Context(), id, &svc, actorID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(updated)
}

// ListServices returns the store's service catalog
// GET /api/v1/services
func (h *CatalogHandler) ListServices(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	services, err := h.catalogService.ListServices(c.Context(), storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch services"})
	}

	return c.JSON(fiber.Map{"services": services})
}

// CreateProduct adds a retail product
// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	product.StoreID = storeID

	actorID, _ := c.Locals("user_id").(string)
	if err := h.catalogService.CreateProduct(c.Context(), &product, actorID); err != nil {
		if errors.Is(err, service.ErrSKUExists) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(product)
}

// UpdateProduct edits a product
// PUT /api/v1/products/:id
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actorID, _ := c.Locals("user_id").(string)
	updated, err := h.catalogService.UpdateProduct(c.Context(), id, &product, actorID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(updated)
}

// ListProducts returns the store's product inventory
// GET /api/v1/products
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	products, err := h.catalogService.ListProducts(c.Context(), storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch products"})
	}

	return c.JSON(fiber.Map{"products": products})
}

// CreateCustomer registers a customer
// POST /api/v1/customers
func (h *CatalogHandler) CreateCustomer(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	var customer model.Customer
	if err := c.BodyParser(&customer); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	customer.StoreID = storeID

	actorID, _ := c.Locals("user_id").(string)
	if err := h.catalogService.CreateCustomer(c.Context(), &customer, actorID); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(customer)
}

// ListCustomers returns the store's customers
// GET /api/v1/customers
func (h *CatalogHandler) ListCustomers(c *fiber.Ctx) error {
	storeID, err := storeIDFromLocals(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No store assigned"})
	}

	customers, err := h.catalogService.ListCustomers(c.Context(), storeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch customers"})
	}

	return c.JSON(fiber.Map{"customers": customers})
}
