package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-salon-ws/internal/model"
	"go-salon-ws/internal/repository"
	"go-salon-ws/pkg/validator"

	"github.com/google/uuid"
)

var ErrSKUExists = errors.New("SKU already exists")

// CatalogService manages the store's bookable services, retail products, and
// customer records
type CatalogService interface {
	CreateService(ctx context.Context, svc *model.Service, actorID string) error
	UpdateService(ctx context.Context, id uuid.UUID, svc *model.Service, actorID string) (*model.Service, error)
	ListServices(ctx context.Context, storeID uuid.UUID) ([]model.Service, error)

	CreateProduct(ctx context.Context, product *model.Product, actorID string) error
	UpdateProduct(ctx context.Context, id uuid.UUID, product *model.Product, actorID string) (*model.Product, error)
	ListProducts(ctx context.Context, storeID uuid.UUID) ([]model.Product, error)

	CreateCustomer(ctx context.Context, customer *model.Customer, actorID string) error
	ListCustomers(ctx context.Context, storeID uuid.UUID) ([]model.Customer, error)
}

type catalogService struct {
	serviceRepo  repository.ServiceRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	broadcast    chan<- []byte
}

func NewCatalogService(
	serviceRepo repository.ServiceRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	broadcast chan<- []byte,
) CatalogService {
	return &catalogService{
		serviceRepo:  serviceRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		broadcast:    broadcast,
	}
}

func (s *catalogService) CreateService(ctx context.Context, svc *model.Service, actorID string) error {
	if errs := validator.ValidateStruct(svc); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}
	svc.CreatedBy = actorID
	svc.UpdatedBy = actorID
	return s.serviceRepo.Create(ctx, svc)
}

func (s *catalogService) UpdateService(ctx context.Context, id uuid.UUID, svc *model.Service, actorID string) (*model.Service, error) {
	existing, err := s.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("service not found")
	}

	existing.Name = svc.Name
	existing.Description = svc.Description
	existing.Price = svc.Price
	existing.Duration = svc.Duration
	existing.Category = svc.Category
	existing.IsActive = svc.IsActive
	existing.UpdatedBy = actorID

	if err := s.serviceRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *catalogService) ListServices(ctx context.Context, storeID uuid.UUID) ([]model.Service, error) {
	return s.serviceRepo.FindByStore(ctx, storeID)
}

func (s *catalogService) CreateProduct(ctx context.Context, product *model.Product, actorID string) error {
	if errs := validator.ValidateStruct(product); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	// SKU uniqueness check
	existing, _ := s.productRepo.FindBySKU(ctx, product.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return ErrSKUExists
	}

	product.CreatedBy = actorID
	product.UpdatedBy = actorID
	if err := s.productRepo.Create(ctx, product); err != nil {
		return err
	}

	s.broadcastStockUpdate("product_created", product)
	return nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, product *model.Product, actorID string) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("product not found")
	}

	existing.Name = product.Name
	existing.SKU = product.SKU
	existing.Stock = product.Stock
	existing.Unit = product.Unit
	existing.Price = product.Price
	existing.UpdatedBy = actorID

	if err := s.productRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.broadcastStockUpdate("product_updated", existing)
	return existing, nil
}

func (s *catalogService) ListProducts(ctx context.Context, storeID uuid.UUID) ([]model.Product, error) {
	return s.productRepo.FindByStore(ctx, storeID)
}

func (s *catalogService) CreateCustomer(ctx context.Context, customer *model.Customer, actorID string) error {
	if errs := validator.ValidateStruct(customer); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}
	customer.CreatedBy = actorID
	customer.UpdatedBy = actorID
	return s.customerRepo.Create(ctx, customer)
}

func (s *catalogService) ListCustomers(ctx context.Context, storeID uuid.UUID) ([]model.Customer, error) {
	return s.customerRepo.FindByStore(ctx, storeID)
}

func (s *catalogService) broadcastStockUpdate(action string, product *model.Product) {
	go func() {
		payload := map[string]interface{}{
			"type":   "stock_update",
			"action": action,
			"product": map[string]interface{}{
				"id":    product.ID,
				"sku":   product.SKU,
				"name":  product.Name,
				"stock": product.Stock,
				"price": product.Price,
			},
		}
		msg, _ := json.Marshal(payload)
		s.broadcast <- msg
	}()
}
