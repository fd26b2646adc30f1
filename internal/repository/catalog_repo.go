package repository

import (
	"context"

	"go-salon-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceRepository manages the bookable service catalog per store
type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
	FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Service, error)
	Create(ctx context.Context, svc *model.Service) error
	Update(ctx context.Context, svc *model.Service) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type serviceRepo struct {
	db *gorm.DB
}

func NewServiceRepo(db *gorm.DB) ServiceRepository {
	return &serviceRepo{db}
}

func (r *serviceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var svc model.Service
	if err := GetDB(ctx, r.db).First(&svc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *serviceRepo) FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Service, error) {
	var services []model.Service
	err := GetDB(ctx, r.db).Where("store_id = ?", storeID).Order("name ASC").Find(&services).Error
	return services, err
}

func (r *serviceRepo) Create(ctx context.Context, svc *model.Service) error {
	return GetDB(ctx, r.db).Create(svc).Error
}

func (r *serviceRepo) Update(ctx context.Context, svc *model.Service) error {
	return GetDB(ctx, r.db).Save(svc).Error
}

func (r *serviceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Service{}, "id = ?", id).Error
}

// ProductRepository manages retail products per store
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Product, error)
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	LowStockCount(ctx context.Context, storeID uuid.UUID, threshold int) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Where("sku = ?", sku).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := GetDB(ctx, r.db).Where("store_id = ?", storeID).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Create(product).Error
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Save(product).Error
}

func (r *productRepo) LowStockCount(ctx context.Context, storeID uuid.UUID, threshold int) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Product{}).
		Where("store_id = ? AND stock < ?", storeID, threshold).
		Count(&count).Error
	return count, err
}

// CustomerRepository manages store customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Customer, error)
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Customer, error) {
	var customers []model.Customer
	err := GetDB(ctx, r.db).Where("store_id = ?", storeID).Order("full_name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepo) Update(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Save(customer).Error
}
