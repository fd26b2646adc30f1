package repository

import (
	"context"

	"go-salon-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error)
	FindAll(ctx context.Context) ([]model.Store, error)
	Create(ctx context.Context, store *model.Store) error
	Update(ctx context.Context, store *model.Store) error
}

type storeRepo struct {
	db *gorm.DB
}

func NewStoreRepo(db *gorm.DB) StoreRepository {
	return &storeRepo{db}
}

func (r *storeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	var store model.Store
	if err := GetDB(ctx, r.db).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) FindAll(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	if err := GetDB(ctx, r.db).Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *storeRepo) Create(ctx context.Context, store *model.Store) error {
	return GetDB(ctx, r.db).Create(store).Error
}

func (r *storeRepo) Update(ctx context.Context, store *model.Store) error {
	return GetDB(ctx, r.db).Save(store).Error
}
