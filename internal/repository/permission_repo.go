package repository

import (
	"context"

	"go-salon-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PermissionRepository covers the authoritative catalog and the per-user
// assignment rows. Assignments are only ever replaced wholesale, never patched.
type PermissionRepository interface {
	FindAll(ctx context.Context) ([]model.Permission, error)
	FindByCodes(ctx context.Context, codes []string) ([]model.Permission, error)
	SeedDefaults(ctx context.Context) error

	CodesForUserStore(ctx context.Context, userID, storeID uuid.UUID) ([]string, error)
	DeleteAssignments(ctx context.Context, userID, storeID uuid.UUID) error
	CreateAssignments(ctx context.Context, assignments []model.UserPermission) error
}

type permissionRepo struct {
	db *gorm.DB
}

func NewPermissionRepo(db *gorm.DB) PermissionRepository {
	return &permissionRepo{db}
}

func (r *permissionRepo) FindAll(ctx context.Context) ([]model.Permission, error) {
	var permissions []model.Permission
	if err := GetDB(ctx, r.db).Find(&permissions).Error; err != nil {
		return nil, err
	}
	return permissions, nil
}

func (r *permissionRepo) FindByCodes(ctx context.Context, codes []string) ([]model.Permission, error) {
	var permissions []model.Permission
	if len(codes) == 0 {
		return permissions, nil
	}
	if err := GetDB(ctx, r.db).Where("code IN ?", codes).Find(&permissions).Error; err != nil {
		return nil, err
	}
	return permissions, nil
}

// SeedDefaults creates catalog rows that don't exist yet
func (r *permissionRepo) SeedDefaults(ctx context.Context) error {
	db := GetDB(ctx, r.db)
	for _, p := range model.DefaultPermissions {
		var existing model.Permission
		if err := db.Where("code = ?", p.Code).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := db.Create(&p).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *permissionRepo) CodesForUserStore(ctx context.Context, userID, storeID uuid.UUID) ([]string, error) {
	var codes []string
	err := GetDB(ctx, r.db).
		Model(&model.UserPermission{}).
		Joins("JOIN permissions ON permissions.id = user_permissions.permission_id").
		Where("user_permissions.user_id = ? AND user_permissions.store_id = ?", userID, storeID).
		Pluck("permissions.code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *permissionRepo) DeleteAssignments(ctx context.Context, userID, storeID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Delete(&model.UserPermission{}).Error
}

func (r *permissionRepo) CreateAssignments(ctx context.Context, assignments []model.UserPermission) error {
	if len(assignments) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&assignments).Error
}
