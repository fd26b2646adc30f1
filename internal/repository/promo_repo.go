package repository

import (
	"context"
	"time"

	"go-salon-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error)
	FindByCode(ctx context.Context, storeID uuid.UUID, code string) (*model.PromoCode, error)
	FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.PromoCode, error)
	Create(ctx context.Context, promo *model.PromoCode) error
	Update(ctx context.Context, promo *model.PromoCode) error
}

type promoRepo struct {
	db *gorm.DB
}

func NewPromoRepo(db *gorm.DB) PromoRepository {
	return &promoRepo{db}
}

func (r *promoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error) {
	var promo model.PromoCode
	if err := GetDB(ctx, r.db).First(&promo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *promoRepo) FindByCode(ctx context.Context, storeID uuid.UUID, code string) (*model.PromoCode, error) {
	var promo model.PromoCode
	if err := GetDB(ctx, r.db).Where("store_id = ? AND code = ?", storeID, code).First(&promo).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *promoRepo) FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.PromoCode, error) {
	var promos []model.PromoCode
	err := GetDB(ctx, r.db).Where("store_id = ?", storeID).Order("created_at DESC").Find(&promos).Error
	return promos, err
}

func (r *promoRepo) Create(ctx context.Context, promo *model.PromoCode) error {
	return GetDB(ctx, r.db).Create(promo).Error
}

func (r *promoRepo) Update(ctx context.Context, promo *model.PromoCode) error {
	return GetDB(ctx, r.db).Save(promo).Error
}

type MembershipRepository interface {
	FindPlanByID(ctx context.Context, id uuid.UUID) (*model.MembershipPlan, error)
	FindPlansByStore(ctx context.Context, storeID uuid.UUID) ([]model.MembershipPlan, error)
	CreatePlan(ctx context.Context, plan *model.MembershipPlan) error
	UpdatePlan(ctx context.Context, plan *model.MembershipPlan) error

	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Membership, error)
	FindActiveByCustomer(ctx context.Context, customerID uuid.UUID, now time.Time) (*model.Membership, error)
	Create(ctx context.Context, membership *model.Membership) error
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type membershipRepo struct {
	db *gorm.DB
}

func NewMembershipRepo(db *gorm.DB) MembershipRepository {
	return &membershipRepo{db}
}

func (r *membershipRepo) FindPlanByID(ctx context.Context, id uuid.UUID) (*model.MembershipPlan, error) {
	var plan model.MembershipPlan
	if err := GetDB(ctx, r.db).First(&plan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *membershipRepo) FindPlansByStore(ctx context.Context, storeID uuid.UUID) ([]model.MembershipPlan, error) {
	var plans []model.MembershipPlan
	err := GetDB(ctx, r.db).Where("store_id = ?", storeID).Order("price ASC").Find(&plans).Error
	return plans, err
}

func (r *membershipRepo) CreatePlan(ctx context.Context, plan *model.MembershipPlan) error {
	return GetDB(ctx, r.db).Create(plan).Error
}

func (r *membershipRepo) UpdatePlan(ctx context.Context, plan *model.MembershipPlan) error {
	return GetDB(ctx, r.db).Save(plan).Error
}

func (r *membershipRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Membership, error) {
	var memberships []model.Membership
	err := GetDB(ctx, r.db).Preload("Plan").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&memberships).Error
	return memberships, err
}

func (r *membershipRepo) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID, now time.Time) (*model.Membership, error) {
	var membership model.Membership
	err := GetDB(ctx, r.db).Preload("Plan").
		Where("customer_id = ? AND status = ? AND expires_at > ?", customerID, model.MembershipActive, now).
		Order("expires_at DESC").
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepo) Create(ctx context.Context, membership *model.Membership) error {
	return GetDB(ctx, r.db).Create(membership).Error
}

// ExpireDue flips active memberships whose expiry has passed. Run by the
// scheduled sweeper.
func (r *membershipRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Membership{}).
		Where("status = ? AND expires_at <= ?", model.MembershipActive, now).
		Update("status", model.MembershipExpired)
	return res.RowsAffected, res.Error
}
