package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromoCode grants a percentage discount at checkout. The discount amount is
// always derived from the current subtotal at the moment of application, never
// stored as a fixed figure.
type PromoCode struct {
	BaseModel
	StoreID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"store_id" validate:"uuid_required"`
	Code      string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code" validate:"required"`
	Percent   decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percent"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// Usable reports whether the promo can still be applied
func (p *PromoCode) Usable(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.ExpiresAt != nil && p.ExpiresAt.Before(now) {
		return false
	}
	return true
}

// MembershipPlan defines a purchasable membership tier
type MembershipPlan struct {
	BaseModel
	StoreID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"store_id" validate:"uuid_required"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	DurationDays    int             `gorm:"not null" json:"duration_days" validate:"required,gt=0"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"discount_percent"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
}

type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipExpired   MembershipStatus = "expired"
	MembershipCancelled MembershipStatus = "cancelled"
)

// Membership is a customer's enrollment in a plan
type Membership struct {
	BaseModel
	StoreID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"store_id"`
	CustomerID uuid.UUID       `gorm:"type:uuid;index;not null" json:"customer_id" validate:"uuid_required"`
	Customer   *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	PlanID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"plan_id" validate:"uuid_required"`
	Plan       *MembershipPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`

	StartsAt  time.Time        `gorm:"not null" json:"starts_at"`
	ExpiresAt time.Time        `gorm:"not null;index" json:"expires_at"`
	Status    MembershipStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
}
