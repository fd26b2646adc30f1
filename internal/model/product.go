package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a retail item sold alongside salon services
type Product struct {
	BaseModel
	StoreID uuid.UUID       `gorm:"type:uuid;index;not null" json:"store_id" validate:"uuid_required"`
	SKU     string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name    string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Stock   int             `gorm:"default:0" json:"stock"`
	Unit    string          `gorm:"type:varchar(20)" json:"unit"`
	Price   decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"price"`
}
