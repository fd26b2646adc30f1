package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is a bookable salon service
type Service struct {
	BaseModel
	StoreID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"store_id" validate:"uuid_required"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration    int             `json:"duration"` // in minutes
	Category    string          `gorm:"type:varchar(100);default:'General'" json:"category"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
}
