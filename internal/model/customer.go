package model

import "github.com/google/uuid"

// Customer belongs to a single store
type Customer struct {
	BaseModel
	StoreID     uuid.UUID `gorm:"type:uuid;index;not null" json:"store_id" validate:"uuid_required"`
	FullName    string    `gorm:"type:varchar(255);not null" json:"full_name" validate:"required"`
	PhoneNumber string    `gorm:"type:varchar(20);index" json:"phone_number"`
	Email       string    `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Notes       string    `gorm:"type:text" json:"notes"`
}
