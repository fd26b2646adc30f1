package model

import "time"

// Store represents a salon location. License fields are the authoritative
// source for the license gate; there is no client write path to them.
type Store struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Address  string `gorm:"type:text" json:"address"`
	Phone    string `gorm:"type:varchar(20)" json:"phone"`
	Settings JSONB  `gorm:"type:jsonb;default:'{}'" json:"settings"`

	LicenseActive    bool       `gorm:"default:true" json:"license_active"`
	LicenseExpiresAt *time.Time `json:"license_expires_at,omitempty"`
	LicenseReason    string     `gorm:"type:varchar(255)" json:"license_reason"`
}
