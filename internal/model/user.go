package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role codes as constants
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User represents an authenticated user in the system
type User struct {
	BaseModel
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName    string     `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	PhoneNumber string     `gorm:"type:varchar(20)" json:"phone_number"`
	Role        string     `gorm:"type:varchar(20);default:'staff'" json:"role" validate:"omitempty,oneof=admin staff"`
	StoreID     *uuid.UUID `gorm:"type:uuid;index" json:"store_id,omitempty"`
	Store       *Store     `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	Profile     JSONB      `gorm:"type:jsonb;default:'{}'" json:"profile"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`

	TokenVersion string     `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	PhoneNumber string     `json:"phone_number"`
	Role        string     `json:"role"`
	StoreID     *uuid.UUID `json:"store_id,omitempty"`
	Profile     JSONB      `json:"profile"`
	IsActive    bool       `json:"is_active"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
	Permissions []string   `json:"permissions"`
}

// ToResponse converts User to UserResponse. Permission codes are stored in a
// separate assignment table, so the caller supplies them.
func (u *User) ToResponse(permissions []string) UserResponse {
	if permissions == nil {
		permissions = []string{}
	}
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		StoreID:     u.StoreID,
		Profile:     u.Profile,
		IsActive:    u.IsActive,
		LastSeenAt:  u.LastSeenAt,
		Permissions: permissions,
	}
}
