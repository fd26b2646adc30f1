package model

import "github.com/google/uuid"

// Permission is a row in the authoritative permission catalog
type Permission struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "appointment"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Appointments"
}

// UserPermission assigns one catalog permission to a user within a store.
// The full (user, store) set is replaced wholesale on every save.
type UserPermission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_store_perm,unique" json:"user_id"`
	StoreID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_store_perm,unique" json:"store_id"`
	PermissionID uint       `gorm:"not null;index:idx_user_store_perm,unique" json:"permission_id"`
	Permission   Permission `gorm:"foreignKey:PermissionID" json:"permission,omitempty"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}

// PermissionAll is the sentinel set value meaning unrestricted access.
// It is held exclusively by the admin role and is never stored in the catalog.
const PermissionAll = "all"

// DefaultPermissions is the authoritative catalog seeded at boot
var DefaultPermissions = []Permission{
	{Code: "appointment", Name: "Appointments"},
	{Code: "runningappointment", Name: "Running Appointments"},
	{Code: "appointmenthistory", Name: "Appointment History"},
	{Code: "customers", Name: "Customers"},
	{Code: "inventory", Name: "Inventory"},
	{Code: "services", Name: "Services"},
	{Code: "promos", Name: "Promo Codes"},
	{Code: "memberships", Name: "Memberships"},
	{Code: "billing", Name: "Billing"},
	{Code: "staff", Name: "Staff Management"},
	{Code: "dashboard", Name: "Dashboard"},
	{Code: "settings", Name: "Settings"},
}

// DefaultStaffPermissions is the template granted to staff who log in
// without any explicit assignment rows
var DefaultStaffPermissions = []string{
	"appointment",
	"runningappointment",
	"appointmenthistory",
	"inventory",
}
