package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentBooked    AppointmentStatus = "booked"
	AppointmentRunning   AppointmentStatus = "running"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentBilled    AppointmentStatus = "billed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment books a customer for a service at a store
type Appointment struct {
	BaseModel
	StoreID    uuid.UUID `gorm:"type:uuid;index;not null" json:"store_id" validate:"uuid_required"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customer_id" validate:"uuid_required"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ServiceID  uuid.UUID `gorm:"type:uuid;index;not null" json:"service_id" validate:"uuid_required"`
	Service    *Service  `gorm:"foreignKey:ServiceID" json:"service,omitempty"`

	StaffID *uuid.UUID `gorm:"type:uuid;index" json:"staff_id,omitempty"`
	Staff   *User      `gorm:"foreignKey:StaffID" json:"staff,omitempty"`

	ScheduledAt time.Time         `gorm:"not null;index" json:"scheduled_at" validate:"required"`
	Status      AppointmentStatus `gorm:"type:varchar(20);default:'booked'" json:"status"`
	Note        string            `gorm:"type:text" json:"note,omitempty"`
}

// CanTransitionTo validates appointment status transitions
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	switch a.Status {
	case AppointmentBooked:
		return next == AppointmentRunning || next == AppointmentCancelled
	case AppointmentRunning:
		return next == AppointmentCompleted || next == AppointmentCancelled
	case AppointmentCompleted:
		return next == AppointmentBilled
	default:
		return false
	}
}
