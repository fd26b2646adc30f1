package repository

import (
	"context"
	"time"

	"go-salon-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	FindByStore(ctx context.Context, storeID uuid.UUID, status model.AppointmentStatus) ([]model.Appointment, error)
	Create(ctx context.Context, appointment *model.Appointment) error
	Update(ctx context.Context, appointment *model.Appointment) error
	CountScheduledBetween(ctx context.Context, storeID uuid.UUID, start, end time.Time) (int64, error)
}

type appointmentRepo struct {
	db *gorm.DB
}

func NewAppointmentRepo(db *gorm.DB) AppointmentRepository {
	return &appointmentRepo{db}
}

func (r *appointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	err := GetDB(ctx, r.db).
		Preload("Customer").Preload("Service").Preload("Staff").
		First(&appointment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepo) FindByStore(ctx context.Context, storeID uuid.UUID, status model.AppointmentStatus) ([]model.Appointment, error) {
	var appointments []model.Appointment
	q := GetDB(ctx, r.db).
		Preload("Customer").Preload("Service").Preload("Staff").
		Where("store_id = ?", storeID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("scheduled_at DESC").Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepo) Create(ctx context.Context, appointment *model.Appointment) error {
	return GetDB(ctx, r.db).Create(appointment).Error
}

func (r *appointmentRepo) Update(ctx context.Context, appointment *model.Appointment) error {
	return GetDB(ctx, r.db).Save(appointment).Error
}

func (r *appointmentRepo) CountScheduledBetween(ctx context.Context, storeID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Appointment{}).
		Where("store_id = ? AND scheduled_at BETWEEN ? AND ?", storeID, start, end).
		Count(&count).Error
	return count, err
}
