package repository

import (
	"context"
	"time"

	"go-salon-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	FindByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Transaction, error)
	FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Transaction, error)
	Create(ctx context.Context, tx *model.Transaction) error
	CountByInvoicePrefix(ctx context.Context, prefix string) (int64, error)
	RevenueBetween(ctx context.Context, storeID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	err := GetDB(ctx, r.db).
		Preload("ExtraItems").
		Preload("Appointment").Preload("Appointment.Customer").Preload("Appointment.Service").
		First(&tx, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepo) FindByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	err := GetDB(ctx, r.db).
		Preload("ExtraItems").
		First(&tx, "appointment_id = ?", appointmentID).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepo) FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := GetDB(ctx, r.db).
		Preload("ExtraItems").
		Preload("Appointment").Preload("Appointment.Customer").
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}

// Create persists the transaction and its extra-service line items together.
// GORM cascades ExtraItems through the association.
func (r *transactionRepo) Create(ctx context.Context, tx *model.Transaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *transactionRepo) CountByInvoicePrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Transaction{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

func (r *transactionRepo) RevenueBetween(ctx context.Context, storeID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := GetDB(ctx, r.db).Model(&model.Transaction{}).
		Where("store_id = ? AND created_at BETWEEN ? AND ?", storeID, start, end).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
