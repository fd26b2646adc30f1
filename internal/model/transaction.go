package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

const TransactionPaid = "paid"

// Transaction is the billing record created when staff finalizes an
// appointment. It is never deleted; once created it is only read back for
// display and invoice generation.
type Transaction struct {
	BaseModel
	StoreID       uuid.UUID    `gorm:"type:uuid;index;not null" json:"store_id"`
	AppointmentID uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null" json:"appointment_id"`
	Appointment   *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`

	// Snapshot of the base service at billing time
	ServiceName  string          `gorm:"type:varchar(255);not null" json:"service_name"`
	ServicePrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"service_price"`

	ExtraItems []TransactionItem `gorm:"foreignKey:TransactionID" json:"extra_items,omitempty"`

	Subtotal        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"discount_amount"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"tax_amount"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	ReferenceID   string        `gorm:"type:varchar(100)" json:"reference_id"` // required for non-cash
	Status        string        `gorm:"type:varchar(20);default:'paid'" json:"status"`
	InvoiceNumber string        `gorm:"type:varchar(50);uniqueIndex" json:"invoice_number"`
	Notes         string        `gorm:"type:text" json:"notes"`
}

// TransactionItem is an extra-service line item. Immutable once the parent
// transaction is created (transactions are only ever created with status paid).
type TransactionItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TransactionID uuid.UUID       `gorm:"type:uuid;index;not null" json:"transaction_id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}
