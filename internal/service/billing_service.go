package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"go-salon-ws/internal/billing"
	"go-salon-ws/internal/model"
	"go-salon-ws/internal/notifier"
	"go-salon-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAppointmentNotReady = errors.New("appointment is not ready for billing")
	ErrAppointmentHasBill  = errors.New("appointment is already billed")
	ErrPromoNotFound       = errors.New("promo code not found")
	ErrPromoUnusable       = errors.New("promo code is inactive or expired")
	ErrTransactionNotSaved = errors.New("failed to record transaction")
)

// ValidationError carries the field-level failures that block a checkout
// submission. It never reaches the remote store.
type ValidationError struct {
	Fields []billing.FieldError
}

func (e *ValidationError) Error() string {
	return "checkout validation failed"
}

type ExtraItemRequest struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price"`
}

type CheckoutRequest struct {
	AppointmentID   uuid.UUID           `json:"appointment_id" validate:"uuid_required"`
	ExtraItems      []ExtraItemRequest  `json:"extra_items"`
	DiscountPercent decimal.Decimal     `json:"discount_percent"`
	PromoCode       string              `json:"promo_code"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	ReferenceID     string              `json:"reference_id"`
	Notes           string              `json:"notes"`
}

// CheckoutResponse returns the committed transaction plus the reconciled
// store-wide list, so the caller reflects the new state without a reload.
// Warning reports a failed invoice delivery; the transaction itself stands.
type CheckoutResponse struct {
	Transaction  model.Transaction   `json:"transaction"`
	Transactions []model.Transaction `json:"transactions"`
	Warning      string              `json:"warning,omitempty"`
}

type BillingService interface {
	Checkout(ctx context.Context, storeID uuid.UUID, req *CheckoutRequest, actorID string) (*CheckoutResponse, error)
	ListTransactions(ctx context.Context, storeID uuid.UUID) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
}

type billingService struct {
	apptRepo    repository.AppointmentRepository
	serviceRepo repository.ServiceRepository
	txRepo      repository.TransactionRepository
	promoRepo   repository.PromoRepository
	storeRepo   repository.StoreRepository
	txManager   repository.TransactionManager
	invoices    notifier.Sender
	broadcast   chan<- []byte
}

func NewBillingService(
	apptRepo repository.AppointmentRepository,
	serviceRepo repository.ServiceRepository,
	txRepo repository.TransactionRepository,
	promoRepo repository.PromoRepository,
	storeRepo repository.StoreRepository,
	txManager repository.TransactionManager,
	invoices notifier.Sender,
	broadcast chan<- []byte,
) BillingService {
	return &billingService{
		apptRepo:    apptRepo,
		serviceRepo: serviceRepo,
		txRepo:      txRepo,
		promoRepo:   promoRepo,
		storeRepo:   storeRepo,
		txManager:   txManager,
		invoices:    invoices,
		broadcast:   broadcast,
	}
}

// Checkout computes a consistent billing snapshot, commits it, and folds the
// accepted result back into the returned transaction list. The invoice
// delivery side effect sits outside the transactional boundary: its failure
// is logged and surfaced as a warning only.
func (s *billingService) Checkout(ctx context.Context, storeID uuid.UUID, req *CheckoutRequest, actorID string) (*CheckoutResponse, error) {
	// 1. Resolve the appointment; extras are immutable once billed
	appointment, err := s.apptRepo.FindByID(ctx, req.AppointmentID)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	switch appointment.Status {
	case model.AppointmentBilled:
		return nil, ErrAppointmentHasBill
	case model.AppointmentRunning, model.AppointmentCompleted:
	default:
		return nil, ErrAppointmentNotReady
	}

	// 2. Resolve the base service
	baseService := appointment.Service
	if baseService == nil {
		baseService, err = s.serviceRepo.FindByID(ctx, appointment.ServiceID)
		if err != nil {
			return nil, fmt.Errorf("base service not found: %w", err)
		}
	}

	// 3. Discount percent: a promo code always derives from the current
	// subtotal; it never overrides a stored figure
	discountPercent := req.DiscountPercent
	if req.PromoCode != "" {
		promo, err := s.promoRepo.FindByCode(ctx, storeID, req.PromoCode)
		if err != nil {
			return nil, ErrPromoNotFound
		}
		if !promo.Usable(time.Now()) {
			return nil, ErrPromoUnusable
		}
		discountPercent = promo.Percent
	}

	// 4. Validation gate before submission
	if fields := billing.ValidateCheckout(req.PaymentMethod, req.ReferenceID, discountPercent); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	// 5. Compute the snapshot
	extraPrices := make([]decimal.Decimal, len(req.ExtraItems))
	items := make([]model.TransactionItem, len(req.ExtraItems))
	for i, extra := range req.ExtraItems {
		extraPrices[i] = extra.Price
		items[i] = model.TransactionItem{Name: extra.Name, Price: extra.Price}
	}
	subtotal := billing.Subtotal(baseService.Price, extraPrices)
	discountAmount := billing.DiscountAmount(subtotal, discountPercent)
	totalDue := billing.TotalDue(subtotal, discountAmount, req.TaxAmount)

	invoiceNumber, err := s.generateInvoiceNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	transaction := model.Transaction{
		BaseModel:       model.BaseModel{ID: uuid.New(), CreatedBy: actorID, UpdatedBy: actorID},
		StoreID:         storeID,
		AppointmentID:   appointment.ID,
		ServiceName:     baseService.Name,
		ServicePrice:    baseService.Price,
		ExtraItems:      items,
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		TaxAmount:       req.TaxAmount,
		TotalAmount:     totalDue,
		PaymentMethod:   req.PaymentMethod,
		ReferenceID:     req.ReferenceID,
		Status:          model.TransactionPaid,
		InvoiceNumber:   invoiceNumber,
		Notes:           req.Notes,
	}

	// 6. Commit record and appointment state together: no partial-commit state
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.txRepo.Create(txCtx, &transaction); err != nil {
			return err
		}
		appointment.Status = model.AppointmentBilled
		appointment.UpdatedBy = actorID
		return s.apptRepo.Update(txCtx, appointment)
	})
	if err != nil {
		log.Printf("Warning: checkout commit failed for appointment %s: %v", appointment.ID, err)
		return nil, ErrTransactionNotSaved
	}

	// 7. Reconcile: re-fetch the store list so displayed state matches the
	// accepted write
	transactions, err := s.txRepo.FindByStore(ctx, storeID)
	if err != nil {
		log.Printf("Warning: transaction list refresh failed for store %s: %v", storeID, err)
		transactions = []model.Transaction{transaction}
	}

	resp := &CheckoutResponse{Transaction: transaction, Transactions: transactions}

	// 8. Best-effort invoice delivery; never rolls back the committed record
	if err := s.deliverInvoice(ctx, storeID, appointment, &transaction); err != nil {
		log.Printf("Warning: invoice delivery failed for %s: %v", invoiceNumber, err)
		resp.Warning = "Transaction recorded, but invoice delivery failed"
	}

	// 9. Broadcast so open dashboards refresh
	go func() {
		payload := map[string]interface{}{
			"type":           "transaction_created",
			"transaction_id": transaction.ID.String(),
			"store_id":       storeID.String(),
			"invoice_number": invoiceNumber,
			"total_amount":   totalDue.StringFixed(2),
		}
		msg, _ := json.Marshal(payload)
		s.broadcast <- msg
	}()

	return resp, nil
}

func (s *billingService) ListTransactions(ctx context.Context, storeID uuid.UUID) ([]model.Transaction, error) {
	return s.txRepo.FindByStore(ctx, storeID)
}

func (s *billingService) GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return s.txRepo.FindByID(ctx, id)
}

func (s *billingService) generateInvoiceNumber(ctx context.Context) (string, error) {
	today := time.Now().Format("20060102")
	prefix := "INV-" + today + "-"

	count, err := s.txRepo.CountByInvoicePrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *billingService) deliverInvoice(ctx context.Context, storeID uuid.UUID, appointment *model.Appointment, tx *model.Transaction) error {
	storeName := ""
	if store, err := s.storeRepo.FindByID(ctx, storeID); err == nil {
		storeName = store.Name
	}

	summary := notifier.InvoiceSummary{
		InvoiceNumber: tx.InvoiceNumber,
		StoreName:     storeName,
		Subtotal:      tx.Subtotal,
		Discount:      tx.DiscountAmount,
		Tax:           tx.TaxAmount,
		Total:         tx.TotalAmount,
		PaymentMethod: string(tx.PaymentMethod),
	}
	if appointment.Customer != nil {
		summary.CustomerName = appointment.Customer.FullName
		summary.CustomerPhone = appointment.Customer.PhoneNumber
	}
	summary.Lines = append(summary.Lines, notifier.InvoiceLine{Name: tx.ServiceName, Price: tx.ServicePrice})
	for _, item := range tx.ExtraItems {
		summary.Lines = append(summary.Lines, notifier.InvoiceLine{Name: item.Name, Price: item.Price})
	}

	return s.invoices.SendInvoice(ctx, summary)
}
