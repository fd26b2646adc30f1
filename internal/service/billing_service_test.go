package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go-salon-ws/internal/model"
	"go-salon-ws/internal/notifier"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func (f *fakeAppointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return a, nil
}

func (f *fakeAppointmentRepo) FindByStore(ctx context.Context, storeID uuid.UUID, status model.AppointmentStatus) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, a := range f.appointments {
		if a.StoreID == storeID && (status == "" || a.Status == status) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	f.appointments[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) Update(ctx context.Context, a *model.Appointment) error {
	f.appointments[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) CountScheduledBetween(ctx context.Context, storeID uuid.UUID, start, end time.Time) (int64, error) {
	return int64(len(f.appointments)), nil
}

type fakeServiceRepo struct {
	services map[uuid.UUID]*model.Service
}

func (f *fakeServiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (f *fakeServiceRepo) FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Service, error) {
	var out []model.Service
	for _, s := range f.services {
		if s.StoreID == storeID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeServiceRepo) Create(ctx context.Context, s *model.Service) error {
	f.services[s.ID] = s
	return nil
}

func (f *fakeServiceRepo) Update(ctx context.Context, s *model.Service) error {
	f.services[s.ID] = s
	return nil
}

func (f *fakeServiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.services, id)
	return nil
}

type fakeTransactionRepo struct {
	transactions []model.Transaction
	failCreate   bool
}

func (f *fakeTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	for i := range f.transactions {
		if f.transactions[i].ID == id {
			return &f.transactions[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeTransactionRepo) FindByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Transaction, error) {
	for i := range f.transactions {
		if f.transactions[i].AppointmentID == appointmentID {
			return &f.transactions[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeTransactionRepo) FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, tx := range f.transactions {
		if tx.StoreID == storeID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeTransactionRepo) Create(ctx context.Context, tx *model.Transaction) error {
	if f.failCreate {
		return errors.New("insert failed")
	}
	f.transactions = append(f.transactions, *tx)
	return nil
}

func (f *fakeTransactionRepo) CountByInvoicePrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	for _, tx := range f.transactions {
		if strings.HasPrefix(tx.InvoiceNumber, prefix) {
			count++
		}
	}
	return count, nil
}

func (f *fakeTransactionRepo) RevenueBetween(ctx context.Context, storeID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range f.transactions {
		if tx.StoreID == storeID {
			total = total.Add(tx.TotalAmount)
		}
	}
	return total, nil
}

type fakePromoRepo struct {
	promos map[string]*model.PromoCode
}

func (f *fakePromoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error) {
	for _, p := range f.promos {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakePromoRepo) FindByCode(ctx context.Context, storeID uuid.UUID, code string) (*model.PromoCode, error) {
	p, ok := f.promos[code]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (f *fakePromoRepo) FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.PromoCode, error) {
	var out []model.PromoCode
	for _, p := range f.promos {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePromoRepo) Create(ctx context.Context, p *model.PromoCode) error {
	f.promos[p.Code] = p
	return nil
}

func (f *fakePromoRepo) Update(ctx context.Context, p *model.PromoCode) error {
	f.promos[p.Code] = p
	return nil
}

type fakeStoreRepo struct {
	store *model.Store
}

func (f *fakeStoreRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	if f.store == nil {
		return nil, errors.New("not found")
	}
	return f.store, nil
}

func (f *fakeStoreRepo) FindAll(ctx context.Context) ([]model.Store, error) {
	if f.store == nil {
		return nil, nil
	}
	return []model.Store{*f.store}, nil
}

func (f *fakeStoreRepo) Create(ctx context.Context, s *model.Store) error {
	f.store = s
	return nil
}

func (f *fakeStoreRepo) Update(ctx context.Context, s *model.Store) error {
	f.store = s
	return nil
}

type fakeSender struct {
	sent []notifier.InvoiceSummary
	err  error
}

func (f *fakeSender) SendInvoice(ctx context.Context, summary notifier.InvoiceSummary) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, summary)
	return nil
}

type billingFixture struct {
	storeID     uuid.UUID
	appointment *model.Appointment
	apptRepo    *fakeAppointmentRepo
	txRepo      *fakeTransactionRepo
	promoRepo   *fakePromoRepo
	sender      *fakeSender
	svc         BillingService
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	storeID := uuid.New()

	baseService := &model.Service{
		StoreID:  storeID,
		Name:     "Haircut",
		Price:    dec("300"),
		IsActive: true,
	}
	baseService.ID = uuid.New()

	appointment := &model.Appointment{
		StoreID:    storeID,
		CustomerID: uuid.New(),
		ServiceID:  baseService.ID,
		Service:    baseService,
		Status:     model.AppointmentCompleted,
	}
	appointment.ID = uuid.New()

	apptRepo := &fakeAppointmentRepo{appointments: map[uuid.UUID]*model.Appointment{appointment.ID: appointment}}
	serviceRepo := &fakeServiceRepo{services: map[uuid.UUID]*model.Service{baseService.ID: baseService}}
	txRepo := &fakeTransactionRepo{}
	promoRepo := &fakePromoRepo{promos: map[string]*model.PromoCode{}}
	storeRepo := &fakeStoreRepo{store: &model.Store{Name: "Main Salon"}}
	sender := &fakeSender{}
	broadcast := make(chan []byte, 4)

	svc := NewBillingService(apptRepo, serviceRepo, txRepo, promoRepo, storeRepo, fakeTxManager{}, sender, broadcast)
	return &billingFixture{
		storeID:     storeID,
		appointment: appointment,
		apptRepo:    apptRepo,
		txRepo:      txRepo,
		promoRepo:   promoRepo,
		sender:      sender,
		svc:         svc,
	}
}

func TestCheckoutComputesTotals(t *testing.T) {
	fx := newBillingFixture(t)

	resp, err := fx.svc.Checkout(context.Background(), fx.storeID, &CheckoutRequest{
		AppointmentID: fx.appointment.ID,
		ExtraItems: []ExtraItemRequest{
			{Name: "Head Massage", Price: dec("150")},
			{Name: "Hair Spa", Price: dec("50")},
		},
		DiscountPercent: dec("20"),
		TaxAmount:       dec("72"),
		PaymentMethod:   model.PaymentCash,
	}, "actor")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	tx := resp.Transaction
	if !tx.Subtotal.Equal(dec("500")) {
		t.Errorf("subtotal = %s, want 500", tx.Subtotal)
	}
	if !tx.DiscountAmount.Equal(dec("100")) {
		t.Errorf("discount = %s, want 100", tx.DiscountAmount)
	}
	if !tx.TotalAmount.Equal(dec("472")) {
		t.Errorf("total = %s, want 472", tx.TotalAmount)
	}
	if !strings.HasPrefix(tx.InvoiceNumber, "INV-") {
		t.Errorf("invoice number %q missing prefix", tx.InvoiceNumber)
	}
	if fx.appointment.Status != model.AppointmentBilled {
		t.Errorf("appointment status = %s, want billed", fx.appointment.Status)
	}
	if len(resp.Transactions) != 1 {
		t.Errorf("reconciled list has %d entries, want 1", len(resp.Transactions))
	}
	if resp.Warning != "" {
		t.Errorf("unexpected warning %q", resp.Warning)
	}
	if len(fx.sender.sent) != 1 {
		t.Errorf("invoice sent %d times, want 1", len(fx.sender.sent))
	}
}

func TestCheckoutNonCashWithoutReferenceRejected(t *testing.T) {
	fx := newBillingFixture(t)

	_, err := fx.svc.Checkout(context.Background(), fx.storeID, &CheckoutRequest{
		AppointmentID: fx.appointment.ID,
		PaymentMethod: model.PaymentCard,
	}, "actor")

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(validationErr.Fields) != 1 || validationErr.Fields[0].Field != "reference_id" {
		t.Errorf("fields = %v, want reference_id failure", validationErr.Fields)
	}
	if len(fx.txRepo.transactions) != 0 {
		t.Error("rejected checkout must not persist anything")
	}
}

func TestCheckoutPromoDerivesDiscountFromSubtotal(t *testing.T) {
	fx := newBillingFixture(t)
	promo := &model.PromoCode{StoreID: fx.storeID, Code: "SPRING20", Percent: dec("20"), IsActive: true}
	promo.ID = uuid.New()
	fx.promoRepo.promos["SPRING20"] = promo

	resp, err := fx.svc.Checkout(context.Background(), fx.storeID, &CheckoutRequest{
		AppointmentID:   fx.appointment.ID,
		PromoCode:       "SPRING20",
		DiscountPercent: dec("5"), // overridden by the promo
		PaymentMethod:   model.PaymentCash,
	}, "actor")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if !resp.Transaction.DiscountPercent.Equal(dec("20")) {
		t.Errorf("discount percent = %s, promo must win", resp.Transaction.DiscountPercent)
	}
	// 20% of the 300 subtotal, derived at checkout time
	if !resp.Transaction.DiscountAmount.Equal(dec("60")) {
		t.Errorf("discount amount = %s, want 60", resp.Transaction.DiscountAmount)
	}
}

func TestCheckoutExpiredPromoRejected(t *testing.T) {
	fx := newBillingFixture(t)
	past := time.Now().Add(-time.Hour)
	promo := &model.PromoCode{StoreID: fx.storeID, Code: "OLD", Percent: dec("50"), IsActive: true, ExpiresAt: &past}
	promo.ID = uuid.New()
	fx.promoRepo.promos["OLD"] = promo

	_, err := fx.svc.Checkout(context.Background(), fx.storeID, &CheckoutRequest{
		AppointmentID: fx.appointment.ID,
		PromoCode:     "OLD",
		PaymentMethod: model.PaymentCash,
	}, "actor")
	if !errors.Is(err, ErrPromoUnusable) {
		t.Fatalf("err = %v, want ErrPromoUnusable", err)
	}
}

func TestCheckoutAlreadyBilledRejected(t *testing.T) {
	fx := newBillingFixture(t)
	fx.appointment.Status = model.AppointmentBilled

	_, err := fx.svc.Checkout(context.Background(), fx.storeID, &CheckoutRequest{
		AppointmentID: fx.appointment.ID,
		PaymentMethod: model.PaymentCash,
	}, "actor")
	if !errors.Is(err, ErrAppointmentHasBill) {
		t.Fatalf("err = %v, want ErrAppointmentHasBill", err)
	}
}

func TestCheckoutBookedAppointmentNotReady(t *testing.T) {
	fx := newBillingFixture(t)
	fx.appointment.Status = model.AppointmentBooked

	_, err := fx.svc.Checkout(context.Background(), fx.storeID, &CheckoutRequest{
		AppointmentID: fx.appointment.ID,
		PaymentMethod: model.PaymentCash,
	}, "actor")
	if !errors.Is(err, ErrAppointmentNotReady) {
		t.Fatalf("err = %v, want ErrAppointmentNotReady", err)
	}
}

func TestCheckoutFailedSaveKeepsAppointmentUnbilled(t *testing.T) {
	fx := newBillingFixture(t)
	fx.txRepo.failCreate = true

	_, err := fx.svc.Checkout(context.Background(), fx.storeID, &CheckoutRequest{
		AppointmentID: fx.appointment.ID,
		PaymentMethod: model.PaymentCash,
	}, "actor")
	if !errors.Is(err, ErrTransactionNotSaved) {
		t.Fatalf("err = %v, want ErrTransactionNotSaved", err)
	}
	if fx.appointment.Status == model.AppointmentBilled {
		t.Error("a failed save must not mark the appointment billed")
	}
}

func TestCheckoutInvoiceDeliveryFailureIsWarningOnly(t *testing.T) {
	fx := newBillingFixture(t)
	fx.sender.err = errors.New("gateway timeout")

	resp, err := fx.svc.Checkout(context.Background(), fx.storeID, &CheckoutRequest{
		AppointmentID: fx.appointment.ID,
		PaymentMethod: model.PaymentCash,
	}, "actor")
	if err != nil {
		t.Fatalf("delivery failure must not fail the checkout: %v", err)
	}
	if resp.Warning == "" {
		t.Error("failed delivery must surface a warning")
	}
	if len(fx.txRepo.transactions) != 1 {
		t.Error("the committed transaction must stand")
	}
}

func TestInvoiceNumbersIncrementPerDay(t *testing.T) {
	fx := newBillingFixture(t)

	resp1, err := fx.svc.Checkout(context.Background(), fx.storeID, &CheckoutRequest{
		AppointmentID: fx.appointment.ID,
		PaymentMethod: model.PaymentCash,
	}, "actor")
	if err != nil {
		t.Fatalf("first checkout: %v", err)
	}

	// A second appointment billed the same day
	second := &model.Appointment{
		StoreID:    fx.storeID,
		CustomerID: uuid.New(),
		ServiceID:  fx.appointment.ServiceID,
		Service:    fx.appointment.Service,
		Status:     model.AppointmentCompleted,
	}
	second.ID = uuid.New()
	fx.apptRepo.appointments[second.ID] = second

	resp2, err := fx.svc.Checkout(context.Background(), fx.storeID, &CheckoutRequest{
		AppointmentID: second.ID,
		PaymentMethod: model.PaymentCash,
	}, "actor")
	if err != nil {
		t.Fatalf("second checkout: %v", err)
	}

	if !strings.HasSuffix(resp1.Transaction.InvoiceNumber, "00001") {
		t.Errorf("first invoice = %s, want suffix 00001", resp1.Transaction.InvoiceNumber)
	}
	if !strings.HasSuffix(resp2.Transaction.InvoiceNumber, "00002") {
		t.Errorf("second invoice = %s, want suffix 00002", resp2.Transaction.InvoiceNumber)
	}
}
