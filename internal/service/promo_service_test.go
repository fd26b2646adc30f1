package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-salon-ws/internal/model"

	"github.com/google/uuid"
)

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func (f *fakeCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (f *fakeCustomerRepo) FindByStore(ctx context.Context, storeID uuid.UUID) ([]model.Customer, error) {
	var out []model.Customer
	for _, c := range f.customers {
		if c.StoreID == storeID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	f.customers[c.ID] = c
	return nil
}

func (f *fakeCustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	f.customers[c.ID] = c
	return nil
}

type fakeMembershipRepo struct {
	plans       map[uuid.UUID]*model.MembershipPlan
	memberships []model.Membership
}

func (f *fakeMembershipRepo) FindPlanByID(ctx context.Context, id uuid.UUID) (*model.MembershipPlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (f *fakeMembershipRepo) FindPlansByStore(ctx context.Context, storeID uuid.UUID) ([]model.MembershipPlan, error) {
	var out []model.MembershipPlan
	for _, p := range f.plans {
		if p.StoreID == storeID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeMembershipRepo) CreatePlan(ctx context.Context, plan *model.MembershipPlan) error {
	f.plans[plan.ID] = plan
	return nil
}

func (f *fakeMembershipRepo) UpdatePlan(ctx context.Context, plan *model.MembershipPlan) error {
	f.plans[plan.ID] = plan
	return nil
}

func (f *fakeMembershipRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Membership, error) {
	var out []model.Membership
	for _, m := range f.memberships {
		if m.CustomerID == customerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMembershipRepo) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID, now time.Time) (*model.Membership, error) {
	for i := range f.memberships {
		m := &f.memberships[i]
		if m.CustomerID == customerID && m.Status == model.MembershipActive && m.ExpiresAt.After(now) {
			return m, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeMembershipRepo) Create(ctx context.Context, m *model.Membership) error {
	f.memberships = append(f.memberships, *m)
	return nil
}

func (f *fakeMembershipRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for i := range f.memberships {
		m := &f.memberships[i]
		if m.Status == model.MembershipActive && !m.ExpiresAt.After(now) {
			m.Status = model.MembershipExpired
			n++
		}
	}
	return n, nil
}

func newPromoFixture() (PromoService, *fakePromoRepo, *fakeMembershipRepo, *fakeCustomerRepo) {
	promos := &fakePromoRepo{promos: map[string]*model.PromoCode{}}
	memberships := &fakeMembershipRepo{plans: map[uuid.UUID]*model.MembershipPlan{}}
	customers := &fakeCustomerRepo{customers: map[uuid.UUID]*model.Customer{}}
	return NewPromoService(promos, memberships, customers), promos, memberships, customers
}

func TestApplyPromoQuotesFromGivenSubtotal(t *testing.T) {
	svc, promos, _, _ := newPromoFixture()
	storeID := uuid.New()
	promo := &model.PromoCode{StoreID: storeID, Code: "TEN", Percent: dec("10"), IsActive: true}
	promo.ID = uuid.New()
	promos.promos["TEN"] = promo

	quote, err := svc.ApplyPromo(context.Background(), storeID, "ten", dec("250"))
	if err != nil {
		t.Fatalf("ApplyPromo: %v", err)
	}
	if !quote.DiscountAmount.Equal(dec("25")) {
		t.Errorf("discount = %s, want 25", quote.DiscountAmount)
	}

	// Same code, different cart: the discount follows the subtotal
	quote, err = svc.ApplyPromo(context.Background(), storeID, "TEN", dec("80"))
	if err != nil {
		t.Fatalf("ApplyPromo: %v", err)
	}
	if !quote.DiscountAmount.Equal(dec("8")) {
		t.Errorf("discount = %s, want 8", quote.DiscountAmount)
	}
}

func TestApplyPromoInactiveRejected(t *testing.T) {
	svc, promos, _, _ := newPromoFixture()
	storeID := uuid.New()
	promo := &model.PromoCode{StoreID: storeID, Code: "DEAD", Percent: dec("10"), IsActive: false}
	promo.ID = uuid.New()
	promos.promos["DEAD"] = promo

	if _, err := svc.ApplyPromo(context.Background(), storeID, "DEAD", dec("100")); !errors.Is(err, ErrPromoUnusable) {
		t.Fatalf("err = %v, want ErrPromoUnusable", err)
	}
}

func TestEnrollCreatesActiveMembership(t *testing.T) {
	svc, _, memberships, customers := newPromoFixture()
	storeID := uuid.New()

	customer := &model.Customer{StoreID: storeID, FullName: "Asha"}
	customer.ID = uuid.New()
	customers.customers[customer.ID] = customer

	plan := &model.MembershipPlan{StoreID: storeID, Name: "Gold", DurationDays: 30, IsActive: true}
	plan.ID = uuid.New()
	memberships.plans[plan.ID] = plan

	m, err := svc.Enroll(context.Background(), storeID, customer.ID, plan.ID, "actor")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if m.Status != model.MembershipActive {
		t.Errorf("status = %s, want active", m.Status)
	}
	wantExpiry := m.StartsAt.AddDate(0, 0, 30)
	if !m.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expires %v, want %v", m.ExpiresAt, wantExpiry)
	}

	// Double enrollment is blocked while the first is active
	if _, err := svc.Enroll(context.Background(), storeID, customer.ID, plan.ID, "actor"); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("err = %v, want ErrAlreadyEnrolled", err)
	}
}

func TestEnrollInactivePlanRejected(t *testing.T) {
	svc, _, memberships, customers := newPromoFixture()
	storeID := uuid.New()

	customer := &model.Customer{StoreID: storeID, FullName: "Asha"}
	customer.ID = uuid.New()
	customers.customers[customer.ID] = customer

	plan := &model.MembershipPlan{StoreID: storeID, Name: "Retired", DurationDays: 30, IsActive: false}
	plan.ID = uuid.New()
	memberships.plans[plan.ID] = plan

	if _, err := svc.Enroll(context.Background(), storeID, customer.ID, plan.ID, "actor"); !errors.Is(err, ErrPlanInactive) {
		t.Fatalf("err = %v, want ErrPlanInactive", err)
	}
}

func TestExpireDueFlipsOnlyPastMemberships(t *testing.T) {
	_, _, memberships, _ := newPromoFixture()
	now := time.Now()
	memberships.memberships = []model.Membership{
		{CustomerID: uuid.New(), Status: model.MembershipActive, ExpiresAt: now.Add(-time.Hour)},
		{CustomerID: uuid.New(), Status: model.MembershipActive, ExpiresAt: now.Add(time.Hour)},
	}

	n, err := memberships.ExpireDue(context.Background(), now)
	if err != nil {
		t.Fatalf("ExpireDue: %v", err)
	}
	if n != 1 {
		t.Errorf("expired %d, want 1", n)
	}
	if memberships.memberships[1].Status != model.MembershipActive {
		t.Error("future membership must stay active")
	}
}
