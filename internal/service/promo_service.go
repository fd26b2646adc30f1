package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go-salon-ws/internal/billing"
	"go-salon-ws/internal/model"
	"go-salon-ws/internal/repository"
	"go-salon-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

var (
	ErrPromoCodeExists  = errors.New("promo code already exists")
	ErrPlanNotFound     = errors.New("membership plan not found")
	ErrPlanInactive     = errors.New("membership plan is inactive")
	ErrAlreadyEnrolled  = errors.New("customer already has an active membership")
	ErrCustomerNotFound = errors.New("customer not found")
)

// PromoQuote is the result of applying a promo code against a subtotal. The
// discount is always computed from the subtotal passed in, so a changed cart
// yields a changed discount on the next application.
type PromoQuote struct {
	Code           string          `json:"code"`
	Percent        decimal.Decimal `json:"percent"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type PromoService interface {
	CreatePromo(ctx context.Context, promo *model.PromoCode, actorID string) error
	UpdatePromo(ctx context.Context, id uuid.UUID, promo *model.PromoCode, actorID string) (*model.PromoCode, error)
	ListPromos(ctx context.Context, storeID uuid.UUID) ([]model.PromoCode, error)
	ApplyPromo(ctx context.Context, storeID uuid.UUID, code string, subtotal decimal.Decimal) (*PromoQuote, error)

	CreatePlan(ctx context.Context, plan *model.MembershipPlan, actorID string) error
	ListPlans(ctx context.Context, storeID uuid.UUID) ([]model.MembershipPlan, error)
	Enroll(ctx context.Context, storeID, customerID, planID uuid.UUID, actorID string) (*model.Membership, error)
	ListMemberships(ctx context.Context, customerID uuid.UUID) ([]model.Membership, error)
}

type promoService struct {
	promoRepo      repository.PromoRepository
	membershipRepo repository.MembershipRepository
	customerRepo   repository.CustomerRepository
}

func NewPromoService(
	promoRepo repository.PromoRepository,
	membershipRepo repository.MembershipRepository,
	customerRepo repository.CustomerRepository,
) PromoService {
	return &promoService{
		promoRepo:      promoRepo,
		membershipRepo: membershipRepo,
		customerRepo:   customerRepo,
	}
}

func (s *promoService) CreatePromo(ctx context.Context, promo *model.PromoCode, actorID string) error {
	if errs := validator.ValidateStruct(promo); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	promo.Code = strings.ToUpper(strings.TrimSpace(promo.Code))
	if _, outOfRange := billing.ClampPercent(promo.Percent); outOfRange {
		return errors.New("discount percent must be between 0 and 100")
	}

	existing, _ := s.promoRepo.FindByCode(ctx, promo.StoreID, promo.Code)
	if existing != nil && existing.ID != uuid.Nil {
		return ErrPromoCodeExists
	}

	promo.CreatedBy = actorID
	promo.UpdatedBy = actorID
	return s.promoRepo.Create(ctx, promo)
}

func (s *promoService) UpdatePromo(ctx context.Context, id uuid.UUID, promo *model.PromoCode, actorID string) (*model.PromoCode, error) {
	existing, err := s.promoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrPromoNotFound
	}

	if _, outOfRange := billing.ClampPercent(promo.Percent); outOfRange {
		return nil, errors.New("discount percent must be between 0 and 100")
	}

	existing.Percent = promo.Percent
	existing.IsActive = promo.IsActive
	existing.ExpiresAt = promo.ExpiresAt
	existing.UpdatedBy = actorID

	if err := s.promoRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *promoService) ListPromos(ctx context.Context, storeID uuid.UUID) ([]model.PromoCode, error) {
	return s.promoRepo.FindByStore(ctx, storeID)
}

// ApplyPromo validates the code and quotes a discount against the subtotal the
// caller holds right now. Nothing is persisted here.
func (s *promoService) ApplyPromo(ctx context.Context, storeID uuid.UUID, code string, subtotal decimal.Decimal) (*PromoQuote, error) {
	promo, err := s.promoRepo.FindByCode(ctx, storeID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, ErrPromoNotFound
	}
	if !promo.Usable(time.Now()) {
		return nil, ErrPromoUnusable
	}

	return &PromoQuote{
		Code:           promo.Code,
		Percent:        promo.Percent,
		Subtotal:       subtotal,
		DiscountAmount: billing.DiscountAmount(subtotal, promo.Percent),
	}, nil
}

func (s *promoService) CreatePlan(ctx context.Context, plan *model.MembershipPlan, actorID string) error {
	if errs := validator.ValidateStruct(plan); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}
	plan.CreatedBy = actorID
	plan.UpdatedBy = actorID
	return s.membershipRepo.CreatePlan(ctx, plan)
}

func (s *promoService) ListPlans(ctx context.Context, storeID uuid.UUID) ([]model.MembershipPlan, error) {
	return s.membershipRepo.FindPlansByStore(ctx, storeID)
}

func (s *promoService) Enroll(ctx context.Context, storeID, customerID, planID uuid.UUID, actorID string) (*model.Membership, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, ErrCustomerNotFound
	}

	plan, err := s.membershipRepo.FindPlanByID(ctx, planID)
	if err != nil {
		return nil, ErrPlanNotFound
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}

	now := time.Now()
	if active, _ := s.membershipRepo.FindActiveByCustomer(ctx, customerID, now); active != nil {
		return nil, ErrAlreadyEnrolled
	}

	membership := &model.Membership{
		StoreID:    storeID,
		CustomerID: customerID,
		PlanID:     planID,
		StartsAt:   now,
		ExpiresAt:  now.AddDate(0, 0, plan.DurationDays),
		Status:     model.MembershipActive,
	}
	membership.CreatedBy = actorID
	membership.UpdatedBy = actorID

	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, err
	}
	membership.Plan = plan
	return membership, nil
}

func (s *promoService) ListMemberships(ctx context.Context, customerID uuid.UUID) ([]model.Membership, error) {
	return s.membershipRepo.FindByCustomer(ctx, customerID)
}

// StartMembershipSweeper schedules an hourly job that expires memberships whose
// end date has passed. Returns the scheduler so the caller can Stop it on
// shutdown.
func StartMembershipSweeper(membershipRepo repository.MembershipRepository) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		expired, err := membershipRepo.ExpireDue(ctx, time.Now())
		if err != nil {
			log.Printf("Warning: membership expiry sweep failed: %v", err)
			return
		}
		if expired > 0 {
			log.Printf("Membership sweep expired %d membership(s)", expired)
		}
	})
	if err != nil {
		log.Printf("Warning: failed to schedule membership sweeper: %v", err)
		return c
	}
	c.Start()
	return c
}
