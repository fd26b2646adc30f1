package service

import (
	"context"
	"time"

	"go-salon-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const lowStockThreshold = 5

// DashboardSummary is the at-a-glance snapshot for the landing view
type DashboardSummary struct {
	RevenueToday      decimal.Decimal `json:"revenue_today"`
	AppointmentsToday int64           `json:"appointments_today"`
	LowStockProducts  int64           `json:"low_stock_products"`
	ActiveStaff       int             `json:"active_staff"`
}

type DashboardService interface {
	Summary(ctx context.Context, storeID uuid.UUID) (*DashboardSummary, error)
}

type dashboardService struct {
	transactionRepo repository.TransactionRepository
	appointmentRepo repository.AppointmentRepository
	productRepo     repository.ProductRepository
	userRepo        repository.UserRepository
}

func NewDashboardService(
	transactionRepo repository.TransactionRepository,
	appointmentRepo repository.AppointmentRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) DashboardService {
	return &dashboardService{
		transactionRepo: transactionRepo,
		appointmentRepo: appointmentRepo,
		productRepo:     productRepo,
		userRepo:        userRepo,
	}
}

func (s *dashboardService) Summary(ctx context.Context, storeID uuid.UUID) (*DashboardSummary, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	revenue, err := s.transactionRepo.RevenueBetween(ctx, storeID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	appointments, err := s.appointmentRepo.CountScheduledBetween(ctx, storeID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.productRepo.LowStockCount(ctx, storeID, lowStockThreshold)
	if err != nil {
		return nil, err
	}

	staff, err := s.userRepo.FindStaffByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	activeStaff := 0
	for _, u := range staff {
		if u.IsActive {
			activeStaff++
		}
	}

	return &DashboardSummary{
		RevenueToday:      revenue,
		AppointmentsToday: appointments,
		LowStockProducts:  lowStock,
		ActiveStaff:       activeStaff,
	}, nil
}
