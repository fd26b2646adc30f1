package service

import (
	"context"
	"errors"
	"fmt"

	"go-salon-ws/internal/model"
	"go-salon-ws/internal/repository"
	"go-salon-ws/pkg/validator"

	"github.com/google/uuid"
)

var ErrInvalidTransition = errors.New("invalid appointment status transition")

type AppointmentService interface {
	Create(ctx context.Context, req *model.Appointment, actorID string) error
	List(ctx context.Context, storeID uuid.UUID, status model.AppointmentStatus) ([]model.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next model.AppointmentStatus, actorID string) (*model.Appointment, error)
}

type appointmentService struct {
	apptRepo     repository.AppointmentRepository
	customerRepo repository.CustomerRepository
	serviceRepo  repository.ServiceRepository
}

func NewAppointmentService(
	apptRepo repository.AppointmentRepository,
	customerRepo repository.CustomerRepository,
	serviceRepo repository.ServiceRepository,
) AppointmentService {
	return &appointmentService{
		apptRepo:     apptRepo,
		customerRepo: customerRepo,
		serviceRepo:  serviceRepo,
	}
}

func (s *appointmentService) Create(ctx context.Context, req *model.Appointment, actorID string) error {
	// 1. Basic struct validation
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	// 2. References must exist
	if _, err := s.customerRepo.FindByID(ctx, req.CustomerID); err != nil {
		return errors.New("customer not found")
	}
	svc, err := s.serviceRepo.FindByID(ctx, req.ServiceID)
	if err != nil {
		return errors.New("service not found")
	}
	if !svc.IsActive {
		return errors.New("service is not active")
	}

	// 3. Persist
	req.Status = model.AppointmentBooked
	req.CreatedBy = actorID
	req.UpdatedBy = actorID
	return s.apptRepo.Create(ctx, req)
}

func (s *appointmentService) List(ctx context.Context, storeID uuid.UUID, status model.AppointmentStatus) ([]model.Appointment, error) {
	return s.apptRepo.FindByStore(ctx, storeID, status)
}

func (s *appointmentService) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.apptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, id uuid.UUID, next model.AppointmentStatus, actorID string) (*model.Appointment, error) {
	appointment, err := s.apptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}

	if !appointment.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appointment.Status, next)
	}

	appointment.Status = next
	appointment.UpdatedBy = actorID
	if err := s.apptRepo.Update(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}
