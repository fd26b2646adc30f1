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

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrUserNotAdmin = errors.New("only admins can manage users")
)

// CreateUserRequest carries the fields for registering a staff account
type CreateUserRequest struct {
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=8"`
	FullName    string     `json:"full_name" validate:"required"`
	PhoneNumber string     `json:"phone_number"`
	Role        string     `json:"role" validate:"omitempty,oneof=admin staff"`
	StoreID     *uuid.UUID `json:"store_id"`
}

type UpdateUserRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
	IsActive    *bool  `json:"is_active"`
}

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, actorID string) (*model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *UpdateUserRequest, actorID string) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeactivateUser(ctx context.Context, id uuid.UUID, actorID string) error
}

type userService struct {
	userRepo       repository.UserRepository
	permissionRepo repository.PermissionRepository
	txManager      repository.TransactionManager
}

func NewUserService(
	userRepo repository.UserRepository,
	permissionRepo repository.PermissionRepository,
	txManager repository.TransactionManager,
) UserService {
	return &userService{
		userRepo:       userRepo,
		permissionRepo: permissionRepo,
		txManager:      txManager,
	}
}

// CreateUser registers an account. Staff accounts assigned to a store receive
// the default permission set immediately so a fresh login starts with a
// working, editable tab set.
func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, actorID string) (*model.User, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	if existing, _ := s.userRepo.FindByEmail(ctx, req.Email); existing != nil {
		return nil, ErrEmailExists
	}

	role := req.Role
	if role == "" {
		role = model.RoleStaff
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Role:        role,
		StoreID:     req.StoreID,
		Profile:     model.JSONB{},
		IsActive:    true,
	}
	user.CreatedBy = actorID
	user.UpdatedBy = actorID
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		if role == model.RoleAdmin || req.StoreID == nil {
			return nil
		}

		perms, err := s.permissionRepo.FindByCodes(txCtx, model.DefaultStaffPermissions)
		if err != nil {
			return err
		}
		assignments := make([]model.UserPermission, 0, len(perms))
		for _, p := range perms {
			assignments = append(assignments, model.UserPermission{
				UserID:       user.ID,
				StoreID:      *req.StoreID,
				PermissionID: p.ID,
			})
		}
		return s.permissionRepo.CreateAssignments(txCtx, assignments)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, req *UpdateUserRequest, actorID string) (*model.User, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = actorID

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.FindAll(ctx)
}

// DeactivateUser disables the account and rotates its token version so any
// outstanding token stops validating.
func (s *userService) DeactivateUser(ctx context.Context, id uuid.UUID, actorID string) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return ErrUserNotFound
	}

	user.IsActive = false
	user.UpdatedBy = actorID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	return s.userRepo.UpdateTokenVersion(ctx, id, uuid.New().String())
}
