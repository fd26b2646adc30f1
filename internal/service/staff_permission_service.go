package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"go-salon-ws/internal/model"
	"go-salon-ws/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrStaffNotFound   = errors.New("staff member not found")
	ErrStaffIsAdmin    = errors.New("admin permissions cannot be edited")
	ErrCatalogFetch    = errors.New("failed to fetch permission catalog")
	ErrPermissionsSave = errors.New("failed to save permissions")
)

// UserNotifier publishes a change signal for a user; live sessions re-fetch
// their permission set on it
type UserNotifier interface {
	NotifyUser(userID string, message []byte)
}

// StaffPermissions pairs a staff profile with its current permission codes
type StaffPermissions struct {
	User        model.UserResponse `json:"user"`
	Permissions []string           `json:"permissions"`
}

// ReplaceResult reports a committed replace. SkippedUnknown lists pending
// tags that were dropped because the authoritative catalog does not contain
// them; it is a warning, not an error.
type ReplaceResult struct {
	Staff          []StaffPermissions `json:"staff"`
	SkippedUnknown []string           `json:"skipped_unknown,omitempty"`
}

type StaffPermissionService interface {
	ListStaff(ctx context.Context, storeID uuid.UUID) ([]StaffPermissions, error)
	ReplacePermissions(ctx context.Context, storeID, staffID uuid.UUID, codes []string) (*ReplaceResult, error)
}

type staffPermissionService struct {
	userRepo  repository.UserRepository
	permRepo  repository.PermissionRepository
	txManager repository.TransactionManager
	notifier  UserNotifier
}

func NewStaffPermissionService(
	userRepo repository.UserRepository,
	permRepo repository.PermissionRepository,
	txManager repository.TransactionManager,
	notifier UserNotifier,
) StaffPermissionService {
	return &staffPermissionService{
		userRepo:  userRepo,
		permRepo:  permRepo,
		txManager: txManager,
		notifier:  notifier,
	}
}

// ListStaff fetches all non-admin staff for the store with their current
// assignment sets
func (s *staffPermissionService) ListStaff(ctx context.Context, storeID uuid.UUID) ([]StaffPermissions, error) {
	staff, err := s.userRepo.FindStaffByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}

	result := make([]StaffPermissions, 0, len(staff))
	for _, member := range staff {
		codes, err := s.permRepo.CodesForUserStore(ctx, member.ID, storeID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch permissions for %s: %w", member.Email, err)
		}
		if codes == nil {
			codes = []string{}
		}
		result = append(result, StaffPermissions{
			User:        member.ToResponse(codes),
			Permissions: codes,
		})
	}
	return result, nil
}

// ReplacePermissions commits a full replace of the staff member's assignment
// rows: validate against a fresh catalog, delete everything for (user, store),
// then bulk-insert the validated set. Both steps run in one database
// transaction, so a failed insert can no longer strand the staff member with
// zero permissions.
func (s *staffPermissionService) ReplacePermissions(ctx context.Context, storeID, staffID uuid.UUID, codes []string) (*ReplaceResult, error) {
	// 1. The target must be an editable (non-admin) staff member
	staff, err := s.userRepo.FindByID(ctx, staffID)
	if err != nil {
		return nil, ErrStaffNotFound
	}
	if staff.IsAdmin() {
		return nil, ErrStaffIsAdmin
	}

	// 2. Fetch the catalog fresh at commit time, not from page-load cache
	catalog, err := s.permRepo.FindAll(ctx)
	if err != nil {
		return nil, ErrCatalogFetch
	}
	known := make(map[string]model.Permission, len(catalog))
	for _, p := range catalog {
		known[p.Code] = p
	}

	// 3. Filter the pending set: unknown tags are dropped and surfaced as a
	// warning so dangling references are never inserted
	var validated []model.UserPermission
	var skipped []string
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		perm, ok := known[code]
		if !ok {
			skipped = append(skipped, code)
			continue
		}
		validated = append(validated, model.UserPermission{
			UserID:       staffID,
			StoreID:      storeID,
			PermissionID: perm.ID,
		})
	}

	// 4. Delete-then-insert, strictly sequential. A delete failure aborts
	// before any insert is attempted.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.permRepo.DeleteAssignments(txCtx, staffID, storeID); err != nil {
			return fmt.Errorf("delete existing assignments: %w", err)
		}
		// Empty validated set means the delete alone is the whole commit
		if len(validated) == 0 {
			return nil
		}
		if err := s.permRepo.CreateAssignments(txCtx, validated); err != nil {
			return fmt.Errorf("insert assignments: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Printf("Warning: permission replace failed for staff %s: %v", staffID, err)
		return nil, ErrPermissionsSave
	}

	// 5. Signal the staff member's live session to re-fetch
	go func() {
		payload := map[string]interface{}{
			"type":    "permission_update",
			"user_id": staffID.String(),
		}
		msg, _ := json.Marshal(payload)
		s.notifier.NotifyUser(staffID.String(), msg)
	}()

	// 6. Re-fetch authoritative state; never trust the optimistic local view
	staffList, err := s.ListStaff(ctx, storeID)
	if err != nil {
		return nil, err
	}

	return &ReplaceResult{Staff: staffList, SkippedUnknown: skipped}, nil
}
