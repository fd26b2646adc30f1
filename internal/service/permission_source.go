package service

import (
	"context"
	"fmt"

	"go-salon-ws/internal/repository"
	"go-salon-ws/internal/session"

	"github.com/google/uuid"
)

// permissionSource adapts the assignment repository to the synchronizer's
// fetch interface. An unresolvable key is reported as an error so the
// synchronizer retains the current set instead of wiping it.
type permissionSource struct {
	perms repository.PermissionRepository
}

func NewPermissionSource(perms repository.PermissionRepository) session.PermissionSource {
	return &permissionSource{perms: perms}
}

func (s *permissionSource) PermissionCodes(ctx context.Context, userID, storeID string) ([]string, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	sid, err := uuid.Parse(storeID)
	if err != nil {
		return nil, fmt.Errorf("invalid store id %q: %w", storeID, err)
	}
	return s.perms.CodesForUserStore(ctx, uid, sid)
}
