package license

import (
	"context"
	"log"
	"time"

	"go-salon-ws/internal/model"

	"github.com/google/uuid"
)

// Status is a derived read-only value computed fresh on every check. The
// client never writes license state.
type Status struct {
	Active bool   `json:"active"`
	Reason string `json:"reason,omitempty"`
}

const checkFailedReason = "License check failed"

// StoreSource provides the authoritative store row
type StoreSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error)
}

// Gate blocks access to protected regions unless the store's license is
// active. Its error policy is fail-closed, the opposite of the permission
// synchronizer: permission staleness is low-risk, license bypass is not.
type Gate struct {
	stores StoreSource
}

func NewGate(stores StoreSource) *Gate {
	return &Gate{stores: stores}
}

// Check resolves the license status for a store id. An empty store id passes
// through (fail-open) so a user who has not finished onboarding is not
// deadlocked; any lookup failure blocks (fail-closed).
func (g *Gate) Check(ctx context.Context, storeID string) Status {
	if storeID == "" {
		return Status{Active: true}
	}

	id, err := uuid.Parse(storeID)
	if err != nil {
		return Status{Active: false, Reason: checkFailedReason}
	}

	store, err := g.stores.FindByID(ctx, id)
	if err != nil {
		log.Printf("Warning: license lookup failed for store %s: %v", storeID, err)
		return Status{Active: false, Reason: checkFailedReason}
	}

	if !store.LicenseActive {
		reason := store.LicenseReason
		if reason == "" {
			reason = "License inactive"
		}
		return Status{Active: false, Reason: reason}
	}
	if store.LicenseExpiresAt != nil && store.LicenseExpiresAt.Before(time.Now()) {
		return Status{Active: false, Reason: "License expired"}
	}

	return Status{Active: true}
}
