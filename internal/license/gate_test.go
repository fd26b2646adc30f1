package license

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-salon-ws/internal/model"

	"github.com/google/uuid"
)

type fakeStores struct {
	store *model.Store
	err   error
}

func (f *fakeStores) FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.store, nil
}

func TestCheckEmptyStoreIDPassesThrough(t *testing.T) {
	gate := NewGate(&fakeStores{err: errors.New("must not be called")})

	status := gate.Check(context.Background(), "")
	if !status.Active {
		t.Error("empty store id must not be blocked")
	}
}

func TestCheckLookupFailureBlocks(t *testing.T) {
	gate := NewGate(&fakeStores{err: errors.New("db down")})

	status := gate.Check(context.Background(), uuid.New().String())
	if status.Active {
		t.Error("lookup failure must fail closed")
	}
	if status.Reason != "License check failed" {
		t.Errorf("reason = %q, want 'License check failed'", status.Reason)
	}
}

func TestCheckMalformedStoreIDBlocks(t *testing.T) {
	gate := NewGate(&fakeStores{})

	status := gate.Check(context.Background(), "not-a-uuid")
	if status.Active {
		t.Error("malformed id must fail closed")
	}
}

func TestCheckInactiveLicense(t *testing.T) {
	gate := NewGate(&fakeStores{store: &model.Store{
		LicenseActive: false,
		LicenseReason: "Payment overdue",
	}})

	status := gate.Check(context.Background(), uuid.New().String())
	if status.Active {
		t.Error("inactive license must block")
	}
	if status.Reason != "Payment overdue" {
		t.Errorf("reason = %q, want the store's own reason", status.Reason)
	}
}

func TestCheckInactiveLicenseDefaultReason(t *testing.T) {
	gate := NewGate(&fakeStores{store: &model.Store{LicenseActive: false}})

	status := gate.Check(context.Background(), uuid.New().String())
	if status.Reason != "License inactive" {
		t.Errorf("reason = %q, want default 'License inactive'", status.Reason)
	}
}

func TestCheckExpiredLicense(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	gate := NewGate(&fakeStores{store: &model.Store{
		LicenseActive:    true,
		LicenseExpiresAt: &past,
	}})

	status := gate.Check(context.Background(), uuid.New().String())
	if status.Active {
		t.Error("expired license must block")
	}
	if status.Reason != "License expired" {
		t.Errorf("reason = %q, want 'License expired'", status.Reason)
	}
}

func TestCheckActiveLicense(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	gate := NewGate(&fakeStores{store: &model.Store{
		LicenseActive:    true,
		LicenseExpiresAt: &future,
	}})

	status := gate.Check(context.Background(), uuid.New().String())
	if !status.Active {
		t.Errorf("active unexpired license must pass, got reason %q", status.Reason)
	}
}
