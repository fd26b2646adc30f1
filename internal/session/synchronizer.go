package session

import (
	"context"
	"log"

	"go-salon-ws/internal/model"
)

// PermissionSource fetches the authoritative permission codes for a
// (user, store) pair. Order of the result is irrelevant.
type PermissionSource interface {
	PermissionCodes(ctx context.Context, userID, storeID string) ([]string, error)
}

// Feed delivers change notifications scoped to a user id. Events carry no
// payload; they only signal that something changed and a re-fetch is needed.
type Feed interface {
	SubscribeUser(userID string) (<-chan struct{}, func())
}

// Synchronizer keeps a session store's permission set eventually consistent
// with the authoritative table. Admin sessions are exempt: they hold the
// sentinel and are never overwritten.
type Synchronizer struct {
	session *Store
	source  PermissionSource
	feed    Feed
}

func NewSynchronizer(session *Store, source PermissionSource, feed Feed) *Synchronizer {
	return &Synchronizer{session: session, source: source, feed: feed}
}

// Sync reconciles once. Fetch errors are swallowed and the existing set is
// retained: stale permissions beat a broken session. Never converts a fetch
// failure into logout or revocation.
func (s *Synchronizer) Sync(ctx context.Context) {
	id, ok := s.session.Identity()
	if !ok || id.Role == model.RoleAdmin {
		return
	}

	codes, err := s.source.PermissionCodes(ctx, id.UserID, id.StoreID)
	if err != nil {
		log.Printf("Warning: permission fetch failed for %s, keeping current set: %v", id.UserID, err)
		return
	}

	// Results arriving after cancellation are discarded
	if ctx.Err() != nil {
		return
	}

	if equalSets(id.Permissions, codes) {
		return
	}
	s.session.SetPermissions(ctx, codes)
}

// Watch performs an initial reconciliation and then re-syncs on every feed
// event for the session's user. The returned cancel tears down the
// subscription; callers must invoke it before starting a Watch for a new
// (user, store) key.
func (s *Synchronizer) Watch(ctx context.Context) (cancel func()) {
	watchCtx, stop := context.WithCancel(ctx)

	s.Sync(watchCtx)

	id, ok := s.session.Identity()
	if !ok {
		return stop
	}

	events, unsubscribe := s.feed.SubscribeUser(id.UserID)
	go func() {
		for {
			select {
			case <-watchCtx.Done():
				return
			case _, open := <-events:
				if !open {
					return
				}
				s.Sync(watchCtx)
			}
		}
	}()

	return func() {
		stop()
		unsubscribe()
	}
}

// equalSets compares two tag lists as sets: duplicates collapsed, order
// ignored. The check is symmetric; a one-directional subset check would
// loop forever when sizes match but elements differ.
func equalSets(a, b []string) bool {
	da, db := dedupe(a), dedupe(b)
	if len(da) != len(db) {
		return false
	}
	seen := make(map[string]struct{}, len(db))
	for _, t := range db {
		seen[t] = struct{}{}
	}
	for _, t := range da {
		if _, ok := seen[t]; !ok {
			return false
		}
	}
	return true
}
