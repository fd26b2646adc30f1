package session

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"go-salon-ws/internal/model"
)

type fakeSource struct {
	mu    sync.Mutex
	codes []string
	err   error
	calls int
}

func (f *fakeSource) PermissionCodes(ctx context.Context, userID, storeID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.codes...), nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeFeed struct {
	mu           sync.Mutex
	ch           chan struct{}
	unsubscribed bool
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{ch: make(chan struct{}, 1)}
}

func (f *fakeFeed) SubscribeUser(userID string) (<-chan struct{}, func()) {
	return f.ch, func() {
		f.mu.Lock()
		f.unsubscribed = true
		f.mu.Unlock()
	}
}

func staffStore(t *testing.T, storage *MemoryStorage, perms []string) *Store {
	t.Helper()
	store := NewStore(storage, "u1")
	store.Login(context.Background(), Identity{
		UserID:      "u1",
		StoreID:     "s1",
		Role:        model.RoleStaff,
		Permissions: perms,
	})
	return store
}

func TestSyncEqualSetsWritesNothing(t *testing.T) {
	storage := NewMemoryStorage()
	store := staffStore(t, storage, []string{"billing", "promos"})
	writesAfterLogin := storage.Writes

	// Same set, different order and a duplicate
	source := &fakeSource{codes: []string{"promos", "billing", "billing"}}
	NewSynchronizer(store, source, newFakeFeed()).Sync(context.Background())

	if storage.Writes != writesAfterLogin {
		t.Errorf("equal sets must not trigger a write, writes went %d -> %d", writesAfterLogin, storage.Writes)
	}
}

func TestSyncDifferingSetsReplacesExactly(t *testing.T) {
	storage := NewMemoryStorage()
	store := staffStore(t, storage, []string{"billing"})
	writesAfterLogin := storage.Writes

	source := &fakeSource{codes: []string{"promos", "staff"}}
	NewSynchronizer(store, source, newFakeFeed()).Sync(context.Background())

	if storage.Writes != writesAfterLogin+1 {
		t.Errorf("differing sets must trigger exactly one write, got %d extra", storage.Writes-writesAfterLogin)
	}
	id, _ := store.Identity()
	got := append([]string(nil), id.Permissions...)
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"promos", "staff"}) {
		t.Errorf("permissions = %v, want exact replacement [promos staff]", id.Permissions)
	}
}

func TestSyncFetchErrorRetainsCurrentSet(t *testing.T) {
	storage := NewMemoryStorage()
	store := staffStore(t, storage, []string{"billing"})
	writesAfterLogin := storage.Writes

	source := &fakeSource{err: errors.New("db down")}
	NewSynchronizer(store, source, newFakeFeed()).Sync(context.Background())

	if !store.HasPermission("billing") {
		t.Error("fetch failure must retain the current set")
	}
	if !store.IsAuthenticated() {
		t.Error("fetch failure must never log the session out")
	}
	if storage.Writes != writesAfterLogin {
		t.Error("fetch failure must not write")
	}
}

func TestSyncAdminExempt(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage, "u1")
	store.Login(context.Background(), Identity{UserID: "u1", Role: model.RoleAdmin})

	source := &fakeSource{codes: []string{"billing"}}
	NewSynchronizer(store, source, newFakeFeed()).Sync(context.Background())

	if source.callCount() != 0 {
		t.Error("admin sessions must never hit the permission source")
	}
	if !store.HasPermission("anything") {
		t.Error("admin must keep the sentinel")
	}
}

func TestSyncCancelledContextDiscardsResult(t *testing.T) {
	storage := NewMemoryStorage()
	store := staffStore(t, storage, []string{"billing"})
	writesAfterLogin := storage.Writes

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{codes: []string{"promos"}}
	NewSynchronizer(store, source, newFakeFeed()).Sync(ctx)

	if storage.Writes != writesAfterLogin {
		t.Error("results arriving after cancellation must be discarded")
	}
	if !store.HasPermission("billing") {
		t.Error("cancelled sync must not mutate the set")
	}
}

func TestWatchResyncsOnFeedEvent(t *testing.T) {
	storage := NewMemoryStorage()
	store := staffStore(t, storage, []string{"billing"})

	source := &fakeSource{codes: []string{"billing"}}
	feed := newFakeFeed()
	cancel := NewSynchronizer(store, source, feed).Watch(context.Background())
	defer cancel()

	if source.callCount() != 1 {
		t.Fatalf("Watch must sync once up front, got %d calls", source.callCount())
	}

	// Authoritative set changes, then the feed fires
	source.mu.Lock()
	source.codes = []string{"promos"}
	source.mu.Unlock()
	feed.ch <- struct{}{}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if store.HasPermission("promos") && !store.HasPermission("billing") {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	id, _ := store.Identity()
	t.Fatalf("feed event did not trigger a resync, permissions = %v", id.Permissions)
}

func TestWatchCancelStopsAndUnsubscribes(t *testing.T) {
	storage := NewMemoryStorage()
	store := staffStore(t, storage, []string{"billing"})

	source := &fakeSource{codes: []string{"billing"}}
	feed := newFakeFeed()
	cancel := NewSynchronizer(store, source, feed).Watch(context.Background())

	cancel()

	feed.mu.Lock()
	unsubscribed := feed.unsubscribed
	feed.mu.Unlock()
	if !unsubscribed {
		t.Error("cancel must tear down the feed subscription")
	}

	calls := source.callCount()
	feed.ch <- struct{}{}
	time.Sleep(50 * time.Millisecond)
	if source.callCount() != calls {
		t.Error("events after cancel must not trigger syncs")
	}
}

func TestEqualSets(t *testing.T) {
	cases := []struct {
		name string
		a, b []string
		want bool
	}{
		{"both empty", nil, []string{}, true},
		{"order ignored", []string{"a", "b"}, []string{"b", "a"}, true},
		{"duplicates collapse", []string{"a", "a", "b"}, []string{"b", "a"}, true},
		{"extra element", []string{"a", "b"}, []string{"a"}, false},
		{"same size different elements", []string{"a", "b"}, []string{"a", "c"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := equalSets(tc.a, tc.b); got != tc.want {
				t.Errorf("equalSets(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
