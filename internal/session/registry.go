package session

import (
	"context"
	"sync"
)

type sessionEntry struct {
	store  *Store
	cancel func()
}

// Registry tracks the active session store per user and runs one permission
// synchronizer watch per session. Storage-persisted sessions are resumed
// lazily on first access after a restart.
type Registry struct {
	mu       sync.Mutex
	storage  Storage
	source   PermissionSource
	feed     Feed
	sessions map[string]*sessionEntry
}

func NewRegistry(storage Storage, source PermissionSource, feed Feed) *Registry {
	return &Registry{
		storage:  storage,
		source:   source,
		feed:     feed,
		sessions: make(map[string]*sessionEntry),
	}
}

// Login installs the identity, replacing any previous session for the user,
// and starts the synchronizer watch bound to this (user, store) key.
func (r *Registry) Login(ctx context.Context, id Identity) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.sessions[id.UserID]; ok {
		prev.cancel()
	}

	store := NewStore(r.storage, id.UserID)
	store.Login(ctx, id)
	cancel := NewSynchronizer(store, r.source, r.feed).Watch(context.Background())
	r.sessions[id.UserID] = &sessionEntry{store: store, cancel: cancel}
	return store
}

// Logout tears down the watch and clears the session artifacts
func (r *Registry) Logout(ctx context.Context, userID string) {
	r.mu.Lock()
	entry, ok := r.sessions[userID]
	if ok {
		delete(r.sessions, userID)
	}
	r.mu.Unlock()

	if ok {
		entry.cancel()
		entry.store.Logout(ctx)
		return
	}
	// No live session; still clear whatever is persisted
	NewStore(r.storage, userID).Logout(ctx)
}

// Get returns the user's active session store, resuming a persisted one if
// the process restarted since login. Returns nil when no session exists.
func (r *Registry) Get(ctx context.Context, userID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.sessions[userID]; ok {
		return entry.store
	}

	store := NewStore(r.storage, userID)
	store.Load(ctx)
	if !store.IsAuthenticated() {
		return nil
	}
	cancel := NewSynchronizer(store, r.source, r.feed).Watch(context.Background())
	r.sessions[userID] = &sessionEntry{store: store, cancel: cancel}
	return store
}

// Close cancels every active watch; used during shutdown
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, entry := range r.sessions {
		entry.cancel()
		delete(r.sessions, userID)
	}
}
