package session

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"go-salon-ws/internal/model"
)

const (
	identityKeyPrefix = "session:identity:"
	tokenKeyPrefix    = "session:token:"
)

// Store is the single source of truth for one authenticated identity. It
// persists to durable storage so a restart does not force re-authentication.
// Storage failures downgrade to "treat as logged out" instead of propagating.
type Store struct {
	mu       sync.RWMutex
	storage  Storage
	userID   string
	identity *Identity
}

func NewStore(storage Storage, userID string) *Store {
	return &Store{storage: storage, userID: userID}
}

func (s *Store) identityKey() string { return identityKeyPrefix + s.userID }
func (s *Store) tokenKey() string    { return tokenKeyPrefix + s.userID }

// Load reads a previously persisted identity. A corrupt blob is removed and
// the store proceeds logged-out; this never fails the caller. A found
// identity is re-normalized against the current role template and
// re-persisted in normalized form.
func (s *Store) Load(ctx context.Context) {
	raw, err := s.storage.Get(ctx, s.identityKey())
	if err != nil {
		if err != ErrNotFound {
			log.Printf("Warning: session storage read failed for %s: %v", s.userID, err)
		}
		return
	}

	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil || id.UserID == "" {
		log.Printf("Warning: corrupt session blob for %s, clearing", s.userID)
		if err := s.storage.Remove(ctx, s.identityKey()); err != nil {
			log.Printf("Warning: failed to clear corrupt session blob: %v", err)
		}
		return
	}

	// Merge stored permissions with the current role template, deduplicated.
	// Admin keeps exactly the sentinel.
	if id.Role == "" {
		id.Role = model.RoleStaff
	}
	if id.Role == model.RoleAdmin {
		id.Permissions = []string{model.PermissionAll}
	} else {
		id.Permissions = mergeUnique(id.Permissions, DefaultPermissionsForRole(id.Role))
	}

	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()
	s.persist(ctx)
}

// Login installs a normalized identity and persists it. No remote validation
// happens here; the authentication flow has already verified credentials.
func (s *Store) Login(ctx context.Context, id Identity) {
	id.normalize()
	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()
	s.persist(ctx)
}

// Logout clears the in-memory identity and removes all stored artifacts
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()

	if err := s.storage.Remove(ctx, s.identityKey()); err != nil {
		log.Printf("Warning: failed to remove session identity for %s: %v", s.userID, err)
	}
	if err := s.storage.Remove(ctx, s.tokenKey()); err != nil {
		log.Printf("Warning: failed to remove session token for %s: %v", s.userID, err)
	}
}

// IsAuthenticated reports whether an identity is currently loaded
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// Identity returns a copy of the current identity
func (s *Store) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	id := *s.identity
	id.Permissions = append([]string(nil), s.identity.Permissions...)
	return id, true
}

// HasPermission checks the current identity's permission set
func (s *Store) HasPermission(tag string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return false
	}
	return s.identity.HasPermission(tag)
}

// SetPermissions replaces the permission set and persists the identity.
// This is the synchronizer's write path.
func (s *Store) SetPermissions(ctx context.Context, permissions []string) {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return
	}
	s.identity.Permissions = dedupe(permissions)
	s.mu.Unlock()
	s.persist(ctx)
}

// CacheToken stores the session token blob alongside the identity
func (s *Store) CacheToken(ctx context.Context, token string) {
	if err := s.storage.Set(ctx, s.tokenKey(), []byte(token)); err != nil {
		log.Printf("Warning: failed to cache session token for %s: %v", s.userID, err)
	}
}

func (s *Store) persist(ctx context.Context) {
	s.mu.RLock()
	id := s.identity
	s.mu.RUnlock()
	if id == nil {
		return
	}

	raw, err := json.Marshal(id)
	if err != nil {
		log.Printf("Warning: failed to encode session identity for %s: %v", s.userID, err)
		return
	}
	if err := s.storage.Set(ctx, s.identityKey(), raw); err != nil {
		log.Printf("Warning: failed to persist session identity for %s: %v", s.userID, err)
	}
}
