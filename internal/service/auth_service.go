package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"go-salon-ws/internal/model"
	"go-salon-ws/internal/repository"
	"go-salon-ws/internal/session"
	"go-salon-ws/internal/ws"
	"go-salon-ws/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
	Heartbeat(ctx context.Context, userID uuid.UUID) error
}

type LoginResponse struct {
	Token       string             `json:"token"`
	User        model.UserResponse `json:"user"`
	Permissions []string           `json:"permissions"` // Flat permission array for easy checking
}

type TokenValidationResponse struct {
	User        model.UserResponse `json:"user"`
	Permissions []string           `json:"permissions"`
}

type authService struct {
	userRepo repository.UserRepository
	permRepo repository.PermissionRepository
	sessions *session.Registry
	wsHub    *ws.Hub
}

func NewAuthService(userRepo repository.UserRepository, permRepo repository.PermissionRepository, sessions *session.Registry, hub *ws.Hub) AuthService {
	return &authService{
		userRepo: userRepo,
		permRepo: permRepo,
		sessions: sessions,
		wsHub:    hub,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Single session: rotate token version and refresh presence
	newTokenVersion := uuid.New().String()
	now := time.Now()
	user.TokenVersion = newTokenVersion
	user.LastSeenAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, errors.New("failed to update session")
	}

	// 5. Fetch server-declared permissions; missing rows fall back to the
	// role template during session normalization
	storeID := ""
	var permissions []string
	if user.StoreID != nil {
		storeID = user.StoreID.String()
		if !user.IsAdmin() {
			permissions, err = s.permRepo.CodesForUserStore(ctx, user.ID, *user.StoreID)
			if err != nil {
				log.Printf("Warning: permission fetch at login failed for %s: %v", user.Email, err)
				permissions = nil
			}
		}
	}

	// 6. Install the session; the registry starts the permission watch
	store := s.sessions.Login(ctx, session.Identity{
		UserID:      user.ID.String(),
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        user.Role,
		StoreID:     storeID,
		Permissions: permissions,
		Profile:     user.Profile,
	})
	identity, _ := store.Identity()

	// 7. Generate JWT token with the normalized permission set
	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.Role, storeID, identity.Permissions, newTokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	store.CacheToken(ctx, token)

	return &LoginResponse{
		Token:       token,
		User:        user.ToResponse(identity.Permissions),
		Permissions: identity.Permissions,
	}, nil
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	// Tear down the session watch and stored artifacts first
	s.sessions.Logout(ctx, userID.String())

	// Rotate the token version so the issued JWT dies with the session
	return s.userRepo.UpdateTokenVersion(ctx, userID, uuid.New().String())
}

func (s *authService) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return ErrUserNotFound
	}

	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}

	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}

	return s.userRepo.Update(ctx, user)
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	// 1. Validate JWT token
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	// 2. Find user by ID from token claims
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// 3. Check if user is still active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 4. Check against DB for strict session (TokenVersion)
	if user.TokenVersion != claims.TokenVersion {
		return nil, errors.New("session expired (logged in on another device)")
	}

	// 5. Inactivity check (no heartbeat for 5 minutes invalidates)
	if user.LastSeenAt == nil || time.Since(*user.LastSeenAt) > 5*time.Minute {
		return nil, ErrSessionTimeout
	}

	// 6. Prefer the live reconciled permission set over token claims
	permissions := claims.Permissions
	if store := s.sessions.Get(ctx, user.ID.String()); store != nil {
		if identity, ok := store.Identity(); ok {
			permissions = identity.Permissions
		}
	}

	return &TokenValidationResponse{
		User:        user.ToResponse(permissions),
		Permissions: permissions,
	}, nil
}

func (s *authService) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdateLastSeen(ctx, userID); err != nil {
		return err
	}

	// Broadcast presence so connected dashboards stay current
	go func() {
		payload := map[string]interface{}{
			"type":         "user_status_update",
			"user_id":      userID.String(),
			"status":       "online",
			"last_seen_at": time.Now(),
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()

	return nil
}
