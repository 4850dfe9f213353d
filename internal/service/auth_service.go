package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gp-maquinas/maintenance-service/internal/auth"
	"github.com/gp-maquinas/maintenance-service/internal/config"
	"github.com/gp-maquinas/maintenance-service/internal/domain"
	"github.com/gp-maquinas/maintenance-service/internal/events"
	"github.com/gp-maquinas/maintenance-service/internal/repository"
	apperrors "github.com/gp-maquinas/maintenance-service/pkg/util"
)

// AuthService is the login/verify/logout authority. Sessions are stateless:
// the signed token is the only session record, so logout is advisory and no
// per-session server state exists.
type AuthService struct {
	users      repository.UserRepository
	stores     repository.StoreRepository
	codec      *auth.TokenCodec
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	StoreRepo  repository.StoreRepository
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		stores:     deps.StoreRepo,
		codec:      auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL()),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.BcryptCost,
	}
}

// LoginResult bundles the issued token with the redacted identity view.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  domain.Identity
	Username  string
}

// Login verifies credentials and mints a token. Unknown username, inactive
// account, and wrong password all fail identically so usernames cannot be
// enumerated.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.publishLogin(ctx, events.EventLoginFailed, username, domain.Identity{})
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !user.IsActive {
		s.publishLogin(ctx, events.EventLoginFailed, username, domain.Identity{})
		return nil, apperrors.NewInvalidCredentials()
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.publishLogin(ctx, events.EventLoginFailed, username, domain.Identity{})
		return nil, apperrors.NewInvalidCredentials()
	}

	storeID := ""
	if user.StoreID != nil {
		storeID = *user.StoreID
	}
	token, expiresAt, err := s.codec.Encode(user.ID, user.Username, user.Role, storeID, user.FullName)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	identity := user.Identity()
	s.publishLogin(ctx, events.EventLoginSucceeded, username, identity)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Identity:  identity,
		Username:  user.Username,
	}, nil
}

// Verify maps a token to its identity. Pure computation, no storage lookup:
// the token claims are the source of truth for the request's duration.
func (s *AuthService) Verify(token string) (domain.Identity, *auth.Claims, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return domain.Identity{}, nil, err
	}
	return claims.Identity(), claims, nil
}

// Logout is advisory: a still-valid stateless token cannot be invalidated
// early, the contract is that the client discards its copy. Reports success
// whenever the presented token was structurally valid.
func (s *AuthService) Logout(token string) error {
	if _, _, err := s.Verify(token); err != nil {
		return err
	}
	return nil
}

// ChangePassword rotates the caller's own password after re-verifying the
// current one. The re-check fails with the same unified error as login.
func (s *AuthService) ChangePassword(ctx context.Context, identity domain.Identity, current, next string) error {
	if len(next) < 6 {
		return apperrors.NewValidationError("new password must be at least 6 characters", map[string]any{"newPassword": "too short"})
	}
	user, err := s.users.GetByID(ctx, identity.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidCredentials()
		}
		return apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, current); err != nil {
		return apperrors.NewInvalidCredentials()
	}

	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// DeactivateUser disables an account so its next login fails. Admin only;
// already-issued tokens stay valid until expiry because sessions are
// stateless.
func (s *AuthService) DeactivateUser(ctx context.Context, identity domain.Identity, userID string) error {
	if !identity.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	if userID == identity.SubjectID {
		return apperrors.NewValidationError("cannot deactivate your own account", nil)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.NewInternalError(err)
	}
	if err := s.users.Deactivate(ctx, userID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Profile returns the identity enriched with the store's catalog entry for
// store-scoped accounts.
func (s *AuthService) Profile(ctx context.Context, identity domain.Identity) (*domain.Store, error) {
	storeID, ok := identity.StoreAffiliation()
	if !ok {
		return nil, nil
	}
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("store", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return store, nil
}

// Codec exposes the token codec for middleware wiring.
func (s *AuthService) Codec() *auth.TokenCodec {
	return s.codec
}

func (s *AuthService) publishLogin(ctx context.Context, eventType events.EventType, username string, identity domain.Identity) {
	if s.dispatcher == nil {
		return
	}
	storeID, _ := identity.StoreAffiliation()
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		StoreID:   storeID,
		Actor:     events.Actor{SubjectID: identity.SubjectID, Role: identity.Role, Username: username},
		Timestamp: time.Now(),
		Payload:   events.LoginPayload{Username: username},
	})
}
