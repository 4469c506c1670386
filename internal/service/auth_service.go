package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/adoption-service/internal/auth"
	"github.com/spec-kit/adoption-service/internal/config"
	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/repository"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

// AuthResult is returned by register and login.
type AuthResult struct {
	User  *domain.User
	Token string
	Meta  domain.Token
}

// RegisterInput carries sign-up fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	clock      Clock
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Clock    Clock
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		clock:      deps.Clock,
	}
}

// Register creates a new adopter account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := requireFields(map[string]string{
		"name": input.Name, "email": input.Email, "password": input.Password,
	}, "name", "email", "password"); err != nil {
		return nil, err
	}
	if !validEmail(input.Email) {
		return nil, apperrors.NewValidationError("invalid email address", map[string]any{"fields": []string{"email"}})
	}
	if err := auth.CheckPasswordPolicy(input.Password); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"fields": []string{"password"}})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, storeError(err, "user", nil)
	}
	return s.issue(user)
}

// Login authenticates a user. Banned users are refused with their unban time
// unless the ban has already come due.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, storeError(err, "user", nil)
	}
	ok, err := auth.PasswordMatches(user.PasswordHash, password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !ok {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if user.Ban.IsBanned && !user.Ban.UnbanDue(s.clock.now()) {
		return nil, auth.BannedError(user.Ban)
	}
	return s.issue(user)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, meta, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, Meta: meta}, nil
}
