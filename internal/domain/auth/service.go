package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hallday/hallday-api/internal/pkg/jwt"
	"github.com/hallday/hallday-api/internal/pkg/password"
)

// Service handles admin authentication
type Service struct {
	repo       Repository
	jwtService *jwt.Service
	sessions   *SessionStore
}

// NewService creates auth service
func NewService(repo Repository, jwtService *jwt.Service, sessions *SessionStore) *Service {
	return &Service{
		repo:       repo,
		jwtService: jwtService,
		sessions:   sessions,
	}
}

// SignInResult carries the session token issued at sign-in
type SignInResult struct {
	Admin     *Admin
	Token     string
	ExpiresAt time.Time
}

// SignIn verifies credentials and issues a session token
func (s *Service) SignIn(ctx context.Context, loginID, plainPassword string) (*SignInResult, error) {
	admin, err := s.repo.GetByLoginID(ctx, loginID)
	if err != nil {
		return nil, err
	}
	if admin == nil || !password.Verify(plainPassword, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, _, expiresAt, err := s.jwtService.GenerateAccessToken(admin.ID, admin.LoginID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLastLogin(ctx, admin.ID, time.Now()); err != nil {
		// Non-fatal: the session is already issued
		log.Warn().Err(err).Str("login_id", admin.LoginID).Msg("Failed to record last login")
	}

	return &SignInResult{
		Admin:     admin,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// SignOut revokes the current session token
func (s *Service) SignOut(ctx context.Context, jti string) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Revoke(ctx, jti, s.jwtService.GetAccessTTL())
}

// Me returns the authenticated admin
func (s *Service) Me(ctx context.Context, adminID uuid.UUID) (*Admin, error) {
	admin, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}
