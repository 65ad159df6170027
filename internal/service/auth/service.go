package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hebamio/midwife-api/internal/email"
	"github.com/hebamio/midwife-api/internal/model"
	"github.com/hebamio/midwife-api/internal/repository"
	"github.com/hebamio/midwife-api/internal/service/midwife"
	"github.com/hebamio/midwife-api/pkg/auth"
	apperrors "github.com/hebamio/midwife-api/pkg/errors"
	"github.com/hebamio/midwife-api/pkg/logger"
	"github.com/hebamio/midwife-api/pkg/security"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	resetTokenTTL    = time.Hour
)

// Service authenticates midwife accounts and runs the password reset flow.
type Service struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	midwifeSvc *midwife.Service
	jwtSvc     auth.JWTService
	hasher     security.PasswordHasher
	emailSvc   email.Service
	logger     *logger.Logger
}

func NewService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	midwifeSvc *midwife.Service,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	emailSvc email.Service,
	logger *logger.Logger,
) *Service {
	return &Service{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		midwifeSvc: midwifeSvc,
		jwtSvc:     jwtSvc,
		hasher:     hasher,
		emailSvc:   emailSvc,
		logger:     logger,
	}
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
	}

	if s.isLockedOut(user) {
		return nil, apperrors.Forbidden("account temporarily locked, try again later")
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		s.recordFailedAttempt(ctx, user)
		return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
	}

	now := time.Now()
	user.LoginAttempts = 0
	user.LastLoginAttempt = now
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error(err, "failed to record login", "user_id", user.ID.String())
	}

	return s.issueTokens(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, req *model.RefreshTokenRequest) (*model.TokenResponse, error) {
	userID, err := s.jwtSvc.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	if user.Status == model.UserStatusLocked {
		return nil, apperrors.Forbidden("account is locked")
	}

	return s.issueTokens(ctx, user)
}

// ForgotPassword always reports success so the endpoint cannot be used to
// probe which emails have accounts.
func (s *Service) ForgotPassword(ctx context.Context, req *model.ForgotPasswordRequest) error {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Debug("password reset requested for unknown email")
		return nil
	}

	token, err := generateToken()
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.tokenRepo.StoreResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.emailSvc.SendPasswordReset(ctx, user.Email, token); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	userID, err := s.tokenRepo.ValidateResetToken(ctx, req.Token)
	if err != nil {
		return apperrors.BadRequest("invalid or expired token", err)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.BadRequest("invalid password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.tokenRepo.InvalidateToken(ctx, req.Token); err != nil {
		s.logger.Error(err, "failed to invalidate reset token", "user_id", userID.String())
	}
	return nil
}

func (s *Service) issueTokens(ctx context.Context, user *model.User) (*model.TokenResponse, error) {
	midwifeID := uuid.Nil
	if mw, err := s.midwifeSvc.GetByUserID(ctx, user.ID); err == nil {
		midwifeID = mw.ID
	}

	accessToken, err := s.jwtSvc.GenerateAccessToken(user.ID, midwifeID, user.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refreshToken, err := s.jwtSvc.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *Service) isLockedOut(user *model.User) bool {
	if user.Status == model.UserStatusLocked {
		return true
	}
	if user.LoginAttempts < maxLoginAttempts {
		return false
	}
	return time.Since(user.LastLoginAttempt) < lockoutDuration
}

func (s *Service) recordFailedAttempt(ctx context.Context, user *model.User) {
	if time.Since(user.LastLoginAttempt) >= lockoutDuration {
		user.LoginAttempts = 0
	}
	user.LoginAttempts++
	user.LastLoginAttempt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error(err, "failed to record login attempt", "user_id", user.ID.String())
	}
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
