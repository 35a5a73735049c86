package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"catapi/internal/auth"
	"catapi/internal/errors"
	"catapi/internal/model"
	"catapi/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.Unauthorized("invalid email or password")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.Unauthorized("invalid or expired refresh token")
)

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string, access *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error) {
	user, err = s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	accessToken, err = s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", "", nil, errors.Store(fmt.Errorf("generate access token: %w", err))
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return "", "", nil, errors.Store(fmt.Errorf("generate refresh token: %w", err))
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, auth.RefreshTokenExpiry); err != nil {
		return "", "", nil, errors.Store(fmt.Errorf("store refresh token: %w", err))
	}

	return accessToken, refreshToken, user, nil
}

// RefreshToken validates a refresh token and returns a new access token
// built from the current user record.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID != claims.UserID {
		return "", ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", errors.Store(fmt.Errorf("generate access token: %w", err))
	}
	return accessToken, nil
}

// Logout invalidates a refresh token and revokes the access token used for
// the request until it expires.
func (s *authService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	if access != nil && claims.UserID != access.UserID {
		return ErrInvalidRefreshToken
	}

	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
		return errors.Store(fmt.Errorf("delete refresh token: %w", err))
	}

	if access != nil && access.ID != "" && access.ExpiresAt != nil {
		ttl := time.Until(access.ExpiresAt.Time)
		if err := s.tokenStore.BlacklistAccessToken(ctx, access.ID, ttl); err != nil {
			return errors.Store(fmt.Errorf("blacklist access token: %w", err))
		}
	}
	return nil
}
