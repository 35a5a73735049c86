package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"catapi/internal/model"
)

const (
	// AccessTokenExpiry is the duration for which access tokens are valid.
	AccessTokenExpiry = 1 * time.Hour
	// RefreshTokenExpiry is the duration for which refresh tokens are valid.
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken is returned for malformed, expired or mistyped tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims represents JWT claims.
type Claims struct {
	UserID   string     `json:"user_id"`
	UserName string     `json:"user_name"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	Type     string     `json:"typ"`
	jwt.RegisteredClaims
}

// Principal returns the acting user described by the claims.
func (c *Claims) Principal() *Principal {
	return &Principal{ID: c.UserID, UserName: c.UserName, Email: c.Email, Role: c.Role}
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// GenerateAccessToken generates a new access token for the user. The token
// carries an ID so it can be revoked on logout.
func (s *JWTService) GenerateAccessToken(user *model.User) (string, error) {
	return s.sign(user, tokenTypeAccess, generateTokenID(), AccessTokenExpiry)
}

// GenerateRefreshToken generates a new refresh token for the user.
// The refresh token ID is returned separately for storage in Redis.
func (s *JWTService) GenerateRefreshToken(user *model.User) (tokenID string, token string, err error) {
	tokenID = generateTokenID()
	token, err = s.sign(user, tokenTypeRefresh, tokenID, RefreshTokenExpiry)
	return tokenID, token, err
}

func (s *JWTService) sign(user *model.User, typ, id string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:   user.ID,
		UserName: user.UserName,
		Email:    user.Email,
		Role:     user.Role,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateAccessToken validates a token and checks that it is an access token.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateRefreshToken validates a token and checks that it is a refresh
// token with an ID.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenTypeRefresh || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// generateTokenID generates a unique token ID.
func generateTokenID() string {
	return uuid.New().String()
}
