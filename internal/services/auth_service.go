package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"comandapos/internal/caching"
	"comandapos/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// AuthClaims are the JWT claims carried by every access token.
type AuthClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Role     string    `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error)
	ValidateToken(tokenString string) (*AuthClaims, error)
	Refresh(ctx context.Context, refreshToken string, lookup func(ctx context.Context, userID uuid.UUID) (*models.User, error)) (*models.TokenResponse, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
}

type authService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	cache      caching.CacheService
}

func NewAuthService(secret string, accessTTL, refreshTTL time.Duration, cache caching.CacheService) AuthService {
	return &authService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		cache:      cache,
	}
}

func refreshKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "comandapos:refresh:" + hex.EncodeToString(sum[:])
}

func (s *authService) GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	now := time.Now()
	claims := AuthClaims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}
	// Only the hash of the refresh token is stored, keyed to the user it
	// belongs to.
	if err := s.cache.SetString(ctx, refreshKey(refreshToken), user.ID.String(), s.refreshTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *authService) ValidateToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh rotates the refresh token: the presented token is consumed and a
// fresh pair is issued for the user it maps to.
func (s *authService) Refresh(ctx context.Context, refreshToken string, lookup func(ctx context.Context, userID uuid.UUID) (*models.User, error)) (*models.TokenResponse, error) {
	key := refreshKey(refreshToken)
	stored, err := s.cache.GetString(ctx, key)
	if err != nil {
		if errors.Is(err, caching.ErrCacheMiss) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	userID, err := uuid.Parse(stored)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return s.GenerateTokens(ctx, user)
}

func (s *authService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return s.cache.Delete(ctx, refreshKey(refreshToken))
}

func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
