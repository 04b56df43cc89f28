package mocks

import (
	"context"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/service/auth"
	"github.com/google/uuid"
)

// MockJWTService implements auth.JWTService with overridable functions.
// Without overrides it issues Token and RefreshToken and validates every
// token as Claims (or a claim for a random user) unless ValidateErr is set.
type MockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn        func(ctx context.Context, tokenString string) (*auth.Claims, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	Token        string
	RefreshToken string
	Err          error
	ValidateErr  error
	Claims       *auth.Claims
}

func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return m.Token, m.Err
}

func (m *MockJWTService) GenerateRefreshToken(context.Context, uuid.UUID) (string, error) {
	return m.RefreshToken, m.Err
}

func (m *MockJWTService) GeneratePair(ctx context.Context, userID uuid.UUID) (*auth.TokenPair, error) {
	access, err := m.GenerateToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &auth.TokenPair{
		AccessToken:  access,
		RefreshToken: m.RefreshToken,
		TokenType:    "bearer",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.claims(auth.TokenTypeAccess)
}

func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}
	return m.claims(auth.TokenTypeRefresh)
}

func (m *MockJWTService) claims(tokenType string) (*auth.Claims, error) {
	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}
	if m.Claims != nil {
		return m.Claims, nil
	}
	return &auth.Claims{UserID: uuid.New(), TokenType: tokenType}, nil
}

// PlainHasher implements auth.PasswordHasher without hashing. Compare
// succeeds when the "hashed" value equals the password.
type PlainHasher struct {
	HashErr error
}

func (h PlainHasher) Hash(password string) (string, error) {
	if h.HashErr != nil {
		return "", h.HashErr
	}
	return password, nil
}

func (PlainHasher) Compare(hashedPassword, password string) error {
	if hashedPassword != password {
		return auth.ErrPasswordMismatch
	}
	return nil
}

var (
	_ auth.JWTService     = (*MockJWTService)(nil)
	_ auth.PasswordHasher = PlainHasher{}
)
