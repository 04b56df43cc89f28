package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestService(t *testing.T, secret string, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(secret, time.Hour, 24*time.Hour, now)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60, RefreshTokenLifetimeMinutes: 120})
	assert.ErrorIs(t, err, ErrWeakSecret)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60, RefreshTokenLifetimeMinutes: 120})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGeneratePair(t *testing.T) {
	t.Parallel()
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, testSecret, func() time.Time { return fixed })
	userID := uuid.New()

	pair, err := svc.GeneratePair(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, fixed.Add(time.Hour), pair.ExpiresAt)

	access, err := svc.ValidateToken(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, access.UserID)
	assert.Equal(t, TokenTypeAccess, access.TokenType)
	assert.Equal(t, fixed.Unix(), access.IssuedAt.Unix())

	refresh, err := svc.ValidateRefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(24*time.Hour).Unix(), refresh.ExpiresAt.Unix())
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	issuer := newTestService(t, testSecret, func() time.Time { return fixed })

	access, err := issuer.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken(context.Background(), userID)
	require.NoError(t, err)

	tests := []struct {
		name      string
		validator *hmacJWTService
		token     string
		refresh   bool
		wantErr   error
	}{
		{name: "valid access", validator: issuer, token: access},
		{name: "valid refresh", validator: issuer, token: refresh, refresh: true},
		{
			name:      "expired access",
			validator: newTestService(t, testSecret, func() time.Time { return fixed.Add(2 * time.Hour) }),
			token:     access,
			wantErr:   ErrExpiredToken,
		},
		{
			name:      "within clock skew",
			validator: newTestService(t, testSecret, func() time.Time { return fixed.Add(time.Hour + time.Minute) }),
			token:     access,
		},
		{
			name:      "expired refresh",
			validator: newTestService(t, testSecret, func() time.Time { return fixed.Add(48 * time.Hour) }),
			token:     refresh,
			refresh:   true,
			wantErr:   ErrExpiredRefreshToken,
		},
		{
			name:      "wrong signature",
			validator: newTestService(t, "wrong-secret-that-is-long-enough-for-testing", func() time.Time { return fixed }),
			token:     access,
			wantErr:   ErrInvalidToken,
		},
		{name: "malformed", validator: issuer, token: "this.is.not.a.valid.jwt.token", wantErr: ErrInvalidToken},
		{name: "refresh used as access", validator: issuer, token: refresh, wantErr: ErrWrongTokenType},
		{name: "access used as refresh", validator: issuer, token: access, refresh: true, wantErr: ErrWrongTokenType},
		{name: "malformed refresh", validator: issuer, token: "garbage", refresh: true, wantErr: ErrInvalidRefreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			validate := tt.validator.ValidateToken
			if tt.refresh {
				validate = tt.validator.ValidateRefreshToken
			}
			claims, err := validate(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}
