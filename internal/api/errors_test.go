package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/service"
	"github.com/dreamtracer/dreamtracer-api/internal/service/auth"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"wrapped dream not found", fmt.Errorf("load: %w", store.ErrDreamNotFound), http.StatusNotFound},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"analysis in progress", service.ErrAnalysisInProgress, http.StatusConflict},
		{"usage limit", service.ErrUsageLimitExceeded, http.StatusPaymentRequired},
		{"domain validation", domain.ErrTitleTooLong, http.StatusBadRequest},
		{"invalid period", service.ErrInvalidPeriod, http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"service error", service.NewServiceError("op", "failed", errors.New("db down")), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "Dream not found", GetSafeErrorMessage(fmt.Errorf("x: %w", store.ErrDreamNotFound)))
	assert.Equal(t, "Title must be at most 100 characters", GetSafeErrorMessage(domain.ErrTitleTooLong))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))

	leaky := fmt.Errorf("query failed: postgres://admin:secret@db:5432/dreams: %w", errors.New("timeout"))
	msg := GetSafeErrorMessage(leaky)
	assert.NotContains(t, msg, "secret")
	assert.Equal(t, "An unexpected error occurred", msg)
}

func TestSanitizeValidationError(t *testing.T) {
	err := validator.New().Struct(RegisterRequest{Email: "not-an-email", Password: "long enough password"})
	require.Error(t, err)

	assert.Equal(t, "Invalid Email: invalid email format", SanitizeValidationError(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}
