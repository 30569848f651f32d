package errors

import (
	"fmt"
	"net/http"
	"testing"

	"storefront/domain/shared"

	"github.com/stretchr/testify/assert"
)

func TestFromDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   ErrorCode
		wantStatus int
		wantReason string
	}{
		{"not found", shared.NewError(shared.ErrNotFound, "order", "ORDER_NOT_FOUND", "", "Order not found"), CodeNotFound, http.StatusNotFound, "ORDER_NOT_FOUND"},
		{"validation", shared.NewError(shared.ErrInvalidInput, "order", "INSUFFICIENT_STOCK", "quantity", "Tee is out of stock"), CodeValidation, http.StatusBadRequest, "INSUFFICIENT_STOCK"},
		{"conflict", shared.NewConflictError("subscriber", "already subscribed"), CodeConflict, http.StatusConflict, "CONFLICT"},
		{"business rule", shared.NewError(shared.ErrBusinessRule, "order", "ORDER_ALREADY_PAID", "", "paid"), CodeBusinessRule, http.StatusBadRequest, "ORDER_ALREADY_PAID"},
		{"forbidden", shared.NewForbiddenError("identity", "admin only"), CodeForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unauthorized", shared.NewUnauthorizedError("login"), CodeUnauthorized, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"verification failed", shared.NewError(shared.ErrGateway, "payment", "VERIFICATION_FAILED", "", "declined"), CodeGateway, http.StatusBadRequest, "VERIFICATION_FAILED"},
		{"gateway down", shared.NewError(shared.ErrGateway, "payment", "GATEWAY_UNAVAILABLE", "", "timeout"), CodeGatewayUnavailable, http.StatusBadGateway, "GATEWAY_UNAVAILABLE"},
		{"wrapped", fmt.Errorf("settle: %w", shared.NewError(shared.ErrNotFound, "product", "PRODUCT_NOT_FOUND", "", "gone")), CodeNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomainError(tt.err)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatusCode())
			assert.Equal(t, tt.wantReason, appErr.Reason)
			assert.ErrorIs(t, appErr, tt.err)
		})
	}
}

func TestFromDomainErrorHidesInternals(t *testing.T) {
	appErr := FromDomainError(fmt.Errorf("dial tcp: connection refused"))
	assert.Equal(t, CodeInternal, appErr.Code)
	assert.Equal(t, "internal server error", appErr.Message)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatusCode())
}

func TestFromDomainErrorKeepsCauseOutOfMessage(t *testing.T) {
	cause := fmt.Errorf("decode paystack response: invalid character '<'")
	de := shared.NewError(shared.ErrGateway, "payment", "GATEWAY_UNAVAILABLE", "", "Payment provider unavailable")
	de.Cause = cause

	appErr := FromDomainError(fmt.Errorf("verify: %w", de))
	assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatusCode())
	assert.Equal(t, "Payment provider unavailable", appErr.Message)
	assert.ErrorIs(t, appErr, cause)
	assert.ErrorIs(t, appErr, shared.ErrGateway)
}

func TestFromDomainErrorKeepsAppError(t *testing.T) {
	original := TooManyRequests("slow down")
	assert.Same(t, original, FromDomainError(fmt.Errorf("wrapped: %w", original)))
	assert.True(t, Is(original, CodeTooManyRequest))
	assert.Nil(t, FromDomainError(nil))
}
