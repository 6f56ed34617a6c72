package booking

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_DistinctPerError(t *testing.T) {
	errs := map[string]error{
		"empty code":        ErrEmptyPromoCode,
		"invalid code":      &PromoValidationError{Code: "XMAS", Reason: "expired"},
		"network":           &NetworkError{Op: "validatePromoCode", Err: errors.New("dial tcp: refused")},
		"balance":           &InsufficientBalanceError{Required: d(4), Available: d(3)},
		"server rejection":  &ServerRejectionError{Message: "Rooms no longer available"},
		"guard":             &RejectError{Reason: ReasonMissingCheckIn, Message: "Please select a check-in date."},
		"in progress":       ErrSubmissionInProgress,
		"already submitted": ErrAlreadySubmitted,
	}

	seen := make(map[string]string)

	for name, err := range errs {
		msg := Message(fmt.Errorf("wrapped: %w", err))

		assert.NotEmpty(t, msg, name)

		if other, ok := seen[msg]; ok {
			t.Errorf("%s and %s render the same message %q", name, other, msg)
		}

		seen[msg] = name
	}
}

func TestMessage_Verbatim(t *testing.T) {
	assert.Equal(t, "Rooms no longer available", Message(&ServerRejectionError{Message: "Rooms no longer available"}))
	assert.Equal(t,
		"Insufficient HSC balance. Required: 4.00 HSC, available: 3.00 HSC.",
		Message(&InsufficientBalanceError{Required: d(4), Available: d(3)}),
	)
	assert.Empty(t, Message(nil))
}

func TestIsInputError(t *testing.T) {
	assert.Nil(t, IsInputError(nil))
	assert.Nil(t, IsInputError(ErrSessionNotFound))

	inputErr := IsInputError(fmt.Errorf("open: %w", ErrEmptyPromoCode))
	if assert.NotNil(t, inputErr) {
		assert.Contains(t, inputErr.Fields(), "promo_code")
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("create booking: %w", &NetworkError{Op: "createBooking", Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.NotNil(t, IsNetworkError(err))
}
