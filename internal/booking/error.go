package booking

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrIdempotencyKey       = errors.New("idempotency key not found")
	ErrNextID               = errors.New("get next id from generator")
	ErrRecordNotFound       = errors.New("record not found")
	ErrSessionNotFound      = errors.New("booking session not found")
	ErrOfferingNotFound     = errors.New("offering not found")
	ErrEmptyPromoCode       = newInputError().with("promo_code", "enter a promo code")
	ErrValidationSuperseded = errors.New("promo validation superseded by a newer request")
	ErrSubmissionInProgress = errors.New("booking submission already in progress")
	ErrAlreadySubmitted     = errors.New("booking already submitted")
)

// InputError is a local validation failure caught before any network call.
type InputError struct {
	fields map[string][]string
}

func newInputError() *InputError {
	return &InputError{
		fields: make(map[string][]string),
	}
}

func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}

	var inputError *InputError

	if errors.As(err, &inputError) {
		return inputError
	}

	return nil
}

func (ie *InputError) with(field, msg string) *InputError {
	ie.addError(field, msg)

	return ie
}

func (ie *InputError) fieldsCount() int {
	return len(ie.fields)
}

func (ie *InputError) addError(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

func (ie *InputError) Error() string {
	return fmt.Sprintf("%+v", ie.fields)
}

func (ie *InputError) Fields() map[string][]string {
	return ie.fields
}

func (ie *InputError) message() string {
	keys := make([]string, 0, len(ie.fields))
	for k := range ie.fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, ie.fields[k]...)
	}

	return strings.Join(msgs, "; ")
}

// PromoValidationError means the server reported the code as invalid, inactive or expired.
type PromoValidationError struct {
	Code   string
	Reason string
}

func (e *PromoValidationError) Error() string {
	return fmt.Sprintf("promo code %s rejected: %s", e.Code, e.Reason)
}

func IsPromoValidationError(err error) *PromoValidationError {
	var promoErr *PromoValidationError

	if errors.As(err, &promoErr) {
		return promoErr
	}

	return nil
}

// NetworkError wraps a transport failure towards the remote backend.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func IsNetworkError(err error) *NetworkError {
	var netErr *NetworkError

	if errors.As(err, &netErr) {
		return netErr
	}

	return nil
}

type RejectReason string

const (
	ReasonMissingCustomerField RejectReason = "missing_customer_field"
	ReasonMissingPackage       RejectReason = "missing_package"
	ReasonMissingCheckIn       RejectReason = "missing_check_in"
	ReasonCapacityExceeded     RejectReason = "capacity_exceeded"
	ReasonRoomsUnavailable     RejectReason = "rooms_unavailable"
	ReasonInvalidQuantity      RejectReason = "invalid_quantity"
	ReasonInsufficientBalance  RejectReason = "insufficient_balance"
)

// RejectError is a guard failure other than the balance check.
type RejectError struct {
	Reason  RejectReason
	Field   string
	Message string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func IsRejectError(err error) *RejectError {
	var rejectErr *RejectError

	if errors.As(err, &rejectErr) {
		return rejectErr
	}

	return nil
}

type InsufficientBalanceError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient HSC balance: required %s, available %s", e.Required.String(), e.Available.String())
}

func IsInsufficientBalanceError(err error) *InsufficientBalanceError {
	var balanceErr *InsufficientBalanceError

	if errors.As(err, &balanceErr) {
		return balanceErr
	}

	return nil
}

// ServerRejectionError is a business rejection of a transport-successful submission.
type ServerRejectionError struct {
	Message string
}

func (e *ServerRejectionError) Error() string {
	return fmt.Sprintf("booking rejected by server: %s", e.Message)
}

func IsServerRejectionError(err error) *ServerRejectionError {
	var rejectionErr *ServerRejectionError

	if errors.As(err, &rejectionErr) {
		return rejectionErr
	}

	return nil
}

// Message renders err into the single user-visible message slot of the booking flow.
func Message(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrEmptyPromoCode) {
		return "Please enter a promo code."
	}

	if inputErr := IsInputError(err); inputErr != nil {
		return inputErr.message()
	}

	if promoErr := IsPromoValidationError(err); promoErr != nil {
		return fmt.Sprintf("Promo code %s is not valid or no longer active.", promoErr.Code)
	}

	if balanceErr := IsInsufficientBalanceError(err); balanceErr != nil {
		return fmt.Sprintf(
			"Insufficient HSC balance. Required: %s HSC, available: %s HSC.",
			balanceErr.Required.StringFixed(2),
			balanceErr.Available.StringFixed(2),
		)
	}

	if rejectErr := IsRejectError(err); rejectErr != nil {
		return rejectErr.Message
	}

	if rejectionErr := IsServerRejectionError(err); rejectionErr != nil {
		return rejectionErr.Message
	}

	if IsNetworkError(err) != nil {
		return "Could not reach the booking service. Please check your connection and try again."
	}

	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "This booking session has expired. Please start again."
	case errors.Is(err, ErrOfferingNotFound):
		return "The selected offering is no longer available."
	case errors.Is(err, ErrSubmissionInProgress):
		return "Your booking is being submitted."
	case errors.Is(err, ErrAlreadySubmitted):
		return "This booking has already been submitted."
	case errors.Is(err, ErrValidationSuperseded):
		return ""
	}

	return "Something went wrong. Please try again."
}
