package promo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avstrong/tourbooking/internal/booking"
	"github.com/avstrong/tourbooking/internal/logger"
)

// Verdict is the backend's answer for a promo code.
type Verdict struct {
	Success bool
	IsValid bool
	Agent   *Agent
	Message string
}

type Agent struct {
	ID              string
	DiscountPerRoom decimal.Decimal
	EarnRatePerRoom decimal.Decimal
}

func (a *Agent) grant(code string) (booking.PromoGrant, error) {
	if a.DiscountPerRoom.IsNegative() {
		return booking.PromoGrant{}, fmt.Errorf("discount per room %s: %w", a.DiscountPerRoom, ErrNegativeAmount)
	}

	if a.EarnRatePerRoom.IsNegative() {
		return booking.PromoGrant{}, fmt.Errorf("earn rate per room %s: %w", a.EarnRatePerRoom, ErrNegativeAmount)
	}

	return booking.PromoGrant{
		Code:            code,
		DiscountPerRoom: a.DiscountPerRoom,
		EarnRatePerRoom: a.EarnRatePerRoom,
		GrantorID:       a.ID,
	}, nil
}

type remote interface {
	ValidatePromoCode(ctx context.Context, code string) (*Verdict, error)
}

type Validator struct {
	l      *logger.Logger
	remote remote
}

func New(l *logger.Logger, remote remote) *Validator {
	return &Validator{l: l, remote: remote}
}

// Validate turns a promo code into a grant. Errors are one of
// booking.ErrEmptyPromoCode, *booking.NetworkError or *booking.PromoValidationError.
func (v *Validator) Validate(ctx context.Context, code string) (booking.PromoGrant, error) {
	code = booking.NormalizePromoCode(code)
	if code == "" {
		return booking.PromoGrant{}, booking.ErrEmptyPromoCode
	}

	verdict, err := v.remote.ValidatePromoCode(ctx, code)
	if err != nil {
		return booking.PromoGrant{}, fmt.Errorf("validate promo code %s: %w", code, err)
	}

	if !verdict.Success || !verdict.IsValid || verdict.Agent == nil {
		reason := verdict.Message
		if reason == "" {
			reason = "code is not valid or not active"
		}

		v.l.LogInfo("Promo code %s rejected: %s", code, reason)

		return booking.PromoGrant{}, &booking.PromoValidationError{Code: code, Reason: reason}
	}

	grant, err := verdict.Agent.grant(code)
	if err != nil {
		v.l.LogErrorf("Promo code %s returned malformed agent: %v", code, err.Error())

		return booking.PromoGrant{}, &booking.PromoValidationError{Code: code, Reason: err.Error()}
	}

	return grant, nil
}
