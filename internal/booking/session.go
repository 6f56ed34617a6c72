package booking

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Session is one open booking UI: the draft it edits, the applied promo grant
// and the submission state. All fields are guarded by mu.
type Session struct {
	mu sync.Mutex

	id       string
	draft    Draft
	offering Offering
	grant    *PromoGrant
	rate     decimal.Decimal
	state    SubmissionState

	validating       bool
	validationSeq    uint64
	cancelValidation context.CancelFunc

	idempotencyKey string
	createdAt      time.Time
}

func (s *Session) ID() string {
	return s.id
}

// view must be called with mu held.
func (s *Session) view() *View {
	var grant *PromoGrant

	if s.grant != nil {
		g := *s.grant
		grant = &g
	}

	return &View{
		SessionID:  s.id,
		Draft:      s.draft,
		Grant:      grant,
		Quote:      Compute(s.draft, s.grant, s.rate),
		Validating: s.validating,
		State:      s.state,
		OpenedAt:   s.createdAt,
	}
}

// supersedeValidation drops any in-flight promo validation. mu must be held.
func (s *Session) supersedeValidation() uint64 {
	s.validationSeq++

	if s.cancelValidation != nil {
		s.cancelValidation()
		s.cancelValidation = nil
	}

	s.validating = false

	return s.validationSeq
}

// editable must be called with mu held.
func (s *Session) editable() error {
	switch s.state {
	case StateSubmitting:
		return ErrSubmissionInProgress
	case StateDone:
		return ErrAlreadySubmitted
	default:
		return nil
	}
}

func (s *Session) apply(patch *DraftPatch) error {
	inputErr := newInputError()

	if patch.Package != nil {
		switch {
		case !patch.Package.Valid():
			inputErr.addError("package", "unknown package")
		case !s.offering.UnitPrice(*patch.Package).IsPositive():
			inputErr.addError("package", "package is not offered for this booking")
		}
	}

	if patch.DurationDays != nil && *patch.DurationDays < 0 {
		inputErr.addError("duration_days", "duration must not be negative")
	}

	if patch.RoomCount != nil && *patch.RoomCount < 0 {
		inputErr.addError("room_count", "room count must not be negative")
	}

	if patch.Occupancy != nil && (patch.Occupancy.Adults < 0 || patch.Occupancy.Children < 0) {
		inputErr.addError("occupancy", "guest counts must not be negative")
	}

	if inputErr.fieldsCount() > 0 {
		return inputErr
	}

	if patch.Package != nil {
		s.draft.Package = *patch.Package
		s.draft.UnitPrice = s.offering.UnitPrice(*patch.Package)
	}

	if patch.DurationDays != nil {
		s.draft.DurationDays = *patch.DurationDays
	}

	if patch.RoomCount != nil {
		s.draft.RoomCount = *patch.RoomCount
	}

	if patch.Occupancy != nil {
		s.draft.Occupancy = *patch.Occupancy
	}

	if patch.Customer != nil {
		s.draft.Customer = *patch.Customer
	}

	if patch.CheckIn != nil {
		// The calendar day is the one the sender meant, whatever its offset.
		y, m, d := patch.CheckIn.Date()
		checkIn := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		s.draft.CheckIn = &checkIn
	}

	if patch.Notes != nil {
		s.draft.Notes = *patch.Notes
	}

	return nil
}

func (s *Session) payload(quote Quote) Payload {
	p := Payload{
		OfferingID:           s.offering.ID,
		ProviderID:           s.offering.ProviderID,
		AccountID:            s.draft.AccountID,
		Customer:             s.draft.Customer,
		Package:              s.draft.Package,
		UnitPrice:            s.draft.UnitPrice,
		DurationDays:         quote.EffectiveDays,
		RoomCount:            s.draft.RoomCount,
		Adults:               s.draft.Occupancy.Adults,
		Children:             s.draft.Occupancy.Children,
		Notes:                s.draft.Notes,
		BaseTotal:            quote.BaseTotal,
		DiscountTotal:        quote.DiscountTotal,
		PayableTotal:         quote.PayableTotal,
		DiscountPerRoom:      decimal.Zero,
		EarnRatePerRoom:      decimal.Zero,
		SecondaryCurrencyDue: quote.SecondaryCurrencyDue,
		ExchangeRate:         quote.ExchangeRate,
	}

	if s.draft.CheckIn != nil {
		p.CheckIn = *s.draft.CheckIn
	}

	if s.grant != nil {
		p.PromoApplied = true
		p.PromoCode = s.grant.Code
		p.GrantorID = s.grant.GrantorID
		p.DiscountPerRoom = s.grant.DiscountPerRoom
		p.EarnRatePerRoom = s.grant.EarnRatePerRoom
	}

	return p
}
