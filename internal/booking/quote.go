package booking

import "github.com/shopspring/decimal"

// Compute derives the price quote for a draft. It has no side effects and
// must be called again after every change to the draft, the grant or the rate.
//
// Payable total and HSC due both come from the same earn rate total; they
// are never computed independently.
func Compute(draft Draft, grant *PromoGrant, rate decimal.Decimal) Quote {
	zero := Quote{
		BaseTotal:            decimal.Zero,
		DiscountTotal:        decimal.Zero,
		DiscountedTotal:      decimal.Zero,
		EarnRateTotal:        decimal.Zero,
		PayableTotal:         decimal.Zero,
		SecondaryCurrencyDue: decimal.Zero,
		ExchangeRate:         rate,
	}

	days := draft.EffectiveDays()

	if !draft.UnitPrice.IsPositive() || draft.RoomCount <= 0 || days <= 0 {
		return zero
	}

	if grant != nil && !rate.IsPositive() {
		return zero
	}

	rooms := decimal.NewFromInt(int64(draft.RoomCount))
	base := draft.UnitPrice.Mul(decimal.NewFromInt(int64(days))).Mul(rooms)

	q := Quote{
		EffectiveDays:        days,
		BaseTotal:            base,
		DiscountTotal:        decimal.Zero,
		DiscountedTotal:      base,
		EarnRateTotal:        decimal.Zero,
		PayableTotal:         base,
		SecondaryCurrencyDue: decimal.Zero,
		ExchangeRate:         rate,
	}

	if grant == nil {
		return q
	}

	q.DiscountTotal = grant.DiscountPerRoom.Mul(rooms)
	q.DiscountedTotal = base.Sub(q.DiscountTotal)
	q.EarnRateTotal = grant.EarnRatePerRoom.Mul(rooms)
	q.PayableTotal = q.DiscountedTotal.Sub(q.EarnRateTotal)
	q.SecondaryCurrencyDue = q.EarnRateTotal.Div(rate)

	return q
}
