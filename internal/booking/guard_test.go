package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyDraft() Draft {
	checkIn := time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)

	draft := scenarioA()
	draft.CheckIn = &checkIn
	draft.Customer = Customer{
		Name:             "Nimal Perera",
		IdentityDocument: "901234567V",
		Contact:          "+94771234567",
		Email:            "nimal@example.com",
	}

	return draft
}

func offering() Offering {
	return Offering{
		ID:                 "ella",
		CapacityPerRoom:    3,
		AvailableRoomCount: 4,
	}
}

func TestCheck_PassesReadyDraft(t *testing.T) {
	draft := readyDraft()
	grant := scenarioCGrant()
	quote := Compute(draft, grant, d(100))

	err := Check(draft, quote, grant, Account{ID: "acc", SecondaryCurrencyBalance: d(4)}, offering())
	require.NoError(t, err)
}

func TestCheck_Reasons(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Draft, *Offering)
		reason RejectReason
		field  string
	}{
		{
			name:   "missing name",
			modify: func(d *Draft, _ *Offering) { d.Customer.Name = " " },
			reason: ReasonMissingCustomerField,
			field:  "customer.name",
		},
		{
			name:   "missing identity document",
			modify: func(d *Draft, _ *Offering) { d.Customer.IdentityDocument = "" },
			reason: ReasonMissingCustomerField,
			field:  "customer.identity_document",
		},
		{
			name:   "missing contact",
			modify: func(d *Draft, _ *Offering) { d.Customer.Contact = "" },
			reason: ReasonMissingCustomerField,
			field:  "customer.contact",
		},
		{
			name:   "missing email",
			modify: func(d *Draft, _ *Offering) { d.Customer.Email = "" },
			reason: ReasonMissingCustomerField,
			field:  "customer.email",
		},
		{
			name:   "malformed email",
			modify: func(d *Draft, _ *Offering) { d.Customer.Email = "nimal-at-example" },
			reason: ReasonMissingCustomerField,
			field:  "customer.email",
		},
		{
			name:   "no package",
			modify: func(d *Draft, _ *Offering) { d.Package = "" },
			reason: ReasonMissingPackage,
			field:  "package",
		},
		{
			name:   "no check-in",
			modify: func(d *Draft, _ *Offering) { d.CheckIn = nil },
			reason: ReasonMissingCheckIn,
			field:  "check_in",
		},
		{
			name:   "too many guests",
			modify: func(d *Draft, _ *Offering) { d.Occupancy = Occupancy{Adults: 5, Children: 2} },
			reason: ReasonCapacityExceeded,
			field:  "occupancy",
		},
		{
			name:   "too many rooms",
			modify: func(d *Draft, _ *Offering) { d.RoomCount = 5 },
			reason: ReasonRoomsUnavailable,
			field:  "room_count",
		},
		{
			name:   "no adults",
			modify: func(d *Draft, _ *Offering) { d.Occupancy = Occupancy{Children: 1} },
			reason: ReasonInvalidQuantity,
			field:  "occupancy",
		},
		{
			name:   "cleared room count",
			modify: func(d *Draft, _ *Offering) { d.RoomCount = 0 },
			reason: ReasonInvalidQuantity,
			field:  "room_count",
		},
		{
			name:   "cleared duration",
			modify: func(d *Draft, _ *Offering) { d.DurationDays = 0 },
			reason: ReasonInvalidQuantity,
			field:  "duration_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := readyDraft()
			o := offering()
			tt.modify(&draft, &o)

			err := Check(draft, Compute(draft, nil, d(100)), nil, Account{}, o)

			rejectErr := IsRejectError(err)
			require.NotNil(t, rejectErr, "expected reject error, got %v", err)
			assert.Equal(t, tt.reason, rejectErr.Reason)
			assert.Equal(t, tt.field, rejectErr.Field)
			assert.NotEmpty(t, rejectErr.Message)
		})
	}
}

func TestCheck_InsufficientBalance(t *testing.T) {
	draft := readyDraft()
	grant := scenarioCGrant()
	quote := Compute(draft, grant, d(100))

	err := Check(draft, quote, grant, Account{ID: "acc", SecondaryCurrencyBalance: d(3)}, offering())

	balanceErr := IsInsufficientBalanceError(err)
	require.NotNil(t, balanceErr)
	assert.True(t, balanceErr.Required.Equal(d(4)))
	assert.True(t, balanceErr.Available.Equal(d(3)))
}

func TestCheck_BalanceIgnoredWithoutPromo(t *testing.T) {
	draft := readyDraft()

	err := Check(draft, Compute(draft, nil, d(100)), nil, Account{}, offering())
	assert.NoError(t, err)
}

func TestCheck_Order(t *testing.T) {
	t.Run("missing check-in wins over insufficient balance", func(t *testing.T) {
		draft := readyDraft()
		draft.CheckIn = nil
		grant := scenarioCGrant()

		err := Check(draft, Compute(draft, grant, d(100)), grant, Account{SecondaryCurrencyBalance: d(3)}, offering())

		rejectErr := IsRejectError(err)
		require.NotNil(t, rejectErr)
		assert.Equal(t, ReasonMissingCheckIn, rejectErr.Reason)
		assert.Nil(t, IsInsufficientBalanceError(err))
	})

	t.Run("room availability fails before any currency check", func(t *testing.T) {
		for _, grant := range []*PromoGrant{nil, scenarioCGrant()} {
			draft := readyDraft()
			draft.RoomCount = 9
			draft.Occupancy = Occupancy{Adults: 2}

			err := Check(draft, Compute(draft, grant, d(100)), grant, Account{}, offering())

			rejectErr := IsRejectError(err)
			require.NotNil(t, rejectErr)
			assert.Equal(t, ReasonRoomsUnavailable, rejectErr.Reason)
		}
	})

	t.Run("customer fields before package", func(t *testing.T) {
		draft := readyDraft()
		draft.Customer.Email = ""
		draft.Package = ""

		rejectErr := IsRejectError(Check(draft, Quote{}, nil, Account{}, offering()))
		require.NotNil(t, rejectErr)
		assert.Equal(t, ReasonMissingCustomerField, rejectErr.Reason)
	})

	t.Run("package before check-in", func(t *testing.T) {
		draft := readyDraft()
		draft.Package = ""
		draft.CheckIn = nil

		rejectErr := IsRejectError(Check(draft, Quote{}, nil, Account{}, offering()))
		require.NotNil(t, rejectErr)
		assert.Equal(t, ReasonMissingPackage, rejectErr.Reason)
	})

	t.Run("capacity before room availability", func(t *testing.T) {
		draft := readyDraft()
		draft.RoomCount = 5
		draft.Occupancy = Occupancy{Adults: 20}

		rejectErr := IsRejectError(Check(draft, Quote{}, nil, Account{}, offering()))
		require.NotNil(t, rejectErr)
		assert.Equal(t, ReasonCapacityExceeded, rejectErr.Reason)
	})
}
