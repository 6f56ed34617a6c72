package booking

import (
	"fmt"
	"net/mail"
	"strings"
)

// Check gates a submission. Checks run in a fixed order and the first failing
// one is returned; problems are never aggregated.
func Check(draft Draft, quote Quote, grant *PromoGrant, account Account, offering Offering) error {
	if err := checkCustomer(draft.Customer); err != nil {
		return err
	}

	if !draft.Package.Valid() {
		return &RejectError{
			Reason:  ReasonMissingPackage,
			Field:   "package",
			Message: "Please select a package.",
		}
	}

	if draft.CheckIn == nil || draft.CheckIn.IsZero() {
		return &RejectError{
			Reason:  ReasonMissingCheckIn,
			Field:   "check_in",
			Message: "Please select a check-in date.",
		}
	}

	// A cleared room count is reported by checkQuantities, not as zero capacity.
	if capacity := offering.CapacityPerRoom * draft.RoomCount; draft.RoomCount >= 1 && draft.Occupancy.Total() > capacity {
		return &RejectError{
			Reason: ReasonCapacityExceeded,
			Field:  "occupancy",
			Message: fmt.Sprintf(
				"%d guests exceed the capacity of %d for %d room(s).",
				draft.Occupancy.Total(),
				capacity,
				draft.RoomCount,
			),
		}
	}

	if draft.RoomCount > offering.AvailableRoomCount {
		return &RejectError{
			Reason: ReasonRoomsUnavailable,
			Field:  "room_count",
			Message: fmt.Sprintf(
				"Only %d room(s) available, %d requested.",
				offering.AvailableRoomCount,
				draft.RoomCount,
			),
		}
	}

	if err := checkQuantities(draft); err != nil {
		return err
	}

	if grant != nil && quote.SecondaryCurrencyDue.GreaterThan(account.SecondaryCurrencyBalance) {
		return &InsufficientBalanceError{
			Required:  quote.SecondaryCurrencyDue,
			Available: account.SecondaryCurrencyBalance,
		}
	}

	return nil
}

// checkQuantities catches fields a user cleared after editing, which would
// otherwise reach the backend as a zero priced booking.
func checkQuantities(draft Draft) error {
	switch {
	case draft.RoomCount < 1:
		return &RejectError{Reason: ReasonInvalidQuantity, Field: "room_count", Message: "Please book at least one room."}
	case draft.Occupancy.Adults < 1:
		return &RejectError{Reason: ReasonInvalidQuantity, Field: "occupancy", Message: "At least one adult is required."}
	case draft.EffectiveDays() < 1:
		return &RejectError{Reason: ReasonInvalidQuantity, Field: "duration_days", Message: "Duration must be at least one day."}
	}

	return nil
}

func checkCustomer(c Customer) error {
	required := []struct {
		field string
		value string
		label string
	}{
		{"customer.name", c.Name, "name"},
		{"customer.identity_document", c.IdentityDocument, "identity document"},
		{"customer.contact", c.Contact, "contact number"},
		{"customer.email", c.Email, "email"},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &RejectError{
				Reason:  ReasonMissingCustomerField,
				Field:   r.field,
				Message: fmt.Sprintf("Please provide the customer %s.", r.label),
			}
		}
	}

	if _, err := mail.ParseAddress(c.Email); err != nil {
		return &RejectError{
			Reason:  ReasonMissingCustomerField,
			Field:   "customer.email",
			Message: "Please provide a valid customer email.",
		}
	}

	return nil
}
