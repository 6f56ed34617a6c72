package booking

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Package string

const (
	PackagePerNight  Package = "per_night"
	PackageFullDay   Package = "full_day"
	PackageFullBoard Package = "full_board"
	PackageHalfBoard Package = "half_board"
)

func (p Package) Valid() bool {
	switch p {
	case PackagePerNight, PackageFullDay, PackageFullBoard, PackageHalfBoard:
		return true
	default:
		return false
	}
}

type Offering struct {
	ID                 string                      `json:"id"`
	ProviderID         string                      `json:"provider_id"`
	Title              string                      `json:"title"`
	Prices             map[Package]decimal.Decimal `json:"prices"`
	CapacityPerRoom    int                         `json:"capacity_per_room"`
	AvailableRoomCount int                         `json:"available_room_count"`
}

// UnitPrice returns zero for a package the offering does not sell.
func (o *Offering) UnitPrice(p Package) decimal.Decimal {
	if o == nil {
		return decimal.Zero
	}

	price, ok := o.Prices[p]
	if !ok {
		return decimal.Zero
	}

	return price
}

type Customer struct {
	Name             string `json:"name"`
	IdentityDocument string `json:"identity_document"`
	Contact          string `json:"contact"`
	Email            string `json:"email"`
}

type Occupancy struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

func (o Occupancy) Total() int {
	return o.Adults + o.Children
}

type Draft struct {
	OfferingID   string          `json:"offering_id"`
	AccountID    string          `json:"account_id"`
	Package      Package         `json:"package"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DurationDays int             `json:"duration_days"`
	RoomCount    int             `json:"room_count"`
	Occupancy    Occupancy       `json:"occupancy"`
	Customer     Customer        `json:"customer"`
	CheckIn      *time.Time      `json:"check_in,omitempty"`
	PromoCode    string          `json:"promo_code,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// EffectiveDays is the duration multiplied into the base price.
func (d *Draft) EffectiveDays() int {
	if d.Package == PackagePerNight {
		return 1
	}

	return d.DurationDays
}

// DraftPatch carries the fields a UI edit changes. Nil fields are left as is.
type DraftPatch struct {
	Package      *Package   `json:"package,omitempty"`
	DurationDays *int       `json:"duration_days,omitempty"`
	RoomCount    *int       `json:"room_count,omitempty"`
	Occupancy    *Occupancy `json:"occupancy,omitempty"`
	Customer     *Customer  `json:"customer,omitempty"`
	CheckIn      *time.Time `json:"check_in,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

type PromoGrant struct {
	Code            string          `json:"code"`
	DiscountPerRoom decimal.Decimal `json:"discount_per_room"`
	EarnRatePerRoom decimal.Decimal `json:"earn_rate_per_room"`
	GrantorID       string          `json:"grantor_id"`
}

type Quote struct {
	EffectiveDays        int             `json:"effective_days"`
	BaseTotal            decimal.Decimal `json:"base_total"`
	DiscountTotal        decimal.Decimal `json:"discount_total"`
	DiscountedTotal      decimal.Decimal `json:"discounted_total"`
	EarnRateTotal        decimal.Decimal `json:"earn_rate_total"`
	PayableTotal         decimal.Decimal `json:"payable_total"`
	SecondaryCurrencyDue decimal.Decimal `json:"secondary_currency_due"`
	ExchangeRate         decimal.Decimal `json:"exchange_rate"`
}

type Account struct {
	ID                       string          `json:"id"`
	SecondaryCurrencyBalance decimal.Decimal `json:"secondary_currency_balance"`
}

type SubmissionState string

const (
	StateIdle       SubmissionState = "idle"
	StateSubmitting SubmissionState = "submitting"
	StateDone       SubmissionState = "done"
)

// View is what the booking UI renders after every event.
type View struct {
	SessionID  string          `json:"session_id"`
	Draft      Draft           `json:"draft"`
	Grant      *PromoGrant     `json:"grant,omitempty"`
	Quote      Quote           `json:"quote"`
	Validating bool            `json:"validating"`
	State      SubmissionState `json:"state"`
	OpenedAt   time.Time       `json:"opened_at"`
}

// Payload is the body sent to the backend booking endpoint.
type Payload struct {
	OfferingID           string          `json:"offeringId"`
	ProviderID           string          `json:"providerId"`
	AccountID            string          `json:"accountId"`
	Customer             Customer        `json:"customer"`
	Package              Package         `json:"package"`
	UnitPrice            decimal.Decimal `json:"unitPrice"`
	DurationDays         int             `json:"durationDays"`
	RoomCount            int             `json:"roomCount"`
	Adults               int             `json:"adults"`
	Children             int             `json:"children"`
	CheckIn              time.Time       `json:"checkIn"`
	Notes                string          `json:"notes,omitempty"`
	BaseTotal            decimal.Decimal `json:"baseTotal"`
	DiscountTotal        decimal.Decimal `json:"discountTotal"`
	PayableTotal         decimal.Decimal `json:"payableTotal"`
	PromoApplied         bool            `json:"promoApplied"`
	PromoCode            string          `json:"promoCode,omitempty"`
	GrantorID            string          `json:"grantorId,omitempty"`
	DiscountPerRoom      decimal.Decimal `json:"discountPerRoom"`
	EarnRatePerRoom      decimal.Decimal `json:"earnRatePerRoom"`
	SecondaryCurrencyDue decimal.Decimal `json:"hscRequired"`
	ExchangeRate         decimal.Decimal `json:"exchangeRate"`
}

type SubmitResult struct {
	Success     bool
	BookingID   string
	HSCDeducted bool
	Message     string
}

type Receipt struct {
	SessionID                 string    `json:"session_id"`
	BookingID                 string    `json:"booking_id"`
	SecondaryCurrencyDeducted bool      `json:"secondary_currency_deducted"`
	Quote                     Quote     `json:"quote"`
	CreatedAt                 time.Time `json:"created_at"`
}

func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
