package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/avstrong/tourbooking/internal/logger"
)

const tracerName = "github.com/avstrong/tourbooking/internal/booking"

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

type storageReader interface {
	GetSession(ctx context.Context, id string) (*Session, error)
	GetOffering(ctx context.Context, id string) (*Offering, error)
	GetBalance(ctx context.Context, accountID string) (*Account, error)
	GetReceipt(ctx context.Context, sessionID string) (*Receipt, error)
}

type storageWriter interface {
	SaveSession(ctx context.Context, session *Session) error
	DeleteSession(ctx context.Context, id string) error
	SaveBalance(ctx context.Context, account *Account) error
	InvalidateBalance(ctx context.Context, accountID string) error
	SaveReceipt(ctx context.Context, receipt *Receipt) error
}

type storage interface {
	storageReader
	storageWriter
}

type promoValidator interface {
	Validate(ctx context.Context, code string) (PromoGrant, error)
}

type rateProvider interface {
	Rate(ctx context.Context) decimal.Decimal
}

type remote interface {
	CreateBooking(ctx context.Context, payload Payload) (SubmitResult, error)
	SecondaryBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

type Manager struct {
	l           *logger.Logger
	storage     storage
	idGenerator idGenerator
	promo       promoValidator
	rates       rateProvider
	remote      remote
	tracer      trace.Tracer
}

type Deps struct {
	Storage     storage
	IDGenerator idGenerator
	Promo       promoValidator
	Rates       rateProvider
	Remote      remote
}

func New(l *logger.Logger, deps Deps) *Manager {
	return &Manager{
		l:           l,
		storage:     deps.Storage,
		idGenerator: deps.IDGenerator,
		promo:       deps.Promo,
		rates:       deps.Rates,
		remote:      deps.Remote,
		tracer:      otel.Tracer(tracerName),
	}
}

type OpenInput struct {
	AccountID  string `json:"account_id"`
	OfferingID string `json:"offering_id"`
}

func (in *OpenInput) validate() error {
	inputErr := newInputError()

	if in.AccountID == "" {
		inputErr.addError("account_id", "provide account_id")
	}

	if in.OfferingID == "" {
		inputErr.addError("offering_id", "provide offering_id")
	}

	if inputErr.fieldsCount() > 0 {
		return inputErr
	}

	return nil
}

// Open creates a draft for the offering being booked.
func (m *Manager) Open(ctx context.Context, input *OpenInput) (*View, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	offering, err := m.storage.GetOffering(ctx, input.OfferingID)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, fmt.Errorf("offering %s: %w", input.OfferingID, ErrOfferingNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("get offering from storage: %w", err)
	}

	id, err := m.idGenerator.GetID(ctx)
	if err != nil {
		return nil, ErrNextID
	}

	//nolint:exhaustruct
	s := &Session{
		id: id,
		draft: Draft{
			OfferingID:   offering.ID,
			AccountID:    input.AccountID,
			UnitPrice:    decimal.Zero,
			DurationDays: 1,
			RoomCount:    1,
			Occupancy:    Occupancy{Adults: 1},
		},
		offering:       *offering,
		rate:           m.rates.Rate(ctx),
		state:          StateIdle,
		idempotencyKey: uuid.NewString(),
		createdAt:      time.Now().UTC(),
	}

	if err := m.storage.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("save session to storage: %w", err)
	}

	m.l.LogInfo("Booking session %s opened for offering %s", id, offering.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view(), nil
}

func (m *Manager) session(ctx context.Context, id string) (*Session, error) {
	s, err := m.storage.GetSession(ctx, id)
	if errors.Is(err, ErrRecordNotFound) {
		if _, rErr := m.storage.GetReceipt(ctx, id); rErr == nil {
			return nil, ErrAlreadySubmitted
		}

		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("get session from storage: %w", err)
	}

	return s, nil
}

func (m *Manager) View(ctx context.Context, id string) (*View, error) {
	s, err := m.session(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view(), nil
}

// Update applies a UI edit and returns the recomputed quote. An applied promo
// grant survives the edit.
func (m *Manager) Update(ctx context.Context, id string, patch *DraftPatch) (*View, error) {
	s, err := m.session(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return nil, err
	}

	if err := s.apply(patch); err != nil {
		return nil, err
	}

	return s.view(), nil
}

// ApplyPromo validates code and, on success, replaces the applied grant.
// A newer ApplyPromo or RemovePromo on the same draft supersedes this one;
// its result is then dropped with ErrValidationSuperseded.
func (m *Manager) ApplyPromo(ctx context.Context, id, code string) (_ *View, err error) {
	ctx, span := m.tracer.Start(ctx, "booking.ApplyPromo", trace.WithAttributes(attribute.String("session.id", id)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	code = NormalizePromoCode(code)
	if code == "" {
		return nil, ErrEmptyPromoCode
	}

	s, err := m.session(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()

	if err := s.editable(); err != nil {
		s.mu.Unlock()

		return nil, err
	}

	seq := s.supersedeValidation()
	vctx, cancel := context.WithCancel(ctx)
	s.cancelValidation = cancel
	s.validating = true

	s.mu.Unlock()

	defer cancel()

	grant, vErr := m.promo.Validate(vctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.validationSeq {
		m.l.LogInfo("Promo validation %d for session %s superseded", seq, id)

		return nil, ErrValidationSuperseded
	}

	s.validating = false
	s.cancelValidation = nil

	if vErr != nil {
		return nil, fmt.Errorf("validate promo code: %w", vErr)
	}

	s.grant = &grant
	s.draft.PromoCode = code

	m.l.LogInfo("Promo code %s applied to session %s", code, id)

	return s.view(), nil
}

func (m *Manager) RemovePromo(ctx context.Context, id string) (*View, error) {
	s, err := m.session(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return nil, err
	}

	s.supersedeValidation()
	s.grant = nil
	s.draft.PromoCode = ""

	return s.view(), nil
}

func (m *Manager) RefreshRate(ctx context.Context, id string) (*View, error) {
	s, err := m.session(ctx, id)
	if err != nil {
		return nil, err
	}

	rate := m.rates.Rate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return nil, err
	}

	s.rate = rate

	return s.view(), nil
}

// Close discards the draft.
func (m *Manager) Close(ctx context.Context, id string) error {
	s, err := m.session(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()

	if s.state == StateSubmitting {
		s.mu.Unlock()

		return ErrSubmissionInProgress
	}

	s.supersedeValidation()
	s.mu.Unlock()

	if err := m.storage.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session from storage: %w", err)
	}

	m.l.LogInfo("Booking session %s closed", id)

	return nil
}

// Balance returns the HSC balance as the backend reports it now. The cached
// value is served only when the backend cannot be reached.
func (m *Manager) Balance(ctx context.Context, accountID string) (*Account, error) {
	account, err := m.fetchBalance(ctx, accountID)
	if err == nil {
		return account, nil
	}

	cached, cErr := m.storage.GetBalance(ctx, accountID)
	if cErr != nil {
		return nil, err
	}

	m.l.LogWarnf("Serving cached HSC balance of account %s: %v", accountID, err.Error())

	return cached, nil
}

func (m *Manager) fetchBalance(ctx context.Context, accountID string) (*Account, error) {
	balance, err := m.remote.SecondaryBalance(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("fetch balance of account %s: %w", accountID, err)
	}

	account := &Account{ID: accountID, SecondaryCurrencyBalance: balance}

	if err := m.storage.SaveBalance(ctx, account); err != nil {
		return nil, fmt.Errorf("save balance to storage: %w", err)
	}

	return account, nil
}

// refreshBalance overwrites the cached balance with the server value. When
// the fetch fails the cache entry is dropped so the next query refetches.
func (m *Manager) refreshBalance(ctx context.Context, accountID string) {
	if _, err := m.fetchBalance(ctx, accountID); err != nil {
		m.l.LogErrorf("Could not refresh HSC balance of account %s: %v", accountID, err.Error())

		if err := m.storage.InvalidateBalance(ctx, accountID); err != nil {
			m.l.LogErrorf("Could not invalidate HSC balance of account %s: %v", accountID, err.Error())
		}
	}
}

//nolint:funlen,cyclop // it's linear simple code
func (m *Manager) Submit(ctx context.Context, id string) (_ *Receipt, err error) {
	ctx, span := m.tracer.Start(ctx, "booking.Submit", trace.WithAttributes(attribute.String("session.id", id)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	s, err := m.session(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()

	if err := s.editable(); err != nil {
		s.mu.Unlock()

		return nil, err
	}

	s.state = StateSubmitting
	s.supersedeValidation()
	promoApplied := s.grant != nil
	accountID := s.draft.AccountID

	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
	}

	//nolint:exhaustruct
	account := &Account{ID: accountID, SecondaryCurrencyBalance: decimal.Zero}

	if promoApplied {
		if account, err = m.Balance(ctx, accountID); err != nil {
			release()

			return nil, fmt.Errorf("get HSC balance: %w", err)
		}
	}

	s.mu.Lock()

	// The quote is recomputed here so the payload matches the draft as it is now.
	quote := Compute(s.draft, s.grant, s.rate)

	if err := Check(s.draft, quote, s.grant, *account, s.offering); err != nil {
		s.state = StateIdle
		s.mu.Unlock()

		return nil, err
	}

	payload := s.payload(quote)
	key := s.idempotencyKey

	s.mu.Unlock()

	ctx = NewContextWithIdempotencyKey(NewContextWithSessionID(ctx, id), key)

	res, err := m.remote.CreateBooking(ctx, payload)
	if err != nil {
		release()

		return nil, fmt.Errorf("create booking: %w", err)
	}

	if !res.Success {
		s.mu.Lock()
		s.state = StateIdle
		s.idempotencyKey = uuid.NewString()
		s.mu.Unlock()

		msg := res.Message
		if msg == "" {
			msg = "The booking could not be completed."
		}

		m.l.LogInfo("Booking for session %s rejected by server: %s", id, msg)

		return nil, &ServerRejectionError{Message: msg}
	}

	if res.HSCDeducted {
		m.refreshBalance(ctx, accountID)
	}

	s.mu.Lock()
	s.state = StateDone
	s.mu.Unlock()

	receipt := &Receipt{
		SessionID:                 id,
		BookingID:                 res.BookingID,
		SecondaryCurrencyDeducted: res.HSCDeducted,
		Quote:                     quote,
		CreatedAt:                 time.Now().UTC(),
	}

	if err := m.storage.SaveReceipt(ctx, receipt); err != nil {
		m.l.LogErrorf("Could not save receipt of booking %s: %v", res.BookingID, err.Error())
	}

	if err := m.storage.DeleteSession(ctx, id); err != nil {
		m.l.LogErrorf("Could not discard session %s: %v", id, err.Error())
	}

	m.l.LogInfo("Booking %s created for session %s", res.BookingID, id)

	return receipt, nil
}
