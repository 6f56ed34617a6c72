package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/avstrong/tourbooking/internal/booking"
	"github.com/avstrong/tourbooking/internal/logger"
)

type Config struct {
	L *logger.Logger
}

// transaction stages offering catalog writes until commit.
type transaction struct {
	id                    string
	offeringModifications map[string]*booking.Offering
}

type DB struct {
	mu           sync.Mutex
	l            *logger.Logger
	sessions     map[string]*booking.Session
	offerings    map[string]*booking.Offering
	balances     map[string]*booking.Account
	receipts     map[string]*booking.Receipt
	transactions map[string]*transaction
	nextTrxID    int64
}

func New(conf Config) *DB {
	//nolint:exhaustruct
	return &DB{
		l:            conf.L,
		sessions:     make(map[string]*booking.Session),
		offerings:    make(map[string]*booking.Offering),
		balances:     make(map[string]*booking.Account),
		receipts:     make(map[string]*booking.Receipt),
		transactions: make(map[string]*transaction),
	}
}

func (db *DB) BeginTransaction(ctx context.Context, _ string) (context.Context, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	trxID := fmt.Sprintf("trx-%d", db.nextTrxID)
	db.nextTrxID++

	db.transactions[trxID] = &transaction{
		id:                    trxID,
		offeringModifications: make(map[string]*booking.Offering),
	}

	return withTransactionID(ctx, trxID), nil
}

// trx must be called with mu held.
func (db *DB) trx(ctx context.Context) (*transaction, error) {
	trxID, ok := transactionIDFromContext(ctx)
	if !ok || trxID == "" {
		return nil, ErrTransactionIDNotFoundInCtx
	}

	trx, exists := db.transactions[trxID]
	if !exists {
		return nil, fmt.Errorf("transaction %s not found: %w", trxID, ErrTransactionNotFound)
	}

	return trx, nil
}

func (db *DB) CommitTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.trx(ctx)
	if err != nil {
		return err
	}

	for id, offering := range trx.offeringModifications {
		db.offerings[id] = offering
	}

	delete(db.transactions, trx.id)

	if db.l != nil {
		db.l.LogDebugf("Transaction %s committed %d offering(s)", trx.id, len(trx.offeringModifications))
	}

	return nil
}

func (db *DB) RollbackTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.trx(ctx)
	if err != nil {
		return err
	}

	delete(db.transactions, trx.id)

	return nil
}

func (db *DB) SaveOfferings(ctx context.Context, offerings []*booking.Offering) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.trx(ctx)
	if err != nil {
		return err
	}

	for _, offering := range offerings {
		if offering.ID == "" {
			return ErrEmptyID
		}

		o := *offering
		trx.offeringModifications[o.ID] = &o
	}

	return nil
}

func (db *DB) GetOffering(_ context.Context, id string) (*booking.Offering, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	offering, ok := db.offerings[id]
	if !ok {
		return nil, booking.ErrRecordNotFound
	}

	o := *offering

	return &o, nil
}

func (db *DB) SaveSession(_ context.Context, session *booking.Session) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if session.ID() == "" {
		return ErrEmptyID
	}

	db.sessions[session.ID()] = session

	return nil
}

// GetSession returns the live session; callers synchronise on the session itself.
func (db *DB) GetSession(_ context.Context, id string) (*booking.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	session, ok := db.sessions[id]
	if !ok {
		return nil, booking.ErrRecordNotFound
	}

	return session, nil
}

func (db *DB) DeleteSession(_ context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.sessions, id)

	return nil
}

func (db *DB) SessionsCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()

	return len(db.sessions)
}

func (db *DB) GetBalance(_ context.Context, accountID string) (*booking.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	account, ok := db.balances[accountID]
	if !ok {
		return nil, booking.ErrRecordNotFound
	}

	a := *account

	return &a, nil
}

func (db *DB) SaveBalance(_ context.Context, account *booking.Account) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if account.ID == "" {
		return ErrEmptyID
	}

	a := *account
	db.balances[a.ID] = &a

	return nil
}

func (db *DB) InvalidateBalance(_ context.Context, accountID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.balances, accountID)

	return nil
}

func (db *DB) SaveReceipt(_ context.Context, receipt *booking.Receipt) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.receipts[receipt.SessionID]; exists {
		return fmt.Errorf("receipt for session %s: %w", receipt.SessionID, ErrDuplicate)
	}

	r := *receipt
	db.receipts[r.SessionID] = &r

	return nil
}

func (db *DB) GetReceipt(_ context.Context, sessionID string) (*booking.Receipt, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	receipt, ok := db.receipts[sessionID]
	if !ok {
		return nil, booking.ErrRecordNotFound
	}

	r := *receipt

	return &r, nil
}

type contextKey struct{}

func withTransactionID(ctx context.Context, trxID string) context.Context {
	return context.WithValue(ctx, contextKey{}, trxID)
}

func transactionIDFromContext(ctx context.Context) (string, bool) {
	trxID, ok := ctx.Value(contextKey{}).(string)

	return trxID, ok
}
