package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/tourbooking/internal/booking"
	"github.com/avstrong/tourbooking/internal/logger"
)

func newDB() *DB {
	return New(Config{L: logger.Discard()})
}

func TestDB_OfferingTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("writes need a transaction", func(t *testing.T) {
		err := newDB().SaveOfferings(ctx, []*booking.Offering{{ID: "a"}})
		assert.ErrorIs(t, err, ErrTransactionIDNotFoundInCtx)
	})

	t.Run("commit publishes staged offerings", func(t *testing.T) {
		db := newDB()

		trxCtx, err := db.BeginTransaction(ctx, "")
		require.NoError(t, err)
		require.NoError(t, db.SaveOfferings(trxCtx, []*booking.Offering{{ID: "a", Title: "A"}}))

		_, err = db.GetOffering(ctx, "a")
		require.ErrorIs(t, err, booking.ErrRecordNotFound, "not visible before commit")

		require.NoError(t, db.CommitTransaction(trxCtx))

		got, err := db.GetOffering(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "A", got.Title)

		assert.ErrorIs(t, db.CommitTransaction(trxCtx), ErrTransactionNotFound)
	})

	t.Run("rollback drops staged offerings", func(t *testing.T) {
		db := newDB()

		trxCtx, err := db.BeginTransaction(ctx, "")
		require.NoError(t, err)
		require.NoError(t, db.SaveOfferings(trxCtx, []*booking.Offering{{ID: "a"}}))
		require.NoError(t, db.RollbackTransaction(trxCtx))

		_, err = db.GetOffering(ctx, "a")
		assert.ErrorIs(t, err, booking.ErrRecordNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		db := newDB()

		trxCtx, err := db.BeginTransaction(ctx, "")
		require.NoError(t, err)
		assert.ErrorIs(t, db.SaveOfferings(trxCtx, []*booking.Offering{{}}), ErrEmptyID)
	})
}

func TestDB_OfferingIsCopied(t *testing.T) {
	ctx := context.Background()
	db := newDB()

	trxCtx, err := db.BeginTransaction(ctx, "")
	require.NoError(t, err)
	require.NoError(t, db.SaveOfferings(trxCtx, []*booking.Offering{{ID: "a", AvailableRoomCount: 3}}))
	require.NoError(t, db.CommitTransaction(trxCtx))

	got, err := db.GetOffering(ctx, "a")
	require.NoError(t, err)

	got.AvailableRoomCount = 0

	again, err := db.GetOffering(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, again.AvailableRoomCount)
}

func TestDB_Balances(t *testing.T) {
	ctx := context.Background()
	db := newDB()

	_, err := db.GetBalance(ctx, "acc-1")
	require.ErrorIs(t, err, booking.ErrRecordNotFound)

	assert.ErrorIs(t, db.SaveBalance(ctx, &booking.Account{}), ErrEmptyID)

	require.NoError(t, db.SaveBalance(ctx, &booking.Account{ID: "acc-1", SecondaryCurrencyBalance: decimal.NewFromInt(7)}))

	got, err := db.GetBalance(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, got.SecondaryCurrencyBalance.Equal(decimal.NewFromInt(7)))

	require.NoError(t, db.InvalidateBalance(ctx, "acc-1"))

	_, err = db.GetBalance(ctx, "acc-1")
	assert.ErrorIs(t, err, booking.ErrRecordNotFound)
}

func TestDB_Receipts(t *testing.T) {
	ctx := context.Background()
	db := newDB()

	receipt := &booking.Receipt{SessionID: "bs-1", BookingID: "bk-1", CreatedAt: time.Now()}

	require.NoError(t, db.SaveReceipt(ctx, receipt))
	assert.ErrorIs(t, db.SaveReceipt(ctx, receipt), ErrDuplicate)

	got, err := db.GetReceipt(ctx, "bs-1")
	require.NoError(t, err)
	assert.Equal(t, "bk-1", got.BookingID)

	_, err = db.GetReceipt(ctx, "bs-2")
	assert.ErrorIs(t, err, booking.ErrRecordNotFound)
}
