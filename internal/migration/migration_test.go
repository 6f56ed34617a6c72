package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/tourbooking/internal/booking"
	"github.com/avstrong/tourbooking/internal/logger"
	"github.com/avstrong/tourbooking/internal/storage/memory"
)

func TestUp_LoadsCatalog(t *testing.T) {
	ctx := context.Background()
	db := memory.New(memory.Config{L: logger.Discard()})

	require.NoError(t, Up(ctx, logger.Discard(), db))

	for _, want := range Offerings() {
		got, err := db.GetOffering(ctx, want.ID)
		require.NoError(t, err, want.ID)
		assert.Equal(t, want.Title, got.Title)
		assert.Equal(t, want.CapacityPerRoom, got.CapacityPerRoom)
	}
}

func TestOfferings_PricedAndValid(t *testing.T) {
	for _, o := range Offerings() {
		assert.NotEmpty(t, o.Prices, o.ID)

		for p, price := range o.Prices {
			assert.True(t, p.Valid(), "%s: %s", o.ID, p)
			assert.True(t, price.IsPositive(), "%s: %s", o.ID, p)
		}
	}
}

type failingStorage struct {
	*memory.DB
	rolledBack bool
}

var errSave = errors.New("disk full")

func (f *failingStorage) SaveOfferings(context.Context, []*booking.Offering) error {
	return errSave
}

func (f *failingStorage) RollbackTransaction(ctx context.Context) error {
	f.rolledBack = true

	return f.DB.RollbackTransaction(ctx)
}

func TestUp_RollsBackOnError(t *testing.T) {
	s := &failingStorage{DB: memory.New(memory.Config{L: logger.Discard()})}

	err := Up(context.Background(), logger.Discard(), s)
	require.ErrorIs(t, err, errSave)
	assert.True(t, s.rolledBack)
}
