package currency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/avstrong/tourbooking/internal/logger"
)

type fakeSource struct {
	rates []decimal.Decimal
	errs  []error
	calls int
}

func (f *fakeSource) ExchangeRate(context.Context) (decimal.Decimal, error) {
	i := f.calls
	f.calls++

	return f.rates[i], f.errs[i]
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func newConverter(src *fakeSource, c *clock) *Converter {
	return New(Config{
		L:           logger.Discard(),
		DefaultRate: decimal.NewFromInt(100),
		TTL:         time.Minute,
		Now:         c.Now,
	}, src)
}

func TestConverter_Rate(t *testing.T) {
	ctx := context.Background()
	down := errors.New("backend down")

	t.Run("falls back to default without a good rate", func(t *testing.T) {
		src := &fakeSource{rates: []decimal.Decimal{decimal.Zero}, errs: []error{down}}

		rate := newConverter(src, &clock{}).Rate(ctx)
		assert.True(t, rate.Equal(decimal.NewFromInt(100)))
	})

	t.Run("treats non-positive rates as failures", func(t *testing.T) {
		src := &fakeSource{rates: []decimal.Decimal{decimal.NewFromInt(-3)}, errs: []error{nil}}

		rate := newConverter(src, &clock{}).Rate(ctx)
		assert.True(t, rate.Equal(decimal.NewFromInt(100)))
	})

	t.Run("caches within ttl and keeps last good rate", func(t *testing.T) {
		c := &clock{now: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
		src := &fakeSource{
			rates: []decimal.Decimal{decimal.NewFromInt(310), decimal.Zero, decimal.NewFromInt(320)},
			errs:  []error{nil, down, nil},
		}
		conv := newConverter(src, c)

		assert.True(t, conv.Rate(ctx).Equal(decimal.NewFromInt(310)))
		assert.True(t, conv.Rate(ctx).Equal(decimal.NewFromInt(310)))
		assert.Equal(t, 1, src.calls)

		c.now = c.now.Add(2 * time.Minute)
		assert.True(t, conv.Rate(ctx).Equal(decimal.NewFromInt(310)), "last good rate on failure")
		assert.Equal(t, 2, src.calls)

		assert.True(t, conv.Rate(ctx).Equal(decimal.NewFromInt(320)))
		assert.Equal(t, 3, src.calls)
	})

	t.Run("invalid configured default uses package default", func(t *testing.T) {
		src := &fakeSource{rates: []decimal.Decimal{decimal.Zero}, errs: []error{down}}

		conv := New(Config{L: logger.Discard(), DefaultRate: decimal.Zero, TTL: time.Minute, Now: nil}, src)
		assert.True(t, conv.Rate(ctx).Equal(DefaultRate))
	})
}
