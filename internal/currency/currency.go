package currency

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avstrong/tourbooking/internal/logger"
)

// DefaultRate is the LKR per HSC rate used when the backend cannot be reached.
var DefaultRate = decimal.NewFromInt(100) //nolint:gomnd

type source interface {
	ExchangeRate(ctx context.Context) (decimal.Decimal, error)
}

type Config struct {
	L           *logger.Logger
	DefaultRate decimal.Decimal
	TTL         time.Duration
	Now         func() time.Time
}

// Converter serves the HSC to LKR exchange rate. It never fails: on a
// backend error it answers with the last good rate or the default.
type Converter struct {
	mu          sync.Mutex
	l           *logger.Logger
	source      source
	defaultRate decimal.Decimal
	ttl         time.Duration
	now         func() time.Time

	rate      decimal.Decimal
	fetchedAt time.Time
}

func New(conf Config, source source) *Converter {
	def := conf.DefaultRate
	if !def.IsPositive() {
		def = DefaultRate
	}

	now := conf.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	//nolint:exhaustruct
	return &Converter{
		l:           conf.L,
		source:      source,
		defaultRate: def,
		ttl:         conf.TTL,
		now:         now,
	}
}

func (c *Converter) Rate(ctx context.Context) decimal.Decimal {
	c.mu.Lock()
	if c.rate.IsPositive() && c.now().Sub(c.fetchedAt) < c.ttl {
		rate := c.rate
		c.mu.Unlock()

		return rate
	}
	c.mu.Unlock()

	rate, err := c.source.ExchangeRate(ctx)
	if err == nil && !rate.IsPositive() {
		c.l.LogWarnf("Backend returned non-positive HSC rate %s", rate.String())

		err = ErrInvalidRate
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if c.rate.IsPositive() {
			c.l.LogWarnf("Could not fetch HSC rate, keeping last rate %s: %v", c.rate.String(), err.Error())

			return c.rate
		}

		c.l.LogWarnf("Could not fetch HSC rate, using default %s: %v", c.defaultRate.String(), err.Error())

		return c.defaultRate
	}

	c.rate = rate
	c.fetchedAt = c.now()

	return rate
}
