package app

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/avstrong/tourbooking/internal/backend"
	"github.com/avstrong/tourbooking/internal/booking"
	"github.com/avstrong/tourbooking/internal/config"
	"github.com/avstrong/tourbooking/internal/currency"
	"github.com/avstrong/tourbooking/internal/idgen/random"
	"github.com/avstrong/tourbooking/internal/logger"
	"github.com/avstrong/tourbooking/internal/migration"
	"github.com/avstrong/tourbooking/internal/promo"
	"github.com/avstrong/tourbooking/internal/storage/memory"
	"github.com/avstrong/tourbooking/internal/transport/web"
)

//nolint:funlen // wiring
func Run(l *logger.Logger, conf config.App) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	// The backend contract speaks JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true

	otel.SetTextMapPropagator(propagation.TraceContext{})

	storage := memory.New(memory.Config{L: l})
	if err := migration.Up(ctx, l, storage); err != nil {
		return fmt.Errorf("up offering migration: %w", err)
	}

	l.LogInfo("Offering migration has been applied")

	client, err := backend.New(backend.Conf{
		L:       l,
		BaseURL: conf.BackendURL,
		Timeout: conf.BackendTimeout,
		HTTP:    nil,
	})
	if err != nil {
		return fmt.Errorf("init backend client: %w", err)
	}

	defaultRate, err := conf.HSCDefaultRate()
	if err != nil {
		return fmt.Errorf("read default HSC rate: %w", err)
	}

	converter := currency.New(currency.Config{
		L:           l,
		DefaultRate: defaultRate,
		TTL:         conf.RateTTL,
		Now:         nil,
	}, client)

	bookManager := booking.New(l, booking.Deps{
		Storage:     storage,
		IDGenerator: random.New(),
		Promo:       promo.New(l, client),
		Rates:       converter,
		Remote:      client,
	})

	errorLog := l.Writer()
	defer errorLog.Close()

	webConf := web.Conf{
		L:                 l,
		ServerLogger:      log.New(errorLog, "", 0),
		Host:              conf.Host,
		Port:              conf.Port,
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		WriteTimeout:      conf.WriteTimeout,
		IdleTimeout:       conf.IdleTimeout,
		LivenessEndpoint:  conf.LivenessEndpoint,
	}

	srv, err := web.New(ctx, webConf, bookManager)
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	start := time.Now()

	if err := srv.Run(ctx, conf.ShutdownTimeout); err != nil {
		return fmt.Errorf("run http server: %w", err)
	}

	l.LogInfo("Application stopped gracefully after %s", time.Since(start).Round(time.Second))

	return nil
}
