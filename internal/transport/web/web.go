package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/avstrong/tourbooking/internal/booking"
	"github.com/avstrong/tourbooking/internal/logger"
)

const tracerName = "github.com/avstrong/tourbooking/internal/transport/web"

// bookings is what the routes need from booking.Manager.
type bookings interface {
	Open(ctx context.Context, input *booking.OpenInput) (*booking.View, error)
	View(ctx context.Context, id string) (*booking.View, error)
	Update(ctx context.Context, id string, patch *booking.DraftPatch) (*booking.View, error)
	ApplyPromo(ctx context.Context, id, code string) (*booking.View, error)
	RemovePromo(ctx context.Context, id string) (*booking.View, error)
	RefreshRate(ctx context.Context, id string) (*booking.View, error)
	Submit(ctx context.Context, id string) (*booking.Receipt, error)
	Close(ctx context.Context, id string) error
	Balance(ctx context.Context, accountID string) (*booking.Account, error)
}

type Server struct {
	srv      *http.Server
	router   *http.ServeMux
	l        *logger.Logger
	conf     Conf
	bManager bookings
	tracer   trace.Tracer
	prop     propagation.TextMapPropagator
}

type Conf struct {
	L                 *logger.Logger
	ServerLogger      *log.Logger
	Host              string
	Port              string
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	LivenessEndpoint  string
}

func New(ctx context.Context, conf Conf, bookingManager bookings) (*Server, error) {
	if bookingManager == nil {
		return nil, ErrNoBookings
	}

	mux := http.NewServeMux()

	//nolint:exhaustruct
	srv := &http.Server{
		Addr:              net.JoinHostPort(conf.Host, conf.Port),
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		WriteTimeout:      conf.WriteTimeout,
		IdleTimeout:       conf.IdleTimeout,
		ErrorLog:          conf.ServerLogger,
		Handler:           mux,
		BaseContext: func(listener net.Listener) context.Context {
			return ctx
		},
	}

	server := &Server{
		srv:      srv,
		router:   mux,
		l:        conf.L,
		conf:     conf,
		bManager: bookingManager,
		tracer:   otel.Tracer(tracerName),
		prop:     otel.GetTextMapPropagator(),
	}

	server.addRoutes(mux)

	return server, nil
}

// Run serves until ctx is done, then shuts down within shutdownTimeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)

	go func() {
		s.l.LogInfo("Http server is listening on %s", s.srv.Addr)

		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen and serve: %w", err)

			return
		}

		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	//nolint:contextcheck
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return <-errCh
}

// Handler is the routed handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
