package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const prefix = "BOOKING"

var (
	ErrBackendURL  = errors.New("backend url must be absolute")
	ErrDefaultRate = errors.New("default exchange rate must be positive")
	ErrPort        = errors.New("http port is required")
)

type App struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP
	Host              string        `envconfig:"HTTP_HOST" default:"localhost"`
	Port              string        `envconfig:"HTTP_PORT" default:"8092"`
	ReadHeaderTimeout time.Duration `envconfig:"HTTP_READ_HEADER_TIMEOUT" default:"20s"`
	WriteTimeout      time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout       time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout   time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"4s"`
	LivenessEndpoint  string        `envconfig:"HTTP_LIVENESS_ENDPOINT" default:"/liveness"`

	// Remote backend
	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://localhost:8080/api"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`

	// HSC
	DefaultRate string        `envconfig:"HSC_DEFAULT_RATE" default:"100"`
	RateTTL     time.Duration `envconfig:"HSC_RATE_TTL" default:"5m"`
}

func Load() (App, error) {
	var c App
	if err := envconfig.Process(prefix, &c); err != nil {
		return App{}, fmt.Errorf("process env: %w", err)
	}

	if err := c.Validate(); err != nil {
		return App{}, err
	}

	return c, nil
}

func (c App) Validate() error {
	if c.Port == "" {
		return ErrPort
	}

	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q: %w", c.BackendURL, ErrBackendURL)
	}

	if _, err := c.HSCDefaultRate(); err != nil {
		return err
	}

	return nil
}

func (c App) HSCDefaultRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.DefaultRate)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%q: %w", c.DefaultRate, ErrDefaultRate)
	}

	return rate, nil
}
