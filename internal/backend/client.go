package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/avstrong/tourbooking/internal/booking"
	"github.com/avstrong/tourbooking/internal/logger"
	"github.com/avstrong/tourbooking/internal/promo"
)

const (
	tracerName = "github.com/avstrong/tourbooking/internal/backend"

	// maxBodySize bounds how much of a response body is read.
	maxBodySize = 1 << 20
)

type Conf struct {
	L       *logger.Logger
	BaseURL string
	Timeout time.Duration
	HTTP    *http.Client
}

// Client talks to the tourism marketplace REST backend.
type Client struct {
	l       *logger.Logger
	baseURL *url.URL
	http    *http.Client
	tracer  trace.Tracer
	prop    propagation.TextMapPropagator
}

func New(conf Conf) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(conf.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url %q: %w", conf.BaseURL, err)
	}

	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q: %w", conf.BaseURL, ErrInvalidBaseURL)
	}

	httpClient := conf.HTTP
	if httpClient == nil {
		//nolint:exhaustruct
		httpClient = &http.Client{Timeout: conf.Timeout}
	}

	return &Client{
		l:       conf.L,
		baseURL: base,
		http:    httpClient,
		tracer:  otel.Tracer(tracerName),
		prop:    otel.GetTextMapPropagator(),
	}, nil
}

type rateResponse struct {
	Rate decimal.Decimal `json:"rate"`
}

type agentResponse struct {
	ID              string          `json:"id"`
	DiscountPerRoom decimal.Decimal `json:"discountPerRoom"`
	EarnRatePerRoom decimal.Decimal `json:"earnRatePerRoom"`
}

type promoResponse struct {
	Success bool           `json:"success"`
	IsValid bool           `json:"isValid"`
	Agent   *agentResponse `json:"agent,omitempty"`
	Message string         `json:"message,omitempty"`
}

type bookingResponse struct {
	Success     bool   `json:"success"`
	BookingID   string `json:"bookingId,omitempty"`
	HSCDeducted bool   `json:"hscDeducted,omitempty"`
	Message     string `json:"message,omitempty"`
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

func (c *Client) ExchangeRate(ctx context.Context) (decimal.Decimal, error) {
	var out rateResponse

	if _, err := c.do(ctx, "currentExchangeRate", http.MethodGet, "/currency/hsc-rate", nil, nil, &out); err != nil {
		return decimal.Zero, err
	}

	return out.Rate, nil
}

func (c *Client) ValidatePromoCode(ctx context.Context, code string) (*promo.Verdict, error) {
	var out promoResponse

	path := fmt.Sprintf("/promocodes/%s/validate", url.PathEscape(code))

	status, err := c.do(ctx, "validatePromoCode", http.MethodGet, path, nil, nil, &out)
	if err != nil && !decodedRejection(status, err) {
		return nil, err
	}

	verdict := &promo.Verdict{
		Success: out.Success && err == nil,
		IsValid: out.IsValid,
		Message: out.Message,
	}

	if out.Agent != nil {
		verdict.Agent = &promo.Agent{
			ID:              out.Agent.ID,
			DiscountPerRoom: out.Agent.DiscountPerRoom,
			EarnRatePerRoom: out.Agent.EarnRatePerRoom,
		}
	}

	return verdict, nil
}

func (c *Client) CreateBooking(ctx context.Context, payload booking.Payload) (booking.SubmitResult, error) {
	key, ok := booking.IdempotencyKeyFromContext(ctx)
	if !ok {
		return booking.SubmitResult{}, booking.ErrIdempotencyKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return booking.SubmitResult{}, fmt.Errorf("encode booking payload: %w", err)
	}

	var out bookingResponse

	headers := http.Header{"Idempotency-Key": []string{key}}

	status, err := c.do(ctx, "createBooking", http.MethodPost, "/bookings", headers, body, &out)
	if err != nil && !decodedRejection(status, err) {
		return booking.SubmitResult{}, err
	}

	return booking.SubmitResult{
		Success:     out.Success && err == nil,
		BookingID:   out.BookingID,
		HSCDeducted: out.HSCDeducted,
		Message:     out.Message,
	}, nil
}

func (c *Client) SecondaryBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var out balanceResponse

	path := fmt.Sprintf("/accounts/%s/hsc-balance", url.PathEscape(accountID))

	if _, err := c.do(ctx, "accountSecondaryBalance", http.MethodGet, path, nil, nil, &out); err != nil {
		return decimal.Zero, err
	}

	return out.Balance, nil
}

// do performs one request and decodes the JSON body into out. A 4xx response
// whose body still decodes is reported as *statusError so callers that carry
// business answers in error responses can use it; everything else that fails
// is a *booking.NetworkError.
//
//nolint:cyclop
func (c *Client) do(
	ctx context.Context,
	op, method, path string,
	headers http.Header,
	body []byte,
	out any,
) (_ int, err error) {
	ctx, span := c.tracer.Start(ctx, "backend."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	u := c.baseURL.JoinPath(path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return 0, fmt.Errorf("build %s request: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		for _, vv := range v {
			req.Header.Add(k, vv)
		}
	}

	if sessionID, ok := booking.SessionIDFromContext(ctx); ok {
		req.Header.Set("X-Booking-Session", sessionID)
	}

	c.prop.Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &booking.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.l.LogDebugf("Backend %s %s answered %d in %s", method, u.Path, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, &booking.NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	decodeErr := json.Unmarshal(raw, out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &statusError{StatusCode: resp.StatusCode}
		if decodeErr != nil || resp.StatusCode >= http.StatusInternalServerError {
			return resp.StatusCode, &booking.NetworkError{Op: op, Err: statusErr}
		}

		return resp.StatusCode, statusErr
	}

	if decodeErr != nil {
		return resp.StatusCode, &booking.NetworkError{Op: op, Err: fmt.Errorf("decode body: %w", decodeErr)}
	}

	return resp.StatusCode, nil
}

type statusError struct {
	StatusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// decodedRejection reports whether err is a 4xx whose body was decoded.
func decodedRejection(status int, err error) bool {
	var statusErr *statusError

	return booking.IsNetworkError(err) == nil && errors.As(err, &statusErr) && status < http.StatusInternalServerError
}
