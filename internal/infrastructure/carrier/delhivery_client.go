// Package carrier talks to the courier API used for serviceability checks and live rates.
package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/shipping"
	"github.com/sevenext/backend/internal/infrastructure/config"
	"github.com/sevenext/backend/internal/infrastructure/telemetry"
)

const (
	maxResponseSize = 1 << 20

	serviceabilityPath = "/c/api/pin-codes/json/"
	ratePath           = "/api/kinko/v1/invoice/charges/.json"

	reasonNotServiceable = "Pincode not serviceable"
	reasonEmbargo        = "Pincode under embargo"
)

var _ shipping.Carrier = (*DelhiveryClient)(nil)

// DelhiveryClient implements shipping.Carrier against the Delhivery API
type DelhiveryClient struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
	logger  *zap.Logger
}

// Option configures a DelhiveryClient
type Option func(*DelhiveryClient)

// WithLogger sets the logger used for retries and failures
func WithLogger(logger *zap.Logger) Option {
	return func(c *DelhiveryClient) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the transport-level client
func WithHTTPClient(client *http.Client) Option {
	return func(c *DelhiveryClient) {
		c.http.HTTPClient = client
	}
}

// WithRetryWait bounds the backoff between attempts
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *DelhiveryClient) {
		c.http.RetryWaitMin = minWait
		c.http.RetryWaitMax = maxWait
	}
}

// NewDelhiveryClient creates a client from the carrier configuration.
// Each call is bounded by cfg.Timeout across all of its retries.
func NewDelhiveryClient(cfg config.CarrierConfig, opts ...Option) *DelhiveryClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	c := &DelhiveryClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    rc,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	rc.Logger = leveledLogger{c.logger.Sugar()}
	return c
}

type pinCodesResponse struct {
	DeliveryCodes []struct {
		PostalCode struct {
			PrePaid string `json:"pre_paid"`
			COD     string `json:"cod"`
			Remarks string `json:"remarks"`
		} `json:"postal_code"`
	} `json:"delivery_codes"`
}

// CheckServiceability asks whether the carrier delivers to pin
func (c *DelhiveryClient) CheckServiceability(ctx context.Context, pin string) (shipping.Serviceability, error) {
	ctx, span := telemetry.StartSpan(ctx, "carrier.check_serviceability",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute("shipping.destination_pin", pin))
	defer span.End()

	query := url.Values{}
	query.Set("filter_codes", pin)

	var payload pinCodesResponse
	if err := c.get(ctx, serviceabilityPath, query, &payload); err != nil {
		telemetry.RecordError(span, err)
		return shipping.Serviceability{}, err
	}

	if len(payload.DeliveryCodes) == 0 {
		return shipping.Serviceability{Serviceable: false, Reason: reasonNotServiceable}, nil
	}
	code := payload.DeliveryCodes[0].PostalCode
	if strings.EqualFold(strings.TrimSpace(code.Remarks), "embargo") {
		return shipping.Serviceability{Serviceable: false, Reason: reasonEmbargo}, nil
	}
	prepaid := strings.EqualFold(code.PrePaid, "Y")
	cod := strings.EqualFold(code.COD, "Y")
	if !prepaid && !cod {
		return shipping.Serviceability{Serviceable: false, Reason: reasonNotServiceable}, nil
	}

	telemetry.SetOK(span)
	return shipping.Serviceability{Serviceable: true, CODAvailable: cod}, nil
}

type chargeResponse struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// QuoteRate returns the carrier's total charge for the shipment
func (c *DelhiveryClient) QuoteRate(ctx context.Context, q shipping.RateQuery) (decimal.Decimal, error) {
	ctx, span := telemetry.StartSpan(ctx, "carrier.quote_rate",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute("shipping.zone", string(q.Zone)),
		telemetry.WithAttribute("shipping.weight_grams", q.ChargeableWeightGrams))
	defer span.End()

	query := url.Values{}
	query.Set("md", "S")
	query.Set("ss", "Delivered")
	query.Set("o_pin", q.OriginPin)
	query.Set("d_pin", q.DestinationPin)
	query.Set("cgm", strconv.FormatInt(q.ChargeableWeightGrams, 10))
	query.Set("pt", string(q.PaymentMode))

	var charges []chargeResponse
	if err := c.get(ctx, ratePath, query, &charges); err != nil {
		telemetry.RecordError(span, err)
		return decimal.Zero, err
	}
	if len(charges) == 0 {
		telemetry.RecordError(span, shipping.ErrCarrierBadResponse)
		return decimal.Zero, fmt.Errorf("%w: empty charges list", shipping.ErrCarrierBadResponse)
	}

	telemetry.SetOK(span)
	return charges[0].TotalAmount, nil
}

func (c *DelhiveryClient) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("carrier: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shipping.ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("carrier: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d", shipping.ErrCarrierRequestFailed, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", shipping.ErrCarrierBadResponse, err)
	}
	return nil
}

// leveledLogger routes retryablehttp's logging into zap
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...any) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...any)  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...any)  { l.s.Warnw(msg, kv...) }
