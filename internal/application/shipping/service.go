// Package shipping prices deliveries with the carrier's live rates, falling back to
// static rate cards whenever the carrier cannot quote.
package shipping

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/sevenext/backend/internal/domain/shared"
	"github.com/sevenext/backend/internal/domain/shipping"
	"github.com/sevenext/backend/internal/infrastructure/config"
	"github.com/sevenext/backend/internal/infrastructure/telemetry"
)

// ErrServiceabilityUnavailable is returned when the carrier cannot say whether it delivers
var ErrServiceabilityUnavailable = shared.NewUpstreamError("SERVICEABILITY_UNAVAILABLE",
	"Unable to verify delivery availability right now, please try again")

// estimate outcome recorded when the destination is not served
const sourceUnavailable = "unavailable"

// ShippingService estimates shipping fees
type ShippingService struct {
	carrier   shipping.Carrier
	rateCards shipping.RateCards
	originPin string
	timeout   time.Duration
	metrics   *telemetry.EngineMetrics
	logger    *zap.Logger
}

// NewShippingService creates a new ShippingService
func NewShippingService(
	carrier shipping.Carrier,
	rateCards shipping.RateCards,
	cfg config.CarrierConfig,
	metrics *telemetry.EngineMetrics,
	logger *zap.Logger,
) *ShippingService {
	if rateCards == nil {
		rateCards = shipping.DefaultRateCards()
	}
	if metrics == nil {
		metrics = telemetry.NoopEngineMetrics()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ShippingService{
		carrier:   carrier,
		rateCards: rateCards,
		originPin: cfg.OriginPin,
		timeout:   timeout,
		metrics:   metrics,
		logger:    logger,
	}
}

// Estimate prices a delivery. Serviceability and the live quote are requested
// concurrently; the quote is cancelled as soon as the destination is known not to be served.
// A failed serviceability check is an error, a failed quote falls back to the rate card.
func (s *ShippingService) Estimate(ctx context.Context, req EstimateShippingRequest) (*EstimateResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "shipping.estimate")
	defer span.End()

	request := shipping.Request{
		OriginPin:      strings.TrimSpace(req.OriginPin),
		DestinationPin: strings.TrimSpace(req.DestinationPin),
		Items:          req.Items,
		PaymentMode:    shipping.ParsePaymentMode(req.PaymentMode),
	}
	if request.OriginPin == "" {
		request.OriginPin = s.originPin
	}
	if err := request.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	weights := shipping.AggregateWeights(request.Items)
	zone := shipping.ResolveZone(request.OriginPin, request.DestinationPin)
	telemetry.SetAttributes(span,
		"shipping.zone", zone.String(),
		"shipping.chargeable_kg", weights.Chargeable.String(),
	)

	var (
		serviceability shipping.Serviceability
		serviceErr     error
		quote          decimal.Decimal
		quoteErr       error
		wg             conc.WaitGroup
	)
	quoteCtx, cancelQuote := context.WithCancel(ctx)
	defer cancelQuote()

	wg.Go(func() {
		serviceability, serviceErr = s.checkServiceability(ctx, request.DestinationPin)
		if serviceErr != nil || !serviceability.Serviceable {
			cancelQuote()
		}
	})
	wg.Go(func() {
		quote, quoteErr = s.quote(quoteCtx, shipping.RateQuery{
			OriginPin:             request.OriginPin,
			DestinationPin:        request.DestinationPin,
			ChargeableWeightGrams: shipping.Grams(weights.Chargeable),
			PaymentMode:           request.PaymentMode,
			Zone:                  zone,
		})
	})
	wg.Wait()

	if serviceErr != nil {
		s.logger.Error("Serviceability check failed",
			zap.String("destination_pin", request.DestinationPin),
			zap.Error(serviceErr))
		telemetry.RecordError(span, serviceErr)
		return nil, ErrServiceabilityUnavailable
	}

	if !serviceability.Serviceable {
		s.metrics.RecordEstimate(ctx, sourceUnavailable, zone.String())
		estimate := shipping.Unavailable(serviceability.Reason)
		estimate.Zone = zone
		estimate.ChargeableWeightKg = weights.Chargeable
		estimate.ActualWeightKg = weights.Actual
		estimate.VolumetricWeightKg = weights.Volumetric
		telemetry.SetOK(span)
		return toEstimateResponse(estimate), nil
	}

	estimate := shipping.Estimate{
		ShippingAvailable:  true,
		ChargeableWeightKg: weights.Chargeable,
		ActualWeightKg:     weights.Actual,
		VolumetricWeightKg: weights.Volumetric,
		Zone:               zone,
		CODAvailable:       serviceability.CODAvailable,
	}

	switch {
	case quoteErr == nil && quote.IsPositive():
		estimate.Fee = quote.Round(2)
		estimate.PricingSource = shipping.PricingSourceCarrier
	default:
		if quoteErr == nil {
			quoteErr = errors.New("non-positive carrier quote")
		}
		s.logger.Warn("Carrier quote unavailable, using rate card",
			zap.String("zone", zone.String()),
			zap.String("chargeable_kg", weights.Chargeable.String()),
			zap.Error(quoteErr))
		card, ok := s.rateCards.For(zone)
		if !ok {
			return nil, shared.NewDomainError("RATE_CARD_MISSING", "No rate card configured for "+zone.String())
		}
		estimate.Fee = card.Price(weights.Chargeable).Round(2)
		estimate.PricingSource = shipping.PricingSourceFallback
	}

	s.metrics.RecordEstimate(ctx, string(estimate.PricingSource), zone.String())
	telemetry.SetAttributes(span, "shipping.pricing_source", string(estimate.PricingSource))
	telemetry.SetOK(span)
	return toEstimateResponse(estimate), nil
}

func (s *ShippingService) checkServiceability(ctx context.Context, pin string) (shipping.Serviceability, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.carrier.CheckServiceability(ctx, pin)
	s.metrics.RecordCarrierCall(ctx, "serviceability", time.Since(start), err != nil)
	return result, err
}

func (s *ShippingService) quote(ctx context.Context, query shipping.RateQuery) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	amount, err := s.carrier.QuoteRate(ctx, query)
	s.metrics.RecordCarrierCall(ctx, "quote", time.Since(start), err != nil || !amount.IsPositive())
	return amount, err
}
