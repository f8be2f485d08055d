package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// EngineMetrics counts pricing engine outcomes
type EngineMetrics struct {
	estimates       metric.Int64Counter
	carrierFailures metric.Int64Counter
	carrierDuration metric.Float64Histogram
	couponOutcomes  metric.Int64Counter
	otpRequests     metric.Int64Counter
}

// NewEngineMetrics registers the instruments on meter
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	m := &EngineMetrics{}
	var err error

	if m.estimates, err = meter.Int64Counter("shipping_estimates_total",
		metric.WithDescription("Shipping estimates by pricing source"),
		metric.WithUnit("{estimate}")); err != nil {
		return nil, fmt.Errorf("shipping_estimates_total: %w", err)
	}
	if m.carrierFailures, err = meter.Int64Counter("carrier_failures_total",
		metric.WithDescription("Carrier calls that failed or returned an unusable amount"),
		metric.WithUnit("{call}")); err != nil {
		return nil, fmt.Errorf("carrier_failures_total: %w", err)
	}
	if m.carrierDuration, err = meter.Float64Histogram("carrier_call_duration_seconds",
		metric.WithDescription("Carrier API call latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10)); err != nil {
		return nil, fmt.Errorf("carrier_call_duration_seconds: %w", err)
	}
	if m.couponOutcomes, err = meter.Int64Counter("coupon_evaluations_total",
		metric.WithDescription("Coupon evaluations by outcome code"),
		metric.WithUnit("{evaluation}")); err != nil {
		return nil, fmt.Errorf("coupon_evaluations_total: %w", err)
	}
	if m.otpRequests, err = meter.Int64Counter("otp_requests_total",
		metric.WithDescription("OTP requests by outcome"),
		metric.WithUnit("{request}")); err != nil {
		return nil, fmt.Errorf("otp_requests_total: %w", err)
	}
	return m, nil
}

// NoopEngineMetrics returns metrics that record nothing
func NoopEngineMetrics() *EngineMetrics {
	m, _ := NewEngineMetrics(noop.NewMeterProvider().Meter(TracerName))
	return m
}

// RecordEstimate counts one estimate; source is "carrier", "fallback" or "unavailable"
func (m *EngineMetrics) RecordEstimate(ctx context.Context, source, zone string) {
	m.estimates.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pricing_source", source),
		attribute.String("zone", zone),
	))
}

// RecordCarrierCall records the latency of a carrier call and counts failures
func (m *EngineMetrics) RecordCarrierCall(ctx context.Context, operation string, d time.Duration, failed bool) {
	attrs := metric.WithAttributes(attribute.String("operation", operation))
	m.carrierDuration.Record(ctx, d.Seconds(), attrs)
	if failed {
		m.carrierFailures.Add(ctx, 1, attrs)
	}
}

// RecordCoupon counts a coupon evaluation; outcome is "applied" or a rejection code
func (m *EngineMetrics) RecordCoupon(ctx context.Context, outcome string) {
	m.couponOutcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordOTPRequest counts an OTP request; outcome is "sent", "throttled" or "failed"
func (m *EngineMetrics) RecordOTPRequest(ctx context.Context, outcome string) {
	m.otpRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
