package carrier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenext/backend/internal/domain/shipping"
	"github.com/sevenext/backend/internal/infrastructure/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, retryMax int) *DelhiveryClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewDelhiveryClient(config.CarrierConfig{
		BaseURL:  server.URL + "/",
		Token:    "secret",
		Timeout:  2 * time.Second,
		RetryMax: retryMax,
	}, WithRetryWait(time.Millisecond, 5*time.Millisecond))
}

func TestCheckServiceability(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		serviceable bool
		cod         bool
		reason      string
	}{
		{"serviceable with cod", `{"delivery_codes":[{"postal_code":{"pin":110001,"pre_paid":"Y","cod":"Y","remarks":""}}]}`, true, true, ""},
		{"prepaid only", `{"delivery_codes":[{"postal_code":{"pre_paid":"Y","cod":"N"}}]}`, true, false, ""},
		{"empty list", `{"delivery_codes":[]}`, false, false, "Pincode not serviceable"},
		{"embargo", `{"delivery_codes":[{"postal_code":{"pre_paid":"Y","cod":"Y","remarks":"Embargo"}}]}`, false, false, "Pincode under embargo"},
		{"no payment mode", `{"delivery_codes":[{"postal_code":{"pre_paid":"N","cod":"N"}}]}`, false, false, "Pincode not serviceable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/c/api/pin-codes/json/", r.URL.Path)
				assert.Equal(t, "560001", r.URL.Query().Get("filter_codes"))
				assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}, 0)

			result, err := client.CheckServiceability(context.Background(), "560001")
			require.NoError(t, err)
			assert.Equal(t, tt.serviceable, result.Serviceable)
			assert.Equal(t, tt.cod, result.CODAvailable)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}
}

func TestCheckServiceability_RetriesThenGivesUp(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, 2)

	_, err := client.CheckServiceability(context.Background(), "560001")
	require.Error(t, err)
	assert.ErrorIs(t, err, shipping.ErrCarrierUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCheckServiceability_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}, 2)

	_, err := client.CheckServiceability(context.Background(), "560001")
	assert.ErrorIs(t, err, shipping.ErrCarrierRequestFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQuoteRate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/kinko/v1/invoice/charges/.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "S", q.Get("md"))
		assert.Equal(t, "Delivered", q.Get("ss"))
		assert.Equal(t, "110001", q.Get("o_pin"))
		assert.Equal(t, "560001", q.Get("d_pin"))
		assert.Equal(t, "2000", q.Get("cgm"))
		assert.Equal(t, "COD", q.Get("pt"))
		_, _ = w.Write([]byte(`[{"total_amount": 85.5}]`))
	}, 0)

	amount, err := client.QuoteRate(context.Background(), shipping.RateQuery{
		OriginPin:             "110001",
		DestinationPin:        "560001",
		ChargeableWeightGrams: 2000,
		PaymentMode:           shipping.PaymentModeCOD,
		Zone:                  shipping.ZoneNational,
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("85.5").Equal(amount))
}

func TestQuoteRate_BadResponses(t *testing.T) {
	for name, body := range map[string]string{
		"empty list": `[]`,
		"not json":   `<html>maintenance</html>`,
	} {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}, 0)
			_, err := client.QuoteRate(context.Background(), shipping.RateQuery{DestinationPin: "560001"})
			assert.ErrorIs(t, err, shipping.ErrCarrierBadResponse)
		})
	}
}

func TestQuoteRate_ContextDeadline(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.QuoteRate(ctx, shipping.RateQuery{DestinationPin: "560001"})
	assert.ErrorIs(t, err, shipping.ErrCarrierUnavailable)
}
