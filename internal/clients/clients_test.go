package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var cardPayment = domain.PaymentCreate{
	Amount:     99.99,
	Method:     domain.PaymentCreditCard,
	CardNumber: "4532015112830366",
	CardExpiry: "12/25",
	CardCVV:    "123",
}

func TestChargeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 99.99, body["amount"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"pay_1","status":"captured"}`))
	}))
	defer srv.Close()

	result, err := NewPaymentHTTPClient(srv.URL, time.Second, quietLogger()).Charge(context.Background(), cardPayment)
	require.NoError(t, err)
	assert.Equal(t, "pay_1", result.PaymentID)
	assert.Equal(t, "**** 0366", result.Card)
}

func TestChargeErrors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		want   error
	}{
		"declined":      {http.StatusPaymentRequired, `{}`, domain.ErrPaymentDeclined},
		"unprocessable": {http.StatusUnprocessableEntity, `{}`, domain.ErrPaymentDeclined},
		"server error":  {http.StatusInternalServerError, `oops`, domain.ErrUpstreamBadResponse},
		"garbage":       {http.StatusOK, `not json`, domain.ErrUpstreamBadResponse},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewPaymentHTTPClient(srv.URL, time.Second, quietLogger()).Charge(context.Background(), cardPayment)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestChargeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewPaymentHTTPClient(srv.URL, 50*time.Millisecond, quietLogger()).Charge(context.Background(), cardPayment)
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestChargeUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewPaymentHTTPClient(url, time.Second, quietLogger()).Charge(context.Background(), cardPayment)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestShippingRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rates/99999" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "/rates/10001", r.URL.Path)
		_, _ = w.Write([]byte(`{"rates":[{"carrier":"UPS","service":"ground","price":9.999,"estimated_days":5}]}`))
	}))
	defer srv.Close()

	client := NewShippingHTTPClient(srv.URL, time.Second, quietLogger())
	rates, err := client.Rates(context.Background(), "10001")
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, 10.0, rates[0].Price)

	_, err = client.Rates(context.Background(), "99999")
	var notFound *domain.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}
