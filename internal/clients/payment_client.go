package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
)

type PaymentGateway interface {
	Charge(ctx context.Context, payment domain.PaymentCreate) (*domain.PaymentResult, error)
}

type chargeRequest struct {
	OrderID       int                  `json:"order_id,omitempty"`
	Amount        float64              `json:"amount"`
	Method        domain.PaymentMethod `json:"method"`
	CardNumber    string               `json:"card_number,omitempty"`
	CardExpiry    string               `json:"card_expiry,omitempty"`
	CardCVV       string               `json:"card_cvv,omitempty"`
	PayPalEmail   string               `json:"paypal_email,omitempty"`
	AccountNumber string               `json:"account_number,omitempty"`
	RoutingNumber string               `json:"routing_number,omitempty"`
}

type chargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type paymentHTTPClient struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

func NewPaymentHTTPClient(baseURL string, timeout time.Duration, logger *logrus.Logger) PaymentGateway {
	return &paymentHTTPClient{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
		log:     logger,
	}
}

func (c *paymentHTTPClient) Charge(ctx context.Context, payment domain.PaymentCreate) (*domain.PaymentResult, error) {
	url := c.baseURL + "/payments"
	c.log.Infof("PaymentClient: Charging %.2f via %s (card=%s)", payment.Amount, payment.Method, payment.MaskedCard())

	body, err := json.Marshal(chargeRequest{
		OrderID:       payment.OrderID,
		Amount:        domain.RoundMoney(payment.Amount),
		Method:        payment.Method,
		CardNumber:    payment.CardNumber,
		CardExpiry:    payment.CardExpiry,
		CardCVV:       payment.CardCVV,
		PayPalEmail:   payment.PayPalEmail,
		AccountNumber: payment.AccountNumber,
		RoutingNumber: payment.RoutingNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.log.Errorf("PaymentClient: Failed to create charge request: %v", err)
		return nil, fmt.Errorf("failed to create payment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorf("PaymentClient: Failed to execute charge request: %v", err)
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity:
		c.log.Warnf("PaymentClient: Charge declined with status %d", resp.StatusCode)
		return nil, domain.ErrPaymentDeclined
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.log.Errorf("PaymentClient: Charge failed with status %d. Response body: %s", resp.StatusCode, string(bodyBytes))
		return nil, badResponse("payment gateway returned status %d", resp.StatusCode)
	}

	var decoded chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil || decoded.ID == "" {
		c.log.Errorf("PaymentClient: Failed to decode charge response: %v", err)
		return nil, badResponse("undecodable payment gateway response")
	}

	c.log.Infof("PaymentClient: Charge %s completed with status %s", decoded.ID, decoded.Status)
	return &domain.PaymentResult{
		PaymentID: decoded.ID,
		Status:    decoded.Status,
		Amount:    domain.RoundMoney(payment.Amount),
		Method:    payment.Method,
		Card:      payment.MaskedCard(),
	}, nil
}
