package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
)

type ShippingCarrier interface {
	Rates(ctx context.Context, zipCode string) ([]domain.ShippingRate, error)
}

type ratesResponse struct {
	Rates []domain.ShippingRate `json:"rates"`
}

type shippingHTTPClient struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

func NewShippingHTTPClient(baseURL string, timeout time.Duration, logger *logrus.Logger) ShippingCarrier {
	return &shippingHTTPClient{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
		log:     logger,
	}
}

func (c *shippingHTTPClient) Rates(ctx context.Context, zipCode string) ([]domain.ShippingRate, error) {
	endpoint := fmt.Sprintf("%s/rates/%s", c.baseURL, url.PathEscape(zipCode))
	c.log.Infof("ShippingClient: Requesting rates from URL: %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.log.Errorf("ShippingClient: Failed to create rates request for %s: %v", zipCode, err)
		return nil, fmt.Errorf("failed to create shipping request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorf("ShippingClient: Failed to execute rates request for %s: %v", zipCode, err)
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.log.Warnf("ShippingClient: No shipping zone for %s", zipCode)
		return nil, domain.NewNotFound("shipping zone", zipCode)
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.log.Errorf("ShippingClient: Rates request for %s failed with status %d. Response body: %s", zipCode, resp.StatusCode, string(bodyBytes))
		return nil, badResponse("shipping carrier returned status %d", resp.StatusCode)
	}

	var decoded ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.log.Errorf("ShippingClient: Failed to decode rates response for %s: %v", zipCode, err)
		return nil, badResponse("undecodable shipping carrier response")
	}
	for i := range decoded.Rates {
		decoded.Rates[i].Price = domain.RoundMoney(decoded.Rates[i].Price)
	}
	if decoded.Rates == nil {
		decoded.Rates = []domain.ShippingRate{}
	}

	c.log.Infof("ShippingClient: Received %d rates for %s", len(decoded.Rates), zipCode)
	return decoded.Rates, nil
}
