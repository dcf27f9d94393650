package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/polkiloo/orderflow/internal/domain/model"
)

// ErrUndeliverable indicates the provider refuses to deliver to the address.
var ErrUndeliverable = errors.New("address is undeliverable")

// HTTPClient talks to the shipping provider. It implements
// port.ShippingClient: Quote prices a prospective shipment, Ship books one
// and returns the carrier tracking code synchronously.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type addressPayload struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type quoteRequest struct {
	Address addressPayload `json:"address"`
	Weight  float64        `json:"weight"`
}

type quoteResponse struct {
	Price float64 `json:"price"`
}

type shipResponse struct {
	TrackingCode string `json:"tracking_code"`
}

// NewHTTPClient creates HTTP shipping client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse shipping url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("shipping url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Quote returns the delivery price for the address and total weight.
func (c *HTTPClient) Quote(ctx context.Context, address model.Address, totalWeight float64) (float64, error) {
	var result quoteResponse
	if err := c.post(ctx, "/api/quotes", quoteRequest{Address: toPayload(address), Weight: totalWeight}, &result); err != nil {
		return 0, err
	}
	return result.Price, nil
}

// Ship books the shipment and returns the tracking code.
func (c *HTTPClient) Ship(ctx context.Context, address model.Address, totalWeight float64) (string, error) {
	var result shipResponse
	if err := c.post(ctx, "/api/shipments", quoteRequest{Address: toPayload(address), Weight: totalWeight}, &result); err != nil {
		return "", err
	}
	return result.TrackingCode, nil
}

func (c *HTTPClient) post(ctx context.Context, endpointPath string, payload any, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, endpointPath)

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, out)
	case http.StatusUnprocessableEntity:
		return ErrUndeliverable
	default:
		data, _ := io.ReadAll(resp.Body)
		c.logger.Error("shipping request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(data)))
		return fmt.Errorf("shipping error: %s", resp.Status)
	}
}

func toPayload(address model.Address) addressPayload {
	return addressPayload{
		Line1:      address.Line1,
		Line2:      address.Line2,
		City:       address.City,
		Region:     address.Region,
		PostalCode: address.PostalCode,
		Country:    address.Country,
	}
}
