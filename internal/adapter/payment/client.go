package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/orderflow/internal/domain/model"
	"github.com/polkiloo/orderflow/internal/domain/port"
)

// TooManyRequestsError represents rate limiting signal from the gateway.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// HTTPGateway submits charges and refunds to the payment provider. Both are
// fire-and-forget: the provider acknowledges with 202 and later reports the
// verdict to our webhook, which routes it back through Dispatch. It
// implements port.PaymentGateway.
type HTTPGateway struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
	pending    *pendingTable
}

type chargeRequest struct {
	RequestID  string  `json:"request_id"`
	Amount     float64 `json:"amount"`
	CardNumber string  `json:"card_number"`
	CardHolder string  `json:"card_holder"`
	Expiry     string  `json:"expiry"`
}

type refundRequest struct {
	RequestID        string `json:"request_id"`
	ConfirmationCode string `json:"confirmation_code"`
}

type statusResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Code      string `json:"code"`
}

const (
	statusPending   = "pending"
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

// NewHTTPGateway creates the gateway client with default timeout.
func NewHTTPGateway(baseURL string, logger *slog.Logger) (*HTTPGateway, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &HTTPGateway{
		baseURL: parsed,
		logger:  logger,
		pending: newPendingTable(),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Pay submits a charge. The callback is registered before the request goes
// out so that a webhook racing the acknowledgement still finds it.
func (g *HTTPGateway) Pay(ctx context.Context, card model.Card, amount float64, cb port.PaymentCallback) error {
	requestID := uuid.NewString()
	g.pending.add(requestID, kindCharge, cb)

	payload := chargeRequest{
		RequestID:  requestID,
		Amount:     amount,
		CardNumber: card.Number,
		CardHolder: card.Holder,
		Expiry:     fmt.Sprintf("%02d/%d", card.ExpiryMonth, card.ExpiryYear),
	}
	if err := g.submit(ctx, "/api/payments", payload); err != nil {
		g.pending.remove(requestID)
		return err
	}

	g.logger.Info("charge submitted", slog.String("request_id", requestID), slog.Float64("amount", amount))
	return nil
}

// Refund submits a refund for a previously confirmed charge.
func (g *HTTPGateway) Refund(ctx context.Context, confirmationCode string, cb port.PaymentCallback) error {
	requestID := uuid.NewString()
	g.pending.add(requestID, kindRefund, cb)

	if err := g.submit(ctx, "/api/refunds", refundRequest{RequestID: requestID, ConfirmationCode: confirmationCode}); err != nil {
		g.pending.remove(requestID)
		return err
	}

	g.logger.Info("refund submitted", slog.String("request_id", requestID))
	return nil
}

// Dispatch delivers a gateway verdict to the callback registered for the
// request. Exactly one delivery per request; repeated or unknown ids return
// ErrUnknownRequest.
func (g *HTTPGateway) Dispatch(requestID string, succeeded bool, code string) error {
	req, ok := g.pending.take(requestID)
	if !ok {
		return ErrUnknownRequest
	}
	if succeeded {
		req.callback.OnSuccess(code)
	} else {
		req.callback.OnError(code)
	}
	g.logger.Info("verdict dispatched",
		slog.String("request_id", requestID),
		slog.String("kind", string(req.kind)),
		slog.Bool("succeeded", succeeded),
	)
	return nil
}

// StalePending lists requests that have been outstanding longer than age.
func (g *HTTPGateway) StalePending(age time.Duration, limit int) []string {
	return g.pending.staleIDs(time.Now().Add(-age), limit)
}

// Reconcile queries the provider for the verdict of an outstanding request
// whose webhook may have been lost, and dispatches it when terminal.
func (g *HTTPGateway) Reconcile(ctx context.Context, requestID string) error {
	endpoint := *g.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/payments/", requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		var data statusResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return err
		}
		switch data.Status {
		case statusPending:
			return nil
		case statusSucceeded:
			return g.Dispatch(requestID, true, data.Code)
		case statusFailed:
			return g.Dispatch(requestID, false, data.Code)
		default:
			return fmt.Errorf("gateway reported unknown status %q", data.Status)
		}
	case http.StatusNotFound:
		// The provider never saw the request; treat it as failed.
		return g.Dispatch(requestID, false, "")
	case http.StatusTooManyRequests:
		return TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(resp.Body)
		g.logger.Error("gateway status request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return fmt.Errorf("gateway error: %s", resp.Status)
	}
}

func (g *HTTPGateway) submit(ctx context.Context, endpointPath string, payload any) error {
	endpoint := *g.baseURL
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

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusOK:
		return nil
	case http.StatusTooManyRequests:
		return TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		data, _ := io.ReadAll(resp.Body)
		g.logger.Error("gateway submit failed", slog.Int("status", resp.StatusCode), slog.String("body", string(data)))
		return fmt.Errorf("gateway error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
