package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/debtflow/collections/internal"
)

// Client talks to the merchant-configured gateway over HTTP. A timeout or
// transport error surfaces as an error return so the engine records a
// retryable failure; it is never swallowed into a decline.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

func NewClient(cfg internal.GatewayConfig, logger *slog.Logger) *Client {
	timeout := cfg.ChargeTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

type chargeResponseBody struct {
	Data ChargeResult `json:"data"`
}

func (c *Client) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal charge request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/charges", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create charge request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Info("sending charge request",
		"url", url,
		"payment_id", req.PaymentID,
		"amount_cents", req.AmountCents,
		"method", req.Method)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("charge request failed", "error", err, "payment_id", req.PaymentID)
		return nil, fmt.Errorf("gateway transport error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read charge response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("gateway returned error",
			"status", resp.StatusCode,
			"payment_id", req.PaymentID)
		return nil, fmt.Errorf("gateway error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	var body chargeResponseBody
	if err := json.Unmarshal(respBody, &body); err != nil {
		return nil, fmt.Errorf("unmarshal charge response: %w", err)
	}

	switch body.Data.Outcome {
	case OutcomeApproved, OutcomeDeclined:
		// recognized terminal outcomes
	case OutcomeError:
		return nil, fmt.Errorf("gateway reported processing error: %s", body.Data.Reason)
	default:
		return nil, fmt.Errorf("gateway returned unknown outcome %q", body.Data.Outcome)
	}

	c.logger.Info("charge completed",
		"payment_id", req.PaymentID,
		"outcome", body.Data.Outcome,
		"reference_number", body.Data.ReferenceNumber)

	return &body.Data, nil
}
