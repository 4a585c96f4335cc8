package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"payment-api/internal/config"
	ierr "payment-api/internal/errors"
	"payment-api/pkg/logging"
)

// Gateway issues create-payment requests
type Gateway interface {
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error)
}

// Client talks to the MoMo create-payment endpoint
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a gateway client from configuration
func NewClient(cfg config.MoMoConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout + 5*time.Second,
		},
	}
}

// CreatePayment posts a signed request and decodes the gateway answer.
// A non-2xx answer is returned as a *GatewayError marked ErrDownstream.
func (c *Client) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if c.endpoint == "" {
		return nil, ierr.NewError("momo endpoint is not configured").Mark(ierr.ErrConfiguration)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, ierr.WithError(err).WithMessage("failed to marshal create request").Mark(ierr.ErrInternal)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, ierr.WithError(err).WithMessage("failed to build create request").Mark(ierr.ErrInternal)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	logging.Infow("sending momo create request",
		"order_id", req.OrderID,
		"amount", req.Amount,
		"signature", logging.Mask(req.Signature, 8),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, ierr.FromTransport(err, "momo create request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.FromTransport(err, "failed to read momo response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gwErr := &GatewayError{StatusCode: resp.StatusCode, RawBody: string(respBody)}
		_ = json.Unmarshal(respBody, &gwErr.Body)
		return nil, ierr.WithError(gwErr).Mark(ierr.ErrDownstream)
	}

	var out CreatePaymentResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, ierr.WithError(err).
			WithMessage("failed to decode momo response").
			Mark(ierr.ErrDownstream)
	}

	logging.Infow("momo create request accepted",
		"order_id", out.OrderID,
		"result_code", out.ResultCode,
	)
	return &out, nil
}
