package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"payment-api/internal/config"
	ierr "payment-api/internal/errors"
	"payment-api/internal/models"
)

// EntitlementService upgrades a trial entitlement after payment
type EntitlementService interface {
	UpgradeFromTrial(ctx context.Context, entitlementID, principalID string) error
}

// SubscriptionService patches a principal's subscription record.
// A duplicate transaction is reported as an error marked ErrConflict.
type SubscriptionService interface {
	Patch(ctx context.Context, principalID string, patch models.SubscriptionPatch) error
}

// MembershipService reads the principal's current tier
type MembershipService interface {
	CurrentTier(ctx context.Context, principalID string) (models.PackageType, error)
}

// BackendClient calls the program and user-info endpoints of the backend API
type BackendClient struct {
	baseURL           string
	apiKey            string
	timeout           time.Duration
	membershipTimeout time.Duration
	httpClient        *http.Client
}

// NewBackendClient creates a backend client from configuration
func NewBackendClient(cfg config.BackendConfig) *BackendClient {
	return &BackendClient{
		baseURL:           cfg.BaseURL,
		apiKey:            cfg.APIKey,
		timeout:           cfg.Timeout,
		membershipTimeout: cfg.MembershipCheckTimeout,
		httpClient:        &http.Client{},
	}
}

// UpgradeFromTrial converts a trial program into a paid one
func (c *BackendClient) UpgradeFromTrial(ctx context.Context, entitlementID, principalID string) error {
	path := fmt.Sprintf("/api/programs/%s/upgrade-from-trial", url.PathEscape(entitlementID))
	headers := map[string]string{
		"X-User-Id":    principalID,
		"X-User-Group": "CUSTOMER",
	}

	status, body, err := c.do(ctx, http.MethodPost, path, headers, struct{}{}, c.timeout)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return ierr.NewErrorf("upgrade-from-trial returned status %d", status).
			WithHintf("backend response: %s", truncate(body, 200)).
			Mark(ierr.ErrDownstream)
	}
	return nil
}

// Patch applies the subscription patch to the principal's user-info record
func (c *BackendClient) Patch(ctx context.Context, principalID string, patch models.SubscriptionPatch) error {
	headers := map[string]string{"X-User-Id": principalID}

	status, body, err := c.do(ctx, http.MethodPatch, "/api/user-info", headers, patch, c.timeout)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusConflict:
		return ierr.NewErrorf("transaction %s already applied", patch.LastPaymentID).Mark(ierr.ErrConflict)
	case status < 200 || status >= 300:
		return ierr.NewErrorf("user-info patch returned status %d", status).
			WithHintf("backend response: %s", truncate(body, 200)).
			Mark(ierr.ErrDownstream)
	}
	return nil
}

type userInfoResponse struct {
	Membership models.PackageType `json:"membership"`
}

// CurrentTier returns the principal's membership, BASIC when the record has none
func (c *BackendClient) CurrentTier(ctx context.Context, principalID string) (models.PackageType, error) {
	headers := map[string]string{"X-User-Id": principalID}

	status, body, err := c.do(ctx, http.MethodGet, "/api/user-info/by-user-id", headers, nil, c.membershipTimeout)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", ierr.NewErrorf("user-info lookup returned status %d", status).Mark(ierr.ErrDownstream)
	}

	var info userInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return "", ierr.WithError(err).WithMessage("failed to decode user-info").Mark(ierr.ErrDownstream)
	}
	if info.Membership == "" {
		return models.PackageBasic, nil
	}
	return info.Membership, nil
}

// do sends one request bounded by timeout and returns the status and body
func (c *BackendClient) do(ctx context.Context, method, path string, headers map[string]string, payload interface{}, timeout time.Duration) (int, []byte, error) {
	if c.baseURL == "" {
		return 0, nil, ierr.NewError("backend API URL is not configured").Mark(ierr.ErrConfiguration)
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, ierr.WithError(err).WithMessage("failed to marshal backend request").Mark(ierr.ErrInternal)
		}
		reader = bytes.NewReader(data)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, ierr.WithError(err).WithMessage("failed to build backend request").Mark(ierr.ErrInternal)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", c.apiKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, ierr.FromTransport(err, fmt.Sprintf("%s %s failed", method, path))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, ierr.FromTransport(err, fmt.Sprintf("failed to read %s %s response", method, path))
	}
	return resp.StatusCode, body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
