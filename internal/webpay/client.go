// Package webpay is a thin adapter over the Webpay Plus REST API. It exposes
// the two calls the checkout flow needs (create, commit) and classifies
// failures into typed kinds so callers never have to parse error text.
package webpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const transactionsPath = "/rswebpaytransaction/api/webpay/v1.2/transactions"

// Typed error kinds surfaced by the adapter.
var (
	// ErrUnavailable covers transport failures and gateway 5xx responses.
	ErrUnavailable = errors.New("payment gateway unavailable")
	// ErrQuotaExceeded is returned when the gateway rate-limits the commerce.
	ErrQuotaExceeded = errors.New("payment gateway rate limit exceeded")
	// ErrRequestRejected covers 4xx responses: the request itself was bad
	// (malformed token, expired session, invalid amount).
	ErrRequestRejected = errors.New("payment gateway rejected the request")
)

// Config carries the commerce credentials and endpoint for a Client.
type Config struct {
	BaseURL      string
	CommerceCode string
	APIKey       string
}

// Client calls the Webpay Plus REST API.
type Client struct {
	baseURL      string
	commerceCode string
	apiKey       string
	httpClient   *http.Client
}

// NewClient creates a Webpay client from config.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		commerceCode: cfg.CommerceCode,
		apiKey:       cfg.APIKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateResponse is the gateway's answer to a created transaction: the token
// identifying it and the URL the buyer's browser must be sent to.
type CreateResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// CommitResult is the authoritative outcome of a committed transaction.
// SessionID here, not any client-supplied value, keys the stored intent.
type CommitResult struct {
	VCI                string     `json:"vci"`
	Amount             int64      `json:"amount"`
	Status             string     `json:"status"`
	BuyOrder           string     `json:"buy_order"`
	SessionID          string     `json:"session_id"`
	CardDetail         CardDetail `json:"card_detail"`
	AccountingDate     string     `json:"accounting_date"`
	TransactionDate    time.Time  `json:"transaction_date"`
	AuthorizationCode  string     `json:"authorization_code"`
	PaymentTypeCode    string     `json:"payment_type_code"`
	ResponseCode       int        `json:"response_code"`
	InstallmentsNumber int        `json:"installments_number"`
}

// CardDetail carries the masked card number (last four digits) for receipts.
type CardDetail struct {
	CardNumber string `json:"card_number"`
}

// Authorized reports whether the gateway approved the payment.
func (r *CommitResult) Authorized() bool {
	return r.Status == "AUTHORIZED" && r.ResponseCode == 0
}

type createRequest struct {
	BuyOrder  string `json:"buy_order"`
	SessionID string `json:"session_id"`
	Amount    int64  `json:"amount"`
	ReturnURL string `json:"return_url"`
}

// Create opens a checkout session with the gateway.
func (c *Client) Create(ctx context.Context, buyOrder, sessionID string, amount int64, returnURL string) (*CreateResponse, error) {
	body := createRequest{
		BuyOrder:  buyOrder,
		SessionID: sessionID,
		Amount:    amount,
		ReturnURL: returnURL,
	}

	var resp CreateResponse
	if err := c.do(ctx, http.MethodPost, transactionsPath, body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.URL == "" {
		return nil, fmt.Errorf("%w: create response missing token or url", ErrUnavailable)
	}
	return &resp, nil
}

// Commit finalizes a previously created transaction and returns its outcome.
func (c *Client) Commit(ctx context.Context, token string) (*CommitResult, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: commit token cannot be empty", ErrRequestRejected)
	}

	var result CommitResult
	if err := c.do(ctx, http.MethodPut, transactionsPath+"/"+token, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode webpay request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build webpay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Tbk-Api-Key-Id", c.commerceCode)
	req.Header.Set("Tbk-Api-Key-Secret", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s %s", ErrQuotaExceeded, method, path)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d from %s %s", ErrUnavailable, resp.StatusCode, method, path)
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrRequestRejected, resp.StatusCode, bytes.TrimSpace(detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}
	return nil
}
