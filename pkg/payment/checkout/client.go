package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ikkim/maison-backend/pkg/logger"
)

// Client verifies payments taken by the checkout widget
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new gateway client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// PublicConfig returns the values safe to expose to the browser
func (c *Client) PublicConfig() PublicConfig {
	return PublicConfig{
		PublishableKey: c.config.PublishableKey,
		Currency:       c.config.Currency,
	}
}

// Verify fetches the state of the transaction identified by reference
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrInvalidRequest
	}

	body, err := c.doRequest(ctx, http.MethodGet, "transaction/verify/"+url.PathEscape(reference))
	if err != nil {
		return nil, fmt.Errorf("failed to verify transaction: %w", err)
	}

	var resp verifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verify response: %w", err)
	}
	if !resp.Status || resp.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, resp.Message)
	}

	logger.Info("Payment verified", map[string]interface{}{
		"reference": resp.Data.Reference,
		"status":    resp.Data.Status,
		"amount":    resp.Data.Amount,
		"currency":  resp.Data.Currency,
	})
	return resp.Data, nil
}

// doRequest performs an authenticated HTTP request to the gateway
func (c *Client) doRequest(ctx context.Context, method, endpoint string) ([]byte, error) {
	target := fmt.Sprintf("%s/%s", strings.TrimRight(c.config.BaseURL, "/"), endpoint)

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp verifyResponse
		_ = json.Unmarshal(body, &errResp)

		logger.Warn("Payment gateway returned an error", map[string]interface{}{
			"status_code": resp.StatusCode,
			"message":     errResp.Message,
		})

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errResp.Message)
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, errResp.Message)
		case http.StatusBadRequest:
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, errResp.Message)
		default:
			return nil, fmt.Errorf("%w: status %d: %s", ErrPaymentFailed, resp.StatusCode, errResp.Message)
		}
	}

	return body, nil
}
