// internal/domain/payment/paypal.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/config"
)

const tokenCacheKey = "paypal:access_token"

// tokenTTLMargin is shaved off the provider-stated token lifetime so a
// cached token never expires mid-request.
const tokenTTLMargin = 60 * time.Second

// TokenStore caches the provider access token for its lifetime.
type TokenStore interface {
	GetToken(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string, ttl time.Duration) error
}

// RedisTokenStore backs TokenStore with Redis. A missing key is reported
// as an empty token, not an error.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a Redis-backed token store
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) GetToken(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, tokenCacheKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cached token: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) SetToken(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenCacheKey, token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}
	return nil
}

// PayPalClient talks to the PayPal REST API (v2 checkout orders)
type PayPalClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	currency     string
	httpClient   *http.Client
	tokens       TokenStore
}

// NewPayPalClient creates a new PayPal API client
func NewPayPalClient(cfg *config.Config, tokens TokenStore) *PayPalClient {
	return &PayPalClient{
		baseURL:      strings.TrimRight(cfg.PayPal.BaseURL, "/"),
		clientID:     cfg.PayPal.ClientID,
		clientSecret: cfg.PayPal.ClientSecret,
		currency:     cfg.Pricing.Currency,
		httpClient:   &http.Client{Timeout: cfg.PayPal.Timeout},
		tokens:       tokens,
	}
}

// CreateOrder creates a payment intent for the given amount. The reference
// ID ties the provider order back to the local one.
func (c *PayPalClient) CreateOrder(ctx context.Context, referenceID string, total decimal.Decimal) (*ProviderOrder, error) {
	body := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnitRequest{
			{
				ReferenceID: referenceID,
				Amount: amount{
					CurrencyCode: c.currency,
					Value:        total.StringFixed(2),
				},
			},
		},
	}

	var out ProviderOrder
	if err := c.post(ctx, "/v2/checkout/orders", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CaptureOrder captures the funds for a previously created provider order.
func (c *PayPalClient) CaptureOrder(ctx context.Context, providerOrderID string) (*captureResponse, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(providerOrderID))

	var out captureResponse
	if err := c.post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *PayPalClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProviderError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	return nil
}

// accessToken returns a cached token or fetches a fresh one via the
// client-credentials grant, caching it for its lifetime minus a margin.
func (c *PayPalClient) accessToken(ctx context.Context) (string, error) {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("provider returned an empty access token")
	}

	ttl := time.Duration(tr.ExpiresIn)*time.Second - tokenTTLMargin
	if ttl > 0 {
		if err := c.tokens.SetToken(ctx, tr.AccessToken, ttl); err != nil {
			return "", err
		}
	}

	return tr.AccessToken, nil
}
