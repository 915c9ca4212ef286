package cloudapi

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

	"github.com/felixgeelhaar/fortify/circuitbreaker"

	"github.com/felixgeelhaar/notify-go/domain/notification"
)

// Client is a notification.Channel backed by the HTTPS messaging API.
// It is safe for concurrent use.
type Client struct {
	config   Config
	endpoint string
	client   *http.Client
	breaker  circuitbreaker.CircuitBreaker[int]
}

// New creates a channel client.
func New(config Config) *Client {
	config = config.withDefaults()

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if config.MaxConcurrent > 0 {
		transport.MaxConnsPerHost = config.MaxConcurrent
		transport.MaxIdleConnsPerHost = config.MaxConcurrent
	}

	c := &Client{
		config: config,
		endpoint: fmt.Sprintf("%s/%s/%s/messages",
			strings.TrimRight(config.BaseURL, "/"), config.APIVersion, url.PathEscape(config.PhoneNumberID)),
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
	}

	if config.CircuitBreakerEnabled {
		threshold := config.CircuitBreakerThreshold
		c.breaker = circuitbreaker.New[int](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    config.CircuitBreakerTimeout,
			Timeout:     config.CircuitBreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- threshold is positive
			},
		})
	}

	return c
}

// Endpoint returns the messages URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// CheckCredential implements notification.CredentialChecker.
func (c *Client) CheckCredential(_ context.Context) error {
	if strings.TrimSpace(c.config.AccessToken) == "" {
		return fmt.Errorf("%w: access token not configured", notification.ErrMissingCredential)
	}
	if strings.TrimSpace(c.config.PhoneNumberID) == "" {
		return fmt.Errorf("%w: phone number id not configured", notification.ErrMissingCredential)
	}
	return nil
}

// Send delivers one template message. It makes exactly one attempt.
func (c *Client) Send(ctx context.Context, msg notification.Message) error {
	if want := msg.Template.Arity(); want == 0 || len(msg.Params) != want {
		return fmt.Errorf("%w: %s takes %d, got %d",
			notification.ErrArityMismatch, msg.Template, want, len(msg.Params))
	}

	payload, err := json.Marshal(newMessageRequest(msg.To, c.config.templateName(msg.Template), c.config.Language, msg.Params))
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	status, body, err := c.execute(ctx, payload)
	if err != nil {
		return err
	}

	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", notification.ErrChannelUnauthorized, status, body)
	default:
		return fmt.Errorf("%w: status %d: %s", notification.ErrChannelRejected, status, body)
	}
}

// execute posts payload. Only transport failures and 5xx responses are
// errors here, so only they count toward the circuit breaker.
func (c *Client) execute(ctx context.Context, payload []byte) (int, string, error) {
	var body string
	call := func(ctx context.Context) (int, error) {
		req, err := c.newRequest(ctx, payload)
		if err != nil {
			return 0, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", notification.ErrChannelUnavailable, err)
		}
		defer resp.Body.Close()

		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		body = errorMessage(raw)

		if resp.StatusCode >= 500 {
			return resp.StatusCode, fmt.Errorf("%w: status %d: %s",
				notification.ErrChannelUnavailable, resp.StatusCode, body)
		}
		return resp.StatusCode, nil
	}

	if c.breaker == nil {
		status, err := call(ctx)
		return status, body, err
	}

	status, err := c.breaker.Execute(ctx, call)
	if err != nil && !errors.Is(err, notification.ErrChannelUnavailable) {
		err = fmt.Errorf("%w: %v", notification.ErrChannelUnavailable, err)
	}
	return status, body, err
}

func (c *Client) newRequest(ctx context.Context, payload []byte) (*http.Request, error) {
	target := c.endpoint
	if c.config.AppSecret != "" {
		target += "?appsecret_proof=" + AppSecretProof(c.config.AccessToken, c.config.AppSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	return req, nil
}

// errorMessage extracts the API error message, falling back to the raw body.
func errorMessage(raw []byte) string {
	var e apiError
	if err := json.Unmarshal(raw, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

// BreakerState returns the circuit breaker state, or "disabled".
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

var (
	_ notification.Channel           = (*Client)(nil)
	_ notification.CredentialChecker = (*Client)(nil)
)
