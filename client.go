package textbelt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the production Textbelt API endpoint.
const DefaultBaseURL = "https://textbelt.com"

// DefaultTimeout bounds each request when no custom HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

const defaultMaxBodyBytes = 64 * 1024

// sandboxKeySuffix routes a request through Textbelt's test mode.
const sandboxKeySuffix = "_test"

// HTTPClient abstracts the http.Client Do method for easier testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customises the behaviour of the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Useful for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithHTTPClient overrides the HTTP client used to talk to the API.
func WithHTTPClient(client HTTPClient) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client. It
// has no effect when WithHTTPClient is also supplied.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger attaches a zerolog logger. The default is a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock overrides the clock used for webhook freshness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithBodyLimit adjusts how many bytes are read from an API response body.
func WithBodyLimit(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxBodyBytes = limit
		}
	}
}

// WithWebhookMaxAge sets the freshness window applied when verifying reply
// webhooks. A non-positive value disables the check.
func WithWebhookMaxAge(maxAge time.Duration) Option {
	return func(c *Client) {
		c.webhookMaxAge = maxAge
	}
}

// Client talks to the Textbelt API. It is stateless after construction and
// safe for concurrent use.
type Client struct {
	logger        zerolog.Logger
	apiKey        string
	baseURL       string
	httpClient    HTTPClient
	timeout       time.Duration
	now           func() time.Time
	maxBodyBytes  int64
	webhookMaxAge time.Duration
	verifier      *WebhookVerifier
}

// New constructs a Client for the given API key.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, newError(KindValidation, "api key is required", nil)
	}

	c := &Client{
		logger:        zerolog.Nop(),
		apiKey:        strings.TrimSpace(apiKey),
		baseURL:       DefaultBaseURL,
		timeout:       DefaultTimeout,
		now:           time.Now,
		maxBodyBytes:  defaultMaxBodyBytes,
		webhookMaxAge: DefaultWebhookMaxAge,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.maxBodyBytes <= 0 {
		c.maxBodyBytes = defaultMaxBodyBytes
	}

	c.verifier = NewWebhookVerifier(c.apiKey,
		WithVerifierClock(c.now),
		WithVerifierMaxAge(c.webhookMaxAge),
	)

	return c, nil
}

// SendSMS sends a text message. A 2xx response with success=false is not an
// error: the API's own failure signal is returned as response data.
func (c *Client) SendSMS(ctx context.Context, req SMSRequest) (*SMSResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	body, err := c.postForm(ctx, "/text", req.encode(c.requestKey(req.Sandbox)))
	if err != nil {
		c.logSendFailure("send sms", err)
		return nil, err
	}

	var resp SMSResponse
	if err := decodeBody(body, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Bool("success", resp.Success).
		Str("text_id", resp.TextID).
		Int("quota_remaining", resp.QuotaRemaining).
		Msg("sms send completed")
	return &resp, nil
}

// SendOTP generates a one-time password and sends it to the given phone.
func (c *Client) SendOTP(ctx context.Context, req OTPGenerateRequest) (*OTPGenerateResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	body, err := c.postForm(ctx, "/otp/generate", req.encode(c.apiKey))
	if err != nil {
		c.logSendFailure("send otp", err)
		return nil, err
	}

	var resp OTPGenerateResponse
	if err := decodeBody(body, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Bool("success", resp.Success).
		Str("text_id", resp.TextID).
		Int("quota_remaining", resp.QuotaRemaining).
		Msg("otp send completed")
	return &resp, nil
}

// VerifyOTP checks a code the user entered against the OTP generated for the
// same user id. Success reports that the lookup worked; IsValidOTP reports
// whether the code matched.
func (c *Client) VerifyOTP(ctx context.Context, req OTPVerificationRequest) (*OTPVerificationResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "/otp/verify", req.encode(c.apiKey))
	if err != nil {
		c.logSendFailure("verify otp", err)
		return nil, err
	}

	var resp OTPVerificationResponse
	if err := decodeBody(body, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Bool("success", resp.Success).
		Bool("is_valid_otp", resp.IsValidOTP).
		Msg("otp verification completed")
	return &resp, nil
}

// CheckSMSDeliveryStatus looks up the delivery state of a sent message by
// its text id. Unrecognized states map to StatusUnknown.
func (c *Client) CheckSMSDeliveryStatus(ctx context.Context, textID string) (*SMSStatusResponse, error) {
	if strings.TrimSpace(textID) == "" {
		return nil, newError(KindValidation, "text id is required", nil)
	}

	body, err := c.get(ctx, "/status/"+url.PathEscape(textID), nil)
	if err != nil {
		c.logSendFailure("check delivery status", err)
		return nil, err
	}

	var resp SMSStatusResponse
	if err := decodeBody(body, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("text_id", textID).
		Str("status", string(resp.Status)).
		Msg("delivery status checked")
	return &resp, nil
}

// CheckCreditBalance returns the SMS credits remaining on the account.
func (c *Client) CheckCreditBalance(ctx context.Context) (*CreditBalanceResponse, error) {
	body, err := c.get(ctx, "/quota/"+url.PathEscape(c.apiKey), nil)
	if err != nil {
		c.logSendFailure("check credit balance", err)
		return nil, err
	}

	var resp CreditBalanceResponse
	if err := decodeBody(body, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Bool("success", resp.Success).
		Int("quota_remaining", resp.QuotaRemaining).
		Msg("credit balance checked")
	return &resp, nil
}

// VerifyWebhook authenticates an inbound reply webhook using the client's
// API key as the signing secret. See WebhookVerifier.Verify.
func (c *Client) VerifyWebhook(timestamp, signature, rawPayload string) (bool, *WebhookPayload, error) {
	return c.verifier.Verify(timestamp, signature, rawPayload)
}

func (c *Client) requestKey(sandbox bool) string {
	if sandbox {
		return c.apiKey + sandboxKeySuffix
	}
	return c.apiKey
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, newError(KindNetwork, "build request for "+path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, newError(KindNetwork, "build request for "+path, err)
	}
	return c.do(req)
}

// do is the single invocation path shared by every operation so that
// network, HTTP and read failures classify uniformly.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, fmt.Sprintf("%s %s failed", req.Method, req.URL.Path), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, newError(KindNetwork, "read response body", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &Error{
			Kind:       KindHTTP,
			Message:    fmt.Sprintf("%s %s returned status %d", req.Method, req.URL.Path, resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	return body, nil
}

func decodeBody(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return newError(KindParse, "decode response body", err)
	}
	return nil
}

func (c *Client) logSendFailure(operation string, err error) {
	evt := c.logger.Warn().Err(err)
	if kind, ok := KindOf(err); ok {
		evt = evt.Str("kind", string(kind))
	}
	evt.Msg(operation + " failed")
}
