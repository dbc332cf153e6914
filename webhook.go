package textbelt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Header names Textbelt uses on reply webhook requests. The caller's HTTP
// layer extracts these along with the raw body and hands them to Verify;
// this library runs no server.
const (
	WebhookTimestampHeader = "X-textbelt-timestamp"
	WebhookSignatureHeader = "X-textbelt-signature"
)

// DefaultWebhookMaxAge is the freshness window Textbelt allows between
// signing a webhook and its delivery.
const DefaultWebhookMaxAge = 15 * time.Minute

// VerifierOption customises the behaviour of a WebhookVerifier.
type VerifierOption func(*WebhookVerifier)

// WithVerifierClock overrides the clock used for the freshness check.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *WebhookVerifier) {
		if now != nil {
			v.now = now
		}
	}
}

// WithVerifierMaxAge sets the maximum accepted webhook age. A non-positive
// value disables the freshness check entirely.
func WithVerifierMaxAge(maxAge time.Duration) VerifierOption {
	return func(v *WebhookVerifier) {
		v.maxAge = maxAge
	}
}

// WebhookVerifier authenticates inbound reply webhooks. The signature is an
// HMAC-SHA256 hex digest over timestamp ++ raw body, keyed with the API key.
type WebhookVerifier struct {
	secret string
	now    func() time.Time
	maxAge time.Duration
}

// NewWebhookVerifier constructs a verifier for the given signing secret.
func NewWebhookVerifier(secret string, opts ...VerifierOption) *WebhookVerifier {
	v := &WebhookVerifier{
		secret: secret,
		now:    time.Now,
		maxAge: DefaultWebhookMaxAge,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Verify checks a webhook request for authenticity and, only when it is
// authentic, parses the payload.
//
// A missing, malformed or stale timestamp and a signature mismatch all yield
// (false, nil, nil): the caller observes one outcome for every flavour of
// unauthenticated input. A payload that carries a valid signature but is not
// valid JSON yields a KindParse error, which is distinct from an
// authentication failure. Verify is deterministic for a fixed clock.
func (v *WebhookVerifier) Verify(timestamp, signature, rawPayload string) (bool, *WebhookPayload, error) {
	ts, err := strconv.ParseInt(strings.TrimSpace(timestamp), 10, 64)
	if err != nil {
		return false, nil, nil
	}

	if v.maxAge > 0 {
		if age := v.now().Unix() - ts; age > int64(v.maxAge/time.Second) {
			return false, nil, nil
		}
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(timestamp + rawPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	// Constant-time compare; never parse an unauthenticated payload.
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return false, nil, nil
	}

	var payload WebhookPayload
	if err := json.Unmarshal([]byte(rawPayload), &payload); err != nil {
		return false, nil, newError(KindParse, "decode webhook payload", err)
	}

	return true, &payload, nil
}
