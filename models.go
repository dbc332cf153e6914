package textbelt

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// SMSRequest holds the parameters for sending a text message.
type SMSRequest struct {
	// Phone is the recipient phone number, E.164 preferred.
	Phone string `validate:"required"`
	// Message is the text content to send.
	Message string `validate:"required"`
	// Sender optionally names the entity sending the SMS.
	Sender string
	// ReplyWebhookURL is called by Textbelt when the recipient replies.
	ReplyWebhookURL string `validate:"omitempty,url"`
	// WebhookData is echoed back in the reply webhook payload.
	WebhookData string `validate:"max=100"`
	// Sandbox routes the request through the test key so no message is sent
	// and no quota is consumed.
	Sandbox bool
}

func (r SMSRequest) encode(key string) url.Values {
	form := url.Values{}
	form.Set("phone", r.Phone)
	form.Set("message", r.Message)
	form.Set("key", key)
	if r.Sender != "" {
		form.Set("sender", r.Sender)
	}
	if r.ReplyWebhookURL != "" {
		form.Set("replyWebhookUrl", r.ReplyWebhookURL)
	}
	if r.WebhookData != "" {
		form.Set("webhookData", r.WebhookData)
	}
	return form
}

// SMSResponse is the API reply to a send request. Success false is a logical
// failure reported by the API, not a transport fault; Error carries its
// reason.
type SMSResponse struct {
	Success        bool   `json:"success"`
	QuotaRemaining int    `json:"quotaRemaining"`
	TextID         string `json:"textId,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Err returns a KindAPI error when the API reported failure, nil otherwise.
func (r *SMSResponse) Err() error {
	if r.Success {
		return nil
	}
	return &Error{Kind: KindAPI, Message: apiFailureMessage(r.Error)}
}

// OTPGenerateRequest holds the parameters for generating and sending a
// one-time password.
type OTPGenerateRequest struct {
	Phone string `validate:"required"`
	// UserID scopes the OTP; verification must present the same value.
	UserID string `validate:"required"`
	// Message optionally replaces the default text. Use $OTP to place the
	// code inside a custom message.
	Message string
	// Lifetime is the validity window in seconds. Zero uses the API default
	// of 180 seconds.
	Lifetime int `validate:"min=0"`
	// Length is the number of digits in the code. Zero uses the API default
	// of 6 digits.
	Length int `validate:"min=0"`
}

func (r OTPGenerateRequest) encode(key string) url.Values {
	form := url.Values{}
	form.Set("phone", r.Phone)
	form.Set("userid", r.UserID)
	form.Set("key", key)
	if r.Message != "" {
		form.Set("message", r.Message)
	}
	if r.Lifetime > 0 {
		form.Set("lifetime", strconv.Itoa(r.Lifetime))
	}
	if r.Length > 0 {
		form.Set("length", strconv.Itoa(r.Length))
	}
	return form
}

// OTPGenerateResponse is the API reply to an OTP generate request.
type OTPGenerateResponse struct {
	Success        bool   `json:"success"`
	QuotaRemaining int    `json:"quotaRemaining"`
	TextID         string `json:"textId,omitempty"`
	// OTP echoes the generated code. Empty on failure.
	OTP string `json:"otp,omitempty"`
}

// Err returns a KindAPI error when the API reported failure, nil otherwise.
func (r *OTPGenerateResponse) Err() error {
	if r.Success {
		return nil
	}
	return &Error{Kind: KindAPI, Message: apiFailureMessage("")}
}

// OTPVerificationRequest holds a code entered by the user and the user id
// the code was generated for. The pair identifies one OTP attempt.
type OTPVerificationRequest struct {
	OTP    string `validate:"required"`
	UserID string `validate:"required"`
}

func (r OTPVerificationRequest) encode(key string) url.Values {
	query := url.Values{}
	query.Set("otp", r.OTP)
	query.Set("userid", r.UserID)
	query.Set("key", key)
	return query
}

// OTPVerificationResponse is the API reply to an OTP verification request.
// Success means the lookup itself worked; IsValidOTP states whether the code
// matched. The two are independent.
type OTPVerificationResponse struct {
	Success    bool `json:"success"`
	IsValidOTP bool `json:"isValidOtp"`
}

// Status enumerates the delivery states Textbelt reports for a sent message.
type Status string

const (
	StatusDelivered Status = "DELIVERED" // carrier confirmed delivery
	StatusSent      Status = "SENT"      // handed to carrier, no receipt available
	StatusSending   Status = "SENDING"   // queued or dispatched to carrier
	StatusFailed    Status = "FAILED"    // not received
	StatusUnknown   Status = "UNKNOWN"   // could not determine status
)

// UnmarshalJSON maps any unrecognized status string to StatusUnknown so new
// API states never break callers.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Status(raw) {
	case StatusDelivered, StatusSent, StatusSending, StatusFailed, StatusUnknown:
		*s = Status(raw)
	default:
		*s = StatusUnknown
	}
	return nil
}

// SMSStatusResponse is the API reply to a delivery status lookup.
type SMSStatusResponse struct {
	Status Status `json:"status"`
}

// CreditBalanceResponse is the API reply to a quota lookup.
type CreditBalanceResponse struct {
	Success        bool `json:"success"`
	QuotaRemaining int  `json:"quotaRemaining"`
}

// Err returns a KindAPI error when the API reported failure, nil otherwise.
func (r *CreditBalanceResponse) Err() error {
	if r.Success {
		return nil
	}
	return &Error{Kind: KindAPI, Message: apiFailureMessage("")}
}

// WebhookPayload is the body of a reply webhook. It is only produced after
// signature verification succeeds.
type WebhookPayload struct {
	// TextID identifies the original message that started the conversation.
	TextID string `json:"textId"`
	// FromNumber is the phone number the reply came from.
	FromNumber string `json:"fromNumber"`
	// Text is the reply content.
	Text string `json:"text"`
	// Data echoes the webhookData set when the original SMS was sent.
	Data string `json:"data,omitempty"`
}

func apiFailureMessage(reason string) string {
	if reason == "" {
		return "api reported failure"
	}
	return "api reported failure: " + reason
}
