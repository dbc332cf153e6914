package textbelt_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	textbelt "github.com/textbelt-community/textbelt-go"
)

const testAPIKey = "test_api_key"

type recordedRequest struct {
	method string
	path   string
	form   url.Values
	query  url.Values
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	calls := &[]recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		*calls = append(*calls, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			form:   r.PostForm,
			query:  r.URL.Query(),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func newTestClient(t *testing.T, baseURL string, opts ...textbelt.Option) *textbelt.Client {
	t.Helper()

	opts = append([]textbelt.Option{textbelt.WithBaseURL(baseURL)}, opts...)
	client, err := textbelt.New(testAPIKey, opts...)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := textbelt.New("  "); !textbelt.IsKind(err, textbelt.KindValidation) {
		t.Fatalf("expected validation error for blank api key, got %v", err)
	}
}

func TestSendSMS(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"success": true, "quotaRemaining": 40, "textId": "12345"}`)
	client := newTestClient(t, srv.URL)

	resp, err := client.SendSMS(context.Background(), textbelt.SMSRequest{
		Phone:   "2123124123",
		Message: "Hello World",
		Sender:  "test_sender@textbelt.com",
	})
	if err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if resp.TextID != "12345" {
		t.Fatalf("expected text id 12345, got %q", resp.TextID)
	}
	if resp.QuotaRemaining != 40 {
		t.Fatalf("expected quota 40, got %d", resp.QuotaRemaining)
	}
	if resp.Error != "" {
		t.Fatalf("expected no api error, got %q", resp.Error)
	}

	if len(*calls) != 1 {
		t.Fatalf("expected exactly one outbound call, got %d", len(*calls))
	}
	call := (*calls)[0]
	if call.method != http.MethodPost || call.path != "/text" {
		t.Fatalf("expected POST /text, got %s %s", call.method, call.path)
	}
	for field, want := range map[string]string{
		"phone":   "2123124123",
		"message": "Hello World",
		"sender":  "test_sender@textbelt.com",
		"key":     testAPIKey,
	} {
		if got := call.form.Get(field); got != want {
			t.Fatalf("expected form field %s=%q, got %q", field, want, got)
		}
	}
	if call.form.Has("replyWebhookUrl") || call.form.Has("webhookData") {
		t.Fatalf("expected unset optional fields to be omitted, got %v", call.form)
	}
}

func TestSendSMSWithReplyWebhook(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"success": true, "quotaRemaining": 40, "textId": "12345"}`)
	client := newTestClient(t, srv.URL)

	_, err := client.SendSMS(context.Background(), textbelt.SMSRequest{
		Phone:           "2123124123",
		Message:         "Hello World",
		ReplyWebhookURL: "https://my.site/api/handleSmsReply",
		WebhookData:     "custom webhook data",
	})
	if err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	call := (*calls)[0]
	if got := call.form.Get("replyWebhookUrl"); got != "https://my.site/api/handleSmsReply" {
		t.Fatalf("expected reply webhook url in form, got %q", got)
	}
	if got := call.form.Get("webhookData"); got != "custom webhook data" {
		t.Fatalf("expected webhook data in form, got %q", got)
	}
}

func TestSendSMSSandboxUsesTestKey(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"success": true, "quotaRemaining": 40}`)
	client := newTestClient(t, srv.URL)

	_, err := client.SendSMS(context.Background(), textbelt.SMSRequest{
		Phone:   "2123124123",
		Message: "Hello World",
		Sandbox: true,
	})
	if err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	if got := (*calls)[0].form.Get("key"); got != testAPIKey+"_test" {
		t.Fatalf("expected sandbox key suffix, got %q", got)
	}
}

func TestSendSMSValidationSkipsNetwork(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"success": true}`)
	client := newTestClient(t, srv.URL)

	cases := map[string]textbelt.SMSRequest{
		"empty phone":   {Message: "Hello World"},
		"empty message": {Phone: "2123124123"},
	}
	for name, req := range cases {
		_, err := client.SendSMS(context.Background(), req)
		if !textbelt.IsKind(err, textbelt.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	if len(*calls) != 0 {
		t.Fatalf("expected zero outbound calls, got %d", len(*calls))
	}
}

func TestSendSMSAPIFailureIsData(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"success": false, "quotaRemaining": 0, "error": "Out of quota"}`)
	client := newTestClient(t, srv.URL)

	resp, err := client.SendSMS(context.Background(), textbelt.SMSRequest{
		Phone:   "2123124123",
		Message: "Hello World",
	})
	if err != nil {
		t.Fatalf("api-level failure must not surface as an operation error, got %v", err)
	}

	if resp.Success {
		t.Fatalf("expected success=false, got %+v", resp)
	}
	if resp.Error != "Out of quota" {
		t.Fatalf("expected api error message, got %q", resp.Error)
	}
	if !textbelt.IsKind(resp.Err(), textbelt.KindAPI) {
		t.Fatalf("expected KindAPI from Err(), got %v", resp.Err())
	}
}

func TestSendSMSHTTPError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `oops`)
	client := newTestClient(t, srv.URL)

	_, err := client.SendSMS(context.Background(), textbelt.SMSRequest{
		Phone:   "2123124123",
		Message: "Hello World",
	})
	if !textbelt.IsKind(err, textbelt.KindHTTP) {
		t.Fatalf("expected http error, got %v", err)
	}

	var apiErr *textbelt.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status code 500 on error, got %+v", apiErr)
	}
}

func TestSendSMSNetworkError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{}`)
	srv.Close()
	client := newTestClient(t, srv.URL)

	_, err := client.SendSMS(context.Background(), textbelt.SMSRequest{
		Phone:   "2123124123",
		Message: "Hello World",
	})
	if !textbelt.IsKind(err, textbelt.KindNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestSendSMSTimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	client := newTestClient(t, srv.URL, textbelt.WithTimeout(10*time.Millisecond))

	_, err := client.SendSMS(context.Background(), textbelt.SMSRequest{
		Phone:   "2123124123",
		Message: "Hello World",
	})
	if !textbelt.IsKind(err, textbelt.KindNetwork) {
		t.Fatalf("expected network error on timeout, got %v", err)
	}
}

func TestSendSMSParseError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `not json`)
	client := newTestClient(t, srv.URL)

	_, err := client.SendSMS(context.Background(), textbelt.SMSRequest{
		Phone:   "2123124123",
		Message: "Hello World",
	})
	if !textbelt.IsKind(err, textbelt.KindParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestSendOTP(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"success": true, "quotaRemaining": 39, "textId": "67890", "otp": "123456"}`)
	client := newTestClient(t, srv.URL)

	resp, err := client.SendOTP(context.Background(), textbelt.OTPGenerateRequest{
		Phone:    "2123124123",
		UserID:   "user-1",
		Lifetime: 300,
		Length:   8,
	})
	if err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	if !resp.Success || resp.OTP != "123456" || resp.TextID != "67890" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	call := (*calls)[0]
	if call.method != http.MethodPost || call.path != "/otp/generate" {
		t.Fatalf("expected POST /otp/generate, got %s %s", call.method, call.path)
	}
	for field, want := range map[string]string{
		"phone":    "2123124123",
		"userid":   "user-1",
		"key":      testAPIKey,
		"lifetime": "300",
		"length":   "8",
	} {
		if got := call.form.Get(field); got != want {
			t.Fatalf("expected form field %s=%q, got %q", field, want, got)
		}
	}
	if call.form.Has("message") {
		t.Fatalf("expected unset message to be omitted, got %v", call.form)
	}
}

func TestSendOTPMissingUserID(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"success": true}`)
	client := newTestClient(t, srv.URL)

	_, err := client.SendOTP(context.Background(), textbelt.OTPGenerateRequest{Phone: "2123124123"})
	if !textbelt.IsKind(err, textbelt.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(*calls) != 0 {
		t.Fatalf("expected zero outbound calls, got %d", len(*calls))
	}
}

func TestVerifyOTP(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"success": true, "isValidOtp": false}`)
	client := newTestClient(t, srv.URL)

	resp, err := client.VerifyOTP(context.Background(), textbelt.OTPVerificationRequest{
		OTP:    "000000",
		UserID: "u1",
	})
	if err != nil {
		t.Fatalf("unexpected verify error: %v", err)
	}

	// The lookup succeeding and the code matching are distinct outcomes.
	if !resp.Success {
		t.Fatalf("expected success=true, got %+v", resp)
	}
	if resp.IsValidOTP {
		t.Fatalf("expected is_valid_otp=false, got %+v", resp)
	}

	call := (*calls)[0]
	if call.method != http.MethodGet || call.path != "/otp/verify" {
		t.Fatalf("expected GET /otp/verify, got %s %s", call.method, call.path)
	}
	for field, want := range map[string]string{
		"otp":    "000000",
		"userid": "u1",
		"key":    testAPIKey,
	} {
		if got := call.query.Get(field); got != want {
			t.Fatalf("expected query field %s=%q, got %q", field, want, got)
		}
	}
}

func TestCheckSMSDeliveryStatus(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"status": "DELIVERED"}`)
	client := newTestClient(t, srv.URL)

	resp, err := client.CheckSMSDeliveryStatus(context.Background(), "12345")
	if err != nil {
		t.Fatalf("unexpected status error: %v", err)
	}

	if resp.Status != textbelt.StatusDelivered {
		t.Fatalf("expected DELIVERED, got %s", resp.Status)
	}

	call := (*calls)[0]
	if call.method != http.MethodGet || call.path != "/status/12345" {
		t.Fatalf("expected GET /status/12345, got %s %s", call.method, call.path)
	}
}

func TestCheckSMSDeliveryStatusUnknownState(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"status": "SOME_FUTURE_STATE"}`)
	client := newTestClient(t, srv.URL)

	resp, err := client.CheckSMSDeliveryStatus(context.Background(), "12345")
	if err != nil {
		t.Fatalf("unexpected status error: %v", err)
	}
	if resp.Status != textbelt.StatusUnknown {
		t.Fatalf("expected unknown states to map to UNKNOWN, got %s", resp.Status)
	}
}

func TestCheckSMSDeliveryStatusEmptyID(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"status": "SENT"}`)
	client := newTestClient(t, srv.URL)

	_, err := client.CheckSMSDeliveryStatus(context.Background(), "  ")
	if !textbelt.IsKind(err, textbelt.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(*calls) != 0 {
		t.Fatalf("expected zero outbound calls, got %d", len(*calls))
	}
}

func TestCheckCreditBalance(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, `{"success": true, "quotaRemaining": 98}`)
	client := newTestClient(t, srv.URL)

	resp, err := client.CheckCreditBalance(context.Background())
	if err != nil {
		t.Fatalf("unexpected quota error: %v", err)
	}

	if !resp.Success || resp.QuotaRemaining != 98 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	call := (*calls)[0]
	if call.method != http.MethodGet || call.path != "/quota/"+testAPIKey {
		t.Fatalf("expected GET /quota/%s, got %s %s", testAPIKey, call.method, call.path)
	}
}
