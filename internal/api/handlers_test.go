package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/draftlinestudio/leads-backend/internal/email"
	"github.com/draftlinestudio/leads-backend/internal/notify"
	"github.com/draftlinestudio/leads-backend/internal/payments"
	"github.com/draftlinestudio/leads-backend/internal/pricing"
	"github.com/draftlinestudio/leads-backend/internal/store"
)

// stubSender records every message and can be told to fail for specific
// recipients.
type stubSender struct {
	sent   []email.Message
	failTo map[string]error
}

func (s *stubSender) Send(_ context.Context, m email.Message) (string, error) {
	if err, ok := s.failTo[m.To]; ok {
		return "", err
	}
	s.sent = append(s.sent, m)
	return fmt.Sprintf("msg_%d", len(s.sent)), nil
}

// stubPayments returns canned sessions and events.
type stubPayments struct {
	session   payments.Session
	createErr error

	event     payments.Event
	verifyErr error
}

func (s *stubPayments) CreateCheckoutSession(context.Context, payments.CreateSessionParams) (payments.Session, error) {
	if s.createErr != nil {
		return payments.Session{}, s.createErr
	}
	return s.session, nil
}

func (s *stubPayments) VerifyWebhook([]byte, string, string) (payments.Event, error) {
	if s.verifyErr != nil {
		return payments.Event{}, s.verifyErr
	}
	return s.event, nil
}

func newTestServer(t *testing.T, sender *stubSender, pay payments.Client) http.Handler {
	t.Helper()
	if sender == nil {
		sender = &stubSender{}
	}
	if pay == nil {
		pay = &stubPayments{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := notify.New(sender, "leads@draftline.studio", time.Second, logger)
	cfg := Config{
		FrontendURL:         "https://draftline.studio",
		StripeWebhookSecret: "whsec_test",
		Env:                 "test",
		RateLimitMax:        5,
		RateLimitWindow:     time.Minute,
	}
	return NewServer(pricing.Default(), notifier, sender, pay, store.NoopLog{}, cfg, logger)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil, nil)
	rec := doJSON(t, h, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestContactSuccess(t *testing.T) {
	sender := &stubSender{}
	h := newTestServer(t, sender, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/contact",
		`{"name":"Ada","email":"ada@example.com","subject":"Hello","message":"Need a site"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	emails, ok := body["emailsSent"].(map[string]any)
	if !ok {
		t.Fatalf("emailsSent missing from %v", body)
	}
	if emails["admin"] != true || emails["client"] != true {
		t.Errorf("emailsSent = %v, want both true", emails)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d emails, want 2", len(sender.sent))
	}
	if sender.sent[0].To != "leads@draftline.studio" {
		t.Errorf("first email to %q, want admin address", sender.sent[0].To)
	}
	if sender.sent[1].To != "ada@example.com" {
		t.Errorf("second email to %q, want client address", sender.sent[1].To)
	}
}

func TestContactMissingFields(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/contact", `{"name":"Ada","subject":"Hi"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "email") || !strings.Contains(msg, "message") {
		t.Errorf("error %q should name the missing fields", msg)
	}
}

func TestContactInvalidEmail(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/contact",
		`{"name":"Ada","email":"not-an-email","subject":"Hi","message":"x"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Invalid email address" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestContactFullNameFallback(t *testing.T) {
	sender := &stubSender{}
	h := newTestServer(t, sender, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/contact",
		`{"full_name":"Grace Hopper","email":"grace@example.com","subject":"Hi","message":"x"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(sender.sent) == 0 || !strings.Contains(sender.sent[0].HTML, "Grace Hopper") {
		t.Error("admin email should carry the full_name value")
	}
}

func TestEstimateSuccess(t *testing.T) {
	sender := &stubSender{}
	h := newTestServer(t, sender, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/estimate",
		`{"name":"Ada","email":"ada@example.com","projectType":"ecommerce","budget":"1000-2500","timeline":"asap","features":["seo"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d emails, want 2", len(sender.sent))
	}
	// ecommerce 1299 * 1.5 = 1949 (rounded), + seo 149 = 2098.
	if !strings.Contains(sender.sent[0].Text, "2098") {
		t.Errorf("admin email should carry the quoted price, got:\n%s", sender.sent[0].Text)
	}
}

func TestEstimateUnknownProjectType(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/estimate",
		`{"name":"Ada","email":"ada@example.com","projectType":"spaceship","budget":"x","timeline":"asap"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "spaceship") {
		t.Errorf("error %q should name the unknown project type", msg)
	}
}

func TestEstimateAdminSendFailure(t *testing.T) {
	sender := &stubSender{failTo: map[string]error{
		"leads@draftline.studio": errors.New("provider down"),
	}}
	h := newTestServer(t, sender, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/estimate",
		`{"name":"Ada","email":"ada@example.com","projectType":"landing","budget":"x","timeline":"2weeks"}`)

	// A send failure is reported in the envelope, not as an HTTP error.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	emails, _ := body["emailsSent"].(map[string]any)
	if emails["admin"] != false || emails["client"] != true {
		t.Errorf("emailsSent = %v, want admin false client true", emails)
	}
	if errStr, _ := emails["error"].(string); errStr == "" {
		t.Error("emailsSent.error should describe the failure")
	}
}

func TestCalculatePrice(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := doJSON(t, h, http.MethodPost, "/calculate-price",
		`{"formData":{"projectType":"landing","timeline":"2weeks","features":["seo"]}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	p, ok := body["pricing"].(map[string]any)
	if !ok {
		t.Fatalf("pricing missing from %v", body)
	}
	if p["basePrice"] != float64(299) {
		t.Errorf("basePrice = %v, want 299", p["basePrice"])
	}
	if p["finalPrice"] != float64(448) {
		t.Errorf("finalPrice = %v, want 448", p["finalPrice"])
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	pay := &stubPayments{session: payments.Session{
		ID:  "cs_test_123",
		URL: "https://checkout.stripe.com/pay/cs_test_123",
	}}
	h := newTestServer(t, nil, pay)

	rec := doJSON(t, h, http.MethodPost, "/create-checkout-session",
		`{"formData":{"projectType":"landing","timeline":"2weeks","features":["seo"]},"customerInfo":{"name":"Ada","email":"ada@example.com"}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["sessionId"] != "cs_test_123" {
		t.Errorf("sessionId = %v", body["sessionId"])
	}
	if body["url"] != "https://checkout.stripe.com/pay/cs_test_123" {
		t.Errorf("url = %v", body["url"])
	}
	if body["amount"] != float64(448) {
		t.Errorf("amount = %v, want 448 dollars", body["amount"])
	}
	if body["invoiceId"] == "" || body["invoiceId"] == nil {
		t.Error("invoiceId should be set")
	}
}

func TestCreateCheckoutSessionStripeError(t *testing.T) {
	pay := &stubPayments{createErr: errors.New("stripe unreachable")}
	h := newTestServer(t, nil, pay)

	rec := doJSON(t, h, http.MethodPost, "/create-checkout-session",
		`{"formData":{"projectType":"landing","timeline":"2weeks"},"customerInfo":{"name":"Ada","email":"ada@example.com"}}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Internal server error" {
		t.Errorf("error = %v, internal detail must not leak", body["error"])
	}
}

func TestCreateCheckoutSessionUnknownType(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := doJSON(t, h, http.MethodPost, "/create-checkout-session",
		`{"formData":{"projectType":"yacht","timeline":"asap"},"customerInfo":{"name":"Ada","email":"ada@example.com"}}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStripeWebhookBadSignature(t *testing.T) {
	pay := &stubPayments{verifyErr: errors.New("signature mismatch")}
	h := newTestServer(t, nil, pay)

	rec := doJSON(t, h, http.MethodPost, "/webhooks/stripe", `{}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStripeWebhookCheckoutCompleted(t *testing.T) {
	sender := &stubSender{}
	pay := &stubPayments{event: payments.Event{
		ID:   "evt_1",
		Type: "checkout.session.completed",
		DataRaw: json.RawMessage(`{
			"id": "cs_test_123",
			"amount_total": 44800,
			"customer_details": {"email": "ada@example.com", "name": "Ada"},
			"metadata": {"invoice_id": "inv_1", "description": "Landing Page"}
		}`),
	}}
	h := newTestServer(t, sender, pay)

	rec := doJSON(t, h, http.MethodPost, "/webhooks/stripe", `{}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d receipt emails, want 1", len(sender.sent))
	}
	receipt := sender.sent[0]
	if receipt.To != "ada@example.com" {
		t.Errorf("receipt to %q", receipt.To)
	}
	if !strings.Contains(receipt.Text, "$448.00") {
		t.Errorf("receipt should show the amount, got:\n%s", receipt.Text)
	}
}

func TestStripeWebhookIgnoresOtherEvents(t *testing.T) {
	sender := &stubSender{}
	pay := &stubPayments{event: payments.Event{
		ID:      "evt_2",
		Type:    "invoice.paid",
		DataRaw: json.RawMessage(`{}`),
	}}
	h := newTestServer(t, sender, pay)

	rec := doJSON(t, h, http.MethodPost, "/webhooks/stripe", `{}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(sender.sent) != 0 {
		t.Errorf("unexpected emails sent: %d", len(sender.sent))
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, nil, nil)
	body := `{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"x"}`

	for i := 0; i < 5; i++ {
		rec := doJSON(t, h, http.MethodPost, "/api/contact", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := doJSON(t, h, http.MethodPost, "/api/contact", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("6th request: status = %d, want 429", rec.Code)
	}
	if got := decodeBody(t, rec); got["error"] != "Too many requests. Please try again later." {
		t.Errorf("error = %v", got["error"])
	}

	// A different client IP still gets through.
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.1.2.3:5000"
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rec2.Code)
	}
}

func TestRateLimitDoesNotCoverPricing(t *testing.T) {
	h := newTestServer(t, nil, nil)
	body := `{"formData":{"projectType":"landing","timeline":"flexible"}}`

	for i := 0; i < 10; i++ {
		rec := doJSON(t, h, http.MethodPost, "/calculate-price", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/estimate", nil)
	req.Header.Set("Origin", "https://draftline.studio")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("preflight response should have no body, got %q", rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("Access-Control-Allow-Origin header missing")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/estimate", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestMalformedJSON(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/contact", `{"name": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
