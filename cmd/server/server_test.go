package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payment-strategy/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Payment: config.PaymentConfig{
			MaxRetries:      3,
			BackoffUnit:     time.Millisecond,
			SimulateLatency: false,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			FailureThreshold:    5,
			OpenTimeout:         time.Minute,
			HalfOpenMaxRequests: 1,
		},
		Journal:       config.JournalConfig{Size: 100},
		OpenTelemetry: config.OpenTelemetryConfig{ServiceName: "payment-strategy-test", TraceExporter: "none"},
	}
}

// setupTestRouter builds the router with fresh dependencies.
func setupTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	deps, err := newDependencies(cfg)
	require.NoError(t, err)
	return setupRouter(deps)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, bytes.NewBufferString(body))
	require.NoError(t, err, "Failed to create request")
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "Failed to unmarshal response body: %s", w.Body.String())
	return out
}

func TestProcessPayment_ValidRequest(t *testing.T) {
	router := setupTestRouter(t, testConfig())

	w := doJSON(t, router, http.MethodPost, "/v1/payments/credit_card",
		`{"amount": 150.75, "currency": "USD", "reference": "ORDER-1"}`)

	assert.Equal(t, http.StatusOK, w.Code, "Status code should be OK")
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "CC-ORDER-1", body["transaction_id"])
	assert.Equal(t, "3.015", body["fee"])
	assert.Equal(t, "Credit card payment processed successfully", body["message"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProcessPayment_OversizedBody(t *testing.T) {
	router := setupTestRouter(t, testConfig())

	padding := strings.Repeat("x", 128<<10)
	w := doJSON(t, router, http.MethodPost, "/v1/payments/credit_card",
		`{"amount": 10, "currency": "USD", "reference": "ORDER-BIG", "metadata": {"note": "`+padding+`"}}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, decode(t, w)["error"], "request body exceeds 65536 bytes")
}

func TestProcessPayment_BusinessFailureIsOK(t *testing.T) {
	router := setupTestRouter(t, testConfig())

	w := doJSON(t, router, http.MethodPost, "/v1/payments/wechat_pay",
		`{"amount": "88", "currency": "CNY", "reference": "ORDER-WX"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "WeChat OpenID is required", body["message"])
	assert.NotContains(t, body, "transaction_id")
}

func TestProcessPayment_WeChatWithOpenID(t *testing.T) {
	router := setupTestRouter(t, testConfig())

	w := doJSON(t, router, http.MethodPost, "/v1/payments/wechat_pay",
		`{"amount": "88.00", "currency": "CNY", "reference": "ORDER-WX", "metadata": {"wechat_openid": "wx_user_123"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "WX-ORDER-WX", body["transaction_id"])
}

func TestProcessPayment_InvalidRequests(t *testing.T) {
	router := setupTestRouter(t, testConfig())

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"malformed JSON", "/v1/payments/paypal", "this is not json", http.StatusBadRequest, "Invalid request format"},
		{"schema violation", "/v1/payments/paypal", `{"amount": 10, "currency": "USD"}`, http.StatusBadRequest, "reference is required"},
		{"unknown method", "/v1/payments/apple_pay", `{"amount": 10, "currency": "USD", "reference": "R"}`, http.StatusBadRequest, "unknown payment method"},
		{"non-positive amount", "/v1/payments/paypal", `{"amount": 0, "currency": "USD", "reference": "R"}`, http.StatusUnprocessableEntity, "payment amount must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			body := decode(t, w)
			assert.Contains(t, body["error"], tt.wantError, "Error message mismatch")
		})
	}
}

func TestListPaymentMethods(t *testing.T) {
	router := setupTestRouter(t, testConfig())

	w := doJSON(t, router, http.MethodGet, "/v1/payment-methods", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, map[string]interface{}{
		"credit_card":   "CreditCardStrategy",
		"paypal":        "PayPalStrategy",
		"crypto":        "CryptoStrategy",
		"bank_transfer": "BankTransferStrategy",
		"wechat_pay":    "WeChatPayStrategy",
	}, body)
}

func TestUpdateRetry(t *testing.T) {
	router := setupTestRouter(t, testConfig())

	w := doJSON(t, router, http.MethodPut, "/v1/retry", `{"enabled": true, "max_retries": 2}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"enabled": true, "max_retries": float64(2)}, decode(t, w))

	w = doJSON(t, router, http.MethodPost, "/v1/payments/wechat_pay",
		`{"amount": 10, "currency": "CNY", "reference": "ORDER-RETRY"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Failed after 2 attempts. Last error: WeChat OpenID is required", decode(t, w)["message"])

	w = doJSON(t, router, http.MethodPut, "/v1/retry", `{"enabled": false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["enabled"])

	t.Run("default bound", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/v1/retry", `{"enabled": true}`)
		assert.Equal(t, float64(3), decode(t, w)["max_retries"])
	})

	t.Run("missing enabled", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/v1/retry", `{"max_retries": 4}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReport(t *testing.T) {
	router := setupTestRouter(t, testConfig())

	doJSON(t, router, http.MethodPost, "/v1/payments/credit_card", `{"amount": 100, "currency": "USD", "reference": "A"}`)
	doJSON(t, router, http.MethodPost, "/v1/payments/paypal", `{"amount": 50, "currency": "USD", "reference": "B"}`)
	doJSON(t, router, http.MethodPost, "/v1/payments/wechat_pay", `{"amount": 8, "currency": "CNY", "reference": "C"}`)

	w := doJSON(t, router, http.MethodGet, "/v1/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(3), body["total_requests"])
	assert.Equal(t, float64(2), body["successful_payments"])
	assert.Equal(t, float64(1), body["failed_payments"])
	assert.Equal(t, map[string]interface{}{"USD": "150"}, body["amount_by_currency"])
	assert.Equal(t, map[string]interface{}{"USD": "3.5"}, body["fees_by_currency"])
}

func TestPolicyRejection(t *testing.T) {
	cfg := testConfig()
	cfg.Policy.Rules = "max_amount=amount <= 1000"
	router := setupTestRouter(t, cfg)

	w := doJSON(t, router, http.MethodPost, "/v1/payments/credit_card", `{"amount": 5000, "currency": "USD", "reference": "BIG"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Payment rejected: rejected by policy rule 'max_amount'", body["message"])
}

func TestRequestIDIsPropagated(t *testing.T) {
	router := setupTestRouter(t, testConfig())

	req, err := http.NewRequest(http.MethodGet, "/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-fixed-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-fixed-1", w.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(t, testConfig())
	doJSON(t, router, http.MethodPost, "/v1/payments/crypto", `{"amount": 1, "currency": "BTC", "reference": "M1"}`)

	w := doJSON(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `payment_processed_total{method="crypto",outcome="success"}`))
}
