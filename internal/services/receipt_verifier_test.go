package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppleVerifyValidReceipt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req appleVerifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "base64-receipt", req.ReceiptData)
		assert.Equal(t, "shared-secret", req.Password)
		assert.True(t, req.ExcludeOldTransactions)

		json.NewEncoder(w).Encode(map[string]any{
			"status": 0,
			"latest_receipt_info": []map[string]any{
				{"product_id": "premium_monthly", "expires_date_ms": "1776211200000"},
			},
		})
	}))
	defer srv.Close()

	client := &AppleReceiptClient{
		httpClient:   srv.Client(),
		verifyURL:    srv.URL,
		sharedSecret: "shared-secret",
	}

	status, err := client.Verify("base64-receipt", "premium_monthly")
	require.NoError(t, err)
	assert.True(t, status.Valid)
	assert.Equal(t, int64(1776211200000), status.ExpiresAt.UnixMilli())
}

func TestAppleVerifyRejectedReceipt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 21002: malformed receipt data.
		json.NewEncoder(w).Encode(map[string]any{"status": 21002})
	}))
	defer srv.Close()

	client := &AppleReceiptClient{httpClient: srv.Client(), verifyURL: srv.URL}

	status, err := client.Verify("garbage", "premium_monthly")
	require.NoError(t, err)
	assert.False(t, status.Valid)
}

func TestAppleVerifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := &AppleReceiptClient{httpClient: srv.Client(), verifyURL: srv.URL}

	_, err := client.Verify("base64-receipt", "premium_monthly")
	assert.Error(t, err)
}

func TestGoogleVerifyValidPurchase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t,
			"/androidpublisher/v3/applications/com.example.app/purchases/subscriptions/premium_monthly/tokens/token-123",
			r.URL.Path)
		assert.Equal(t, "Bearer oauth-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"purchaseState":    0,
			"expiryTimeMillis": "1776211200000",
		})
	}))
	defer srv.Close()

	client := &GooglePlayClient{
		httpClient:  srv.Client(),
		baseURL:     srv.URL,
		packageName: "com.example.app",
		accessToken: "oauth-token",
	}

	status, err := client.Verify("token-123", "premium_monthly")
	require.NoError(t, err)
	assert.True(t, status.Valid)
	assert.Equal(t, int64(1776211200000), status.ExpiresAt.UnixMilli())
}

func TestGoogleVerifyCancelledPurchase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"purchaseState":    1,
			"expiryTimeMillis": "1776211200000",
		})
	}))
	defer srv.Close()

	client := &GooglePlayClient{httpClient: srv.Client(), baseURL: srv.URL, packageName: "com.example.app"}

	status, err := client.Verify("token-123", "premium_monthly")
	require.NoError(t, err)
	assert.False(t, status.Valid)
}

func TestGoogleVerifyUnknownToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := &GooglePlayClient{httpClient: srv.Client(), baseURL: srv.URL, packageName: "com.example.app"}

	status, err := client.Verify("bogus", "premium_monthly")
	require.NoError(t, err)
	assert.False(t, status.Valid)
}

func TestGoogleVerifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := &GooglePlayClient{httpClient: srv.Client(), baseURL: srv.URL, packageName: "com.example.app"}

	_, err := client.Verify("token-123", "premium_monthly")
	assert.Error(t, err)
}
