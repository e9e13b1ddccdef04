package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/smartscanner/scanner-backend/internal/config"
	"github.com/smartscanner/scanner-backend/internal/dto"
	"github.com/smartscanner/scanner-backend/internal/middleware"
	"github.com/smartscanner/scanner-backend/internal/models"
	"github.com/smartscanner/scanner-backend/internal/services"
	"github.com/smartscanner/scanner-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	status *services.ReceiptStatus
	err    error
}

func (v *fakeVerifier) Verify(_, _ string) (*services.ReceiptStatus, error) {
	return v.status, v.err
}

func newSubscriptionApp(t *testing.T, st *store.Memory, apple, google services.ReceiptVerifier) *fiber.App {
	t.Helper()
	cfg := &config.Config{JWTSecret: testSecret}
	handler := NewSubscriptionHandler(services.NewSubscriptionService(st, apple, google))

	app := fiber.New()
	app.Post("/api/subscription/verify", middleware.JWTProtected(cfg), handler.Verify)
	return app
}

func postVerify(t *testing.T, app *fiber.App, token string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/subscription/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestVerifyActivatesSubscription(t *testing.T) {
	st := store.NewMemory()
	userID := uuid.New()
	_, err := st.CreateAccountIfAbsent(&models.UserAccount{UserID: userID, ScanLimit: 10})
	require.NoError(t, err)

	expires := time.Now().Add(30 * 24 * time.Hour)
	apple := &fakeVerifier{status: &services.ReceiptStatus{Valid: true, ExpiresAt: expires}}
	app := newSubscriptionApp(t, st, apple, &fakeVerifier{})

	resp := postVerify(t, app, signToken(t, userID), dto.VerifySubscriptionRequest{
		ReceiptData: "base64-receipt",
		Platform:    "ios",
		ProductID:   "premium_monthly",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.VerifySubscriptionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, expires.UTC().Format(time.RFC3339), body.ExpiresAt)

	acct, err := st.GetAccount(userID)
	require.NoError(t, err)
	assert.True(t, acct.IsPremium)
}

func TestVerifyInvalidReceiptIsNotAnError(t *testing.T) {
	st := store.NewMemory()
	userID := uuid.New()
	_, err := st.CreateAccountIfAbsent(&models.UserAccount{UserID: userID, ScanLimit: 10})
	require.NoError(t, err)

	apple := &fakeVerifier{status: &services.ReceiptStatus{Valid: false}}
	app := newSubscriptionApp(t, st, apple, &fakeVerifier{})

	resp := postVerify(t, app, signToken(t, userID), dto.VerifySubscriptionRequest{
		ReceiptData: "garbage",
		Platform:    "ios",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.VerifySubscriptionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "Invalid receipt", body.Error)
}

func TestVerifyMissingReceiptData(t *testing.T) {
	app := newSubscriptionApp(t, store.NewMemory(), &fakeVerifier{}, &fakeVerifier{})

	resp := postVerify(t, app, signToken(t, uuid.New()), dto.VerifySubscriptionRequest{Platform: "ios"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVerifyVerifierFaultReturns500(t *testing.T) {
	st := store.NewMemory()
	userID := uuid.New()
	_, err := st.CreateAccountIfAbsent(&models.UserAccount{UserID: userID, ScanLimit: 10})
	require.NoError(t, err)

	apple := &fakeVerifier{err: errors.New("apple verifyReceipt request failed")}
	app := newSubscriptionApp(t, st, apple, &fakeVerifier{})

	resp := postVerify(t, app, signToken(t, userID), dto.VerifySubscriptionRequest{
		ReceiptData: "base64-receipt",
		Platform:    "ios",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Message, "apple verifyReceipt request failed")
}
