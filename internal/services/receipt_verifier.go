package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/smartscanner/scanner-backend/internal/config"
)

const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// ReceiptStatus is the distilled outcome of a platform-side receipt check.
// ExpiresAt is only meaningful when Valid is true.
type ReceiptStatus struct {
	Valid     bool
	ExpiresAt time.Time
}

// ReceiptVerifier validates a purchase receipt against a payment platform.
// An error means the check itself failed (network, malformed response); an
// invalid receipt is a Valid=false status, not an error.
type ReceiptVerifier interface {
	Verify(receiptData, productID string) (*ReceiptStatus, error)
}

// =============================================================================
// Apple App Store
// =============================================================================

const (
	appleProductionVerifyURL = "https://buy.itunes.apple.com/verifyReceipt"
	appleSandboxVerifyURL    = "https://sandbox.itunes.apple.com/verifyReceipt"
)

// AppleReceiptClient verifies receipts against Apple's verifyReceipt
// endpoint (sandbox or production depending on the environment).
type AppleReceiptClient struct {
	httpClient   *http.Client
	verifyURL    string
	sharedSecret string
}

func NewAppleReceiptClient(cfg *config.Config) *AppleReceiptClient {
	verifyURL := appleSandboxVerifyURL
	if cfg.Production {
		verifyURL = appleProductionVerifyURL
	}
	return &AppleReceiptClient{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		verifyURL:    verifyURL,
		sharedSecret: cfg.AppleSharedSecret,
	}
}

type appleVerifyRequest struct {
	ReceiptData            string `json:"receipt-data"`
	Password               string `json:"password"`
	ExcludeOldTransactions bool   `json:"exclude-old-transactions"`
}

type appleVerifyResponse struct {
	Status            int `json:"status"`
	LatestReceiptInfo []struct {
		ProductID     string `json:"product_id"`
		ExpiresDateMs string `json:"expires_date_ms"`
	} `json:"latest_receipt_info"`
}

func (c *AppleReceiptClient) Verify(receiptData, _ string) (*ReceiptStatus, error) {
	payload, err := json.Marshal(appleVerifyRequest{
		ReceiptData:            receiptData,
		Password:               c.sharedSecret,
		ExcludeOldTransactions: true,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(c.verifyURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("apple verifyReceipt request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("apple verifyReceipt returned status %d", resp.StatusCode)
	}

	var body appleVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode apple response: %w", err)
	}

	// Status 0 means the receipt is valid.
	if body.Status != 0 || len(body.LatestReceiptInfo) == 0 {
		return &ReceiptStatus{Valid: false}, nil
	}

	ms, err := strconv.ParseInt(body.LatestReceiptInfo[0].ExpiresDateMs, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid expires_date_ms in apple response: %w", err)
	}

	return &ReceiptStatus{Valid: true, ExpiresAt: time.UnixMilli(ms)}, nil
}

// =============================================================================
// Google Play
// =============================================================================

// GooglePlayClient checks a subscription purchase token against the Google
// Play Developer API (purchases.subscriptions.get). The OAuth bearer token
// is supplied by the deployment environment.
type GooglePlayClient struct {
	httpClient  *http.Client
	baseURL     string
	packageName string
	accessToken string
}

func NewGooglePlayClient(cfg *config.Config) *GooglePlayClient {
	return &GooglePlayClient{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     cfg.GooglePlayAPIURL,
		packageName: cfg.GooglePackageName,
		accessToken: cfg.GooglePlayToken,
	}
}

type googleSubscriptionResponse struct {
	PurchaseState    int    `json:"purchaseState"`
	ExpiryTimeMillis string `json:"expiryTimeMillis"`
}

func (c *GooglePlayClient) Verify(purchaseToken, productID string) (*ReceiptStatus, error) {
	endpoint := fmt.Sprintf("%s/androidpublisher/v3/applications/%s/purchases/subscriptions/%s/tokens/%s",
		c.baseURL,
		url.PathEscape(c.packageName),
		url.PathEscape(productID),
		url.PathEscape(purchaseToken),
	)

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google play request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		// The API rejects unknown or malformed tokens with a client error.
		return &ReceiptStatus{Valid: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google play API returned status %d", resp.StatusCode)
	}

	var body googleSubscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode google play response: %w", err)
	}

	// Purchase state 0 means purchased; 1 cancelled, 2 pending.
	if body.PurchaseState != 0 {
		return &ReceiptStatus{Valid: false}, nil
	}

	ms, err := strconv.ParseInt(body.ExpiryTimeMillis, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid expiryTimeMillis in google play response: %w", err)
	}

	return &ReceiptStatus{Valid: true, ExpiresAt: time.UnixMilli(ms)}, nil
}
