package dto

// ScanResult is the outcome of consuming one scan. ScansRemaining is -1 for
// premium accounts (unlimited).
type ScanResult struct {
	Success        bool `json:"success"`
	Unlimited      bool `json:"unlimited"`
	ScansRemaining int  `json:"scansRemaining"`
}

// ScanAllowance reports the remaining allowance without consuming a scan.
type ScanAllowance struct {
	CanScan   bool `json:"canScan"`
	Remaining int  `json:"remaining"`
	Unlimited bool `json:"unlimited"`
}

type VerifySubscriptionRequest struct {
	ReceiptData string `json:"receiptData"`
	Platform    string `json:"platform"`
	ProductID   string `json:"productId"`
}

// VerifySubscriptionResponse reports a verified purchase, or Success=false
// with Error="Invalid receipt" when the platform rejected it. The latter is
// a normal outcome, not a fault.
type VerifySubscriptionResponse struct {
	Success   bool   `json:"success"`
	ExpiresAt string `json:"expiresAt,omitempty"`
	Error     string `json:"error,omitempty"`
}

type OCRRequest struct {
	ImageURL string `json:"imageUrl"`
}

type OCRResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
}

// SweepResponse reports how many accounts a maintenance sweep touched.
type SweepResponse struct {
	Affected int64 `json:"affected"`
}
