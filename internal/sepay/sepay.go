// Package sepay holds the bank-transfer gateway specifics: the payout
// account shown to customers, the VietQR image URL, and the shape and
// authentication of inbound transfer notifications.
package sepay

import (
	"crypto/subtle"
	"net/url"
	"strconv"
	"strings"

	"iaction/internal/config"
	"iaction/internal/refcode"

	"github.com/shopspring/decimal"
)

const (
	TransferIn  = "in"
	TransferOut = "out"

	authScheme = "Apikey"
)

type BankConfig struct {
	BankAccount   string
	BankName      string
	AccountHolder string
	WebhookAPIKey string
	QRBaseURL     string
}

func FromConfig(c config.SepayConfig) BankConfig {
	return BankConfig{
		BankAccount:   c.BankAccount,
		BankName:      c.BankName,
		AccountHolder: c.AccountHolder,
		WebhookAPIKey: c.WebhookAPIKey,
		QRBaseURL:     c.QRBaseURL,
	}
}

// 入金先口座と名義が揃っていなければ決済を作れない
func (b BankConfig) Configured() bool {
	return strings.TrimSpace(b.BankAccount) != "" && strings.TrimSpace(b.AccountHolder) != ""
}

func (b BankConfig) QRCodeURL(amount decimal.Decimal, description string) string {
	q := url.Values{}
	q.Set("acc", b.BankAccount)
	q.Set("bank", b.BankName)
	q.Set("amount", amount.String())
	q.Set("des", description)
	return b.QRBaseURL + "?" + q.Encode()
}

// キー未設定なら検証しない（信頼できる環境のみ）
func (b BankConfig) VerifyAPIKey(authHeader string) bool {
	if b.WebhookAPIKey == "" {
		return true
	}
	h := strings.TrimSpace(authHeader)
	if h == "" {
		return false
	}
	scheme, key, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, authScheme) {
		return false
	}
	key = strings.TrimSpace(key)
	return subtle.ConstantTimeCompare([]byte(key), []byte(b.WebhookAPIKey)) == 1
}

func (b BankConfig) AuthEnforced() bool {
	return b.WebhookAPIKey != ""
}

// ゲートウェイから届く入出金通知
type WebhookPayload struct {
	ID              int64           `json:"id"`
	Gateway         string          `json:"gateway"`
	TransactionDate string          `json:"transactionDate"`
	AccountNumber   string          `json:"accountNumber"`
	Code            *string         `json:"code"`
	Content         string          `json:"content"`
	TransferType    string          `json:"transferType"`
	TransferAmount  decimal.Decimal `json:"transferAmount"`
	Accumulated     decimal.Decimal `json:"accumulated"`
	ReferenceCode   string          `json:"referenceCode"`
}

func (p WebhookPayload) Incoming() bool {
	return p.TransferType == TransferIn
}

// ゲートウェイが切り出したcodeを優先し、なければ本文から探す
func (p WebhookPayload) OrderCode() (string, bool) {
	if p.Code != nil && strings.TrimSpace(*p.Code) != "" {
		return refcode.Normalize(*p.Code), true
	}
	return refcode.Extract(p.Content)
}

// ゲートウェイ側の取引の一意キー。referenceCodeが無ければidを使う
func (p WebhookPayload) IdempotencyKey() string {
	if ref := strings.TrimSpace(p.ReferenceCode); ref != "" {
		return ref
	}
	if p.ID == 0 {
		return ""
	}
	return strconv.FormatInt(p.ID, 10)
}
