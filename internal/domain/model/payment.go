package model

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodVietQR       PaymentMethod = "vietqr"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
)

// 注文と1:1。webhookで一致したときだけゲートウェイ側のIDが入る。
type Payment struct {
	ID      string `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID string `gorm:"type:varchar(36);not null;uniqueIndex" json:"order_id"`
	//SepayのreferenceCode（無ければ数値id）。重複配信の判定に使う
	GatewayTransactionID *string `gorm:"type:varchar(128);uniqueIndex" json:"gateway_transaction_id"`
	//Sepayの数値id
	GatewayReference  *string        `gorm:"type:varchar(128);index" json:"gateway_reference"`
	Method            *PaymentMethod `gorm:"type:varchar(20)" json:"payment_method"`
	Status            PaymentStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	WebhookReceivedAt *time.Time     `json:"webhook_received_at"`
	RawWebhook        datatypes.JSON `json:"raw_webhook"`
	CreatedAt         time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}

// webhookから確定時に保存する監査用データ。
type WebhookData struct {
	//冪等キー。SepayのreferenceCode（無ければ数値id）
	GatewayTransactionID string
	//Sepayの数値id
	GatewayReference string
	Method           PaymentMethod
	Raw              datatypes.JSON
}
