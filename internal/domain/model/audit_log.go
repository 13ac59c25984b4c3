package model

import (
	"time"

	"gorm.io/datatypes"
)

// 入金確定、キャンセルなど。
type AuditAction string

const (
	//webhookで入金が確定した。
	AuditActionPaymentConfirmed AuditAction = "PAYMENT_CONFIRMED"
	//管理者が注文をキャンセルした。
	AuditActionOrderCancelled AuditAction = "ORDER_CANCELLED"
	//支払い済みなのにpendingのまま残った注文を直した。
	AuditActionOrderReconciled AuditAction = "ORDER_RECONCILED"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourcePayment AuditResourceType = "payment"
)

// webhookからの操作者
const AuditActorWebhook = "system:webhook"

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`

	//操作者（管理者のsub か system:webhook）。
	Actor string `gorm:"type:varchar(255);not null;index" json:"actor"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID string `gorm:"type:varchar(36);not null;index" json:"resource_id"`

	Before datatypes.JSON `json:"before"`

	After datatypes.JSON `json:"after"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
