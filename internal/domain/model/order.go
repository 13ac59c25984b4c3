package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// 購入時点の商品名・金額をスナップショットとして持つ。
type Order struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	ReferenceCode string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"order_code"`
	ProductID     string          `gorm:"type:varchar(255);not null;index" json:"product_id"`
	ProductName   string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Amount        decimal.Decimal `gorm:"type:numeric(15,0);not null" json:"amount"`
	CustomerEmail string          `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerName  *string         `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone *string         `gorm:"type:varchar(50)" json:"customer_phone"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (o Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// 名前が無いときはメール用の呼び名を返す。
func (o Order) DisplayName(fallback string) string {
	if o.CustomerName == nil || *o.CustomerName == "" {
		return fallback
	}
	return *o.CustomerName
}
