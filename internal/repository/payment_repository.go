package repository

import (
	"context"

	"iaction/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment model.Payment) (model.Payment, error)

	FindByOrderID(ctx context.Context, orderID string) (model.Payment, bool, error)

	//冪等チェック用（gateway_transaction_idのユニークインデックスで引く）
	FindByGatewayID(ctx context.Context, gatewayTransactionID string) (model.Payment, bool, error)

	//webhookがあれば受信時刻と生データも同時に保存する
	UpdateStatus(ctx context.Context, paymentID string, status model.PaymentStatus, webhook *model.WebhookData) error

	//pendingのときだけsuccessにする。更新できなければfalse
	MarkSuccess(ctx context.Context, paymentID string, webhook model.WebhookData) (bool, error)

	//successなのに注文がpendingのまま残ったもの
	ListSettledWithPendingOrder(ctx context.Context, limit int) ([]model.Payment, error)
}
