package repository

import (
	"context"
	"time"

	"iaction/internal/domain/model"
	repo "iaction/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Create(ctx context.Context, payment model.Payment) (model.Payment, error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.Status == "" {
		payment.Status = model.PaymentStatusPending
	}
	if err := r.db.WithContext(ctx).Create(&payment).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Payment{}, repo.ErrConflict
		}
		return model.Payment{}, err
	}
	return payment, nil
}

func (r *PaymentGormRepository) FindByOrderID(ctx context.Context, orderID string) (model.Payment, bool, error) {
	return r.findOne(ctx, "order_id = ?", orderID)
}

func (r *PaymentGormRepository) FindByGatewayID(ctx context.Context, gatewayTransactionID string) (model.Payment, bool, error) {
	return r.findOne(ctx, "gateway_transaction_id = ?", gatewayTransactionID)
}

func (r *PaymentGormRepository) findOne(ctx context.Context, cond string, arg any) (model.Payment, bool, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).Where(cond, arg).First(&p).Error
	if isNotFound(err) {
		return model.Payment{}, false, nil
	}
	if err != nil {
		return model.Payment{}, false, err
	}
	return p, true, nil
}

func (r *PaymentGormRepository) UpdateStatus(ctx context.Context, paymentID string, status model.PaymentStatus, webhook *model.WebhookData) error {
	values := map[string]any{"status": status}
	if webhook != nil {
		for k, v := range webhookColumns(*webhook) {
			values[k] = v
		}
	}

	res := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", paymentID).
		Updates(values)

	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return repo.ErrConflict
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// pendingのときだけ成功にする（同じ支払いを二重に確定させない）
func (r *PaymentGormRepository) MarkSuccess(ctx context.Context, paymentID string, webhook model.WebhookData) (bool, error) {
	values := webhookColumns(webhook)
	values["status"] = model.PaymentStatusSuccess

	res := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ? AND status = ?", paymentID, model.PaymentStatusPending).
		Updates(values)

	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, repo.ErrConflict
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PaymentGormRepository) ListSettledWithPendingOrder(ctx context.Context, limit int) ([]model.Payment, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var items []model.Payment
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Select("payments.*").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("payments.status = ? AND orders.status = ?", model.PaymentStatusSuccess, model.OrderStatusPending).
		Order("payments.webhook_received_at asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// 受信時刻と生データはステータスと同じUPDATEで書く
func webhookColumns(w model.WebhookData) map[string]any {
	values := map[string]any{
		"webhook_received_at": time.Now(),
		"raw_webhook":         w.Raw,
	}
	if w.GatewayTransactionID != "" {
		values["gateway_transaction_id"] = w.GatewayTransactionID
	}
	if w.GatewayReference != "" {
		values["gateway_reference"] = w.GatewayReference
	}
	if w.Method != "" {
		values["method"] = w.Method
	}
	return values
}
