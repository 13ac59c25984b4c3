package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"iaction/internal/domain/model"
	"iaction/internal/fulfillment"
	repo "iaction/internal/repository"
)

// 1回の修復で見る件数
const reconcileBatch = 100

var errNotPending = errors.New("order not pending")

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	payments  repo.PaymentRepository
	auditRepo repo.AuditLogRepository
	notifier  PaymentNotifier
	logger    *slog.Logger
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	payments repo.PaymentRepository,
	auditRepo repo.AuditLogRepository,
	notifier PaymentNotifier,
	logger *slog.Logger,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:        tx,
		orders:    orders,
		payments:  payments,
		auditRepo: auditRepo,
		notifier:  notifier,
		logger:    logger,
	}
}

type OrderPage struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type ReconcileResult struct {
	Checked    int      `json:"checked"`
	Reconciled []string `json:"reconciled"`
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.OrderListFilter) (OrderPage, error) {
	if f.Page < 1 {
		return OrderPage{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderPage{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	f.Status = strings.TrimSpace(f.Status)
	switch model.OrderStatus(f.Status) {
	case "", model.OrderStatusPending, model.OrderStatusPaid, model.OrderStatusCancelled, model.OrderStatusRefunded:
	default:
		return OrderPage{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	orders, total, err := u.orders.List(ctx, f)
	if err != nil {
		u.logger.Error("list orders failed", "err", err)
		return OrderPage{}, internalError("db error")
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return OrderPage{Items: orders, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// pendingの注文だけキャンセルできる。webhookと競合したら後勝ちにしない
func (u *AdminOrderUsecase) Cancel(ctx context.Context, actor string, orderID string) error {
	if strings.TrimSpace(actor) == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, found, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !found {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if o.Status == model.OrderStatusCancelled {
			return nil
		}

		ok, err := r.Orders().TransitionStatus(ctx, orderID, model.OrderStatusPending, model.OrderStatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return errNotPending
		}

		//監査ログ
		return r.AuditLogs().Create(ctx, model.AuditLog{
			Actor:        actor,
			Action:       model.AuditActionOrderCancelled,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			Before:       orderStatusJSON(model.OrderStatusPending),
			After:        orderStatusJSON(model.OrderStatusCancelled),
		})
	})

	if errors.Is(err, errNotPending) {
		return NewHTTPError(http.StatusBadRequest, "only pending orders can be cancelled")
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	if err != nil {
		u.logger.Error("cancel order failed", "order_id", orderID, "err", err)
		return internalError("db error")
	}

	u.logger.Info("order cancelled", "order_id", orderID, "actor", actor)
	return nil
}

// 支払いはsuccessなのに注文がpendingのまま残ったものをpaidにし、メールを送り直す
func (u *AdminOrderUsecase) Reconcile(ctx context.Context, actor string) (ReconcileResult, error) {
	if strings.TrimSpace(actor) == "" {
		return ReconcileResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	stuck, err := u.payments.ListSettledWithPendingOrder(ctx, reconcileBatch)
	if err != nil {
		u.logger.Error("list stuck payments failed", "err", err)
		return ReconcileResult{}, internalError("db error")
	}

	res := ReconcileResult{Checked: len(stuck), Reconciled: []string{}}
	for _, p := range stuck {
		var order model.Order
		err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			o, found, err := r.Orders().FindByID(ctx, p.OrderID)
			if err != nil {
				return err
			}
			if !found {
				return repo.ErrNotFound
			}
			ok, err := r.Orders().TransitionStatus(ctx, o.ID, model.OrderStatusPending, model.OrderStatusPaid)
			if err != nil {
				return err
			}
			if !ok {
				return errNotPending
			}
			order = o
			return r.AuditLogs().Create(ctx, model.AuditLog{
				Actor:        actor,
				Action:       model.AuditActionOrderReconciled,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   o.ID,
				Before:       statusJSON(model.OrderStatusPending, p.Status),
				After:        statusJSON(model.OrderStatusPaid, p.Status),
			})
		})
		if errors.Is(err, errNotPending) {
			continue
		}
		if err != nil {
			u.logger.Error("reconcile order failed", "order_id", p.OrderID, "err", err)
			continue
		}

		u.logger.Info("order reconciled", "order_id", order.ID, "order_code", order.ReferenceCode, "actor", actor)
		u.notifier.DispatchPaymentConfirmation(ctx, fulfillment.PaidOrderFrom(order))
		res.Reconciled = append(res.Reconciled, order.ReferenceCode)
	}

	return res, nil
}

func (u *AdminOrderUsecase) AuditLogs(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		u.logger.Error("list audit logs failed", "err", err)
		return nil, internalError("db error")
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
