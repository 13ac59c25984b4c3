package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"iaction/internal/domain/model"
	"iaction/internal/fulfillment"
	repo "iaction/internal/repository"
	"iaction/internal/sepay"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type WebhookOutcome string

const (
	OutcomeIgnoredOutgoing    WebhookOutcome = "ignored_outgoing"
	OutcomeNoOrderCode        WebhookOutcome = "no_order_code"
	OutcomeAlreadyProcessed   WebhookOutcome = "already_processed"
	OutcomeOrderNotFound      WebhookOutcome = "order_not_found"
	OutcomeOrderNotPending    WebhookOutcome = "order_not_pending"
	OutcomeInsufficientAmount WebhookOutcome = "insufficient_amount"
	OutcomePaymentNotFound    WebhookOutcome = "payment_not_found"
	OutcomeCompleted          WebhookOutcome = "completed"
)

var outcomeMessages = map[WebhookOutcome]string{
	OutcomeIgnoredOutgoing:    "Ignored",
	OutcomeNoOrderCode:        "No order code",
	OutcomeAlreadyProcessed:   "Already processed",
	OutcomeOrderNotFound:      "Order not found",
	OutcomeOrderNotPending:    "Order not pending",
	OutcomeInsufficientAmount: "Insufficient amount",
	OutcomePaymentNotFound:    "Payment not found",
	OutcomeCompleted:          "Payment completed",
}

// 業務上の不一致もすべて「受領済み」として返す
type WebhookResult struct {
	Outcome   WebhookOutcome
	Message   string
	OrderCode string
}

func result(o WebhookOutcome, code string) WebhookResult {
	return WebhookResult{Outcome: o, Message: outcomeMessages[o], OrderCode: code}
}

type WebhookRequest struct {
	AuthHeader string
	RemoteIP   string
	Body       []byte
}

type PaymentNotifier interface {
	DispatchPaymentConfirmation(ctx context.Context, order fulfillment.PaidOrder)
}

var (
	//条件付き更新が0件＝他の配信が先に確定した
	errSettledConcurrently = errors.New("settled concurrently")
	//同じゲートウェイIDがすでに保存されている
	errDuplicateDelivery = errors.New("duplicate delivery")
)

type WebhookUsecase struct {
	tx       repo.TransactionManager
	orders   repo.OrderRepository
	payments repo.PaymentRepository
	bank     sepay.BankConfig
	notifier PaymentNotifier
	logger   *slog.Logger
}

func NewWebhookUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	payments repo.PaymentRepository,
	bank sepay.BankConfig,
	notifier PaymentNotifier,
	logger *slog.Logger,
) *WebhookUsecase {
	return &WebhookUsecase{
		tx:       tx,
		orders:   orders,
		payments: payments,
		bank:     bank,
		notifier: notifier,
		logger:   logger,
	}
}

// 手順の順番は変えないこと。最初に当てはまった段階で止める
func (u *WebhookUsecase) Handle(ctx context.Context, req WebhookRequest) (WebhookResult, error) {
	// 1. 認証
	if !u.bank.VerifyAPIKey(req.AuthHeader) {
		u.logger.Warn("webhook rejected: invalid api key",
			"security_event", true, "remote_ip", req.RemoteIP, "has_header", req.AuthHeader != "")
		return WebhookResult{}, &HTTPError{Status: http.StatusUnauthorized, Message: "Invalid API key", Kind: ErrUnauthorized}
	}

	var p sepay.WebhookPayload
	if err := json.Unmarshal(req.Body, &p); err != nil {
		//Sepayには200/401/500だけを返す。壊れた本文は500で再送させる
		u.logger.Error("webhook body is not valid json", "err", err)
		return WebhookResult{}, internalError("Internal error")
	}
	u.logger.Info("webhook received", "sepay_id", p.ID, "reference", p.ReferenceCode,
		"type", p.TransferType, "amount", p.TransferAmount.String())

	// 2. 入金以外は無視
	if !p.Incoming() {
		return result(OutcomeIgnoredOutgoing, ""), nil
	}

	// 3. 注文コード
	code, ok := p.OrderCode()
	if !ok {
		u.logger.Info("webhook: no order code", "content", p.Content)
		return result(OutcomeNoOrderCode, ""), nil
	}

	// 4. 冪等チェック（同じ配信の再送）
	key := p.IdempotencyKey()
	if key != "" {
		prev, found, err := u.payments.FindByGatewayID(ctx, key)
		if err != nil {
			return u.fault("idempotency lookup", err)
		}
		if found && prev.Status == model.PaymentStatusSuccess {
			u.logger.Info("webhook: already processed", "reference", key)
			return result(OutcomeAlreadyProcessed, code), nil
		}
	}

	// 5. 注文
	order, found, err := u.orders.FindByCode(ctx, code)
	if err != nil {
		return u.fault("order lookup", err)
	}
	if !found {
		u.logger.Info("webhook: order not found", "order_code", code)
		return result(OutcomeOrderNotFound, code), nil
	}

	// 6. pending以外は処理しない
	if !order.IsPending() {
		u.logger.Info("webhook: order not pending", "order_code", code, "status", order.Status)
		return result(OutcomeOrderNotPending, code), nil
	}

	// 7. 金額不足は確定させない（追加の振込は別の配信で来る）
	if p.TransferAmount.LessThan(order.Amount) {
		u.logger.Warn("webhook: insufficient amount", "order_code", code,
			"transfer", p.TransferAmount.String(), "expected", order.Amount.String())
		return result(OutcomeInsufficientAmount, code), nil
	}

	// 8. 支払いレコード
	payment, found, err := u.payments.FindByOrderID(ctx, order.ID)
	if err != nil {
		return u.fault("payment lookup", err)
	}
	if !found {
		u.logger.Error("webhook: payment missing for order", "order_id", order.ID, "order_code", code)
		return result(OutcomePaymentNotFound, code), nil
	}

	// 9. 確定（支払い→注文の順、どちらも pending 条件付き）
	data := model.WebhookData{
		GatewayTransactionID: key,
		GatewayReference:     strconv.FormatInt(p.ID, 10),
		Method:               model.PaymentMethodVietQR,
		Raw:                  auditPayload(p, req.Body),
	}
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ok, err := r.Payments().MarkSuccess(ctx, payment.ID, data)
		if errors.Is(err, repo.ErrConflict) {
			return errDuplicateDelivery
		}
		if err != nil {
			return err
		}
		if !ok {
			return errSettledConcurrently
		}

		ok, err = r.Orders().TransitionStatus(ctx, order.ID, model.OrderStatusPending, model.OrderStatusPaid)
		if err != nil {
			return err
		}
		if !ok {
			return errSettledConcurrently
		}

		return r.AuditLogs().Create(ctx, model.AuditLog{
			Actor:        model.AuditActorWebhook,
			Action:       model.AuditActionPaymentConfirmed,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   order.ID,
			Before:       statusJSON(model.OrderStatusPending, model.PaymentStatusPending),
			After:        statusJSON(model.OrderStatusPaid, model.PaymentStatusSuccess),
		})
	})
	switch {
	case errors.Is(err, errSettledConcurrently):
		u.logger.Info("webhook: lost race, order already settled", "order_code", code)
		return result(OutcomeOrderNotPending, code), nil
	case errors.Is(err, errDuplicateDelivery):
		u.logger.Info("webhook: duplicate gateway reference", "reference", key)
		return result(OutcomeAlreadyProcessed, code), nil
	case err != nil:
		return u.fault("commit payment", err)
	}

	u.logger.Info("webhook: order paid", "order_code", code, "order_id", order.ID)

	// 10. 配送メール（待たない・失敗しても状態は戻さない）
	u.notifier.DispatchPaymentConfirmation(ctx, fulfillment.PaidOrderFrom(order))

	return result(OutcomeCompleted, code), nil
}

func (u *WebhookUsecase) fault(step string, err error) (WebhookResult, error) {
	u.logger.Error("webhook internal error", "step", step, "err", err)
	return WebhookResult{}, internalError("Internal error")
}

type webhookAudit struct {
	SepayID         int64           `json:"sepayId"`
	ReferenceCode   string          `json:"referenceCode"`
	TransactionDate string          `json:"transactionDate"`
	TransferAmount  decimal.Decimal `json:"transferAmount"`
	Payload         json.RawMessage `json:"payload"`
}

// 照合に使った値と受信した本文そのものを残す
func auditPayload(p sepay.WebhookPayload, body []byte) datatypes.JSON {
	b, err := json.Marshal(webhookAudit{
		SepayID:         p.ID,
		ReferenceCode:   p.ReferenceCode,
		TransactionDate: p.TransactionDate,
		TransferAmount:  p.TransferAmount,
		Payload:         json.RawMessage(body),
	})
	if err != nil {
		return datatypes.JSON(body)
	}
	return datatypes.JSON(b)
}

func statusJSON(order model.OrderStatus, payment model.PaymentStatus) datatypes.JSON {
	b, _ := json.Marshal(map[string]string{"order_status": string(order), "payment_status": string(payment)})
	return datatypes.JSON(b)
}

func orderStatusJSON(order model.OrderStatus) datatypes.JSON {
	b, _ := json.Marshal(map[string]string{"order_status": string(order)})
	return datatypes.JSON(b)
}
