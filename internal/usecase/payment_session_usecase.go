package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"iaction/internal/domain/model"
	repo "iaction/internal/repository"
	"iaction/internal/sepay"
	"iaction/internal/validator"

	"github.com/shopspring/decimal"
)

// QRと注文コードを照合に使ってよい時間。設定では変えない
const SessionTTL = 10 * time.Minute

// 注文コード衝突時の再生成回数
const maxCodeAttempts = 5

type CodeGenerator interface {
	New() (string, error)
}

type Clock interface {
	Now() time.Time
}

type PaymentSessionUsecase struct {
	orders   repo.OrderRepository
	payments repo.PaymentRepository
	codes    CodeGenerator
	bank     sepay.BankConfig
	clock    Clock
	logger   *slog.Logger
}

func NewPaymentSessionUsecase(
	orders repo.OrderRepository,
	payments repo.PaymentRepository,
	codes CodeGenerator,
	bank sepay.BankConfig,
	clock Clock,
	logger *slog.Logger,
) *PaymentSessionUsecase {
	return &PaymentSessionUsecase{
		orders:   orders,
		payments: payments,
		codes:    codes,
		bank:     bank,
		clock:    clock,
		logger:   logger,
	}
}

type CreateSessionInput struct {
	ProductID     string
	ProductName   string
	Amount        decimal.Decimal
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
}

// 秘密情報（商品URLなど）は入れない。入金後にメールで送る
type SessionInfo struct {
	OrderID       string          `json:"orderId"`
	OrderCode     string          `json:"orderCode"`
	BankAccount   string          `json:"bankAccount"`
	BankName      string          `json:"bankName"`
	AccountHolder string          `json:"accountHolder"`
	Amount        decimal.Decimal `json:"amount"`
	Content       string          `json:"content"`
	QRCodeURL     string          `json:"qrCodeUrl"`
	ExpiresAt     time.Time       `json:"expiresAt"`
}

type SessionStatus struct {
	OrderID       string          `json:"orderId"`
	OrderCode     string          `json:"orderCode"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"createdAt"`
	ExpiresAt     time.Time       `json:"expiresAt"`
	Expired       bool            `json:"expired"`
}

func (u *PaymentSessionUsecase) CreateSession(ctx context.Context, in CreateSessionInput) (SessionInfo, error) {
	if err := validateSessionInput(in); err != nil {
		return SessionInfo{}, err
	}

	//口座未設定はユーザーのせいではないので500
	if !u.bank.Configured() {
		u.logger.Error("payment gateway not configured")
		return SessionInfo{}, configurationError("payment system not configured")
	}

	order, err := u.createOrder(ctx, in)
	if err != nil {
		return SessionInfo{}, err
	}

	//ここで失敗するとpendingの注文だけ残るが、期限切れで放置される
	method := model.PaymentMethodVietQR
	if _, err := u.payments.Create(ctx, model.Payment{
		OrderID: order.ID,
		Method:  &method,
		Status:  model.PaymentStatusPending,
	}); err != nil {
		u.logger.Error("create payment failed", "order_id", order.ID, "order_code", order.ReferenceCode, "err", err)
		return SessionInfo{}, internalError("failed to create payment")
	}

	u.logger.Info("payment session created", "order_code", order.ReferenceCode, "email", order.CustomerEmail)

	return SessionInfo{
		OrderID:       order.ID,
		OrderCode:     order.ReferenceCode,
		BankAccount:   u.bank.BankAccount,
		BankName:      u.bank.BankName,
		AccountHolder: u.bank.AccountHolder,
		Amount:        order.Amount,
		Content:       order.ReferenceCode,
		QRCodeURL:     u.bank.QRCodeURL(order.Amount, order.ReferenceCode),
		ExpiresAt:     order.CreatedAt.Add(SessionTTL),
	}, nil
}

// コードが衝突したら作り直す。上限を超えたら500
func (u *PaymentSessionUsecase) createOrder(ctx context.Context, in CreateSessionInput) (model.Order, error) {
	now := u.clock.Now()
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := u.codes.New()
		if err != nil {
			u.logger.Error("generate order code failed", "err", err)
			return model.Order{}, internalError("failed to create order")
		}

		order, err := u.orders.Create(ctx, model.Order{
			ReferenceCode: code,
			ProductID:     strings.TrimSpace(in.ProductID),
			ProductName:   strings.TrimSpace(in.ProductName),
			Amount:        in.Amount,
			CustomerEmail: strings.TrimSpace(in.CustomerEmail),
			CustomerName:  validator.OptionalString(in.CustomerName),
			CustomerPhone: validator.OptionalString(in.CustomerPhone),
			Status:        model.OrderStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if errors.Is(err, repo.ErrConflict) {
			u.logger.Warn("order code collision", "code", code, "attempt", attempt)
			continue
		}
		if err != nil {
			u.logger.Error("create order failed", "err", err)
			return model.Order{}, internalError("failed to create order")
		}
		return order, nil
	}

	return model.Order{}, &HTTPError{
		Status:  http.StatusInternalServerError,
		Message: "failed to allocate order code",
		Kind:    ErrConflict,
	}
}

func validateSessionInput(in CreateSessionInput) error {
	if err := validator.Required(in.ProductID, in.ProductName, in.CustomerEmail); err != nil {
		return validationError(err.Error())
	}
	if err := validator.MaxLen(in.ProductID, in.ProductName, in.CustomerEmail, in.CustomerName, in.CustomerPhone); err != nil {
		return validationError(err.Error())
	}
	if err := validator.PositiveAmount(in.Amount); err != nil {
		return validationError(err.Error())
	}
	if err := validator.WholeAmount(in.Amount); err != nil {
		return validationError(err.Error())
	}
	if err := validator.Email(in.CustomerEmail); err != nil {
		return validationError(err.Error())
	}
	return nil
}

// ポーリング用。読むだけで何も書かない
func (u *PaymentSessionUsecase) GetStatus(ctx context.Context, orderID string) (SessionStatus, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return SessionStatus{}, validationError("order id required")
	}

	order, found, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		u.logger.Error("get order failed", "order_id", orderID, "err", err)
		return SessionStatus{}, internalError("failed to get status")
	}
	if !found {
		return SessionStatus{}, NewHTTPError(http.StatusNotFound, "order not found")
	}

	paymentStatus := "unknown"
	payment, found, err := u.payments.FindByOrderID(ctx, order.ID)
	if err != nil {
		u.logger.Error("get payment failed", "order_id", orderID, "err", err)
		return SessionStatus{}, internalError("failed to get status")
	}
	if found {
		paymentStatus = string(payment.Status)
	}

	//期限は表示用。webhook側では見ない
	expiresAt := order.CreatedAt.Add(SessionTTL)

	return SessionStatus{
		OrderID:       order.ID,
		OrderCode:     order.ReferenceCode,
		Status:        string(order.Status),
		PaymentStatus: paymentStatus,
		Amount:        order.Amount,
		CreatedAt:     order.CreatedAt,
		ExpiresAt:     expiresAt,
		Expired:       order.IsPending() && u.clock.Now().After(expiresAt),
	}, nil
}
