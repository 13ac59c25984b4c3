package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"iaction/internal/domain/model"
	"iaction/internal/fulfillment"
	"iaction/internal/infra/db"
	infraRepo "iaction/internal/infra/repository"
	"iaction/internal/logger"
	"iaction/internal/sepay"
	"iaction/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// =====================
// clock / code generator
// =====================

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// 呼ばれるたびに次のコードを返す。尽きたら最後のコードを返し続ける
type seqCodes struct {
	mu    sync.Mutex
	codes []string
	calls int
}

func (g *seqCodes) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	if i >= len(g.codes) {
		i = len(g.codes) - 1
	}
	g.calls++
	return g.codes[i], nil
}

type counterCodes struct {
	mu sync.Mutex
	n  int
}

func (g *counterCodes) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("IA250615T%05d", g.n), nil
}

// =====================
// notifier
// =====================

type recordingNotifier struct {
	mu     sync.Mutex
	orders []fulfillment.PaidOrder
}

func (n *recordingNotifier) DispatchPaymentConfirmation(ctx context.Context, order fulfillment.PaidOrder) {
	n.mu.Lock()
	n.orders = append(n.orders, order)
	n.mu.Unlock()
}

func (n *recordingNotifier) Calls() []fulfillment.PaidOrder {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]fulfillment.PaidOrder(nil), n.orders...)
}

// =====================
// fixture
// =====================

const testAPIKey = "sepay-test-key"

type fixture struct {
	db       *gorm.DB
	orders   *infraRepo.OrderGormRepository
	payments *infraRepo.PaymentGormRepository
	tx       *infraRepo.TxManagerGorm
	clock    *testClock
	notifier *recordingNotifier
	bank     sepay.BankConfig

	session *usecase.PaymentSessionUsecase
	webhook *usecase.WebhookUsecase
	admin   *usecase.AdminOrderUsecase
}

func configuredBank() sepay.BankConfig {
	return sepay.BankConfig{
		BankAccount:   "0123456789",
		BankName:      "BIDV",
		AccountHolder: "NGUYEN VAN A",
		WebhookAPIKey: testAPIKey,
		QRBaseURL:     "https://qr.sepay.vn/img",
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, configuredBank(), &counterCodes{})
}

func newFixtureWith(t *testing.T, bank sepay.BankConfig, codes usecase.CodeGenerator) *fixture {
	t.Helper()

	gdb, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		db:       gdb,
		orders:   infraRepo.NewOrderGormRepository(gdb),
		payments: infraRepo.NewPaymentGormRepository(gdb),
		tx:       infraRepo.NewTxManagerGorm(gdb),
		clock:    newTestClock(),
		notifier: &recordingNotifier{},
		bank:     bank,
	}
	log := logger.Discard()
	f.session = usecase.NewPaymentSessionUsecase(f.orders, f.payments, codes, bank, f.clock, log)
	f.webhook = usecase.NewWebhookUsecase(f.tx, f.orders, f.payments, bank, f.notifier, log)
	f.admin = usecase.NewAdminOrderUsecase(f.tx, f.orders, f.payments, infraRepo.NewAuditLogGormRepository(gdb), f.notifier, log)
	return f
}

func sessionInput(amount int64) usecase.CreateSessionInput {
	return usecase.CreateSessionInput{
		ProductID:     "prod-1",
		ProductName:   "Prompt Pack",
		Amount:        decimal.NewFromInt(amount),
		CustomerEmail: "buyer@example.com",
		CustomerName:  "Tran Thi B",
	}
}

func (f *fixture) createSession(t *testing.T, amount int64) usecase.SessionInfo {
	t.Helper()
	info, err := f.session.CreateSession(context.Background(), sessionInput(amount))
	require.NoError(t, err)
	return info
}

func (f *fixture) order(t *testing.T, id string) model.Order {
	t.Helper()
	o, found, err := f.orders.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found)
	return o
}

func (f *fixture) payment(t *testing.T, orderID string) model.Payment {
	t.Helper()
	p, found, err := f.payments.FindByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	require.True(t, found)
	return p
}

func webhookBody(sepayID int64, content string, amount int64, reference string) []byte {
	return []byte(fmt.Sprintf(`{"id":%d,"gateway":"BIDV","transactionDate":"2025-06-15 10:05:00",
"accountNumber":"0123456789","code":null,"content":%q,"transferType":"in",
"transferAmount":%d,"accumulated":%d,"referenceCode":%q}`, sepayID, content, amount, amount, reference))
}

func authed(body []byte) usecase.WebhookRequest {
	return usecase.WebhookRequest{AuthHeader: "Apikey " + testAPIKey, RemoteIP: "203.0.113.7", Body: body}
}

func assertHTTPError(t *testing.T, err error, status int, kind error) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "err=%v", err) {
		assert.Equal(t, status, he.Status)
	}
	assert.True(t, errors.Is(err, kind), "err=%v want kind %v", err, kind)
}
