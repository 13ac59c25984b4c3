package usecase_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"iaction/internal/domain/model"
	"iaction/internal/sepay"
	"iaction/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =====================
// CreateSession
// =====================

func TestPaymentSessionUsecase_CreateSession_Success(t *testing.T) {
	f := newFixture(t)

	info := f.createSession(t, 299000)

	assert.NotEmpty(t, info.OrderID)
	assert.Equal(t, "IA250615T00001", info.OrderCode)
	assert.Equal(t, info.OrderCode, info.Content)
	assert.Equal(t, "0123456789", info.BankAccount)
	assert.Equal(t, "BIDV", info.BankName)
	assert.Equal(t, "NGUYEN VAN A", info.AccountHolder)
	assert.True(t, info.Amount.Equal(decimal.NewFromInt(299000)))
	assert.True(t, info.ExpiresAt.Equal(f.clock.Now().Add(10*time.Minute)))

	u, err := url.Parse(info.QRCodeURL)
	require.NoError(t, err)
	assert.Equal(t, "299000", u.Query().Get("amount"))
	assert.Equal(t, info.OrderCode, u.Query().Get("des"))

	//注文と支払いが両方pendingで作られる
	o := f.order(t, info.OrderID)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, "Prompt Pack", o.ProductName)
	require.NotNil(t, o.CustomerName)
	assert.Equal(t, "Tran Thi B", *o.CustomerName)
	assert.Nil(t, o.CustomerPhone)

	p := f.payment(t, info.OrderID)
	assert.Equal(t, model.PaymentStatusPending, p.Status)
	require.NotNil(t, p.Method)
	assert.Equal(t, model.PaymentMethodVietQR, *p.Method)
}

func TestPaymentSessionUsecase_CreateSession_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(in *usecase.CreateSessionInput)
	}{
		{name: "missing product id", modify: func(in *usecase.CreateSessionInput) { in.ProductID = "" }},
		{name: "missing product name", modify: func(in *usecase.CreateSessionInput) { in.ProductName = " " }},
		{name: "missing email", modify: func(in *usecase.CreateSessionInput) { in.CustomerEmail = "" }},
		{name: "bad email", modify: func(in *usecase.CreateSessionInput) { in.CustomerEmail = "buyer.example.com" }},
		{name: "zero amount", modify: func(in *usecase.CreateSessionInput) { in.Amount = decimal.Zero }},
		{name: "negative amount", modify: func(in *usecase.CreateSessionInput) { in.Amount = decimal.NewFromInt(-1) }},
		{name: "fractional amount", modify: func(in *usecase.CreateSessionInput) { in.Amount = decimal.RequireFromString("0.5") }},
		{name: "fractional large amount", modify: func(in *usecase.CreateSessionInput) { in.Amount = decimal.RequireFromString("299000.4") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := sessionInput(299000)
			tt.modify(&in)

			_, err := f.session.CreateSession(context.Background(), in)
			assertHTTPError(t, err, http.StatusBadRequest, usecase.ErrValidation)

			var count int64
			require.NoError(t, f.db.Model(&model.Order{}).Count(&count).Error)
			assert.Equal(t, int64(0), count)
		})
	}
}

// 口座未設定は500。注文も作らない
func TestPaymentSessionUsecase_CreateSession_NotConfigured(t *testing.T) {
	f := newFixtureWith(t, sepay.BankConfig{BankName: "BIDV"}, &counterCodes{})

	_, err := f.session.CreateSession(context.Background(), sessionInput(299000))
	assertHTTPError(t, err, http.StatusInternalServerError, usecase.ErrConfiguration)

	var count int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

// コードが衝突したら作り直す
func TestPaymentSessionUsecase_CreateSession_RetriesOnCodeCollision(t *testing.T) {
	codes := &seqCodes{codes: []string{"IA250615DUP000", "IA250615DUP000", "IA250615FRESH0"}}
	f := newFixtureWith(t, configuredBank(), codes)

	_, err := f.orders.Create(context.Background(), model.Order{
		ReferenceCode: "IA250615DUP000",
		ProductID:     "prod-0",
		ProductName:   "Existing",
		Amount:        decimal.NewFromInt(1000),
		CustomerEmail: "old@example.com",
		Status:        model.OrderStatusPending,
	})
	require.NoError(t, err)

	info, err := f.session.CreateSession(context.Background(), sessionInput(299000))
	require.NoError(t, err)
	assert.Equal(t, "IA250615FRESH0", info.OrderCode)
	assert.Equal(t, 3, codes.calls)
}

func TestPaymentSessionUsecase_CreateSession_CollisionRetriesExhausted(t *testing.T) {
	codes := &seqCodes{codes: []string{"IA250615DUP000"}}
	f := newFixtureWith(t, configuredBank(), codes)

	_, err := f.orders.Create(context.Background(), model.Order{
		ReferenceCode: "IA250615DUP000",
		ProductID:     "prod-0",
		ProductName:   "Existing",
		Amount:        decimal.NewFromInt(1000),
		CustomerEmail: "old@example.com",
		Status:        model.OrderStatusPending,
	})
	require.NoError(t, err)

	_, err = f.session.CreateSession(context.Background(), sessionInput(299000))
	assertHTTPError(t, err, http.StatusInternalServerError, usecase.ErrConflict)
	assert.Equal(t, 5, codes.calls)
}

// =====================
// GetStatus
// =====================

func TestPaymentSessionUsecase_GetStatus_Pending(t *testing.T) {
	f := newFixture(t)
	info := f.createSession(t, 299000)

	st, err := f.session.GetStatus(context.Background(), info.OrderID)
	require.NoError(t, err)

	assert.Equal(t, info.OrderID, st.OrderID)
	assert.Equal(t, info.OrderCode, st.OrderCode)
	assert.Equal(t, "pending", st.Status)
	assert.Equal(t, "pending", st.PaymentStatus)
	assert.True(t, st.Amount.Equal(decimal.NewFromInt(299000)))
	assert.False(t, st.Expired)
}

// 期限切れは表示だけ。webhookが後から来ても受け付ける
func TestPaymentSessionUsecase_GetStatus_ExpiredThenPaid(t *testing.T) {
	f := newFixture(t)
	info := f.createSession(t, 299000)

	f.clock.Advance(11 * time.Minute)

	st, err := f.session.GetStatus(context.Background(), info.OrderID)
	require.NoError(t, err)
	assert.True(t, st.Expired)
	assert.Equal(t, "pending", st.Status)

	res, err := f.webhook.Handle(context.Background(), authed(webhookBody(1, info.OrderCode, 299000, "FT-LATE")))
	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeCompleted, res.Outcome)

	st, err = f.session.GetStatus(context.Background(), info.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "paid", st.Status)
	assert.Equal(t, "success", st.PaymentStatus)
	assert.False(t, st.Expired)
}

func TestPaymentSessionUsecase_GetStatus_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.GetStatus(context.Background(), "00000000-0000-0000-0000-000000000000")
	assertHTTPError(t, err, http.StatusNotFound, usecase.ErrNotFound)
}

func TestPaymentSessionUsecase_GetStatus_NoPaymentRow(t *testing.T) {
	f := newFixture(t)
	o, err := f.orders.Create(context.Background(), model.Order{
		ReferenceCode: "IA250615ORPHAN",
		ProductID:     "prod-1",
		ProductName:   "Prompt Pack",
		Amount:        decimal.NewFromInt(299000),
		CustomerEmail: "buyer@example.com",
		Status:        model.OrderStatusPending,
	})
	require.NoError(t, err)

	st, err := f.session.GetStatus(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "unknown", st.PaymentStatus)
}
