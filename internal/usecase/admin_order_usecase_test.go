package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"iaction/internal/domain/model"
	repo "iaction/internal/repository"
	"iaction/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const adminActor = "ops@iaction.vn"

// =====================
// List
// =====================

func TestAdminOrderUsecase_List_InvalidPaging(t *testing.T) {
	f := newFixture(t)

	_, err := f.admin.List(context.Background(), repo.OrderListFilter{Page: 0, Limit: 20})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.ErrValidation)

	_, err = f.admin.List(context.Background(), repo.OrderListFilter{Page: 1, Limit: 101})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.ErrValidation)

	_, err = f.admin.List(context.Background(), repo.OrderListFilter{Page: 1, Limit: 10, Status: "shipped"})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.ErrValidation)
}

func TestAdminOrderUsecase_List(t *testing.T) {
	f := newFixture(t)
	f.createSession(t, 299000)
	f.createSession(t, 99000)

	page, err := f.admin.List(context.Background(), repo.OrderListFilter{Page: 1, Limit: 10, Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 2)

	page, err = f.admin.List(context.Background(), repo.OrderListFilter{Page: 1, Limit: 10, Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.NotNil(t, page.Items)
}

// =====================
// Cancel
// =====================

func TestAdminOrderUsecase_Cancel_Pending(t *testing.T) {
	f := newFixture(t)
	info := f.createSession(t, 299000)

	require.NoError(t, f.admin.Cancel(context.Background(), adminActor, info.OrderID))
	assert.Equal(t, model.OrderStatusCancelled, f.order(t, info.OrderID).Status)

	//もう一度呼んでも何もしない
	require.NoError(t, f.admin.Cancel(context.Background(), adminActor, info.OrderID))

	var logs []model.AuditLog
	require.NoError(t, f.db.Where("action = ?", model.AuditActionOrderCancelled).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, adminActor, logs[0].Actor)
	assert.Equal(t, info.OrderID, logs[0].ResourceID)

	//キャンセル後のwebhookは確定させない
	res, err := f.webhook.Handle(context.Background(), authed(webhookBody(1, info.OrderCode, 299000, "FT-AFTER-CANCEL")))
	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeOrderNotPending, res.Outcome)
}

func TestAdminOrderUsecase_Cancel_PaidRejected(t *testing.T) {
	f := newFixture(t)
	info := f.createSession(t, 299000)
	_, err := f.webhook.Handle(context.Background(), authed(webhookBody(1, info.OrderCode, 299000, "FT-PAID")))
	require.NoError(t, err)

	err = f.admin.Cancel(context.Background(), adminActor, info.OrderID)
	assertHTTPError(t, err, http.StatusBadRequest, usecase.ErrValidation)
	assert.Equal(t, model.OrderStatusPaid, f.order(t, info.OrderID).Status)
}

func TestAdminOrderUsecase_Cancel_NotFoundAndUnauthorized(t *testing.T) {
	f := newFixture(t)

	err := f.admin.Cancel(context.Background(), adminActor, "missing")
	assertHTTPError(t, err, http.StatusNotFound, usecase.ErrNotFound)

	err = f.admin.Cancel(context.Background(), "", "missing")
	assertHTTPError(t, err, http.StatusUnauthorized, usecase.ErrUnauthorized)
}

// =====================
// Reconcile
// =====================

// 支払い確定後に注文の更新だけ失敗したケースを直す
func TestAdminOrderUsecase_Reconcile(t *testing.T) {
	f := newFixture(t)
	stuck := f.createSession(t, 299000)
	waiting := f.createSession(t, 99000)

	p := f.payment(t, stuck.OrderID)
	ok, err := f.payments.MarkSuccess(context.Background(), p.ID, model.WebhookData{
		GatewayTransactionID: "FT-STUCK",
		Method:               model.PaymentMethodVietQR,
		Raw:                  datatypes.JSON(`{}`),
	})
	require.NoError(t, err)
	require.True(t, ok)

	res, err := f.admin.Reconcile(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Checked)
	assert.Equal(t, []string{stuck.OrderCode}, res.Reconciled)

	assert.Equal(t, model.OrderStatusPaid, f.order(t, stuck.OrderID).Status)
	assert.Equal(t, model.OrderStatusPending, f.order(t, waiting.OrderID).Status)

	calls := f.notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, stuck.OrderCode, calls[0].OrderCode)

	actor := adminActor
	logs, err := f.admin.AuditLogs(context.Background(), repo.AuditLogFilter{Actor: &actor})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionOrderReconciled, logs[0].Action)

	//2回目は対象なし
	res, err = f.admin.Reconcile(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Checked)
	assert.Empty(t, res.Reconciled)
}
