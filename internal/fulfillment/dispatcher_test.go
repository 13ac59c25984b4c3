package fulfillment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"iaction/internal/domain/model"
	"iaction/internal/fulfillment"
	"iaction/internal/infra/email"
	"iaction/internal/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =====================
// fakes
// =====================

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *fakeMailer) Sent() []email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.Message(nil), m.sent...)
}

type fakeContent struct {
	settings    model.SiteSettings
	settingsErr error
	product     model.ProductSecret
	productErr  error
	course      model.CourseSecret
}

func (c fakeContent) SiteSettings(ctx context.Context) (model.SiteSettings, bool, error) {
	if c.settingsErr != nil {
		return model.SiteSettings{}, false, c.settingsErr
	}
	return c.settings, c.settings.SiteName != "", nil
}

func (c fakeContent) ProductSecret(ctx context.Context, productID string) (model.ProductSecret, bool, error) {
	if c.productErr != nil {
		return model.ProductSecret{}, false, c.productErr
	}
	return c.product, c.product.ID == productID, nil
}

func (c fakeContent) CourseSecret(ctx context.Context, courseID string) (model.CourseSecret, bool, error) {
	return c.course, c.course.ID == courseID, nil
}

func paidOrder() fulfillment.PaidOrder {
	return fulfillment.PaidOrder{
		OrderCode:     "IA250615ABC123",
		CustomerName:  "Tran Thi B",
		CustomerEmail: "buyer@example.com",
		ProductID:     "prod-1",
		ProductName:   "Prompt Pack",
		Amount:        decimal.NewFromInt(299000),
	}
}

// =====================
// FormatVND
// =====================

func TestFormatVND(t *testing.T) {
	tests := []struct {
		in   decimal.Decimal
		want string
	}{
		{in: decimal.NewFromInt(0), want: "0 ₫"},
		{in: decimal.NewFromInt(999), want: "999 ₫"},
		{in: decimal.NewFromInt(1000), want: "1.000 ₫"},
		{in: decimal.NewFromInt(299000), want: "299.000 ₫"},
		{in: decimal.NewFromInt(12345678), want: "12.345.678 ₫"},
		{in: decimal.RequireFromString("1500.6"), want: "1.501 ₫"},
		{in: decimal.NewFromInt(-5000), want: "-5.000 ₫"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fulfillment.FormatVND(tt.in))
	}
}

// =====================
// SendPaymentConfirmation
// =====================

func TestDispatcher_SendPaymentConfirmation(t *testing.T) {
	mailer := &fakeMailer{}
	content := fakeContent{
		settings: model.SiteSettings{SiteName: "IAction Studio", Email: "hello@iaction.vn"},
		product:  model.ProductSecret{ID: "prod-1", ProductURL: "https://drive.example.com/pack", UsageGuide: "Mo file <README>"},
	}
	d := fulfillment.NewDispatcher(mailer, content, logger.Discard(), "", "https://iaction.vn")

	require.NoError(t, d.SendPaymentConfirmation(context.Background(), paidOrder()))

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "buyer@example.com", msg.To)
	assert.Equal(t, "IAction Studio <hello@iaction.vn>", msg.From)
	assert.Contains(t, msg.Subject, "Prompt Pack")
	assert.Contains(t, msg.HTML, "IA250615ABC123")
	assert.Contains(t, msg.HTML, "299.000 ₫")
	assert.Contains(t, msg.HTML, "https://drive.example.com/pack")
	assert.Contains(t, msg.HTML, "https://iaction.vn/brand/banner-email.png")
	//HTMLはエスケープされる
	assert.Contains(t, msg.HTML, "Mo file &lt;README&gt;")
}

// 送信元はSENDER_EMAILが最優先
func TestDispatcher_SenderPriority(t *testing.T) {
	tests := []struct {
		name    string
		sender  string
		content fakeContent
		want    string
	}{
		{
			name:    "configured sender",
			sender:  "noreply@iaction.vn",
			content: fakeContent{settings: model.SiteSettings{SiteName: "IAction", Email: "hello@iaction.vn"}},
			want:    "IAction <noreply@iaction.vn>",
		},
		{
			name:    "site settings email",
			content: fakeContent{settings: model.SiteSettings{SiteName: "IAction", Email: "hello@iaction.vn"}},
			want:    "IAction <hello@iaction.vn>",
		},
		{
			name:    "cms down",
			content: fakeContent{settingsErr: errors.New("timeout")},
			want:    "IAction <onboarding@resend.dev>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &fakeMailer{}
			d := fulfillment.NewDispatcher(mailer, tt.content, logger.Discard(), tt.sender, "")

			require.NoError(t, d.SendFreeProduct(context.Background(), "C", "c@example.com", "prod-1", "Free Pack"))
			require.Len(t, mailer.Sent(), 1)
			assert.Equal(t, tt.want, mailer.Sent()[0].From)
		})
	}
}

// 商品データが取れなくてもメールは送る
func TestDispatcher_ProductSecretFailureStillSends(t *testing.T) {
	mailer := &fakeMailer{}
	d := fulfillment.NewDispatcher(mailer, fakeContent{productErr: errors.New("cms down")}, logger.Discard(), "", "")

	require.NoError(t, d.SendPaymentConfirmation(context.Background(), paidOrder()))
	require.Len(t, mailer.Sent(), 1)
	assert.NotContains(t, mailer.Sent()[0].HTML, "TRUY CẬP SẢN PHẨM")
}

func TestDispatcher_SendCourseEnrollment(t *testing.T) {
	mailer := &fakeMailer{}
	content := fakeContent{course: model.CourseSecret{ID: "course-1", CourseURL: "https://learn.example.com/c1"}}
	d := fulfillment.NewDispatcher(mailer, content, logger.Discard(), "", "")

	in := fulfillment.CourseEnrollment{
		CustomerName:  "Le Van C",
		CustomerEmail: "c@example.com",
		CourseID:      "course-1",
		CourseName:    "AI co ban",
	}
	require.NoError(t, d.SendCourseEnrollment(context.Background(), in, false))
	require.NoError(t, d.SendCourseEnrollment(context.Background(), in, true))

	sent := mailer.Sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].HTML, "MIỄN PHÍ")
	assert.Contains(t, sent[0].HTML, "https://learn.example.com/c1")
	assert.Contains(t, sent[1].HTML, "ĐÃ THANH TOÁN")
	assert.Contains(t, sent[1].Subject, "Xác nhận thanh toán")
}

// =====================
// DispatchPaymentConfirmation
// =====================

func TestDispatcher_DispatchPaymentConfirmation(t *testing.T) {
	mailer := &fakeMailer{}
	d := fulfillment.NewDispatcher(mailer, fakeContent{}, logger.Discard(), "", "")

	//呼び出し元のctxがキャンセルされても送る
	ctx, cancel := context.WithCancel(context.Background())
	d.DispatchPaymentConfirmation(ctx, paidOrder())
	cancel()

	wctx, wcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer wcancel()
	require.NoError(t, d.Wait(wctx))

	require.Len(t, mailer.Sent(), 1)
	assert.Equal(t, "buyer@example.com", mailer.Sent()[0].To)
}

func TestDispatcher_DispatchFailureIsSwallowed(t *testing.T) {
	mailer := &fakeMailer{err: email.ErrNotConfigured}
	d := fulfillment.NewDispatcher(mailer, fakeContent{}, logger.Discard(), "", "")

	d.DispatchPaymentConfirmation(context.Background(), paidOrder())

	wctx, wcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer wcancel()
	require.NoError(t, d.Wait(wctx))
	assert.Len(t, mailer.Sent(), 1)
}

func TestPaidOrderFrom_DefaultName(t *testing.T) {
	o := model.Order{
		ReferenceCode: "IA250615ABC123",
		ProductID:     "prod-1",
		ProductName:   "Prompt Pack",
		Amount:        decimal.NewFromInt(299000),
		CustomerEmail: "buyer@example.com",
	}
	p := fulfillment.PaidOrderFrom(o)
	assert.Equal(t, "Quý khách", p.CustomerName)
	assert.Equal(t, "IA250615ABC123", p.OrderCode)
}
