// Package fulfillment delivers what a customer bought: it renders the
// confirmation email with the item's private access data from the CMS and
// hands it to the mail provider.
package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"iaction/internal/domain/model"
	"iaction/internal/infra/email"

	"github.com/shopspring/decimal"
)

const (
	defaultSender   = "onboarding@resend.dev"
	defaultSiteName = "IAction"
	defaultCustomer = "Quý khách"

	sendTimeout = 30 * time.Second
)

type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

type ContentSource interface {
	SiteSettings(ctx context.Context) (model.SiteSettings, bool, error)
	ProductSecret(ctx context.Context, productID string) (model.ProductSecret, bool, error)
	CourseSecret(ctx context.Context, courseID string) (model.CourseSecret, bool, error)
}

type PaidOrder struct {
	OrderCode     string
	CustomerName  string
	CustomerEmail string
	ProductID     string
	ProductName   string
	Amount        decimal.Decimal
}

func PaidOrderFrom(o model.Order) PaidOrder {
	return PaidOrder{
		OrderCode:     o.ReferenceCode,
		CustomerName:  o.DisplayName(defaultCustomer),
		CustomerEmail: o.CustomerEmail,
		ProductID:     o.ProductID,
		ProductName:   o.ProductName,
		Amount:        o.Amount,
	}
}

type CourseEnrollment struct {
	CustomerName  string
	CustomerEmail string
	CourseID      string
	CourseName    string
}

type Dispatcher struct {
	mailer  Mailer
	content ContentSource
	logger  *slog.Logger

	senderEmail string
	siteURL     string

	wg sync.WaitGroup
}

func NewDispatcher(mailer Mailer, content ContentSource, logger *slog.Logger, senderEmail, siteURL string) *Dispatcher {
	return &Dispatcher{
		mailer:      mailer,
		content:     content,
		logger:      logger,
		senderEmail: senderEmail,
		siteURL:     siteURL,
	}
}

// 応答を待たせない。失敗はログだけで、呼び出し元の結果には影響しない
func (d *Dispatcher) DispatchPaymentConfirmation(ctx context.Context, order PaidOrder) {
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("fulfillment panic", "order_code", order.OrderCode, "panic", r)
			}
		}()

		sctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()

		if err := d.SendPaymentConfirmation(sctx, order); err != nil {
			d.logger.Error("payment confirmation email failed",
				"order_code", order.OrderCode, "email", order.CustomerEmail, "err", err)
		}
	}()
}

// 送信中のメールを待つ（シャットダウン・テスト用）
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) SendPaymentConfirmation(ctx context.Context, order PaidOrder) error {
	site := d.site(ctx)
	secret := d.productSecret(ctx, order.ProductID)

	html, err := render(paymentTmpl, emailView{
		Title:        "Xác nhận thanh toán",
		SiteName:     site.name,
		BannerURL:    d.bannerURL(),
		CustomerName: order.CustomerName,
		OrderCode:    order.OrderCode,
		ItemName:     order.ProductName,
		Amount:       FormatVND(order.Amount),
		Accent:       "#DC2626",
		AccessURL:    secret.ProductURL,
		AccessLabel:  "TRUY CẬP SẢN PHẨM →",
		UsageGuide:   secret.UsageGuide,
	})
	if err != nil {
		return err
	}

	return d.send(ctx, site, order.CustomerEmail, fmt.Sprintf("✅ Xác nhận thanh toán - %s", order.ProductName), html)
}

func (d *Dispatcher) SendFreeProduct(ctx context.Context, customerName, customerEmail, productID, productName string) error {
	site := d.site(ctx)
	secret := d.productSecret(ctx, productID)

	html, err := render(freeProductTmpl, emailView{
		Title:        productName,
		SiteName:     site.name,
		BannerURL:    d.bannerURL(),
		CustomerName: customerName,
		ItemName:     productName,
		Accent:       "#DC2626",
		AccessURL:    secret.ProductURL,
		AccessLabel:  "TRUY CẬP NGAY →",
		UsageGuide:   secret.UsageGuide,
	})
	if err != nil {
		return err
	}

	return d.send(ctx, site, customerEmail, fmt.Sprintf("🎉 Bạn đã nhận được %s", productName), html)
}

func (d *Dispatcher) SendCourseEnrollment(ctx context.Context, in CourseEnrollment, isPaid bool) error {
	site := d.site(ctx)

	var secret model.CourseSecret
	if s, found, err := d.content.CourseSecret(ctx, in.CourseID); err != nil {
		d.logger.Error("fetch course data failed", "course_id", in.CourseID, "err", err)
	} else if found {
		secret = s
	}

	v := emailView{
		Title:        in.CourseName,
		SiteName:     site.name,
		BannerURL:    d.bannerURL(),
		CustomerName: in.CustomerName,
		ItemName:     in.CourseName,
		Heading:      "Đăng ký thành công!",
		StatusText:   "MIỄN PHÍ",
		Accent:       "#22C55E",
		AccessURL:    secret.CourseURL,
		AccessLabel:  "BẮT ĐẦU HỌC NGAY →",
	}
	subject := fmt.Sprintf("🎓 Chào mừng đến với khóa học %s", in.CourseName)
	if isPaid {
		v.Heading = "Thanh toán thành công!"
		v.StatusText = "ĐÃ THANH TOÁN"
		v.Accent = "#DC2626"
		subject = fmt.Sprintf("✅ Xác nhận thanh toán khóa học - %s", in.CourseName)
	}

	html, err := render(courseTmpl, v)
	if err != nil {
		return err
	}
	return d.send(ctx, site, in.CustomerEmail, subject, html)
}

func (d *Dispatcher) send(ctx context.Context, site siteInfo, to, subject, html string) error {
	err := d.mailer.Send(ctx, email.Message{
		From:    fmt.Sprintf("%s <%s>", site.name, site.sender),
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}
	d.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

type siteInfo struct {
	name   string
	sender string
}

// 送信元はSENDER_EMAIL > サイト設定 > Resendのデフォルト
func (d *Dispatcher) site(ctx context.Context) siteInfo {
	info := siteInfo{name: defaultSiteName, sender: d.senderEmail}

	s, found, err := d.content.SiteSettings(ctx)
	if err != nil {
		d.logger.Warn("fetch site settings failed", "err", err)
	}
	if err == nil && found {
		if s.SiteName != "" {
			info.name = s.SiteName
		}
		if info.sender == "" {
			info.sender = s.Email
		}
	}
	if info.sender == "" {
		info.sender = defaultSender
	}
	return info
}

func (d *Dispatcher) productSecret(ctx context.Context, productID string) model.ProductSecret {
	s, found, err := d.content.ProductSecret(ctx, productID)
	if err != nil {
		d.logger.Error("fetch product data failed", "product_id", productID, "err", err)
		return model.ProductSecret{}
	}
	if !found {
		return model.ProductSecret{}
	}
	return s
}

func (d *Dispatcher) bannerURL() string {
	return d.siteURL + "/brand/banner-email.png"
}
