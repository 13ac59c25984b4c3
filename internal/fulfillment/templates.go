package fulfillment

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
)

const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
</head>
<body style="margin:0;padding:0;background-color:#0A0A0F;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;">
<table width="100%" cellpadding="0" cellspacing="0" style="background-color:#0A0A0F;padding:40px 20px;">
<tr><td align="center">
<table width="600" cellpadding="0" cellspacing="0" style="background:#111118;border-radius:16px;overflow:hidden;">
<tr><td style="padding:0;"><img src="{{.BannerURL}}" alt="{{.SiteName}}" style="max-width:100%;height:auto;display:block;" /></td></tr>
<tr><td style="padding:40px;">
<p style="margin:0 0 8px;color:#71717A;font-size:14px;text-transform:uppercase;letter-spacing:1px;">Xin chào {{.CustomerName}}</p>
{{template "body" .}}
{{if .AccessURL}}<table width="100%" cellpadding="0" cellspacing="0" style="margin:24px 0;"><tr><td align="center">
<a href="{{.AccessURL}}" style="display:inline-block;background:{{.Accent}};color:#ffffff;text-decoration:none;padding:14px 32px;border-radius:8px;font-size:14px;font-weight:600;">{{.AccessLabel}}</a>
</td></tr></table>{{end}}
{{if .UsageGuide}}<div style="background:#18181F;border-radius:12px;padding:20px;margin:0 0 24px;">
<p style="margin:0 0 8px;color:#FAFAFA;font-size:14px;font-weight:600;">Hướng dẫn sử dụng</p>
<p style="margin:0;color:#A1A1AA;font-size:14px;line-height:1.6;white-space:pre-wrap;">{{.UsageGuide}}</p>
</div>{{end}}
<p style="margin:24px 0 0;color:#71717A;font-size:13px;">Trân trọng,<br/>{{.SiteName}}</p>
</td></tr>
</table>
</td></tr>
</table>
</body>
</html>{{end}}`

const paymentBody = `{{define "body"}}<h1 style="margin:0 0 24px;color:#FAFAFA;font-size:28px;font-weight:700;">Thanh toán<br/><span style="color:#22C55E;">thành công!</span></h1>
<table width="100%" cellpadding="0" cellspacing="0" style="background:#18181F;border-radius:12px;padding:20px;margin:0 0 24px;">
<tr><td style="color:#71717A;font-size:13px;">Mã đơn hàng</td><td align="right" style="color:#FAFAFA;font-size:14px;font-weight:600;">{{.OrderCode}}</td></tr>
<tr><td style="color:#71717A;font-size:13px;">Sản phẩm</td><td align="right" style="color:#FAFAFA;font-size:14px;">{{.ItemName}}</td></tr>
<tr><td style="color:#71717A;font-size:13px;">Số tiền</td><td align="right" style="color:#22C55E;font-size:16px;font-weight:700;">{{.Amount}}</td></tr>
</table>{{end}}`

const freeProductBody = `{{define "body"}}<h1 style="margin:0 0 24px;color:#FAFAFA;font-size:28px;font-weight:700;">Bạn đã nhận được<br/><span style="color:#22C55E;">{{.ItemName}}</span></h1>{{end}}`

const courseBody = `{{define "body"}}<h1 style="margin:0 0 24px;color:#FAFAFA;font-size:28px;font-weight:700;">{{.Heading}}</h1>
<p style="margin:0 0 16px;color:#A1A1AA;font-size:14px;"><span style="color:{{.Accent}};font-weight:700;">{{.StatusText}}</span> · {{.ItemName}}</p>{{end}}`

var (
	paymentTmpl     = template.Must(template.Must(template.New("payment").Parse(layoutHTML)).Parse(paymentBody))
	freeProductTmpl = template.Must(template.Must(template.New("free").Parse(layoutHTML)).Parse(freeProductBody))
	courseTmpl      = template.Must(template.Must(template.New("course").Parse(layoutHTML)).Parse(courseBody))
)

type emailView struct {
	Title        string
	SiteName     string
	BannerURL    string
	CustomerName string
	OrderCode    string
	ItemName     string
	Amount       string
	Heading      string
	StatusText   string
	Accent       string
	AccessURL    string
	AccessLabel  string
	UsageGuide   string
}

func render(t *template.Template, v emailView) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// vi-VN表記（299.000 ₫）
func FormatVND(d decimal.Decimal) string {
	s := d.Round(0).Abs().StringFixed(0)

	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}

	out := b.String() + " ₫"
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}
