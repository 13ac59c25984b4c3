package server

import (
	"net/http"

	"iaction/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type Handlers struct {
	Payment *handler.PaymentHandler
	Webhook *handler.WebhookHandler
	Enroll  *handler.EnrollHandler
	Content *handler.ContentHandler
	Admin   *handler.AdminOrderHandler
}

// 公開POSTのIPごとの上限（秒あたり、バースト）
type RateLimit struct {
	PerSecond float64
	Burst     int
}

func RegisterRoutes(e *echo.Echo, h Handlers, rl RateLimit, adminJWTSecret string) {
	limiter := publicLimiter(rl)

	api := e.Group("/api")

	payment := api.Group("/payment")
	h.Payment.RegisterRoutes(payment, limiter)
	//webhookはゲートウェイから来るので制限しない
	h.Webhook.RegisterRoutes(payment)

	h.Enroll.RegisterRoutes(api, limiter)
	h.Content.RegisterRoutes(api.Group("/content"))

	h.Admin.RegisterRoutes(e, adminJWTSecret)

	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
}

func publicLimiter(rl RateLimit) echo.MiddlewareFunc {
	if rl.PerSecond <= 0 {
		rl.PerSecond = 1
	}
	if rl.Burst <= 0 {
		rl.Burst = 5
	}
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(rl.PerSecond),
			Burst: rl.Burst,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, handler.Response{Error: "too many requests"})
		},
	})
}
