package handler

import (
	"io"
	"net/http"

	"iaction/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ゲートウェイの通知は小さい
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	uc *usecase.WebhookUsecase
}

func NewWebhookHandler(uc *usecase.WebhookUsecase) *WebhookHandler {
	return &WebhookHandler{uc: uc}
}

func (h *WebhookHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/webhook", h.receive)
	//ゲートウェイの疎通確認
	g.HEAD("/webhook", h.ping)
}

// 業務上の不一致も200で返す。401は認証失敗だけ
func (h *WebhookHandler) receive(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, Response{Message: "Internal error"})
	}

	res, err := h.uc.Handle(c.Request().Context(), usecase.WebhookRequest{
		AuthHeader: c.Request().Header.Get(echo.HeaderAuthorization),
		RemoteIP:   c.RealIP(),
		Body:       body,
	})
	if err != nil {
		if he, ok := usecase.AsHTTPError(err); ok {
			return c.JSON(he.Status, Response{Message: he.Message})
		}
		return c.JSON(http.StatusInternalServerError, Response{Message: "Internal error"})
	}

	return c.JSON(http.StatusOK, Response{
		Success:   true,
		Message:   res.Message,
		OrderCode: completedCode(res),
	})
}

func completedCode(res usecase.WebhookResult) string {
	if res.Outcome != usecase.OutcomeCompleted {
		return ""
	}
	return res.OrderCode
}

func (h *WebhookHandler) ping(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
