package handler

import (
	"iaction/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	uc *usecase.PaymentSessionUsecase
}

func NewPaymentHandler(uc *usecase.PaymentSessionUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// amountは数値でも文字列でも受け付ける
type PaymentCreateRequest struct {
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	Amount        decimal.Decimal `json:"amount"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
}

func (h *PaymentHandler) RegisterRoutes(g *echo.Group, limiter echo.MiddlewareFunc) {
	g.POST("/create", h.create, limiter)
	g.GET("/status/:orderId", h.status)
}

func (h *PaymentHandler) create(c echo.Context) error {
	var req PaymentCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.CreateSession(c.Request().Context(), usecase.CreateSessionInput{
		ProductID:     req.ProductID,
		ProductName:   req.ProductName,
		Amount:        req.Amount,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, out)
}

func (h *PaymentHandler) status(c echo.Context) error {
	out, err := h.uc.GetStatus(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, out)
}
