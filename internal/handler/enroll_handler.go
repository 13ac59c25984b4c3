package handler

import (
	"net/http"

	"iaction/internal/usecase"

	"github.com/labstack/echo/v4"
)

type EnrollHandler struct {
	uc *usecase.EnrollmentUsecase
}

func NewEnrollHandler(uc *usecase.EnrollmentUsecase) *EnrollHandler {
	return &EnrollHandler{uc: uc}
}

type EnrollRequest struct {
	Type          string `json:"type"`
	ItemID        string `json:"itemId"`
	ItemName      string `json:"itemName"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	IsPaid        bool   `json:"isPaid"`
}

func (h *EnrollHandler) RegisterRoutes(g *echo.Group, limiter echo.MiddlewareFunc) {
	g.POST("/enroll", h.enroll, limiter)
}

func (h *EnrollHandler) enroll(c echo.Context) error {
	var req EnrollRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Enroll(c.Request().Context(), usecase.EnrollInput{
		Type:          req.Type,
		ItemID:        req.ItemID,
		ItemName:      req.ItemName,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		IsPaid:        req.IsPaid,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: out.Message,
		Warning: out.Warning,
	})
}
