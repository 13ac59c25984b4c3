package handler

import (
	"net/http"

	"iaction/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 公開APIの共通レスポンス
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Warning   string `json:"warning,omitempty"`
	OrderCode string `json:"orderCode,omitempty"`
}

func writeOK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, Response{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, Response{Error: "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, Response{Error: msg})
}
