package handler

import (
	"net/http"
	"strconv"

	"iaction/internal/domain/model"
	"iaction/internal/middleware"
	"iaction/internal/repository"
	"iaction/internal/usecase"

	"github.com/labstack/echo/v4"
)

// CMSキャッシュの破棄
type CacheInvalidator interface {
	Invalidate()
}

type AdminOrderHandler struct {
	uc    *usecase.AdminOrderUsecase
	cache CacheInvalidator
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase, cache CacheInvalidator) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, cache: cache}
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(jwtSecret))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/orders", h.list)
	admin.PUT("/orders/:id/cancel", h.cancel)
	admin.POST("/orders/reconcile", h.reconcile)
	admin.GET("/audit-logs", h.auditLogs)
	admin.POST("/content/invalidate", h.invalidateContent)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return badRequest(c, "invalid page")
	}
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return badRequest(c, "invalid limit")
	}

	out, err := h.uc.List(c.Request().Context(), repository.OrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, out)
}

func (h *AdminOrderHandler) cancel(c echo.Context) error {
	//操作した管理者（監査ログ用）
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, Response{Error: "unauthorized"})
	}

	if err := h.uc.Cancel(c.Request().Context(), actor, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "cancelled"})
}

func (h *AdminOrderHandler) reconcile(c echo.Context) error {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, Response{Error: "unauthorized"})
	}

	out, err := h.uc.Reconcile(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, out)
}

func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return badRequest(c, "invalid limit")
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return badRequest(c, "invalid offset")
	}

	f := repository.AuditLogFilter{Limit: limit, Offset: offset}
	if v := c.QueryParam("resource_id"); v != "" {
		f.ResourceID = &v
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("actor"); v != "" {
		f.Actor = &v
	}

	out, err := h.uc.AuditLogs(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, out)
}

func (h *AdminOrderHandler) invalidateContent(c echo.Context) error {
	h.cache.Invalidate()
	return c.JSON(http.StatusOK, Response{Success: true, Message: "content cache cleared"})
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
