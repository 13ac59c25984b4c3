package handler

import (
	"iaction/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/content の公開API（読み取りのみ）
type ContentHandler struct {
	uc *usecase.ContentUsecase
}

func NewContentHandler(uc *usecase.ContentUsecase) *ContentHandler {
	return &ContentHandler{uc: uc}
}

func (h *ContentHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products", h.products)
	g.GET("/products/:slug", h.product)
	g.GET("/courses", h.courses)
	g.GET("/posts", h.posts)
	g.GET("/posts/:slug", h.post)
	g.GET("/settings", h.settings)
}

func (h *ContentHandler) products(c echo.Context) error {
	return writeOK(c, h.uc.Products(c.Request().Context()))
}

func (h *ContentHandler) product(c echo.Context) error {
	p, err := h.uc.Product(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, p)
}

func (h *ContentHandler) courses(c echo.Context) error {
	return writeOK(c, h.uc.Courses(c.Request().Context()))
}

func (h *ContentHandler) posts(c echo.Context) error {
	return writeOK(c, h.uc.Posts(c.Request().Context()))
}

func (h *ContentHandler) post(c echo.Context) error {
	p, err := h.uc.Post(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, p)
}

func (h *ContentHandler) settings(c echo.Context) error {
	s, err := h.uc.Settings(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, s)
}
