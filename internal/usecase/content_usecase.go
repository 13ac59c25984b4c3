package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"iaction/internal/domain/model"
)

// 公開コンテンツだけ。secret系はここから読めない
type ContentReader interface {
	Products(ctx context.Context) ([]model.Product, error)
	ProductBySlug(ctx context.Context, slug string) (model.Product, bool, error)
	Courses(ctx context.Context) ([]model.Course, error)
	Posts(ctx context.Context) ([]model.BlogPost, error)
	PostBySlug(ctx context.Context, slug string) (model.BlogPost, bool, error)
	SiteSettings(ctx context.Context) (model.SiteSettings, bool, error)
}

// CMSが落ちていてもページは出す。一覧は空、単体は404
type ContentUsecase struct {
	cms    ContentReader
	logger *slog.Logger
}

func NewContentUsecase(cms ContentReader, logger *slog.Logger) *ContentUsecase {
	return &ContentUsecase{cms: cms, logger: logger}
}

func (u *ContentUsecase) Products(ctx context.Context) []model.Product {
	items, err := u.cms.Products(ctx)
	if err != nil {
		u.logger.Error("fetch products failed", "err", err)
		return []model.Product{}
	}
	if items == nil {
		return []model.Product{}
	}
	return items
}

func (u *ContentUsecase) Product(ctx context.Context, slug string) (model.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	p, found, err := u.cms.ProductBySlug(ctx, slug)
	if err != nil {
		u.logger.Error("fetch product failed", "slug", slug, "err", err)
	}
	if err != nil || !found {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	return p, nil
}

func (u *ContentUsecase) Courses(ctx context.Context) []model.Course {
	items, err := u.cms.Courses(ctx)
	if err != nil {
		u.logger.Error("fetch courses failed", "err", err)
		return []model.Course{}
	}
	if items == nil {
		return []model.Course{}
	}
	return items
}

func (u *ContentUsecase) Posts(ctx context.Context) []model.BlogPost {
	items, err := u.cms.Posts(ctx)
	if err != nil {
		u.logger.Error("fetch posts failed", "err", err)
		return []model.BlogPost{}
	}
	if items == nil {
		return []model.BlogPost{}
	}
	return items
}

func (u *ContentUsecase) Post(ctx context.Context, slug string) (model.BlogPost, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return model.BlogPost{}, NewHTTPError(http.StatusNotFound, "post not found")
	}
	p, found, err := u.cms.PostBySlug(ctx, slug)
	if err != nil {
		u.logger.Error("fetch post failed", "slug", slug, "err", err)
	}
	if err != nil || !found {
		return model.BlogPost{}, NewHTTPError(http.StatusNotFound, "post not found")
	}
	return p, nil
}

func (u *ContentUsecase) Settings(ctx context.Context) (model.SiteSettings, error) {
	s, found, err := u.cms.SiteSettings(ctx)
	if err != nil {
		u.logger.Error("fetch site settings failed", "err", err)
	}
	if err != nil || !found {
		return model.SiteSettings{}, NewHTTPError(http.StatusNotFound, "settings not found")
	}
	return s, nil
}
