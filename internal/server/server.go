package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"iaction/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// 停止時に送信中のメールを待つ上限
const shutdownTimeout = 10 * time.Second

// 送信中のバックグラウンド処理
type Drainer interface {
	Wait(ctx context.Context) error
}

func New(logger *slog.Logger, feURL string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: allowOrigins(feURL),
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	return e
}

func allowOrigins(feURL string) []string {
	var out []string
	for _, o := range strings.Split(feURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// ctxが終わったら新規受付を止め、送信中のメールを待ってから戻る
func Run(ctx context.Context, e *echo.Echo, addr string, drain Drainer, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(sctx); err != nil {
		logger.Error("server shutdown failed", "err", err)
	}
	if err := drain.Wait(sctx); err != nil {
		logger.Warn("pending emails not finished before shutdown", "err", err)
	}
	return nil
}

func Addr(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
