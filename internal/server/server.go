package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/handler"
	"app/internal/logger"
	"app/internal/metrics"
	"app/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// 起動に必要な部品（main.goで組み立てる）
type Deps struct {
	Log     *zap.Logger
	Metrics *metrics.Metrics
	Tokens  middleware.TokenParser
	Session middleware.SessionCookieConfig

	Product      *handler.ProductHandler
	Cart         *handler.CartHandler
	Checkout     *handler.CheckoutHandler
	Order        *handler.OrderHandler
	Auth         *handler.AuthHandler
	AdminProduct *handler.AdminProductHandler

	MetricsHandler http.Handler
	// DB/Redisの疎通確認
	Health func(ctx context.Context) error
}

// New はミドルウェアとルートを登録したechoを返す。
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(logger.EchoMiddleware(d.Log))
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(middleware.SessionCookie(d.Session))
	e.Use(middleware.OptionalAuthJWT(d.Tokens))

	RegisterRoutes(e, d)
	return e
}

// Start はctxが終わるまで待って graceful shutdown する。
func Start(ctx context.Context, e *echo.Echo, addr string, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", addr))
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("server shutting down")
	return e.Shutdown(shutdownCtx)
}
