package logger

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HTTPリクエストのアクセスログ
// echoのRequestIDミドルウェアの後に置く。
func EchoMiddleware(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = req.Header.Get(echo.HeaderXRequestID)
			}
			if id != "" {
				c.SetRequest(req.WithContext(WithRequestID(req.Context(), id)))
			}

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			fields := []zap.Field{
				zap.String("request_id", id),
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
			}

			switch {
			case status >= 500:
				log.Error("HTTP Request", fields...)
			case status >= 400:
				log.Warn("HTTP Request", fields...)
			default:
				log.Info("HTTP Request", fields...)
			}
			return nil
		}
	}
}
