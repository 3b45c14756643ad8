package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const SessionCookieName = "sid"

type SessionCookieConfig struct {
	TTL    time.Duration
	Secure bool
}

// 全リクエストにセッションIDを持たせる。
// cookieが無い/壊れていれば新しく発行する。
func SessionCookie(cfg SessionCookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if ck, err := c.Cookie(SessionCookieName); err == nil {
				if _, err := uuid.Parse(ck.Value); err == nil {
					sid = ck.Value
				}
			}

			if sid == "" {
				sid = uuid.NewString()
			}

			//毎回expiresを延ばす（storeのTTLと揃える）
			c.SetCookie(&http.Cookie{
				Name:     SessionCookieName,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			c.Set(CtxSessionIDKey, sid)
			return next(c)
		}
	}
}
