package middleware

import (
	"net/http"
	"strings"

	"app/internal/infra/token"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey    = "user_id"    // int64
	CtxUserRoleKey  = "user_role"  // string
	CtxSessionIDKey = "session_id" // string
)

// アクセストークンの検証（infra/token.JWTIssuer）
type TokenParser interface {
	Parse(raw string) (token.Claims, error)
}

// bearerがあれば検証してuser_id/roleをcontextへ。
// ヘッダ無しはゲストとして通す。壊れたトークンは401。
func OptionalAuthJWT(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return next(c)
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, err := parser.Parse(rawToken)
			if err != nil || claims.UserID <= 0 || claims.Role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUserRoleKey, string(claims.Role))

			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
