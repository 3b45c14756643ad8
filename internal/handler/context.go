package handler

import (
	"strconv"

	"app/internal/domain/model"
	"app/internal/middleware"

	"github.com/labstack/echo/v4"
)

// middlewareが入れた値からリクエストの主体を作る
func identityFromContext(c echo.Context) model.Identity {
	id := model.Identity{}
	if sid, ok := c.Get(middleware.CtxSessionIDKey).(string); ok {
		id.SessionID = sid
	}
	if uid, ok := c.Get(middleware.CtxUserIDKey).(int64); ok && uid > 0 {
		id.UserID = uid
	}
	if role, ok := c.Get(middleware.CtxUserRoleKey).(string); ok {
		id.Role = model.Role(role)
	}
	return id
}

func parseID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
