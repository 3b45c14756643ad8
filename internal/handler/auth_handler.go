package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authUC *usecase.AuthUsecase
	cartUC *usecase.CartUsecase // ログイン時のカート引き継ぎ
	log    *zap.Logger
}

// DIコンストラクタ
func NewAuthHandler(authUC *usecase.AuthUsecase, cartUC *usecase.CartUsecase, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authUC: authUC, cartUC: cartUC, log: log.Named("auth")}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)

	e.GET("/me", h.me)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
	}

	out, err := h.authUC.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// ログインに成功したらゲストカートを会員カートへ移す
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
	}

	ctx := c.Request().Context()
	out, err := h.authUC.Login(ctx, req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	// 引き継ぎに失敗してもログインは成功扱い
	id := identityFromContext(c)
	if err := h.cartUC.MergeGuest(ctx, id.SessionID, out.User.ID); err != nil {
		h.log.Warn("merge guest cart failed", zap.Int64("user_id", out.User.ID), zap.Error(err))
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) me(c echo.Context) error {
	out, err := h.authUC.Me(c.Request().Context(), identityFromContext(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
