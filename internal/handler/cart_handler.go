package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP（ゲストも会員も同じルート）
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type UpdateCartItemRequest struct {
	Quantity Quantity `json:"quantity"`
}

// /cart, /cart/items/{productId} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")

	g.GET("", h.getCart)
	g.POST("/items/:productId", h.addItem)
	g.PUT("/items/:productId", h.putItem)
	g.DELETE("/items/:productId", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	out, err := h.uc.GetCart(c.Request().Context(), identityFromContext(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// 1つ追加
func (h *CartHandler) addItem(c echo.Context) error {
	productID, err := parseID(c, "productId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.AddToCart(c.Request().Context(), identityFromContext(c), productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// 数量の上書き（1未満は1）
func (h *CartHandler) putItem(c echo.Context) error {
	productID, err := parseID(c, "productId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.SetQuantity(c.Request().Context(), identityFromContext(c), productID, req.Quantity.Int64())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	productID, err := parseID(c, "productId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.RemoveFromCart(c.Request().Context(), identityFromContext(c), productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
