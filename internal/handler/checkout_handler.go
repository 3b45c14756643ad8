package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 今すぐ購入の選択と注文確定
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type BuyNowRequest struct {
	Quantity Quantity `json:"quantity"`
}

type CheckoutRequest struct {
	BuyNow bool `json:"buy_now"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/buy-now/:productId", h.buyNow)
	e.POST("/checkout", h.checkout)
}

func (h *CheckoutHandler) buyNow(c echo.Context) error {
	productID, err := parseID(c, "productId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req BuyNowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	sel, err := h.uc.SelectBuyNow(c.Request().Context(), identityFromContext(c), productID, req.Quantity.Int64())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, sel)
}

// 201で注文を返す
func (h *CheckoutHandler) checkout(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Checkout(c.Request().Context(), identityFromContext(c), usecase.CheckoutInput{BuyNow: req.BuyNow})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}
