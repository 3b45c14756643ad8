package handler

import (
	"net/http"
	"strconv"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type SuccessResponse struct {
	Message string `json:"message"`
}

// 価格は数値/文字列どちらでも受ける（decimal）
type ProductCreateRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock" validate:"gte=0"`
	ImagePath   string          `json:"image_path" validate:"max=255"`
	Tags        []string        `json:"tags" validate:"dive,required,max=100"`
}

type TagCreateRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// /admin/products, /admin/tags, /admin/audit-logs をまとめる
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録（認証はOptionalAuthJWTが先に済ませている前提）
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo) {
	admin := e.Group("/admin")
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/tags", h.createTag)
	admin.POST("/products", h.createProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.GET("/audit-logs", h.listAuditLogs)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), identityFromContext(c).UserID, usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImagePath:   req.ImagePath,
		Tags:        req.Tags,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

// 注文から参照されている商品は409
func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), identityFromContext(c).UserID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminProductHandler) createTag(c echo.Context) error {
	var req TagCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
	}

	t, err := h.uc.CreateTag(c.Request().Context(), identityFromContext(c).UserID, req.Name)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, t)
}

// ?action=&resource_type=&limit=&offset=
func (h *AdminProductHandler) listAuditLogs(c echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		offset = o
	}

	logs, err := h.uc.ListAuditLogs(c.Request().Context(), usecase.ListAuditLogsInput{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
