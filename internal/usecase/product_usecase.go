package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	auditRepo   repo.AuditLogRepository
	clock       Clock
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, auditRepo repo.AuditLogRepository, clock Clock) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo, auditRepo: auditRepo, clock: clock}
}

// GET /productsの入力
type ListProductsInput struct {
	Tag string
	Q   string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int             `json:"total"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Tag: strings.TrimSpace(in.Tag),
		Q:   strings.TrimSpace(in.Q),
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{Items: items, Total: len(items)}, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, ErrProductNotFound
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, ErrProductNotFound
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

func (u *ProductUsecase) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags, err := u.productRepo.ListTags(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return tags, nil
}

// 管理者の商品作成
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	ImagePath   string
	Tags        []string
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, adminUserID int64, in CreateProductInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 200 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if in.Price.IsNegative() {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		Name:        name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Stock:       in.Stock,
		ImagePath:   in.ImagePath,
	}, in.Tags)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.audit(ctx, adminUserID, model.AuditActionCreateProduct, model.AuditResourceProduct, p.ID, p); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 削除前の商品を監査ログに残す
func (u *ProductUsecase) DeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	before, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	err = u.productRepo.Delete(ctx, productID)
	switch {
	case err == nil:
		return u.audit(ctx, adminUserID, model.AuditActionDeleteProduct, model.AuditResourceProduct, productID, before)
	case errors.Is(err, repo.ErrNotFound):
		return ErrProductNotFound
	case errors.Is(err, repo.ErrReferenced):
		//注文履歴から参照されている
		return ErrConflict
	default:
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
}

func (u *ProductUsecase) CreateTag(ctx context.Context, adminUserID int64, name string) (model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return model.Tag{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}

	t, err := u.productRepo.CreateTag(ctx, name)
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Tag{}, ErrConflict
	}
	if err != nil {
		return model.Tag{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.audit(ctx, adminUserID, model.AuditActionCreateTag, model.AuditResourceTag, t.ID, t); err != nil {
		return model.Tag{}, err
	}
	return t, nil
}

// 監査ログ一覧（新しい順）
type ListAuditLogsInput struct {
	Action       string
	ResourceType string
	Limit        int
	Offset       int
}

func (u *ProductUsecase) ListAuditLogs(ctx context.Context, in ListAuditLogsInput) ([]model.AuditLog, error) {
	f := repo.AuditLogFilter{Limit: in.Limit, Offset: in.Offset}
	if a := strings.TrimSpace(in.Action); a != "" {
		action := model.AuditAction(strings.ToUpper(a))
		f.Action = &action
	}
	if rt := strings.TrimSpace(in.ResourceType); rt != "" {
		resource := model.AuditResourceType(strings.ToLower(rt))
		f.ResourceType = &resource
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}

// 「誰が」「何を」「どの対象に」を残す
func (u *ProductUsecase) audit(ctx context.Context, actor int64, action model.AuditAction, resource model.AuditResourceType, resourceID int64, snapshot interface{}) error {
	b, err := json.Marshal(snapshot)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actor,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		SnapshotJSON: string(b),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
