package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p model.Product, tagNames []string) (model.Product, error) {
	args := m.Called(ctx, p, tagNames)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]model.Tag)
	return tags, args.Error(1)
}

func (m *MockProductRepository) CreateTag(ctx context.Context, name string) (model.Tag, error) {
	args := m.Called(ctx, name)
	t, _ := args.Get(0).(model.Tag)
	return t, args.Error(1)
}

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditLogRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

func newProductUC(pr *MockProductRepository, ar *MockAuditLogRepository) *usecase.ProductUsecase {
	return usecase.NewProductUsecase(pr, ar, fixedClock{t: authNow})
}

// 監査ログの中身（作成時刻は固定クロック）
func auditOf(action model.AuditAction, resource model.AuditResourceType, id int64) interface{} {
	return mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 && l.Action == action && l.ResourceType == resource &&
			l.ResourceID == id && l.SnapshotJSON != "" && l.CreatedAt.Equal(authNow)
	})
}

func TestProductUsecase_ListProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("trims filter", func(t *testing.T) {
		pr := new(MockProductRepository)
		pr.On("List", mock.Anything, repo.ProductListQuery{Tag: "drink", Q: "tea"}).
			Return([]model.Product{{ID: 1, Name: "Green Tea"}}, nil)

		out, err := newProductUC(pr, new(MockAuditLogRepository)).ListProducts(ctx, usecase.ListProductsInput{Tag: " drink ", Q: " tea"})
		require.NoError(t, err)
		assert.Equal(t, 1, out.Total)
		pr.AssertExpectations(t)
	})

	t.Run("q too long", func(t *testing.T) {
		pr := new(MockProductRepository)
		_, err := newProductUC(pr, new(MockAuditLogRepository)).ListProducts(ctx, usecase.ListProductsInput{Q: strings.Repeat("a", 101)})
		requireStatus(t, err, http.StatusBadRequest)
		pr.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("db error", func(t *testing.T) {
		pr := new(MockProductRepository)
		pr.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
		_, err := newProductUC(pr, new(MockAuditLogRepository)).ListProducts(ctx, usecase.ListProductsInput{})
		requireStatus(t, err, http.StatusInternalServerError)
	})
}

func TestProductUsecase_GetProduct(t *testing.T) {
	ctx := context.Background()
	pr := new(MockProductRepository)
	pr.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "Mug"}, nil)
	pr.On("FindByID", mock.Anything, int64(2)).Return(model.Product{}, repo.ErrNotFound)
	uc := newProductUC(pr, new(MockAuditLogRepository))

	p, err := uc.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)

	_, err = uc.GetProduct(ctx, 2)
	assert.ErrorIs(t, err, usecase.ErrProductNotFound)

	_, err = uc.GetProduct(ctx, 0)
	assert.ErrorIs(t, err, usecase.ErrProductNotFound)
}

func TestProductUsecase_CreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("rounds price", func(t *testing.T) {
		pr := new(MockProductRepository)
		ar := new(MockAuditLogRepository)
		pr.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
			return p.Name == "Mug" && p.Price.Equal(decimal.RequireFromString("3.46"))
		}), []string{"kitchen"}).Return(model.Product{ID: 9, Name: "Mug"}, nil)
		ar.On("Create", mock.Anything, auditOf(model.AuditActionCreateProduct, model.AuditResourceProduct, 9)).Return(nil)

		out, err := newProductUC(pr, ar).CreateProduct(ctx, 1, usecase.CreateProductInput{
			Name:  " Mug ",
			Price: decimal.RequireFromString("3.456"),
			Tags:  []string{"kitchen"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(9), out.ID)
		pr.AssertExpectations(t)
		ar.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		pr := new(MockProductRepository)
		uc := newProductUC(pr, new(MockAuditLogRepository))

		_, err := uc.CreateProduct(ctx, 1, usecase.CreateProductInput{Name: ""})
		requireStatus(t, err, http.StatusBadRequest)

		_, err = uc.CreateProduct(ctx, 1, usecase.CreateProductInput{Name: "x", Price: decimal.NewFromInt(-1)})
		requireStatus(t, err, http.StatusBadRequest)

		_, err = uc.CreateProduct(ctx, 1, usecase.CreateProductInput{Name: "x", Stock: -1})
		requireStatus(t, err, http.StatusBadRequest)

		pr.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProductUsecase_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	pr := new(MockProductRepository)
	ar := new(MockAuditLogRepository)
	for _, id := range []int64{1, 3, 4} {
		pr.On("FindByID", mock.Anything, id).Return(model.Product{ID: id, Name: "x"}, nil)
	}
	pr.On("FindByID", mock.Anything, int64(2)).Return(model.Product{}, repo.ErrNotFound)
	pr.On("Delete", mock.Anything, int64(1)).Return(nil)
	pr.On("Delete", mock.Anything, int64(3)).Return(repo.ErrReferenced)
	pr.On("Delete", mock.Anything, int64(4)).Return(errors.New("down"))
	ar.On("Create", mock.Anything, auditOf(model.AuditActionDeleteProduct, model.AuditResourceProduct, 1)).Return(nil).Once()
	uc := newProductUC(pr, ar)

	assert.NoError(t, uc.DeleteProduct(ctx, 1, 1))
	assert.ErrorIs(t, uc.DeleteProduct(ctx, 1, 2), usecase.ErrProductNotFound)
	assert.ErrorIs(t, uc.DeleteProduct(ctx, 1, 3), usecase.ErrConflict)
	requireStatus(t, uc.DeleteProduct(ctx, 1, 4), http.StatusInternalServerError)

	// 消せなかったものは監査ログに残さない
	ar.AssertExpectations(t)
	pr.AssertNotCalled(t, "Delete", mock.Anything, int64(2))
}

func TestProductUsecase_CreateTag(t *testing.T) {
	ctx := context.Background()
	pr := new(MockProductRepository)
	ar := new(MockAuditLogRepository)
	pr.On("CreateTag", mock.Anything, "sale").Return(model.Tag{ID: 5, Name: "sale"}, nil)
	pr.On("CreateTag", mock.Anything, "drink").Return(model.Tag{}, repo.ErrDuplicate)
	ar.On("Create", mock.Anything, auditOf(model.AuditActionCreateTag, model.AuditResourceTag, 5)).Return(nil).Once()
	uc := newProductUC(pr, ar)

	tag, err := uc.CreateTag(ctx, 1, " sale ")
	require.NoError(t, err)
	assert.Equal(t, "sale", tag.Name)

	_, err = uc.CreateTag(ctx, 1, "drink")
	assert.ErrorIs(t, err, usecase.ErrConflict)

	_, err = uc.CreateTag(ctx, 1, "")
	requireStatus(t, err, http.StatusBadRequest)

	ar.AssertExpectations(t)
}

func TestProductUsecase_CreateTag_AuditFailure(t *testing.T) {
	pr := new(MockProductRepository)
	ar := new(MockAuditLogRepository)
	pr.On("CreateTag", mock.Anything, "sale").Return(model.Tag{ID: 5, Name: "sale"}, nil)
	ar.On("Create", mock.Anything, mock.Anything).Return(errors.New("down"))

	_, err := newProductUC(pr, ar).CreateTag(context.Background(), 1, "sale")
	requireStatus(t, err, http.StatusInternalServerError)
}

func TestProductUsecase_ListAuditLogs(t *testing.T) {
	ar := new(MockAuditLogRepository)
	ar.On("List", mock.Anything, mock.MatchedBy(func(f repo.AuditLogFilter) bool {
		return f.Action != nil && *f.Action == model.AuditActionDeleteProduct &&
			f.ResourceType != nil && *f.ResourceType == model.AuditResourceProduct && f.Limit == 10
	})).Return([]model.AuditLog{{ID: 1}}, nil)

	logs, err := newProductUC(new(MockProductRepository), ar).ListAuditLogs(context.Background(), usecase.ListAuditLogsInput{
		Action:       "delete_product",
		ResourceType: "Product",
		Limit:        10,
	})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
