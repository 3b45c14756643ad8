package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	// 一意制約違反
	ErrDuplicate = errors.New("duplicate")
	// 他の行から参照されていて消せない
	ErrReferenced = errors.New("referenced")
)

// 一覧検索
type ProductListQuery struct {
	Tag string
	Q   string
}

// 商品とタグの保存・取得だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// 見つかった分だけ返す（無いIDはエラーにしない）
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	Create(ctx context.Context, p model.Product, tagNames []string) (model.Product, error)
	Delete(ctx context.Context, id int64) error

	ListTags(ctx context.Context) ([]model.Tag, error)
	CreateTag(ctx context.Context, name string) (model.Tag, error)
}
