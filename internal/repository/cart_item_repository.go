package repository

import (
	"context"

	"app/internal/domain/model"
)

// 会員カート明細。(user, product) ごとに最大1行。
type CartItemRepository interface {
	// Productもpreloadして返す
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	// 無ければdeltaで作成、あれば加算
	Increment(ctx context.Context, userID int64, productID int64, delta int64) error
	// 無ければ作成、あれば上書き
	SetQuantity(ctx context.Context, userID int64, productID int64, qty int64) error
	// 無くてもエラーにしない
	Delete(ctx context.Context, userID int64, productID int64) error
	DeleteAllByUserID(ctx context.Context, userID int64) error
}
