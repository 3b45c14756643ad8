package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderRepository interface {
	// Linesは保存しない（OrderLineRepositoryで作る）
	Create(ctx context.Context, order model.Order) (int64, error)
	// Lines.Productまでpreload
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 新しい順
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
}
