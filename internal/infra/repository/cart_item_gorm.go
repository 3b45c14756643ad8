package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

// ユーザーのカート明細を追加順に取得
func (r *CartItemGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

// 同一商品は数量加算
// (user_id, product_id) の一意indexで ON CONFLICT する。
func (r *CartItemGormRepository) Increment(ctx context.Context, userID int64, productID int64, delta int64) error {
	if delta <= 0 || delta > model.MaxLineQuantity {
		return errors.New("invalid quantity")
	}

	now := time.Now()
	item := model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  delta,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr(
					"CASE WHEN cart_items.quantity + excluded.quantity > ? THEN ? ELSE cart_items.quantity + excluded.quantity END",
					model.MaxLineQuantity, model.MaxLineQuantity,
				),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(&item).Error

	return translate(err)
}

// 数量を上書き（無ければ作成）
func (r *CartItemGormRepository) SetQuantity(ctx context.Context, userID int64, productID int64, qty int64) error {
	if qty < 1 || qty > model.MaxLineQuantity {
		return errors.New("invalid quantity")
	}

	now := time.Now()
	item := model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(&item).Error

	return translate(err)
}

// 明細を削除。無ければ何もしない。
func (r *CartItemGormRepository) Delete(ctx context.Context, userID int64, productID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartItem{}).Error
}

// ユーザーの明細を全削除（空でもOK）
func (r *CartItemGormRepository) DeleteAllByUserID(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{}).Error
}
