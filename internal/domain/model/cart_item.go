package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// 会員カートの明細
// (user_id, product_id) は一意。数量は常に1以上（0にせず削除する）。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_cart_items_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_cart_items_user_product" json:"product_id"`
	Product   Product   `gorm:"constraint:OnDelete:CASCADE" json:"product"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 1明細の数量の上限
const MaxLineQuantity int64 = math.MaxInt32

// 数量を [1, MaxLineQuantity] に収める
func ClampQuantity(q int64) int64 {
	switch {
	case q < 1:
		return 1
	case q > MaxLineQuantity:
		return MaxLineQuantity
	}
	return q
}

// ゲスト/会員どちらのカートからも作れる (商品, 数量) の組
type CartLine struct {
	Product  Product
	Quantity int64
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(l.Quantity))
}
