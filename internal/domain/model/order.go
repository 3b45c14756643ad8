package model

import "time"

type OrderKind string

const (
	OrderKindCart   OrderKind = "cart"
	OrderKindBuyNow OrderKind = "buy-now"
)

// 注文は作成後に更新しない（履歴として追記のみ）
type Order struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64       `gorm:"not null;index" json:"user_id"`
	Kind      OrderKind   `gorm:"type:varchar(20);not null" json:"kind"`
	CreatedAt time.Time   `gorm:"not null;index" json:"created_at"`
	Lines     []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines"`
}
