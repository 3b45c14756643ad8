package model

// 注文明細
// 数量だけ保存し、価格は商品を参照して読む。
// 注文に使われた商品は削除できない（NO ACTIONで外部キー違反にする）。
type OrderLine struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64   `gorm:"not null;index" json:"order_id"`
	ProductID int64   `gorm:"not null;index" json:"product_id"`
	Product   Product `gorm:"constraint:OnDelete:NO ACTION" json:"product"`
	Quantity  int64   `gorm:"not null" json:"quantity"`
}
