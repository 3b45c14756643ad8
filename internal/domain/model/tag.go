package model

// 商品タグ（カテゴリ的に使う）
type Tag struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
}
