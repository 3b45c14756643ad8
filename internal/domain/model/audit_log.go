package model

import "time"

// 管理者の操作の種類
type AuditAction string

const (
	AuditActionCreateProduct AuditAction = "CREATE_PRODUCT"
	AuditActionDeleteProduct AuditAction = "DELETE_PRODUCT"
	AuditActionCreateTag     AuditAction = "CREATE_TAG"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceTag     AuditResourceType = "tag"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」を残す。追記のみ。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`

	//作成なら作成後、削除なら削除前の対象（JSON文字列）
	SnapshotJSON string `gorm:"type:text" json:"snapshot_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
