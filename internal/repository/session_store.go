package repository

import (
	"context"

	"app/internal/domain/model"
)

// セッション単位の一時データ（ゲストカートと今すぐ購入）
// ゲストカートは 商品ID(文字列) -> 数量 のmap。
type SessionStore interface {
	GuestCart(ctx context.Context, sessionID string) (map[string]int64, error)
	// 加算後の数量を返す。model.MaxLineQuantityで頭打ち。
	IncrGuestItem(ctx context.Context, sessionID string, productID string, delta int64) (int64, error)
	SetGuestItem(ctx context.Context, sessionID string, productID string, qty int64) error
	RemoveGuestItem(ctx context.Context, sessionID string, productID string) error
	ClearGuestCart(ctx context.Context, sessionID string) error

	SetBuyNow(ctx context.Context, sessionID string, sel model.BuyNowSelection) error
	// 読んだら消す。無ければfalse。
	TakeBuyNow(ctx context.Context, sessionID string) (model.BuyNowSelection, bool, error)
}
