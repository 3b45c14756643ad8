package model

// 今すぐ購入の選択。セッションにだけ置き、次のcheckoutで必ず消える。
type BuyNowSelection struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// リクエストの主体
// SessionIDは全員にある。UserIDが0ならゲスト。
type Identity struct {
	SessionID string
	UserID    int64
	Role      Role
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID > 0
}
