package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderLineOutput struct {
	Product  model.Product   `json:"product"`
	Quantity int64           `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type OrderOutput struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	Kind      model.OrderKind   `json:"kind"`
	CreatedAt time.Time         `json:"created_at"`
	Items     []OrderLineOutput `json:"items"`
	Total     decimal.Decimal   `json:"total"`
}

// 明細から注文を作る
// 呼び出し側のトランザクション(TxRepos)の中で使う。
type OrderBuilder struct {
	clock Clock
}

func NewOrderBuilder(clock Clock) *OrderBuilder {
	return &OrderBuilder{clock: clock}
}

// Order 1件 + OrderLine N件を作る。空ならErrEmptyCartで何も書かない。
func (b *OrderBuilder) BuildFromLines(ctx context.Context, r repo.TxRepos, userID int64, kind model.OrderKind, lines []model.CartLine) (OrderOutput, error) {
	if len(lines) == 0 {
		return OrderOutput{}, ErrEmptyCart
	}

	now := b.clock.Now()
	orderID, err := r.Orders().Create(ctx, model.Order{
		UserID:    userID,
		Kind:      kind,
		CreatedAt: now,
	})
	if err != nil {
		return OrderOutput{}, err
	}

	orderLines := make([]model.OrderLine, 0, len(lines))
	viewLines := make([]model.OrderLine, 0, len(lines))
	for _, l := range lines {
		orderLines = append(orderLines, model.OrderLine{ProductID: l.Product.ID, Quantity: l.Quantity})
		viewLines = append(viewLines, model.OrderLine{ProductID: l.Product.ID, Product: l.Product, Quantity: l.Quantity})
	}
	if err := r.OrderLines().CreateBulk(ctx, orderID, orderLines); err != nil {
		return OrderOutput{}, err
	}

	return toOrderOutput(model.Order{
		ID:        orderID,
		UserID:    userID,
		Kind:      kind,
		CreatedAt: now,
		Lines:     viewLines,
	}), nil
}

// 注文履歴
type OrderUsecase struct {
	orders repo.OrderRepository
}

func NewOrderUsecase(orders repo.OrderRepository) *OrderUsecase {
	return &OrderUsecase{orders: orders}
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, id model.Identity) ([]OrderOutput, error) {
	if !id.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	orders, err := u.orders.ListByUserID(ctx, id.UserID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrder(ctx context.Context, id model.Identity, orderID int64) (OrderOutput, error) {
	if !id.IsAuthenticated() {
		return OrderOutput{}, ErrUnauthenticated
	}
	if orderID <= 0 {
		return OrderOutput{}, ErrNotFound
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, ErrNotFound
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//他人の注文は「存在しない扱い」にする
	if o.UserID != id.UserID {
		return OrderOutput{}, ErrNotFound
	}
	return toOrderOutput(o), nil
}

// 小計は今の商品価格で計算する
func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderLineOutput, 0, len(o.Lines))
	total := decimal.Zero
	for _, l := range o.Lines {
		sub := model.CartLine{Product: l.Product, Quantity: l.Quantity}.LineTotal()
		items = append(items, OrderLineOutput{Product: l.Product, Quantity: l.Quantity, Subtotal: sub})
		total = total.Add(sub)
	}

	return OrderOutput{
		ID:        o.ID,
		UserID:    o.UserID,
		Kind:      o.Kind,
		CreatedAt: o.CreatedAt,
		Items:     items,
		Total:     total,
	}
}
