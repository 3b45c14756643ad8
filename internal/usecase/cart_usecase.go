package usecase

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartUsecase は /cart の業務ロジックです。
// ゲストはセッション、会員はDBのカートを同じ操作で扱う。
type CartUsecase struct {
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	sessions     repo.SessionStore
	log          *zap.Logger
}

func NewCartUsecase(
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	sessions repo.SessionStore,
	log *zap.Logger,
) *CartUsecase {
	return &CartUsecase{
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		sessions:     sessions,
		log:          log.Named("cart"),
	}
}

type CartLineView struct {
	Product   model.Product   `json:"product"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartView struct {
	Items []CartLineView  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// カートの裏側（ゲスト/会員）に共通する操作
type cartStore interface {
	lines(ctx context.Context) ([]model.CartLine, error)
	add(ctx context.Context, productID int64) error
	set(ctx context.Context, productID int64, qty int64) error
	remove(ctx context.Context, productID int64) error
	clear(ctx context.Context) error
}

func (u *CartUsecase) storeFor(id model.Identity) cartStore {
	if id.IsAuthenticated() {
		return &userCart{items: u.cartItemRepo, userID: id.UserID}
	}
	return &guestCart{sessions: u.sessions, products: u.productRepo, sessionID: id.SessionID}
}

// GetCart はカートの中身と合計を返す（副作用なし）。
func (u *CartUsecase) GetCart(ctx context.Context, id model.Identity) (CartView, error) {
	if id.SessionID == "" && !id.IsAuthenticated() {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "no session")
	}

	lines, err := u.storeFor(id).lines(ctx)
	if err != nil {
		u.log.Error("resolve cart failed", zap.Error(err))
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "cart error")
	}
	return buildCartView(lines), nil
}

// AddToCart は1つ追加（既にあれば+1）。
func (u *CartUsecase) AddToCart(ctx context.Context, id model.Identity, productID int64) (CartView, error) {
	if err := u.ensureProduct(ctx, productID); err != nil {
		return CartView{}, err
	}

	store := u.storeFor(id)
	if err := store.add(ctx, productID); err != nil {
		return CartView{}, u.mutationError("add", err)
	}
	return u.GetCart(ctx, id)
}

// 数量変更。1未満は1、上限超えは上限に丸める。無ければ作る。
func (u *CartUsecase) SetQuantity(ctx context.Context, id model.Identity, productID int64, qty int64) (CartView, error) {
	if err := u.ensureProduct(ctx, productID); err != nil {
		return CartView{}, err
	}
	if err := u.storeFor(id).set(ctx, productID, model.ClampQuantity(qty)); err != nil {
		return CartView{}, u.mutationError("set", err)
	}
	return u.GetCart(ctx, id)
}

// 明細削除。無くてもエラーにしない。
func (u *CartUsecase) RemoveFromCart(ctx context.Context, id model.Identity, productID int64) (CartView, error) {
	if err := u.storeFor(id).remove(ctx, productID); err != nil {
		return CartView{}, u.mutationError("remove", err)
	}
	return u.GetCart(ctx, id)
}

// 全削除。空でもOK。
func (u *CartUsecase) ClearAll(ctx context.Context, id model.Identity) error {
	if err := u.storeFor(id).clear(ctx); err != nil {
		return u.mutationError("clear", err)
	}
	return nil
}

// ログイン時にゲストカートを会員カートへ数量加算で移す。
func (u *CartUsecase) MergeGuest(ctx context.Context, sessionID string, userID int64) error {
	if sessionID == "" || userID <= 0 {
		return nil
	}

	guest := &guestCart{sessions: u.sessions, products: u.productRepo, sessionID: sessionID}
	lines, err := guest.lines(ctx)
	if err != nil {
		return u.mutationError("merge", err)
	}

	for _, l := range lines {
		if err := u.cartItemRepo.Increment(ctx, userID, l.Product.ID, l.Quantity); err != nil {
			return u.mutationError("merge", err)
		}
	}

	if err := guest.clear(ctx); err != nil {
		return u.mutationError("merge", err)
	}
	if len(lines) > 0 {
		u.log.Info("guest cart merged", zap.Int64("user_id", userID), zap.Int("lines", len(lines)))
	}
	return nil
}

// 存在しない商品はカートに入れない
func (u *CartUsecase) ensureProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return ErrProductNotFound
	}
	_, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CartUsecase) mutationError(op string, err error) error {
	if errors.Is(err, repo.ErrReferenced) {
		// 追加と同時に商品が消えた
		return ErrProductNotFound
	}
	u.log.Error("cart mutation failed", zap.String("op", op), zap.Error(err))
	return NewHTTPError(http.StatusInternalServerError, "cart error")
}

func buildCartView(lines []model.CartLine) CartView {
	items := make([]CartLineView, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		lt := l.LineTotal()
		items = append(items, CartLineView{Product: l.Product, Quantity: l.Quantity, LineTotal: lt})
		total = total.Add(lt)
	}
	return CartView{Items: items, Total: total}
}

// 会員カート（DB）
type userCart struct {
	items  repo.CartItemRepository
	userID int64
}

func (c *userCart) lines(ctx context.Context) ([]model.CartLine, error) {
	items, err := c.items.ListByUserID(ctx, c.userID)
	if err != nil {
		return nil, err
	}

	out := make([]model.CartLine, 0, len(items))
	for _, it := range items {
		if it.Product.ID == 0 {
			continue
		}
		out = append(out, model.CartLine{Product: it.Product, Quantity: it.Quantity})
	}
	return out, nil
}

func (c *userCart) add(ctx context.Context, productID int64) error {
	return c.items.Increment(ctx, c.userID, productID, 1)
}

func (c *userCart) set(ctx context.Context, productID int64, qty int64) error {
	return c.items.SetQuantity(ctx, c.userID, productID, qty)
}

func (c *userCart) remove(ctx context.Context, productID int64) error {
	return c.items.Delete(ctx, c.userID, productID)
}

func (c *userCart) clear(ctx context.Context) error {
	return c.items.DeleteAllByUserID(ctx, c.userID)
}

// ゲストカート（セッション）
type guestCart struct {
	sessions  repo.SessionStore
	products  repo.ProductRepository
	sessionID string
}

// カタログに無い商品・数字でないキーは黙って落とす。商品ID順。
func (c *guestCart) lines(ctx context.Context) ([]model.CartLine, error) {
	raw, err := c.sessions.GuestCart(ctx, c.sessionID)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []model.CartLine{}, nil
	}

	qty := make(map[int64]int64, len(raw))
	ids := make([]int64, 0, len(raw))
	for key, q := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 || q < 1 {
			continue
		}
		qty[id] = model.ClampQuantity(q)
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products, err := c.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	out := make([]model.CartLine, 0, len(products))
	for _, p := range products {
		out = append(out, model.CartLine{Product: p, Quantity: qty[p.ID]})
	}
	return out, nil
}

func (c *guestCart) add(ctx context.Context, productID int64) error {
	_, err := c.sessions.IncrGuestItem(ctx, c.sessionID, guestKey(productID), 1)
	return err
}

func (c *guestCart) set(ctx context.Context, productID int64, qty int64) error {
	return c.sessions.SetGuestItem(ctx, c.sessionID, guestKey(productID), qty)
}

func (c *guestCart) remove(ctx context.Context, productID int64) error {
	return c.sessions.RemoveGuestItem(ctx, c.sessionID, guestKey(productID))
}

func (c *guestCart) clear(ctx context.Context) error {
	return c.sessions.ClearGuestCart(ctx, c.sessionID)
}

func guestKey(productID int64) string {
	return strconv.FormatInt(productID, 10)
}
