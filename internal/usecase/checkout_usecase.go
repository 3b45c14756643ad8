package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	"app/internal/logger"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// checkoutの結果を数える（metrics）
type CheckoutRecorder interface {
	ObserveCheckout(kind model.OrderKind, outcome string)
}

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// 認証確認 → 元の選択（カート/今すぐ購入）→ 注文作成 → カートを空に。
type CheckoutUsecase struct {
	tx       repo.TransactionManager
	products repo.ProductRepository
	sessions repo.SessionStore
	builder  *OrderBuilder
	recorder CheckoutRecorder
	log      *zap.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	products repo.ProductRepository,
	sessions repo.SessionStore,
	builder *OrderBuilder,
	recorder CheckoutRecorder,
	log *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:       tx,
		products: products,
		sessions: sessions,
		builder:  builder,
		recorder: recorder,
		log:      log.Named("checkout"),
	}
}

type CheckoutInput struct {
	BuyNow bool
}

// 今すぐ購入の商品を選ぶ（ゲストでも可。注文はcheckoutで）
func (u *CheckoutUsecase) SelectBuyNow(ctx context.Context, id model.Identity, productID int64, quantity int64) (model.BuyNowSelection, error) {
	if productID <= 0 {
		return model.BuyNowSelection{}, ErrProductNotFound
	}
	if _, err := u.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.BuyNowSelection{}, ErrProductNotFound
		}
		return model.BuyNowSelection{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	sel := model.BuyNowSelection{ProductID: productID, Quantity: normalizeQuantity(quantity)}
	if err := u.sessions.SetBuyNow(ctx, id.SessionID, sel); err != nil {
		u.log.Error("store buy-now failed", zap.Error(err))
		return model.BuyNowSelection{}, NewHTTPError(http.StatusInternalServerError, "session error")
	}
	return sel, nil
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, id model.Identity, in CheckoutInput) (OrderOutput, error) {
	kind := model.OrderKindCart
	if in.BuyNow {
		kind = model.OrderKindBuyNow
	}

	var (
		out OrderOutput
		err error
	)
	if !id.IsAuthenticated() {
		err = ErrUnauthenticated
	} else if in.BuyNow {
		out, err = u.checkoutBuyNow(ctx, id)
	} else {
		out, err = u.checkoutCart(ctx, id)
	}

	u.observe(ctx, kind, id, out, err)
	return out, err
}

// 選択は成否に関係なくここで消える
func (u *CheckoutUsecase) checkoutBuyNow(ctx context.Context, id model.Identity) (OrderOutput, error) {
	sel, ok, err := u.sessions.TakeBuyNow(ctx, id.SessionID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "session error")
	}
	if !ok {
		return OrderOutput{}, ErrNoBuyNowSelection
	}

	p, err := u.products.FindByID(ctx, sel.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, ErrProductNotFound
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	lines := []model.CartLine{{Product: p, Quantity: normalizeQuantity(sel.Quantity)}}

	var out OrderOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := u.builder.BuildFromLines(ctx, r, id.UserID, model.OrderKindBuyNow, lines)
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return OrderOutput{}, u.buildError(err)
	}
	return out, nil
}

// 注文作成とカート削除は同じトランザクション
func (u *CheckoutUsecase) checkoutCart(ctx context.Context, id model.Identity) (OrderOutput, error) {
	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, err := r.CartItems().ListByUserID(ctx, id.UserID)
		if err != nil {
			return err
		}

		lines := make([]model.CartLine, 0, len(items))
		for _, it := range items {
			if it.Product.ID == 0 {
				continue
			}
			lines = append(lines, model.CartLine{Product: it.Product, Quantity: it.Quantity})
		}

		o, err := u.builder.BuildFromLines(ctx, r, id.UserID, model.OrderKindCart, lines)
		if err != nil {
			return err
		}

		if err := r.CartItems().DeleteAllByUserID(ctx, id.UserID); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return OrderOutput{}, u.buildError(err)
	}

	// セッション側のカートも空に（注文は確定済みなので失敗はログだけ）
	if err := u.sessions.ClearGuestCart(ctx, id.SessionID); err != nil {
		u.log.Warn("reset session cart failed", zap.Error(err))
	}
	return out, nil
}

func (u *CheckoutUsecase) buildError(err error) error {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return ErrEmptyCart
	case errors.Is(err, repo.ErrReferenced):
		return ErrProductNotFound
	default:
		u.log.Error("build order failed", zap.Error(err))
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
}

func (u *CheckoutUsecase) observe(ctx context.Context, kind model.OrderKind, id model.Identity, out OrderOutput, err error) {
	log := logger.FromContext(ctx, u.log)
	if err == nil {
		log.Info("checkout completed",
			zap.String("kind", string(kind)),
			zap.Int64("user_id", id.UserID),
			zap.Int64("order_id", out.ID),
			zap.String("total", out.Total.StringFixed(2)),
		)
		u.record(kind, OutcomeSuccess)
		return
	}

	if _, ok := AsHTTPError(err); ok {
		u.record(kind, OutcomeError)
		return
	}
	log.Warn("checkout aborted",
		zap.String("kind", string(kind)),
		zap.Int64("user_id", id.UserID),
		zap.Error(err),
	)
	u.record(kind, OutcomeFailure)
}

func (u *CheckoutUsecase) record(kind model.OrderKind, outcome string) {
	if u.recorder != nil {
		u.recorder.ObserveCheckout(kind, outcome)
	}
}

// 未指定(0)や1未満は1
func normalizeQuantity(q int64) int64 {
	return model.ClampQuantity(q)
}
