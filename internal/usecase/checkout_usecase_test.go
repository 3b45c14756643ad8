package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/infra/db/dbtest"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout_CartCreatesOrderAndEmptiesCart(t *testing.T) {
	s := newStorefront(t)
	a := dbtest.SeedProduct(t, s.db, "A", "10.00")
	b := dbtest.SeedProduct(t, s.db, "B", "5.00")
	ctx := context.Background()
	alice := s.member(t, "alice")

	_, err := s.cart.SetQuantity(ctx, alice, a.ID, 2)
	require.NoError(t, err)
	_, err = s.cart.AddToCart(ctx, alice, b.ID)
	require.NoError(t, err)

	out, err := s.checkout.Checkout(ctx, alice, usecase.CheckoutInput{})
	require.NoError(t, err)

	assert.NotZero(t, out.ID)
	assert.Equal(t, model.OrderKindCart, out.Kind)
	require.Len(t, out.Items, 2)
	assert.Equal(t, a.ID, out.Items[0].Product.ID)
	assert.Equal(t, int64(2), out.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(20).Equal(out.Items[0].Subtotal))
	assert.Equal(t, b.ID, out.Items[1].Product.ID)
	assert.True(t, decimal.NewFromInt(5).Equal(out.Items[1].Subtotal))
	assert.True(t, decimal.NewFromInt(25).Equal(out.Total))

	view, err := s.cart.GetCart(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, int64(1), s.countOrders(t))

	// 保存された注文も同じ中身
	saved, err := s.orders.GetMyOrder(ctx, alice, out.ID)
	require.NoError(t, err)
	require.Len(t, saved.Items, 2)
	assert.True(t, decimal.NewFromInt(25).Equal(saved.Total))

	assert.Equal(t, []string{"cart:success"}, s.recorder.calls)
}

func TestCheckout_EmptyCartCreatesNoOrder(t *testing.T) {
	s := newStorefront(t)
	ctx := context.Background()
	alice := s.member(t, "alice")

	_, err := s.checkout.Checkout(ctx, alice, usecase.CheckoutInput{})
	assert.ErrorIs(t, err, usecase.ErrEmptyCart)
	assert.Zero(t, s.countOrders(t))
	assert.Equal(t, []string{"cart:failure"}, s.recorder.calls)
}

func TestCheckout_GuestCartDoesNotCountForMember(t *testing.T) {
	s := newStorefront(t)
	a := dbtest.SeedProduct(t, s.db, "A", "10.00")
	ctx := context.Background()
	alice := s.member(t, "alice")

	// ログイン前のカート（マージしていない）
	_, err := s.cart.AddToCart(ctx, guest(alice.SessionID), a.ID)
	require.NoError(t, err)

	_, err = s.checkout.Checkout(ctx, alice, usecase.CheckoutInput{})
	assert.ErrorIs(t, err, usecase.ErrEmptyCart)
	assert.Zero(t, s.countOrders(t))
}

func TestCheckout_UnauthenticatedChangesNothing(t *testing.T) {
	s := newStorefront(t)
	a := dbtest.SeedProduct(t, s.db, "A", "10.00")
	ctx := context.Background()
	anon := guest("sid-anon")

	_, err := s.cart.AddToCart(ctx, anon, a.ID)
	require.NoError(t, err)
	_, err = s.checkout.SelectBuyNow(ctx, anon, a.ID, 2)
	require.NoError(t, err)

	for _, buyNow := range []bool{false, true} {
		_, err := s.checkout.Checkout(ctx, anon, usecase.CheckoutInput{BuyNow: buyNow})
		assert.ErrorIs(t, err, usecase.ErrUnauthenticated)
	}
	assert.Zero(t, s.countOrders(t))

	view, err := s.cart.GetCart(ctx, anon)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	_, ok, err := s.sessions.TakeBuyNow(ctx, anon.SessionID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckout_BuyNowIsSingleUse(t *testing.T) {
	s := newStorefront(t)
	c := dbtest.SeedProduct(t, s.db, "C", "7.00")
	other := dbtest.SeedProduct(t, s.db, "D", "1.00")
	ctx := context.Background()
	alice := s.member(t, "alice")

	// カートの中身は今すぐ購入に影響しない
	_, err := s.cart.AddToCart(ctx, alice, other.ID)
	require.NoError(t, err)

	sel, err := s.checkout.SelectBuyNow(ctx, alice, c.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sel.Quantity)

	out, err := s.checkout.Checkout(ctx, alice, usecase.CheckoutInput{BuyNow: true})
	require.NoError(t, err)
	assert.Equal(t, model.OrderKindBuyNow, out.Kind)
	require.Len(t, out.Items, 1)
	assert.Equal(t, c.ID, out.Items[0].Product.ID)
	assert.Equal(t, int64(3), out.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(21).Equal(out.Total))

	_, err = s.checkout.Checkout(ctx, alice, usecase.CheckoutInput{BuyNow: true})
	assert.ErrorIs(t, err, usecase.ErrNoBuyNowSelection)
	assert.Equal(t, int64(1), s.countOrders(t))

	view, err := s.cart.GetCart(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)

	assert.Equal(t, []string{"buy-now:success", "buy-now:failure"}, s.recorder.calls)
}

func TestCheckout_BuyNowQuantityDefaultsToOne(t *testing.T) {
	s := newStorefront(t)
	c := dbtest.SeedProduct(t, s.db, "C", "7.00")
	ctx := context.Background()
	alice := s.member(t, "alice")

	for _, q := range []int64{0, -4} {
		sel, err := s.checkout.SelectBuyNow(ctx, alice, c.ID, q)
		require.NoError(t, err)
		assert.Equal(t, int64(1), sel.Quantity)
	}

	// セッションに壊れた数量が入っていても1に揃える
	require.NoError(t, s.sessions.SetBuyNow(ctx, alice.SessionID, model.BuyNowSelection{ProductID: c.ID, Quantity: 0}))
	out, err := s.checkout.Checkout(ctx, alice, usecase.CheckoutInput{BuyNow: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(7).Equal(out.Total))
}

func TestCheckout_BuyNowProductGone(t *testing.T) {
	s := newStorefront(t)
	c := dbtest.SeedProduct(t, s.db, "C", "7.00")
	ctx := context.Background()
	alice := s.member(t, "alice")

	_, err := s.checkout.SelectBuyNow(ctx, alice, 999, 1)
	assert.ErrorIs(t, err, usecase.ErrProductNotFound)

	_, err = s.checkout.SelectBuyNow(ctx, alice, c.ID, 2)
	require.NoError(t, err)
	require.NoError(t, s.products.DeleteProduct(ctx, 1, c.ID))

	_, err = s.checkout.Checkout(ctx, alice, usecase.CheckoutInput{BuyNow: true})
	assert.ErrorIs(t, err, usecase.ErrProductNotFound)
	assert.Zero(t, s.countOrders(t))

	// 失敗しても選択は消えている
	_, err = s.checkout.Checkout(ctx, alice, usecase.CheckoutInput{BuyNow: true})
	assert.ErrorIs(t, err, usecase.ErrNoBuyNowSelection)
}
