package repository

import (
	"context"
	"errors"
	"testing"

	"app/internal/domain/model"
	"app/internal/infra/db/dbtest"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderGorm_CreateAndRead(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.SeedUser(t, gdb, "alice", model.RoleUser)
	a := dbtest.SeedProduct(t, gdb, "A", "10.00")
	b := dbtest.SeedProduct(t, gdb, "B", "5.00")

	orders := NewOrderGormRepository(gdb)
	lines := NewOrderLineGormRepository(gdb)

	first, err := orders.Create(ctx, model.Order{UserID: u.ID, Kind: model.OrderKindCart})
	require.NoError(t, err)
	require.NoError(t, lines.CreateBulk(ctx, first, []model.OrderLine{
		{ProductID: a.ID, Quantity: 2},
		{ProductID: b.ID, Quantity: 1},
	}))

	second, err := orders.Create(ctx, model.Order{UserID: u.ID, Kind: model.OrderKindBuyNow})
	require.NoError(t, err)
	require.NoError(t, lines.CreateBulk(ctx, second, []model.OrderLine{{ProductID: b.ID, Quantity: 3}}))

	got, err := orders.FindByID(ctx, first)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "A", got.Lines[0].Product.Name)
	assert.Equal(t, int64(2), got.Lines[0].Quantity)

	list, err := orders.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, model.OrderKindBuyNow, list[0].Kind)

	ls, err := lines.ListByOrderID(ctx, second)
	require.NoError(t, err)
	require.Len(t, ls, 1)

	_, err = orders.FindByID(ctx, 999)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestTxManagerGorm_RollsBackOnError(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.SeedUser(t, gdb, "alice", model.RoleUser)
	a := dbtest.SeedProduct(t, gdb, "A", "10.00")
	require.NoError(t, NewCartItemGormRepository(gdb).Increment(ctx, u.ID, a.ID, 1))

	boom := errors.New("boom")
	tm := NewTxManagerGorm(gdb)
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Orders().Create(ctx, model.Order{UserID: u.ID, Kind: model.OrderKindCart}); err != nil {
			return err
		}
		if err := r.CartItems().DeleteAllByUserID(ctx, u.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int64
	require.NoError(t, gdb.Model(&model.Order{}).Count(&n).Error)
	assert.Zero(t, n)

	items, err := NewCartItemGormRepository(gdb).ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestUserGorm_UniqueUsername(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()
	r := NewUserGormRepository(gdb)

	u := &model.User{Username: "alice", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, r.Create(ctx, u))
	assert.NotZero(t, u.ID)

	err := r.Create(ctx, &model.User{Username: "alice", PasswordHash: "y", Role: model.RoleUser})
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	got, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = r.FindByID(ctx, 999)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
