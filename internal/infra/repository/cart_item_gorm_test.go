package repository

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/infra/db/dbtest"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartItemGorm_IncrementSumsOnOneRow(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.SeedUser(t, gdb, "alice", model.RoleUser)
	p := dbtest.SeedProduct(t, gdb, "Mug", "12.50")

	r := NewCartItemGormRepository(gdb)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Increment(ctx, u.ID, p.ID, 1))
	}
	require.NoError(t, r.Increment(ctx, u.ID, p.ID, 2))

	items, err := r.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].Quantity)
	assert.Equal(t, "Mug", items[0].Product.Name)

	var n int64
	require.NoError(t, gdb.Model(&model.CartItem{}).Where("user_id = ? AND product_id = ?", u.ID, p.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestCartItemGorm_SetQuantityCreatesThenOverwrites(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.SeedUser(t, gdb, "alice", model.RoleUser)
	p := dbtest.SeedProduct(t, gdb, "Mug", "12.50")

	r := NewCartItemGormRepository(gdb)
	require.NoError(t, r.SetQuantity(ctx, u.ID, p.ID, 4))
	require.NoError(t, r.SetQuantity(ctx, u.ID, p.ID, 2))

	items, err := r.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Quantity)

	assert.Error(t, r.SetQuantity(ctx, u.ID, p.ID, 0))
}

func TestCartItemGorm_DeleteIsNoopWhenAbsent(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.SeedUser(t, gdb, "alice", model.RoleUser)
	a := dbtest.SeedProduct(t, gdb, "A", "1.00")
	b := dbtest.SeedProduct(t, gdb, "B", "2.00")

	r := NewCartItemGormRepository(gdb)
	require.NoError(t, r.Delete(ctx, u.ID, a.ID))

	require.NoError(t, r.Increment(ctx, u.ID, a.ID, 1))
	require.NoError(t, r.Increment(ctx, u.ID, b.ID, 1))
	require.NoError(t, r.Delete(ctx, u.ID, a.ID))

	items, err := r.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ProductID)

	require.NoError(t, r.DeleteAllByUserID(ctx, u.ID))
	require.NoError(t, r.DeleteAllByUserID(ctx, u.ID))
	require.NoError(t, r.DeleteAllByUserID(ctx, 0))
	items, err = r.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartItemGorm_IncrementStopsAtMax(t *testing.T) {
	gdb := dbtest.New(t)
	ctx := context.Background()
	u := dbtest.SeedUser(t, gdb, "alice", model.RoleUser)
	p := dbtest.SeedProduct(t, gdb, "Mug", "1.00")

	r := NewCartItemGormRepository(gdb)
	require.NoError(t, r.SetQuantity(ctx, u.ID, p.ID, model.MaxLineQuantity))
	require.NoError(t, r.Increment(ctx, u.ID, p.ID, 1))
	require.NoError(t, r.Increment(ctx, u.ID, p.ID, model.MaxLineQuantity))

	items, err := r.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.MaxLineQuantity, items[0].Quantity)

	assert.Error(t, r.SetQuantity(ctx, u.ID, p.ID, model.MaxLineQuantity+1))
	assert.Error(t, r.Increment(ctx, u.ID, p.ID, model.MaxLineQuantity+1))
}

func TestCartItemGorm_UnknownProductIsReferenced(t *testing.T) {
	gdb := dbtest.New(t)
	u := dbtest.SeedUser(t, gdb, "alice", model.RoleUser)

	r := NewCartItemGormRepository(gdb)
	err := r.Increment(context.Background(), u.ID, 999, 1)
	assert.ErrorIs(t, err, repo.ErrReferenced)
}
