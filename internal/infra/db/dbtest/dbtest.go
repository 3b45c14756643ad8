// Package dbtest はテスト用のsqliteインメモリDBを用意する。
package dbtest

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/infra/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New はマイグレーション済みの :memory: DBを返す。
// 接続ごとに別DBになるので接続は1本に絞る。
func New(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), db.Options(nil))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// SeedProduct は価格だけ決めた商品を作る。
func SeedProduct(t *testing.T, gdb *gorm.DB, name string, price string) model.Product {
	t.Helper()

	p := model.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: 10,
	}
	require.NoError(t, gdb.WithContext(context.Background()).Omit("Tags").Create(&p).Error)
	return p
}

func SeedUser(t *testing.T, gdb *gorm.DB, username string, role model.Role) model.User {
	t.Helper()

	u := model.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, gdb.WithContext(context.Background()).Create(&u).Error)
	return u
}
