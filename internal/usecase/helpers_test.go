package usecase_test

import (
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/db/dbtest"
	infrarepo "app/internal/infra/repository"
	"app/internal/infra/session"
	"app/internal/usecase"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// 結果のkind/outcomeを覚えておく
type recorderStub struct {
	calls []string
}

func (r *recorderStub) ObserveCheckout(kind model.OrderKind, outcome string) {
	r.calls = append(r.calls, string(kind)+":"+outcome)
}

type storefront struct {
	db       *gorm.DB
	sessions *session.MemoryStore
	recorder *recorderStub
	cart     *usecase.CartUsecase
	checkout *usecase.CheckoutUsecase
	orders   *usecase.OrderUsecase
	products *usecase.ProductUsecase
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()

	gdb := dbtest.New(t)
	sessions := session.NewMemoryStore(time.Hour)
	products := infrarepo.NewProductGormRepository(gdb)
	rec := &recorderStub{}
	log := zap.NewNop()

	clock := fixedClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	builder := usecase.NewOrderBuilder(clock)
	return &storefront{
		db:       gdb,
		sessions: sessions,
		recorder: rec,
		cart:     usecase.NewCartUsecase(infrarepo.NewCartItemGormRepository(gdb), products, sessions, log),
		checkout: usecase.NewCheckoutUsecase(infrarepo.NewTxManagerGorm(gdb), products, sessions, builder, rec, log),
		orders:   usecase.NewOrderUsecase(infrarepo.NewOrderGormRepository(gdb)),
		products: usecase.NewProductUsecase(products, infrarepo.NewAuditLogGormRepository(gdb), clock),
	}
}

func (s *storefront) member(t *testing.T, name string) model.Identity {
	t.Helper()
	u := dbtest.SeedUser(t, s.db, name, model.RoleUser)
	return model.Identity{SessionID: "sid-" + name, UserID: u.ID, Role: u.Role}
}

func guest(sessionID string) model.Identity {
	return model.Identity{SessionID: sessionID}
}

func (s *storefront) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := s.db.Model(&model.Order{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}
