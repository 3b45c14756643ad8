package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/infra/session"
	"app/internal/infra/token"
	"app/internal/logger"
	"app/internal/metrics"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	//.envは無くてもよい（環境変数を優先）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.ConfigFor(cfg.GoEnv, cfg.LogLevel))
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	//セッション（Redisが無ければメモリ）
	var sessions repository.SessionStore
	health := func(ctx context.Context) error {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	if cfg.RedisAddr != "" {
		rdb := session.NewRedisClient(cfg.RedisAddr)
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
		dbHealth := health
		health = func(ctx context.Context) error {
			if err := dbHealth(ctx); err != nil {
				return err
			}
			return rdb.Ping(ctx).Err()
		}
	} else {
		log.Warn("REDIS_ADDR not set, sessions are kept in memory")
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	clock := usecase.RealClock{}
	issuer := token.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL)

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo, infraRepo.NewAuditLogGormRepository(gormDB), clock)
	cartUC := usecase.NewCartUsecase(cartItemRepo, productRepo, sessions, log)
	checkoutUC := usecase.NewCheckoutUsecase(txm, productRepo, sessions, usecase.NewOrderBuilder(clock), m, log)
	orderUC := usecase.NewOrderUsecase(orderRepo)
	authUC := usecase.NewAuthUsecase(userRepo, issuer, clock, bcrypt.DefaultCost)

	if err := authUC.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	//Handler生成
	e := server.New(server.Deps{
		Log:     log,
		Metrics: m,
		Tokens:  issuer,
		Session: middleware.SessionCookieConfig{TTL: cfg.SessionTTL, Secure: cfg.IsProduction()},

		Product:      handler.NewProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC),
		Order:        handler.NewOrderHandler(orderUC),
		Auth:         handler.NewAuthHandler(authUC, cartUC, log),
		AdminProduct: handler.NewAdminProductHandler(productUC),

		MetricsHandler: metrics.Handler(reg),
		Health:         health,
	})

	//Server起動
	return server.Start(ctx, e, cfg.Addr(), log)
}
