package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あれば最優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string
	DBMaxOpenConns   int

	RedisAddr  string        // 空ならセッションはメモリに置く
	SessionTTL time.Duration // ゲストカート/今すぐ購入の保持時間

	JWTSecret string // JWT署名シークレット
	JWTTTL    time.Duration

	// 両方あれば起動時に管理者を作る
	AdminUsername string
	AdminPassword string

	GoEnv    string // development/production
	LogLevel string
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	maxConns, err := atoiOr("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, err
	}
	sessionTTL, err := durationOr("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	jwtTTL, err := durationOr("JWT_TTL", 15*time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "storefront"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
		DBMaxOpenConns:   maxConns,

		RedisAddr:  os.Getenv("REDIS_ADDR"),
		SessionTTL: sessionTTL,

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    jwtTTL,

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		GoEnv:    getenv("GO_ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv != "development" && cfg.GoEnv != "production" {
		return Config{}, fmt.Errorf("GO_ENV must be development or production")
	}
	if cfg.DBMaxOpenConns < 1 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}

	return cfg, nil
}

// postgresのDSN
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// ":8080" 形式
func (c Config) Addr() string {
	if c.Port != "" && c.Port[0] == ':' {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}
