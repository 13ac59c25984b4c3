package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DBDriver    string // postgres / sqlite
	DatabaseURL string // あれば最優先

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	SQLitePath string

	GoEnv    string // dev/prod
	LogLevel string
	FEURL    string // フロントURL（CORS）
	SiteURL  string // メール内の画像URL
	TimeZone string // 注文コードの日付部分

	AdminJWTSecret string

	RateLimitRPS   float64 // 公開POSTのIPごとの上限
	RateLimitBurst int

	Sepay  SepayConfig
	Resend ResendConfig
	Sanity SanityConfig
}

// 入金先口座。未設定でも起動はするが、決済作成時に500にする。
type SepayConfig struct {
	BankAccount   string
	BankName      string
	AccountHolder string
	WebhookAPIKey string // 空ならwebhookの認証をしない
	QRBaseURL     string
}

type ResendConfig struct {
	APIKey      string
	SenderEmail string
}

type SanityConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	CacheTTL   time.Duration
	CacheSize  int // 公開コンテンツのキャッシュ件数上限
}

// .envがあれば読む（無くてもよい）
func LoadDotEnv(paths ...string) {
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			return
		}
	}
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := durationDefault("CONTENT_CACHE_TTL", 60*time.Second)
	if err != nil {
		return Config{}, err
	}

	cacheSize, err := atoiDefault("CONTENT_CACHE_SIZE", 512)
	if err != nil {
		return Config{}, err
	}

	rps, err := floatDefault("RATE_LIMIT_RPS", 1)
	if err != nil {
		return Config{}, err
	}
	burst, err := atoiDefault("RATE_LIMIT_BURST", 5)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DBDriver:    getenv("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		SQLitePath: getenv("SQLITE_PATH", "iaction.db"),

		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		FEURL:    os.Getenv("FE_URL"),
		SiteURL:  getenv("SITE_URL", "https://iaction.vn"),
		TimeZone: getenv("SHOP_TIMEZONE", "Asia/Ho_Chi_Minh"),

		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),

		RateLimitRPS:   rps,
		RateLimitBurst: burst,

		Sepay: SepayConfig{
			BankAccount:   os.Getenv("SEPAY_BANK_ACCOUNT"),
			BankName:      getenv("SEPAY_BANK_NAME", "BIDV"),
			AccountHolder: os.Getenv("SEPAY_ACCOUNT_HOLDER"),
			WebhookAPIKey: os.Getenv("SEPAY_WEBHOOK_API_KEY"),
			QRBaseURL:     getenv("SEPAY_QR_BASE_URL", "https://qr.sepay.vn/img"),
		},
		Resend: ResendConfig{
			APIKey:      os.Getenv("RESEND_API_KEY"),
			SenderEmail: os.Getenv("SENDER_EMAIL"),
		},
		Sanity: SanityConfig{
			ProjectID:  os.Getenv("SANITY_PROJECT_ID"),
			Dataset:    getenv("SANITY_DATASET", "production"),
			APIVersion: getenv("SANITY_API_VERSION", "2024-01-01"),
			Token:      os.Getenv("SANITY_TOKEN"),
			CacheTTL:   cacheTTL,
			CacheSize:  cacheSize,
		},
	}

	//必須チェック
	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			if cfg.PostgresUser == "" {
				return Config{}, fmt.Errorf("POSTGRES_USER is required")
			}
			if cfg.PostgresDB == "" {
				return Config{}, fmt.Errorf("POSTGRES_DB is required")
			}
		}
	case "sqlite":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or sqlite")
	}
	if cfg.GoEnv == "prod" && cfg.AdminJWTSecret == "" {
		return Config{}, fmt.Errorf("ADMIN_JWT_SECRET is required in prod")
	}

	return cfg, nil
}

// 読めないゾーン名ならUTC+7固定
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
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

func durationDefault(key string, def time.Duration) (time.Duration, error) {
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

func floatDefault(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return f, nil
}
