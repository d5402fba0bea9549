package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Freightdesk"`
		Port int    `envconfig:"PORT" default:"8080"`
		Env  string `envconfig:"APP_ENV" default:"development"`
	}

	DB struct {
		Host        string `envconfig:"DB_HOST" default:"localhost"`
		Port        int    `envconfig:"DB_PORT" default:"5432"`
		User        string `envconfig:"DB_USER" default:"postgres"`
		Password    string `envconfig:"DB_PASSWORD" default:""`
		Name        string `envconfig:"DB_NAME" default:"freightdesk"`
		AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
		AllowedOrigins  []string      `envconfig:"SERVER_ALLOWED_ORIGINS" default:"*"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"console"`
		Output string `envconfig:"LOG_OUTPUT" default:"stdout"`
	}

	Auth struct {
		Secret   string `envconfig:"AUTH_JWT_SECRET"`
		Disabled bool   `envconfig:"AUTH_DISABLED" default:"false"`
	}

	Invoice struct {
		TaxRate decimal.Decimal `envconfig:"INVOICE_TAX_RATE" default:"0.18"`
		DueDays int             `envconfig:"INVOICE_DUE_DAYS" default:"30"`
	}

	PDF struct {
		Mode          string        `envconfig:"PDF_MODE" default:"remote"` // remote, chrome, disabled
		RemoteURL     string        `envconfig:"PDF_REMOTE_URL"`
		ChromeURL     string        `envconfig:"PDF_CHROME_URL"`
		Timeout       time.Duration `envconfig:"PDF_TIMEOUT" default:"10s"`
		Language      string        `envconfig:"PDF_LANGUAGE" default:"en"`
		DownloadToken string        `envconfig:"PDF_DOWNLOAD_TOKEN"`
	}

	Storage struct {
		Endpoint      string `envconfig:"STORAGE_ENDPOINT"`
		Region        string `envconfig:"STORAGE_REGION" default:"us-east-1"`
		Bucket        string `envconfig:"STORAGE_BUCKET" default:"deals"`
		AccessKey     string `envconfig:"STORAGE_ACCESS_KEY"`
		SecretKey     string `envconfig:"STORAGE_SECRET_KEY"`
		UsePathStyle  bool   `envconfig:"STORAGE_USE_PATH_STYLE" default:"true"`
		PublicBaseURL string `envconfig:"STORAGE_PUBLIC_BASE_URL"`
	}

	Redis struct {
		Addr           string        `envconfig:"REDIS_ADDR"`
		Password       string        `envconfig:"REDIS_PASSWORD"`
		DB             int           `envconfig:"REDIS_DB" default:"0"`
		IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	}

	Gateway struct {
		URL   string `envconfig:"GATEWAY_URL"`
		Token string `envconfig:"GATEWAY_TOKEN"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Invoice.DueDays <= 0 {
		return nil, fmt.Errorf("invalid INVOICE_DUE_DAYS: %d", cfg.Invoice.DueDays)
	}

	if cfg.Invoice.TaxRate.IsNegative() {
		return nil, fmt.Errorf("invalid INVOICE_TAX_RATE: %s", cfg.Invoice.TaxRate)
	}

	if !cfg.Auth.Disabled && cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required unless AUTH_DISABLED is set")
	}

	return &cfg, nil
}
