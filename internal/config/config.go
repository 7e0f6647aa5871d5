package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"github.com/kevin07696/intesa-checkout/internal/domain"
)

// Config holds all application configuration.
// Values come from an optional YAML file; environment variables take precedence.
type Config struct {
	Environment string         `yaml:"environment" env:"ENVIRONMENT" env-default:"development"`
	Server      ServerConfig   `yaml:"server"`
	Gateway     GatewayConfig  `yaml:"gateway"`
	Database    DatabaseConfig `yaml:"database"`
	Redis       RedisConfig    `yaml:"redis"`
	Secrets     SecretsConfig  `yaml:"secrets"`
	Mail        MailConfig     `yaml:"mail"`
	Logger      LoggerConfig   `yaml:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	MetricsPort     int           `yaml:"metrics_port" env:"METRICS_PORT" env-default:"9090"`
	PublicBaseURL   string        `yaml:"public_base_url" env:"PUBLIC_BASE_URL" env-default:"http://localhost:8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
	OrderTTL        time.Duration `yaml:"order_ttl" env:"ORDER_TTL" env-default:"2h"`
	CallbackRPS     float64       `yaml:"callback_rps" env:"CALLBACK_RATE_LIMIT_RPS" env-default:"5"`
	CallbackBurst   int           `yaml:"callback_burst" env:"CALLBACK_RATE_LIMIT_BURST" env-default:"20"`

	// OrderAPIKeys authenticate the shop backend on order intake
	OrderAPIKeys []string `yaml:"-" env:"ORDER_API_KEYS" env-separator:","`
}

// GatewayConfig holds Banca Intesa merchant configuration
type GatewayConfig struct {
	MerchantID         string `yaml:"merchant_id" env:"INTESA_MERCHANT_ID"`
	StoreKey           string `yaml:"-" env:"INTESA_STORE_KEY"`
	StoreKeySecretPath string `yaml:"store_key_secret_path" env:"STORE_KEY_SECRET_PATH"`
	Mode               string `yaml:"mode" env:"INTESA_MODE" env-default:"test"`
	LiveRedirectURL    string `yaml:"live_redirect_url" env:"INTESA_LIVE_REDIRECT_URL" env-default:"https://bib.eway2pay.com/fim/est3Dgate"`
	TestRedirectURL    string `yaml:"test_redirect_url" env:"INTESA_TEST_REDIRECT_URL" env-default:"https://testsecurepay.eway2pay.com/fim/est3Dgate"`
	ShopURL            string `yaml:"shop_url" env:"INTESA_SHOP_URL"`

	Label          string `yaml:"label" env:"INTESA_LABEL" env-default:"Banca Intesa"`
	DisplayLabel   string `yaml:"display_label" env:"INTESA_DISPLAY_LABEL" env-default:"Credit card"`
	UseDisplayName bool   `yaml:"use_display_name" env:"INTESA_USE_DISPLAY_NAME" env-default:"false"`

	SendMailSuccess   bool `yaml:"send_mail_success" env:"INTESA_SEND_MAIL_SUCCESS" env-default:"false"`
	SendMailFail      bool `yaml:"send_mail_fail" env:"INTESA_SEND_MAIL_FAIL" env-default:"false"`
	ShowReportSuccess bool `yaml:"show_report_success" env:"INTESA_SHOW_REPORT_SUCCESS" env-default:"true"`
	ShowReportFail    bool `yaml:"show_report_fail" env:"INTESA_SHOW_REPORT_FAIL" env-default:"true"`
	LogRequest        bool `yaml:"log_request" env:"INTESA_LOG_REQUEST" env-default:"false"`
	LogResponse       bool `yaml:"log_response" env:"INTESA_LOG_RESPONSE" env-default:"false"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"-" env:"DB_PASSWORD"`
	Database string `yaml:"name" env:"DB_NAME" env-default:"intesa_checkout"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	MaxConns int32  `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"10"`
	MinConns int32  `yaml:"min_conns" env:"DB_MIN_CONNS" env-default:"2"`
}

// RedisConfig holds the order snapshot store configuration
type RedisConfig struct {
	Addr      string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password  string `yaml:"-" env:"REDIS_PASSWORD"`
	DB        int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	KeyPrefix string `yaml:"key_prefix" env:"REDIS_KEY_PREFIX" env-default:"intesa:order:"`
}

// SecretsConfig selects the secret manager backend
type SecretsConfig struct {
	Provider       string        `yaml:"provider" env:"SECRET_MANAGER" env-default:"env"` // env, local, aws, vault
	CacheTTL       time.Duration `yaml:"cache_ttl" env:"SECRET_CACHE_TTL" env-default:"5m"`
	LocalPath      string        `yaml:"local_path" env:"SECRET_LOCAL_PATH" env-default:"./secrets"`
	AWSRegion      string        `yaml:"aws_region" env:"AWS_REGION" env-default:"eu-central-1"`
	AWSEndpoint    string        `yaml:"aws_endpoint" env:"AWS_SECRETS_ENDPOINT"`
	VaultAddress   string        `yaml:"vault_address" env:"VAULT_ADDR"`
	VaultToken     string        `yaml:"-" env:"VAULT_TOKEN"`
	VaultMountPath string        `yaml:"vault_mount_path" env:"VAULT_MOUNT_PATH" env-default:"secret"`
}

// MailConfig holds SMTP settings for payment report emails
type MailConfig struct {
	Enabled  bool   `yaml:"enabled" env:"MAIL_ENABLED" env-default:"false"`
	Host     string `yaml:"host" env:"SMTP_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"25"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"-" env:"SMTP_PASSWORD"`

	// From is the store address payment reports are sent from
	From string `yaml:"from" env:"MAIL_FROM"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string `yaml:"level" env:"LOG_LEVEL" env-default:"info"` // debug, info, warn, error
	Development bool   `yaml:"development" env:"LOG_DEVELOPMENT" env-default:"false"`
}

// Load reads the YAML file at path (when non-empty) and applies environment overrides
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("load config: %w; %s", err, desc)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Gateway.MerchantID == "" {
		return fmt.Errorf("INTESA_MERCHANT_ID is required")
	}
	if c.Gateway.StoreKey == "" && c.Gateway.StoreKeySecretPath == "" {
		return fmt.Errorf("INTESA_STORE_KEY or STORE_KEY_SECRET_PATH is required")
	}
	switch domain.Mode(c.Gateway.Mode) {
	case domain.ModeLive, domain.ModeTest:
	default:
		return fmt.Errorf("INTESA_MODE must be %q or %q, got %q", domain.ModeLive, domain.ModeTest, c.Gateway.Mode)
	}
	if !hasKey(c.Server.OrderAPIKeys) {
		return fmt.Errorf("ORDER_API_KEYS is required")
	}
	if c.Mail.Enabled && !strings.Contains(c.Mail.From, "@") {
		return fmt.Errorf("MAIL_FROM must be an email address when MAIL_ENABLED is set")
	}
	if _, err := url.ParseRequestURI(c.Server.PublicBaseURL); err != nil {
		return fmt.Errorf("PUBLIC_BASE_URL is invalid: %w", err)
	}
	return nil
}

func hasKey(keys []string) bool {
	for _, key := range keys {
		if strings.TrimSpace(key) != "" {
			return true
		}
	}
	return false
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Domain converts the loaded settings into the gateway's read-only configuration
func (g *GatewayConfig) Domain() domain.GatewayConfig {
	return domain.GatewayConfig{
		MerchantID:      g.MerchantID,
		StoreKey:        g.StoreKey,
		Mode:            domain.Mode(g.Mode),
		LiveRedirectURL: g.LiveRedirectURL,
		TestRedirectURL: g.TestRedirectURL,
		ShopURL:         g.ShopURL,
		Label:           g.Label,
		DisplayLabel:    g.DisplayLabel,
		UseDisplayName:  g.UseDisplayName,
		SendMail:        domain.OnOutcome{Success: g.SendMailSuccess, Fail: g.SendMailFail},
		ShowReport:      domain.OnOutcome{Success: g.ShowReportSuccess, Fail: g.ShowReportFail},
		APILogging:      domain.APILogging{Request: g.LogRequest, Response: g.LogResponse},
	}
}

// ResolveStoreKey fills StoreKey from the secret manager when StoreKeySecretPath is set.
// A key already present in the environment wins.
func (g *GatewayConfig) ResolveStoreKey(ctx context.Context, sm ports.SecretManagerAdapter) error {
	if g.StoreKey != "" || g.StoreKeySecretPath == "" {
		return nil
	}
	if sm == nil {
		return domain.NewDomainError(domain.ErrorCodeSecretUnavailable, "no secret manager configured").
			WithDetail("path", g.StoreKeySecretPath)
	}

	secret, err := sm.GetSecret(ctx, g.StoreKeySecretPath)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeSecretUnavailable, "failed to resolve store key", err).
			WithDetail("path", g.StoreKeySecretPath)
	}
	if secret == nil || secret.Value == "" {
		return domain.NewDomainError(domain.ErrorCodeSecretUnavailable, "store key secret is empty").
			WithDetail("path", g.StoreKeySecretPath)
	}

	g.StoreKey = secret.Value
	return nil
}

// CheckoutURLs returns the return and cancel callback URLs for orderID
func (s *ServerConfig) CheckoutURLs(orderID string) (returnURL, cancelURL string) {
	base := strings.TrimRight(s.PublicBaseURL, "/") + "/checkout/" + url.PathEscape(orderID) + "/payment"
	return base + "/return", base + "/cancel"
}
