package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"github.com/kevin07696/intesa-checkout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSecretManager struct {
	mock.Mock
}

func (m *mockSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	args := m.Called(ctx, path)
	if s := args.Get(0); s != nil {
		return s.(*ports.Secret), args.Error(1)
	}
	return nil, args.Error(1)
}

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("INTESA_MERCHANT_ID", "M123")
	t.Setenv("INTESA_STORE_KEY", "SECRET")
	t.Setenv("ORDER_API_KEYS", "pk_live_first,pk_live_second")
}

func TestLoad_FromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, 2*time.Hour, cfg.Server.OrderTTL)
	assert.Equal(t, "test", cfg.Gateway.Mode)
	assert.Equal(t, domain.DefaultLiveRedirectURL, cfg.Gateway.LiveRedirectURL)
	assert.Equal(t, domain.DefaultTestRedirectURL, cfg.Gateway.TestRedirectURL)
	assert.Equal(t, "intesa_checkout", cfg.Database.Database)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, "env", cfg.Secrets.Provider)
	assert.Equal(t, []string{"pk_live_first", "pk_live_second"}, cfg.Server.OrderAPIKeys)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_YAMLWithEnvOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INTESA_MODE", "live")

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
server:
  port: 9000
gateway:
  merchant_id: FROMFILE
  mode: test
  use_display_name: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "M123", cfg.Gateway.MerchantID, "env overrides file")
	assert.Equal(t, "live", cfg.Gateway.Mode)
	assert.True(t, cfg.Gateway.UseDisplayName)
	assert.True(t, cfg.IsProduction())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{PublicBaseURL: "https://shop.example", OrderAPIKeys: []string{"pk_live_first"}},
			Gateway:  GatewayConfig{MerchantID: "M123", StoreKey: "SECRET", Mode: "test"},
			Database: DatabaseConfig{Password: "pw"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "secret path instead of key", mutate: func(c *Config) {
			c.Gateway.StoreKey = ""
			c.Gateway.StoreKeySecretPath = "intesa/store-key"
		}},
		{name: "missing db password", mutate: func(c *Config) { c.Database.Password = "" }, wantErr: "DB_PASSWORD"},
		{name: "missing merchant", mutate: func(c *Config) { c.Gateway.MerchantID = "" }, wantErr: "INTESA_MERCHANT_ID"},
		{name: "missing store key", mutate: func(c *Config) { c.Gateway.StoreKey = "" }, wantErr: "INTESA_STORE_KEY"},
		{name: "bad mode", mutate: func(c *Config) { c.Gateway.Mode = "sandbox" }, wantErr: "INTESA_MODE"},
		{name: "missing order api keys", mutate: func(c *Config) { c.Server.OrderAPIKeys = nil }, wantErr: "ORDER_API_KEYS"},
		{name: "blank order api keys", mutate: func(c *Config) { c.Server.OrderAPIKeys = []string{" ", ""} }, wantErr: "ORDER_API_KEYS"},
		{name: "mail without sender", mutate: func(c *Config) { c.Mail.Enabled = true }, wantErr: "MAIL_FROM"},
		{name: "mail with sender", mutate: func(c *Config) {
			c.Mail.Enabled = true
			c.Mail.From = "shop@example.com"
		}},
		{name: "bad base url", mutate: func(c *Config) { c.Server.PublicBaseURL = "not a url" }, wantErr: "PUBLIC_BASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGatewayConfig_Domain(t *testing.T) {
	g := GatewayConfig{
		MerchantID:      "M123",
		StoreKey:        "SECRET",
		Mode:            "live",
		LiveRedirectURL: "https://live",
		TestRedirectURL: "https://test",
		ShopURL:         "https://shop.example",
		Label:           "Banca Intesa",
		DisplayLabel:    "Card",
		UseDisplayName:  true,
		SendMailSuccess: true,
		ShowReportFail:  true,
		LogResponse:     true,
	}

	d := g.Domain()
	require.NoError(t, d.Validate())
	assert.Equal(t, "https://live", d.RedirectURL())
	assert.Equal(t, "Card", d.GatewayName())
	assert.Equal(t, domain.OnOutcome{Success: true}, d.SendMail)
	assert.Equal(t, domain.OnOutcome{Fail: true}, d.ShowReport)
	assert.Equal(t, domain.APILogging{Response: true}, d.APILogging)
}

func TestGatewayConfig_ResolveStoreKey(t *testing.T) {
	ctx := context.Background()

	t.Run("env key wins", func(t *testing.T) {
		sm := new(mockSecretManager)
		g := GatewayConfig{StoreKey: "ENV", StoreKeySecretPath: "intesa/store-key"}
		require.NoError(t, g.ResolveStoreKey(ctx, sm))
		assert.Equal(t, "ENV", g.StoreKey)
		sm.AssertNotCalled(t, "GetSecret", mock.Anything, mock.Anything)
	})

	t.Run("resolved from secret manager", func(t *testing.T) {
		sm := new(mockSecretManager)
		sm.On("GetSecret", ctx, "intesa/store-key").Return(&ports.Secret{Value: "FROMVAULT"}, nil)

		g := GatewayConfig{StoreKeySecretPath: "intesa/store-key"}
		require.NoError(t, g.ResolveStoreKey(ctx, sm))
		assert.Equal(t, "FROMVAULT", g.StoreKey)
		sm.AssertExpectations(t)
	})

	t.Run("secret manager failure", func(t *testing.T) {
		sm := new(mockSecretManager)
		sm.On("GetSecret", ctx, "intesa/store-key").Return(nil, errors.New("forbidden"))

		g := GatewayConfig{StoreKeySecretPath: "intesa/store-key"}
		err := g.ResolveStoreKey(ctx, sm)
		require.Error(t, err)
		assert.True(t, domain.IsDomainError(err, domain.ErrorCodeSecretUnavailable))
		assert.Empty(t, g.StoreKey)
	})

	t.Run("empty secret", func(t *testing.T) {
		sm := new(mockSecretManager)
		sm.On("GetSecret", ctx, "intesa/store-key").Return(&ports.Secret{}, nil)

		g := GatewayConfig{StoreKeySecretPath: "intesa/store-key"}
		assert.True(t, domain.IsDomainError(g.ResolveStoreKey(ctx, sm), domain.ErrorCodeSecretUnavailable))
	})

	t.Run("no secret manager", func(t *testing.T) {
		g := GatewayConfig{StoreKeySecretPath: "intesa/store-key"}
		assert.True(t, domain.IsDomainError(g.ResolveStoreKey(ctx, nil), domain.ErrorCodeSecretUnavailable))
	})
}

func TestServerConfig_CheckoutURLs(t *testing.T) {
	s := ServerConfig{PublicBaseURL: "https://shop.example/"}

	ret, cancel := s.CheckoutURLs("1001")
	assert.Equal(t, "https://shop.example/checkout/1001/payment/return", ret)
	assert.Equal(t, "https://shop.example/checkout/1001/payment/cancel", cancel)
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.ConnectionString())
}
