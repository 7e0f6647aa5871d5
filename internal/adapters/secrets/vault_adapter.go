package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"go.uber.org/zap"
)

// Vault auth methods
const (
	VaultAuthToken   = "token"
	VaultAuthAppRole = "approle"
)

// VaultConfig points at the KV engine holding the store key
type VaultConfig struct {
	Address   string
	Namespace string // Vault Enterprise only

	AuthMethod string // token or approle
	Token      string
	RoleID     string
	SecretID   string

	MountPath string
	KVVersion string // v1 or v2

	CacheTTL    time.Duration
	EnableCache bool
}

// DefaultVaultConfig uses token auth against a KV v2 engine mounted at "secret"
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:     address,
		AuthMethod:  VaultAuthToken,
		MountPath:   "secret",
		KVVersion:   "v2",
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

// kvReader is satisfied by *vault.Logical
type kvReader interface {
	ReadWithContext(ctx context.Context, path string) (*vault.Secret, error)
}

type vaultAdapter struct {
	kv        kvReader
	mountPath string
	kvVersion string
	logger    *zap.Logger
	cache     *secretCache
}

// NewVaultAdapter logs in to Vault and returns an adapter reading KV secrets
func NewVaultAdapter(ctx context.Context, cfg *VaultConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	clientConfig := vault.DefaultConfig()
	clientConfig.Address = cfg.Address

	client, err := vault.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create Vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := vaultLogin(ctx, client.Logical(), cfg)
	if err != nil {
		return nil, fmt.Errorf("vault login (%s): %w", cfg.AuthMethod, err)
	}
	client.SetToken(token)

	logger.Info("Vault adapter initialized",
		zap.String("address", cfg.Address),
		zap.String("auth_method", cfg.AuthMethod),
		zap.String("mount_path", cfg.MountPath),
	)
	return newVaultAdapter(client.Logical(), cfg, logger), nil
}

func newVaultAdapter(kv kvReader, cfg *VaultConfig, logger *zap.Logger) *vaultAdapter {
	return &vaultAdapter{
		kv:        kv,
		mountPath: cfg.MountPath,
		kvVersion: cfg.KVVersion,
		logger:    logger,
		cache:     newSecretCache(cfg.EnableCache, cfg.CacheTTL),
	}
}

// vaultLogin returns the client token for the configured auth method
func vaultLogin(ctx context.Context, logical *vault.Logical, cfg *VaultConfig) (string, error) {
	switch cfg.AuthMethod {
	case VaultAuthToken, "":
		if cfg.Token == "" {
			return "", errors.New("VAULT_TOKEN is required")
		}
		return cfg.Token, nil
	case VaultAuthAppRole:
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return "", errors.New("role_id and secret_id are required")
		}
		resp, err := logical.WriteWithContext(ctx, "auth/approle/login", map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		})
		if err != nil {
			return "", err
		}
		if resp == nil || resp.Auth == nil {
			return "", errors.New("login response carries no token")
		}
		return resp.Auth.ClientToken, nil
	}
	return "", fmt.Errorf("unsupported auth method %q", cfg.AuthMethod)
}

// kvPath maps a logical secret path onto the KV engine's read path
func kvPath(mount, version, path string) string {
	if version == "v2" {
		return mount + "/data/" + path
	}
	return mount + "/" + path
}

// GetSecret reads path below the mount, e.g. "intesa-checkout/store-key"
func (a *vaultAdapter) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := a.cache.get(path); cached != nil {
		return cached, nil
	}

	start := time.Now()
	resp, err := a.kv.ReadWithContext(ctx, kvPath(a.mountPath, a.kvVersion, path))
	if err != nil {
		a.logger.Error("Vault read failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("read %s from Vault: %w", path, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("secret not found: %s", path)
	}

	secret, err := secretFromKV(resp.Data, a.kvVersion)
	if err != nil {
		return nil, fmt.Errorf("secret %s: %w", path, err)
	}
	secret.Source = "vault:" + a.mountPath

	a.logger.Info("Secret loaded from Vault",
		zap.String("path", path),
		zap.String("version", secret.Version),
		zap.Duration("elapsed", time.Since(start)),
	)
	a.cache.set(path, secret)
	return secret, nil
}

// secretFromKV unpacks a KV read. The store key is taken from "store_key",
// falling back to "value"; KV v2 nests both under "data".
func secretFromKV(raw map[string]interface{}, kvVersion string) (*ports.Secret, error) {
	secret := &ports.Secret{Version: "1"}

	data := raw
	if kvVersion == "v2" {
		inner, ok := raw["data"].(map[string]interface{})
		if !ok {
			return nil, errors.New("KV v2 response has no data object")
		}
		data = inner

		meta, _ := raw["metadata"].(map[string]interface{})
		if v, ok := meta["version"].(json.Number); ok {
			secret.Version = v.String()
		}
		if created, ok := meta["created_time"].(string); ok {
			secret.CreatedAt = created
		}
	}

	for _, key := range []string{StoreKeyField, "value"} {
		if s, ok := data[key].(string); ok && s != "" {
			secret.Value = s
			return secret, nil
		}
	}
	return nil, errors.New("secret value is empty or not found")
}
