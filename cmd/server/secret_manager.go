package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"github.com/kevin07696/intesa-checkout/internal/adapters/secrets"
	"github.com/kevin07696/intesa-checkout/internal/config"
)

// initSecretManager builds the secret manager named by SECRET_MANAGER.
// Supported values:
//   - env: no secret manager, INTESA_STORE_KEY must be set (default)
//   - local: files under SECRET_LOCAL_PATH
//   - aws: AWS Secrets Manager in AWS_REGION
//   - vault: HashiCorp Vault at VAULT_ADDR
func initSecretManager(ctx context.Context, cfg config.SecretsConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	switch cfg.Provider {
	case "", "env":
		return nil, nil
	case "local":
		logger.Warn("Using local file secret manager - not for production",
			zap.String("path", cfg.LocalPath),
		)
		return secrets.NewLocalSecretManager(cfg.LocalPath, logger), nil
	case "aws":
		awsCfg := secrets.DefaultAWSSecretsManagerConfig(cfg.AWSRegion)
		awsCfg.Endpoint = cfg.AWSEndpoint
		awsCfg.CacheTTL = cfg.CacheTTL
		return secrets.NewAWSSecretsManagerAdapter(ctx, awsCfg, logger)
	case "vault":
		vaultCfg := secrets.DefaultVaultConfig(cfg.VaultAddress)
		vaultCfg.Token = cfg.VaultToken
		vaultCfg.MountPath = cfg.VaultMountPath
		vaultCfg.CacheTTL = cfg.CacheTTL
		return secrets.NewVaultAdapter(ctx, vaultCfg, logger)
	default:
		return nil, fmt.Errorf("unknown SECRET_MANAGER %q", cfg.Provider)
	}
}
