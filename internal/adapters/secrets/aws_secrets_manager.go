package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"go.uber.org/zap"
)

// AWSSecretsManagerConfig selects the region and endpoint of the store key secret
type AWSSecretsManagerConfig struct {
	Region   string
	Profile  string // shared config profile, for local runs
	Endpoint string // LocalStack or VPC endpoint override

	CacheTTL    time.Duration
	EnableCache bool
}

// DefaultAWSSecretsManagerConfig caches lookups for five minutes
func DefaultAWSSecretsManagerConfig(region string) *AWSSecretsManagerConfig {
	return &AWSSecretsManagerConfig{
		Region:      region,
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

// secretValueGetter is the one Secrets Manager call the adapter needs
type secretValueGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type awsSecretsManagerAdapter struct {
	client secretValueGetter
	logger *zap.Logger
	cache  *secretCache
}

// NewAWSSecretsManagerAdapter loads the default AWS credential chain and returns
// an adapter reading string secrets by name or ARN
func NewAWSSecretsManagerAdapter(ctx context.Context, cfg *AWSSecretsManagerConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsConfig, func(o *secretsmanager.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	logger.Info("AWS Secrets Manager adapter initialized",
		zap.String("region", cfg.Region),
		zap.Bool("custom_endpoint", cfg.Endpoint != ""),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)
	return newAWSAdapter(client, cfg, logger), nil
}

func newAWSAdapter(client secretValueGetter, cfg *AWSSecretsManagerConfig, logger *zap.Logger) *awsSecretsManagerAdapter {
	return &awsSecretsManagerAdapter{
		client: client,
		logger: logger,
		cache:  newSecretCache(cfg.EnableCache, cfg.CacheTTL),
	}
}

// GetSecret reads the SecretString of path. Binary secrets are rejected.
func (a *awsSecretsManagerAdapter) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := a.cache.get(path); cached != nil {
		return cached, nil
	}

	start := time.Now()
	out, err := a.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(path)})
	if err != nil {
		a.logger.Error("Secrets Manager lookup failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("get secret %s: %w", path, err)
	}

	value := extractValue(aws.ToString(out.SecretString))
	if value == "" {
		return nil, fmt.Errorf("secret %s has no string value", path)
	}

	secret := &ports.Secret{
		Value:   value,
		Version: aws.ToString(out.VersionId),
		Source:  aws.ToString(out.ARN),
	}
	if out.CreatedDate != nil {
		secret.CreatedAt = out.CreatedDate.UTC().Format(time.RFC3339)
	}

	a.logger.Info("Secret loaded from Secrets Manager",
		zap.String("path", path),
		zap.String("version", secret.Version),
		zap.Duration("elapsed", time.Since(start)),
	)
	a.cache.set(path, secret)
	return secret, nil
}
