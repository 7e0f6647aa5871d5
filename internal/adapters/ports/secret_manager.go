package ports

import (
	"context"
)

// Secret is a resolved secret value. Value must never be logged.
type Secret struct {
	Value     string
	Version   string
	Source    string // where the value came from: file, an AWS ARN, or a Vault KV path
	CreatedAt string // RFC 3339 when the backend reports it
}

// SecretManagerAdapter resolves the merchant store key at startup.
// Remote implementations keep a TTL cache so repeated lookups stay local.
type SecretManagerAdapter interface {
	// GetSecret returns the secret stored under path: an AWS name or ARN,
	// a Vault KV path below the mount, or a file below the local base directory
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
