package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"go.uber.org/zap"
)

// fileSecretManager reads secrets from files below a base directory.
// Meant for development and docker secrets mounts.
type fileSecretManager struct {
	root   string
	logger *zap.Logger
}

// NewLocalSecretManager returns a SecretManagerAdapter over files in basePath
func NewLocalSecretManager(basePath string, logger *zap.Logger) ports.SecretManagerAdapter {
	return &fileSecretManager{root: basePath, logger: logger}
}

// GetSecret reads root/path. The file holds the plain store key or a JSON object
// with a "store_key" field. Paths may not climb out of root.
func (m *fileSecretManager) GetSecret(_ context.Context, path string) (*ports.Secret, error) {
	if strings.Contains(path, "..") {
		return nil, fmt.Errorf("secret path %q escapes the secrets directory", path)
	}
	file := filepath.Join(m.root, filepath.Clean("/"+path))

	data, err := os.ReadFile(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("secret not found: %s", path)
	case err != nil:
		return nil, fmt.Errorf("read secret %s: %w", path, err)
	}

	value := extractValue(string(data))
	if value == "" {
		return nil, fmt.Errorf("secret %s is empty", path)
	}

	m.logger.Debug("Secret loaded from file", zap.String("path", path))
	return &ports.Secret{Value: value, Version: "file", Source: "file"}, nil
}
