package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	vault "github.com/hashicorp/vault/api"
	"github.com/kevin07696/intesa-checkout/internal/adapters/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockSecretValueGetter struct {
	mock.Mock
}

func (m *mockSecretValueGetter) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*secretsmanager.GetSecretValueOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: "SECRET", want: "SECRET"},
		{name: "plain with newline", raw: "SECRET\n", want: "SECRET"},
		{name: "inner spaces kept", raw: " a b ", want: " a b "},
		{name: "json store_key", raw: `{"store_key":"SECRET","value":"other"}`, want: "SECRET"},
		{name: "json value", raw: `{"value":"SECRET"}`, want: "SECRET"},
		{name: "json without known key", raw: `{"x":"y"}`, want: ""},
		{name: "broken json is plain", raw: `{not json`, want: "{not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractValue(tt.raw))
		})
	}
}

func TestSecretCache(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := newSecretCache(true, time.Minute)
	cache.now = func() time.Time { return now }

	secret := &ports.Secret{Value: "SECRET"}
	cache.set("k", secret)
	assert.Same(t, secret, cache.get("k"))

	now = now.Add(2 * time.Minute)
	assert.Nil(t, cache.get("k"), "expired entry must not be returned")

	cache.set("k", secret)
	cache.invalidate("k")
	assert.Nil(t, cache.get("k"))

	disabled := newSecretCache(false, time.Minute)
	disabled.set("k", secret)
	assert.Nil(t, disabled.get("k"))
}

func TestAWSSecretsManagerAdapter_GetSecret(t *testing.T) {
	ctx := context.Background()
	client := new(mockSecretValueGetter)
	client.On("GetSecretValue", ctx, mock.MatchedBy(func(in *secretsmanager.GetSecretValueInput) bool {
		return aws.ToString(in.SecretId) == "intesa-checkout/store-key"
	})).Return(&secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"store_key":"SECRET"}`),
		VersionId:    aws.String("v7"),
		ARN:          aws.String("arn:aws:secretsmanager:eu-central-1:1:secret:intesa"),
	}, nil).Once()

	adapter := newAWSAdapter(client, DefaultAWSSecretsManagerConfig("eu-central-1"), zaptest.NewLogger(t))

	secret, err := adapter.GetSecret(ctx, "intesa-checkout/store-key")
	require.NoError(t, err)
	assert.Equal(t, "SECRET", secret.Value)
	assert.Equal(t, "v7", secret.Version)
	assert.Equal(t, "arn:aws:secretsmanager:eu-central-1:1:secret:intesa", secret.Source)

	// Second read is served from cache; Once() would fail a second client call
	again, err := adapter.GetSecret(ctx, "intesa-checkout/store-key")
	require.NoError(t, err)
	assert.Equal(t, "SECRET", again.Value)

	client.AssertExpectations(t)
}

func TestAWSSecretsManagerAdapter_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("client error", func(t *testing.T) {
		client := new(mockSecretValueGetter)
		client.On("GetSecretValue", ctx, mock.Anything).Return(nil, errors.New("access denied"))

		adapter := newAWSAdapter(client, DefaultAWSSecretsManagerConfig("eu-central-1"), zaptest.NewLogger(t))
		_, err := adapter.GetSecret(ctx, "missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})

	t.Run("binary secret", func(t *testing.T) {
		client := new(mockSecretValueGetter)
		client.On("GetSecretValue", ctx, mock.Anything).Return(&secretsmanager.GetSecretValueOutput{
			SecretBinary: []byte{1, 2, 3},
		}, nil)

		adapter := newAWSAdapter(client, DefaultAWSSecretsManagerConfig("eu-central-1"), zaptest.NewLogger(t))
		_, err := adapter.GetSecret(ctx, "binary")
		require.Error(t, err)
	})
}

func TestSecretFromKV(t *testing.T) {
	t.Run("kv v2", func(t *testing.T) {
		secret, err := secretFromKV(map[string]interface{}{
			"data": map[string]interface{}{"store_key": "SECRET"},
			"metadata": map[string]interface{}{
				"version":      json.Number("3"),
				"created_time": "2026-01-01T00:00:00Z",
			},
		}, "v2")
		require.NoError(t, err)
		assert.Equal(t, "SECRET", secret.Value)
		assert.Equal(t, "3", secret.Version)
		assert.Equal(t, "2026-01-01T00:00:00Z", secret.CreatedAt)
	})

	t.Run("kv v1 value key", func(t *testing.T) {
		secret, err := secretFromKV(map[string]interface{}{"value": "SECRET"}, "v1")
		require.NoError(t, err)
		assert.Equal(t, "SECRET", secret.Value)
		assert.Equal(t, "1", secret.Version)
	})

	t.Run("v2 without data", func(t *testing.T) {
		_, err := secretFromKV(map[string]interface{}{"store_key": "SECRET"}, "v2")
		require.Error(t, err)
	})

	t.Run("empty value", func(t *testing.T) {
		_, err := secretFromKV(map[string]interface{}{"other": "x"}, "v1")
		require.Error(t, err)
	})
}

type fakeKV struct {
	reads map[string]*vault.Secret
	calls []string
}

func (f *fakeKV) ReadWithContext(_ context.Context, path string) (*vault.Secret, error) {
	f.calls = append(f.calls, path)
	if secret, ok := f.reads[path]; ok {
		return secret, nil
	}
	return nil, nil
}

func TestVaultAdapter_GetSecret(t *testing.T) {
	kv := &fakeKV{reads: map[string]*vault.Secret{
		"secret/data/intesa/store-key": {Data: map[string]interface{}{
			"data":     map[string]interface{}{"store_key": "SECRET"},
			"metadata": map[string]interface{}{"version": json.Number("2")},
		}},
	}}
	adapter := newVaultAdapter(kv, DefaultVaultConfig("http://vault:8200"), zaptest.NewLogger(t))
	ctx := context.Background()

	secret, err := adapter.GetSecret(ctx, "intesa/store-key")
	require.NoError(t, err)
	assert.Equal(t, "SECRET", secret.Value)
	assert.Equal(t, "2", secret.Version)
	assert.Equal(t, "vault:secret", secret.Source)

	_, err = adapter.GetSecret(ctx, "intesa/store-key")
	require.NoError(t, err)
	assert.Len(t, kv.calls, 1, "second read is cached")

	_, err = adapter.GetSecret(ctx, "intesa/missing")
	assert.ErrorContains(t, err, "secret not found")
}

func TestKVPath(t *testing.T) {
	assert.Equal(t, "secret/data/intesa/store-key", kvPath("secret", "v2", "intesa/store-key"))
	assert.Equal(t, "kv/intesa/store-key", kvPath("kv", "v1", "intesa/store-key"))
}

func TestLocalSecretManager(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "store-key"), []byte("SECRET\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "store-key.json"), []byte(`{"store_key":"JSONSECRET"}`), 0o600))

	sm := NewLocalSecretManager(dir, zaptest.NewLogger(t))
	ctx := context.Background()

	secret, err := sm.GetSecret(ctx, "store-key")
	require.NoError(t, err)
	assert.Equal(t, "SECRET", secret.Value)

	secret, err = sm.GetSecret(ctx, "store-key.json")
	require.NoError(t, err)
	assert.Equal(t, "JSONSECRET", secret.Value)

	_, err = sm.GetSecret(ctx, "missing")
	assert.Error(t, err)

	_, err = sm.GetSecret(ctx, "../etc/passwd")
	assert.Error(t, err)
}
