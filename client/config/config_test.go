package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
)

// TestStoragePresets tests the pre-configured storage backends.
func TestStoragePresets(t *testing.T) {
	tests := []struct {
		name        string
		storage     StorageConfig
		expectValid bool
	}{
		{name: "memory", storage: MemoryStorage(), expectValid: true},
		{name: "file", storage: FileStorage(t.TempDir()), expectValid: true},
		{name: "badger", storage: BadgerStorage(t.TempDir()), expectValid: true},
		{name: "mongo", storage: MongoStorage("mongodb://localhost:27017"), expectValid: true},
		{name: "ipfs", storage: IPFSStorage(""), expectValid: true},
		{name: "file without dir", storage: FileStorage(""), expectValid: false},
		{name: "mongo without uri", storage: MongoStorage(""), expectValid: false},
		{name: "unknown backend", storage: StorageConfig{Backend: "s3"}, expectValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.storage.Validate()
			if tt.expectValid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				require.True(t, clienterrors.IsConfigurationError(err))
			}
		})
	}
}

// TestConfigValidation tests client configuration validation.
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "json logs", mutate: func(c *Config) { c.LogFormat = "json" }},
		{name: "custom catalog", mutate: func(c *Config) { c.Catalog = []string{"name.first", "name.last"} }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantError: true},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantError: true},
		{name: "empty prefix", mutate: func(c *Config) { c.AddressPrefix = "" }, wantError: true},
		{name: "empty catalog", mutate: func(c *Config) { c.Catalog = nil }, wantError: true},
		{name: "overlapping catalog", mutate: func(c *Config) { c.Catalog = []string{"name", "name.first"} }, wantError: true},
		{name: "bad backend", mutate: func(c *Config) { c.Storage.Backend = "s3" }, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantError {
				require.Error(t, err)
				require.True(t, clienterrors.IsConfigurationError(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "revpop.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"storage": {"backend": "badger", "dir": "/var/lib/revpop"},
		"content_encryption": false,
		"log_format": "json"
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, BackendBadger, cfg.Storage.Backend)
	require.Equal(t, "/var/lib/revpop", cfg.Storage.Dir)
	require.False(t, cfg.ContentEncryption)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "RVP", cfg.AddressPrefix)
	require.Equal(t, []string{"email", "name", "phone", "photo"}, cfg.Catalog)

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, clienterrors.ErrMissingConfig)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"storage":`), 0o600))
	_, err = Load(bad)
	require.ErrorIs(t, err, clienterrors.ErrInvalidConfig)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvStorageBackend, BackendMongo)
	t.Setenv(EnvMongoURI, "mongodb://db:27017")
	t.Setenv(EnvCatalog, "email, name ,phone")
	t.Setenv(EnvContentEncryption, "false")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, BackendMongo, cfg.Storage.Backend)
	require.Equal(t, "mongodb://db:27017", cfg.Storage.MongoURI)
	require.Equal(t, []string{"email", "name", "phone"}, cfg.Catalog)
	require.False(t, cfg.ContentEncryption)
	require.Equal(t, "debug", cfg.LogLevel)

	cat, err := cfg.PartCatalog()
	require.NoError(t, err)
	require.Equal(t, 3, cat.Len())
}

func TestFromEnvErrors(t *testing.T) {
	t.Setenv(EnvContentEncryption, "maybe")
	_, err := FromEnv()
	require.ErrorIs(t, err, clienterrors.ErrInvalidConfig)
}

func TestFromEnvMongoNeedsURI(t *testing.T) {
	t.Setenv(EnvStorageBackend, BackendMongo)
	_, err := FromEnv()
	require.ErrorIs(t, err, clienterrors.ErrMissingConfig)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	cfg := DefaultConfig()
	cfg.LogFormat = "json"
	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("stored blob", "id", "bafk")
	logger.Debug("filtered")
	require.Contains(t, buf.String(), `"id":"bafk"`)
	require.NotContains(t, buf.String(), "filtered")

	cfg.LogLevel = "nope"
	_, err = cfg.NewLogger(&buf)
	require.ErrorIs(t, err, clienterrors.ErrInvalidConfig)

	cfg.LogLevel = "info"
	cfg.LogFormat = "xml"
	_, err = cfg.NewLogger(&buf)
	require.ErrorIs(t, err, clienterrors.ErrInvalidConfig)
}
