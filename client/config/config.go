// Package config provides storage, schema and logging settings for the RevPop client.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	z "github.com/Oudwins/zog"

	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
	"github.com/Revolution-Populi/revpop-samples/crypto/keys"
	"github.com/Revolution-Populi/revpop-samples/types/pdata"
)

// Storage backend names
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMongo  = "mongo"
	BackendIPFS   = "ipfs"
)

// Defaults of the original cloud storage service
const (
	DefaultMongoDatabase   = "revpop"
	DefaultMongoCollection = "personal_data"
	DefaultIPFSAPI         = "http://127.0.0.1:5001"

	// IPFSLocalAPI selects the node whose API address is recorded in the
	// local IPFS repo ($IPFS_PATH/api)
	IPFSLocalAPI = "local"
)

// Environment variables read by FromEnv
const (
	EnvStorageBackend    = "REVPOP_STORAGE_BACKEND"
	EnvStorageDir        = "REVPOP_STORAGE_DIR"
	EnvMongoURI          = "REVPOP_MONGO_URI"
	EnvMongoDatabase     = "REVPOP_MONGO_DATABASE"
	EnvMongoCollection   = "REVPOP_MONGO_COLLECTION"
	EnvIPFSAPI           = "REVPOP_IPFS_API"
	EnvCatalog           = "REVPOP_CATALOG"
	EnvAddressPrefix     = "REVPOP_ADDRESS_PREFIX"
	EnvContentEncryption = "REVPOP_CONTENT_ENCRYPTION"
	EnvLogLevel          = "REVPOP_LOG_LEVEL"
	EnvLogFormat         = "REVPOP_LOG_FORMAT"
)

// StorageConfig selects and configures the blob store.
type StorageConfig struct {
	// Backend is one of memory, file, badger, mongo, ipfs
	Backend string `json:"backend"`

	// Dir is the data directory of the file and badger backends
	Dir string `json:"dir,omitempty"`

	// Mongo connection settings
	MongoURI        string `json:"mongo_uri,omitempty"`
	MongoDatabase   string `json:"mongo_database,omitempty"`
	MongoCollection string `json:"mongo_collection,omitempty"`

	// IPFSAPI is the kubo RPC endpoint, or "local"
	IPFSAPI string `json:"ipfs_api,omitempty"`
}

// Config defines the overall configuration for the RevPop client.
type Config struct {
	Storage StorageConfig `json:"storage"`

	// Catalog lists the disclosable paths of personal data records
	Catalog []string `json:"catalog,omitempty"`

	// AddressPrefix of public key strings
	AddressPrefix string `json:"address_prefix"`

	// ContentEncryption disabled produces noencrypt content keys
	ContentEncryption bool `json:"content_encryption"`

	// Logging configuration
	LogLevel  string `json:"log_level,omitempty"`  // trace, debug, info, warn, error
	LogFormat string `json:"log_format,omitempty"` // json, text
}

// DefaultConfig returns an in-memory configuration with the default catalog.
func DefaultConfig() *Config {
	return &Config{
		Storage:           MemoryStorage(),
		Catalog:           pdata.DefaultCatalog.Paths(),
		AddressPrefix:     keys.DefaultPrefix,
		ContentEncryption: true,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// MemoryStorage keeps blobs in process memory.
func MemoryStorage() StorageConfig {
	return StorageConfig{Backend: BackendMemory}
}

// FileStorage keeps one file per blob under dir.
func FileStorage(dir string) StorageConfig {
	return StorageConfig{Backend: BackendFile, Dir: dir}
}

// BadgerStorage keeps blobs in a badger database under dir.
func BadgerStorage(dir string) StorageConfig {
	return StorageConfig{Backend: BackendBadger, Dir: dir}
}

// MongoStorage keeps blobs in the default collection of the storage service.
func MongoStorage(uri string) StorageConfig {
	return StorageConfig{
		Backend:         BackendMongo,
		MongoURI:        uri,
		MongoDatabase:   DefaultMongoDatabase,
		MongoCollection: DefaultMongoCollection,
	}
}

// IPFSStorage adds blobs to the kubo node at api.
func IPFSStorage(api string) StorageConfig {
	if api == "" {
		api = DefaultIPFSAPI
	}
	return StorageConfig{Backend: BackendIPFS, IPFSAPI: api}
}

// Load reads a JSON configuration file over the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, clienterrors.WrapError(err, clienterrors.ErrMissingConfig, "reading %s", path)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, clienterrors.WrapError(err, clienterrors.ErrInvalidConfig, "parsing %s", path)
	}
	cfg.Storage.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv returns the defaults overlaid with REVPOP_* environment variables.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.Storage.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays the set REVPOP_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		EnvStorageBackend:  &c.Storage.Backend,
		EnvStorageDir:      &c.Storage.Dir,
		EnvMongoURI:        &c.Storage.MongoURI,
		EnvMongoDatabase:   &c.Storage.MongoDatabase,
		EnvMongoCollection: &c.Storage.MongoCollection,
		EnvIPFSAPI:         &c.Storage.IPFSAPI,
		EnvAddressPrefix:   &c.AddressPrefix,
		EnvLogLevel:        &c.LogLevel,
		EnvLogFormat:       &c.LogFormat,
	}
	for env, dst := range strs {
		if v, ok := os.LookupEnv(env); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(EnvCatalog); ok {
		c.Catalog = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.Catalog = append(c.Catalog, p)
			}
		}
	}

	if v, ok := os.LookupEnv(EnvContentEncryption); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return clienterrors.WrapError(err, clienterrors.ErrInvalidConfig, "%s", EnvContentEncryption)
		}
		c.ContentEncryption = enabled
	}

	return nil
}

// configSchema validates the fields shared by every backend
var configSchema = z.Struct(z.Shape{
	"backend": z.String().Required().OneOf(
		[]string{BackendMemory, BackendFile, BackendBadger, BackendMongo, BackendIPFS},
		z.Message("Invalid storage backend"),
	),
	"prefix": z.String().Required().Min(1, z.Message("Address prefix cannot be empty")),
	"level": z.String().Required().OneOf(
		[]string{"trace", "debug", "info", "warn", "error", "disabled"},
		z.Message("Invalid log level"),
	),
	"format": z.String().Required().OneOf(
		[]string{"json", "text"},
		z.Message("Invalid log format"),
	),
	"catalog": z.Slice(z.String().Required()).Min(1, z.Message("Catalog cannot be empty")),
})

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var validated struct {
		Backend string
		Prefix  string
		Level   string
		Format  string
		Catalog []string
	}

	catalog := make([]any, len(c.Catalog))
	for i, p := range c.Catalog {
		catalog[i] = p
	}

	errs := configSchema.Parse(map[string]any{
		"backend": c.Storage.Backend,
		"prefix":  c.AddressPrefix,
		"level":   c.LogLevel,
		"format":  c.LogFormat,
		"catalog": catalog,
	}, &validated)
	if errs != nil {
		return clienterrors.WrapError(fmt.Errorf("%v", errs), clienterrors.ErrInvalidConfig, "config validation failed")
	}

	if _, err := pdata.NewCatalog(c.Catalog...); err != nil {
		return clienterrors.WrapError(err, clienterrors.ErrInvalidConfig, "catalog")
	}

	return c.Storage.Validate()
}

// applyDefaults fills the backend settings that have a well-known default
func (sc *StorageConfig) applyDefaults() {
	switch sc.Backend {
	case BackendMongo:
		if sc.MongoDatabase == "" {
			sc.MongoDatabase = DefaultMongoDatabase
		}
		if sc.MongoCollection == "" {
			sc.MongoCollection = DefaultMongoCollection
		}
	case BackendIPFS:
		if sc.IPFSAPI == "" {
			sc.IPFSAPI = DefaultIPFSAPI
		}
	}
}

// Validate checks the settings required by the selected backend.
func (sc *StorageConfig) Validate() error {
	switch sc.Backend {
	case BackendMemory:
	case BackendFile, BackendBadger:
		if sc.Dir == "" {
			return missingConfig("%s storage requires a directory", sc.Backend)
		}
	case BackendMongo:
		if sc.MongoURI == "" {
			return missingConfig("mongo storage requires a URI")
		}
		if sc.MongoDatabase == "" || sc.MongoCollection == "" {
			return missingConfig("mongo storage requires a database and collection")
		}
	case BackendIPFS:
		if sc.IPFSAPI == "" {
			return missingConfig("ipfs storage requires an API endpoint")
		}
	default:
		return clienterrors.WrapError(fmt.Errorf("%q", sc.Backend), clienterrors.ErrInvalidConfig, "unknown storage backend")
	}
	return nil
}

func missingConfig(format string, args ...any) error {
	return clienterrors.WrapError(fmt.Errorf(format, args...), clienterrors.ErrMissingConfig, "storage")
}

// PartCatalog builds the record catalog from the configured paths.
func (c *Config) PartCatalog() (pdata.Catalog, error) {
	cat, err := pdata.NewCatalog(c.Catalog...)
	if err != nil {
		return pdata.Catalog{}, clienterrors.WrapError(err, clienterrors.ErrInvalidConfig, "catalog")
	}
	return cat, nil
}
