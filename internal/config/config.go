// Package config loads the service configuration from a YAML file overlaid by
// GENEBANK_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GENEBANK_"

// Config is the full service configuration.
type Config struct {
	Server      Server      `yaml:"server"`
	Log         Log         `yaml:"log"`
	Storage     Storage     `yaml:"storage"`
	Blob        Blob        `yaml:"blob"`
	Auth        Auth        `yaml:"auth"`
	Permissions Permissions `yaml:"permissions"`
}

type Server struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type Log struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Development bool   `yaml:"development"`
}

// Storage selects the persistent store. Driver is one of memory, sqlite,
// postgres, sqlserver or mongo.
type Storage struct {
	Driver        string `yaml:"driver"`
	SQLitePath    string `yaml:"sqlitePath"`
	PostgresDSN   string `yaml:"postgresDSN"`
	SQLServerDSN  string `yaml:"sqlserverDSN"`
	MongoURI      string `yaml:"mongoURI"`
	MongoDatabase string `yaml:"mongoDatabase"`
}

// Blob selects where uploaded CSV files are archived.
type Blob struct {
	Driver string `yaml:"driver"`
	FSRoot string `yaml:"fsRoot"`
	S3     S3     `yaml:"s3"`
}

type S3 struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	PathStyle       bool   `yaml:"pathStyle"`
}

// Auth configures bearer token verification.
type Auth struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	TokenTTL time.Duration `yaml:"tokenTTL"`
}

// Permissions configures the access policy.
type Permissions struct {
	AdminGroup           string `yaml:"adminGroup"`
	AccessionSetCreators string `yaml:"accessionSetCreators"`
}

// Default returns the configuration used when no file or variable says otherwise.
func Default() Config {
	return Config{
		Server:  Server{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
		Log:     Log{Level: "info", Format: "json"},
		Storage: Storage{Driver: "sqlite", SQLitePath: "genebank.db", MongoDatabase: "genebank"},
		Blob:    Blob{Driver: "fs", FSRoot: "./blobdata"},
		Auth:    Auth{Issuer: "genebank", TokenTTL: 24 * time.Hour},
		Permissions: Permissions{
			AdminGroup:           "admin",
			AccessionSetCreators: "admin",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from GENEBANK_* variables returned by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ADDR":                   &c.Server.Addr,
		"LOG_LEVEL":              &c.Log.Level,
		"LOG_FORMAT":             &c.Log.Format,
		"STORAGE_DRIVER":         &c.Storage.Driver,
		"SQLITE_PATH":            &c.Storage.SQLitePath,
		"POSTGRES_DSN":           &c.Storage.PostgresDSN,
		"SQLSERVER_DSN":          &c.Storage.SQLServerDSN,
		"MONGO_URI":              &c.Storage.MongoURI,
		"MONGO_DATABASE":         &c.Storage.MongoDatabase,
		"BLOB_DRIVER":            &c.Blob.Driver,
		"BLOB_FS_ROOT":           &c.Blob.FSRoot,
		"BLOB_S3_BUCKET":         &c.Blob.S3.Bucket,
		"BLOB_S3_REGION":         &c.Blob.S3.Region,
		"BLOB_S3_ENDPOINT":       &c.Blob.S3.Endpoint,
		"BLOB_S3_ACCESS_KEY":     &c.Blob.S3.AccessKeyID,
		"BLOB_S3_SECRET_KEY":     &c.Blob.S3.SecretAccessKey,
		"AUTH_SECRET":            &c.Auth.Secret,
		"AUTH_ISSUER":            &c.Auth.Issuer,
		"ADMIN_GROUP":            &c.Permissions.AdminGroup,
		"ACCESSION_SET_CREATORS": &c.Permissions.AccessionSetCreators,
	}
	for key, target := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*target = v
		}
	}
	bools := map[string]*bool{
		"LOG_DEVELOPMENT":    &c.Log.Development,
		"BLOB_S3_PATH_STYLE": &c.Blob.S3.PathStyle,
	}
	for key, target := range bools {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*target = b
		}
	}
	durations := map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT": &c.Server.ShutdownTimeout,
		"AUTH_TOKEN_TTL":   &c.Auth.TokenTTL,
	}
	for key, target := range durations {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*target = d
		}
	}
	return nil
}

// Validate rejects unknown drivers and modes.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres", "sqlserver", "mongo":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Blob.Driver {
	case "fs", "s3", "memory":
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	if c.Blob.Driver == "s3" && c.Blob.S3.Bucket == "" {
		return fmt.Errorf("blob.s3.bucket is required for the s3 driver")
	}
	switch c.Permissions.AccessionSetCreators {
	case "admin", "authenticated":
	default:
		return fmt.Errorf("permissions.accessionSetCreators must be admin or authenticated, got %q", c.Permissions.AccessionSetCreators)
	}
	if c.Permissions.AdminGroup == "" {
		return fmt.Errorf("permissions.adminGroup is required")
	}
	return nil
}
