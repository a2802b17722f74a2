package config

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	// ReleaseMode switches gin to release mode.
	ReleaseMode bool `mapstructure:"release_mode"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "mongo" or "memory"
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

// S3Config configures history exports. Exports are disabled when
// BucketName is empty.
type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	URLExpiry       time.Duration `mapstructure:"url_expiry"`
}

// Enabled reports whether an export bucket is configured.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// SessionConfig selects where active workouts are kept between restarts.
type SessionConfig struct {
	Store        string        `mapstructure:"store"` // "bolt" or "memory"
	Path         string        `mapstructure:"path"`  // bbolt file for the "bolt" store
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// DBPath returns the bbolt file for the "bolt" store. An empty Path
// resolves to active_workouts.db in the XDG data directory, creating the
// parent directories if needed.
func (c SessionConfig) DBPath() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}
	return xdg.DataFile(filepath.Join(appDir, sessionDBFile))
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

const (
	appDir        = "glog"
	sessionDBFile = "active_workouts.db"
)

const (
	DatabaseMongo  = "mongo"
	DatabaseMemory = "memory"

	SessionStoreBolt   = "bolt"
	SessionStoreMemory = "memory"
)

var (
	ErrMissingJWTSecret    = errors.New("jwt.secret must be set")
	ErrInvalidDatabase     = errors.New(`database.driver must be "mongo" or "memory"`)
	ErrInvalidSessionStore = errors.New(`session.store must be "bolt" or "memory"`)
)

// LoadConfig reads configuration from config.yaml in path, overridden by
// environment variables (server.address -> SERVER_ADDRESS).
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	// A missing file is fine; env vars and defaults still apply.
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	return config, config.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.release_mode", false)
	v.SetDefault("database.driver", DatabaseMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "glog")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.url_expiry", "15m")
	// Keys with defaults are visible to AutomaticEnv during Unmarshal.
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("session.store", SessionStoreBolt)
	v.SetDefault("session.path", "")
	v.SetDefault("session.tick_interval", "1s")
	v.SetDefault("log.level", "info")
}

// Validate checks settings that have no usable default.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	switch c.Database.Driver {
	case DatabaseMongo, DatabaseMemory:
	default:
		return ErrInvalidDatabase
	}
	switch c.Session.Store {
	case SessionStoreBolt, SessionStoreMemory:
	default:
		return ErrInvalidSessionStore
	}
	return nil
}
