package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	pkgerrors "github.com/depmatrix/depmatrix/pkg/errors"
)

// =============================================================================
// Configuration
// =============================================================================

// Backend names accepted in the configuration file.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"

	SessionBackendFile  = "file"
	SessionBackendMongo = "mongo"
)

// Config is the on-disk CLI configuration, read from
// ~/.config/depmatrix/config.toml. All fields have working defaults so
// the file is optional.
type Config struct {
	// Threshold is the branching threshold above which expanded nodes
	// are collapsed into synthetic prefix groups. Zero keeps the
	// built-in default.
	Threshold int `toml:"threshold"`

	Viewport ViewportConfig `toml:"viewport"`
	Cache    CacheConfig    `toml:"cache"`
	Sessions SessionsConfig `toml:"sessions"`
	Server   ServerConfig   `toml:"server"`
}

// ViewportConfig sets the default layout viewport for one-shot commands.
type ViewportConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// CacheConfig selects and parameterizes the matrix cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// SessionsConfig selects and parameterizes the session store backend.
type SessionsConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServerConfig parameterizes the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Viewport: ViewportConfig{Width: 1200, Height: 800},
		Cache:    CacheConfig{Backend: CacheBackendFile, RedisAddr: "localhost:6379"},
		Sessions: SessionsConfig{Backend: SessionBackendFile, MongoURI: "mongodb://localhost:27017", MongoDatabase: appName},
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// LoadConfig reads the configuration from path, or from the default
// location when path is empty. A missing file is not an error and
// yields the defaults; a malformed file is.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		var err error
		path, err = configPath()
		if err != nil {
			return DefaultConfig(), err
		}
	}

	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// configPath returns the config file location using XDG standard
// (~/.config/depmatrix/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case "", CacheBackendFile, CacheBackendRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Sessions.Backend {
	case "", SessionBackendFile, SessionBackendMongo:
	default:
		return fmt.Errorf("unknown sessions backend %q", c.Sessions.Backend)
	}
	if err := pkgerrors.ValidateThreshold(c.Threshold); err != nil {
		return err
	}
	return pkgerrors.ValidateViewport(c.Viewport.Width, c.Viewport.Height)
}
