package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Cache.Backend != CacheBackendFile {
		t.Errorf("cache backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Sessions.Backend != SessionBackendFile {
		t.Errorf("sessions backend = %q, want file", cfg.Sessions.Backend)
	}
	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		t.Errorf("viewport = %+v, want positive defaults", cfg.Viewport)
	}
	if cfg.Server.Addr == "" {
		t.Error("server addr should have a default")
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing file should yield defaults, got %v", err)
	}
	if cfg.Cache.Backend != CacheBackendFile {
		t.Errorf("cache backend = %q, want file default", cfg.Cache.Backend)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
threshold = 12

[viewport]
width = 1600.0
height = 900.0

[cache]
backend = "redis"
redis_addr = "cache.internal:6379"

[sessions]
backend = "mongo"
mongo_uri = "mongodb://db.internal:27017"
mongo_database = "matrices"

[server]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Threshold != 12 {
		t.Errorf("threshold = %d, want 12", cfg.Threshold)
	}
	if cfg.Viewport.Width != 1600 || cfg.Viewport.Height != 900 {
		t.Errorf("viewport = %+v, want 1600x900", cfg.Viewport)
	}
	if cfg.Cache.Backend != CacheBackendRedis {
		t.Errorf("cache backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Cache.RedisAddr != "cache.internal:6379" {
		t.Errorf("redis addr = %q", cfg.Cache.RedisAddr)
	}
	if cfg.Sessions.Backend != SessionBackendMongo {
		t.Errorf("sessions backend = %q, want mongo", cfg.Sessions.Backend)
	}
	if cfg.Sessions.MongoDatabase != "matrices" {
		t.Errorf("mongo database = %q", cfg.Sessions.MongoDatabase)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("threshold = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Threshold != 8 {
		t.Errorf("threshold = %d, want 8", cfg.Threshold)
	}
	if cfg.Server.Addr != DefaultConfig().Server.Addr {
		t.Errorf("server addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed toml", "threshold = [[[\n"},
		{"unknown cache backend", "[cache]\nbackend = \"memcached\"\n"},
		{"unknown sessions backend", "[sessions]\nbackend = \"dynamo\"\n"},
		{"negative threshold", "threshold = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
