package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/godepscan/pkg/cache"
	"github.com/matzehuels/godepscan/pkg/deps/golang"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()

	if cfg.Cache.Backend != backendFile {
		t.Errorf("Backend = %q, want %q", cfg.Cache.Backend, backendFile)
	}
	if cfg.Cache.TTL.Duration != cache.DefaultTTL {
		t.Errorf("TTL = %v, want %v", cfg.Cache.TTL.Duration, cache.DefaultTTL)
	}
	if cfg.EnsureTimeout.Duration != golang.DefaultEnsureTimeout {
		t.Errorf("EnsureTimeout = %v", cfg.EnsureTimeout.Duration)
	}
	if cfg.Server.Addr != defaultServerAddr {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.FlushTrailingStanza || cfg.Ensure {
		t.Error("flags should default to off")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"manager alias", Config{Manager: "Godeps"}, false},
		{"unknown manager", Config{Manager: "glide"}, true},
		{"redis without url", Config{Cache: CacheConfig{Backend: backendRedis}}, true},
		{"redis with url", Config{Cache: CacheConfig{Backend: backendRedis, RedisURL: "redis://localhost:6379/0"}}, false},
		{"no cache", Config{Cache: CacheConfig{Backend: backendNone}}, false},
		{"unknown backend", Config{Cache: CacheConfig{Backend: "memcached"}}, true},
		{"relative allowed root", Config{Server: ServerConfig{AllowedRoots: []string{"src"}}}, true},
		{"absolute allowed root", Config{Server: ServerConfig{AllowedRoots: []string{"/src"}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.WithDefaults().Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `manager = "dep"
flush_trailing_stanza = true
ensure_timeout = "90s"

[cache]
backend = "none"
ttl = "1h"
namespace = "ci"

[server]
addr = ":9000"
allowed_roots = ["/src"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, unknown, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(unknown) != 0 {
		t.Errorf("unknown = %v", unknown)
	}
	if cfg.Manager != "dep" || !cfg.FlushTrailingStanza {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.EnsureTimeout.Duration != 90*time.Second {
		t.Errorf("EnsureTimeout = %v", cfg.EnsureTimeout.Duration)
	}
	if cfg.Cache.Backend != backendNone || cfg.Cache.TTL.Duration != time.Hour || cfg.Cache.Namespace != "ci" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9000" || len(cfg.Server.AllowedRoots) != 1 {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, _, err := loadConfig("")
	if err != nil {
		t.Fatalf("missing default config should not fail: %v", err)
	}
	if cfg.Cache.Backend != backendFile {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing explicit config should fail")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "manager = \n"},
		{"bad duration", "ensure_timeout = \"soon\"\n"},
		{"invalid value", "[cache]\nbackend = \"redis\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, err := loadConfig(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	in := Config{Manager: "vndr", Ensure: true}.WithDefaults()

	var buf bytes.Buffer
	if err := writeConfig(&buf, in); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	out, unknown, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(unknown) != 0 {
		t.Errorf("unknown keys after round trip: %v", unknown)
	}
	if out.Manager != in.Manager || out.Ensure != in.Ensure || out.Cache.TTL != in.Cache.TTL {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}
