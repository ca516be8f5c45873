package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type testConfig struct {
	Host struct {
		AllowedOrigins []string `koanf:"allowed_origins"`
		Debug          bool     `koanf:"debug"`
	} `koanf:"host"`
	Server struct {
		HTTP struct {
			Addr         string        `koanf:"addr"`
			ShutdownWait time.Duration `koanf:"shutdown_wait"`
		} `koanf:"http"`
	} `koanf:"server"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestNewLoader_WithConfigFile(t *testing.T) {
	if got := NewLoader(WithConfigFile("/path/to/config.yaml")).FilePath(); got != "/path/to/config.yaml" {
		t.Errorf("FilePath() = %q", got)
	}
	if got := NewLoader().FilePath(); got != "" {
		t.Errorf("FilePath() without file = %q", got)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"SHAREDSTORE_HOST__ALLOWED_ORIGINS": "host.allowed_origins",
		"SHAREDSTORE_SERVER__HTTP__ADDR":    "server.http.addr",
		"SHAREDSTORE_LOG__LEVEL":            "log.level",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
host:
  allowed_origins:
    - https://a.example
    - https://b.example
  debug: true
server:
  http:
    addr: "0.0.0.0:5090"
    shutdown_wait: 30s
`)

	var cfg testConfig
	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.Host.AllowedOrigins); diff != "" {
		t.Errorf("AllowedOrigins mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Host.Debug {
		t.Error("Debug should be true")
	}
	if cfg.Server.HTTP.Addr != "0.0.0.0:5090" || cfg.Server.HTTP.ShutdownWait != 30*time.Second {
		t.Errorf("HTTP = %+v", cfg.Server.HTTP)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	var cfg testConfig
	if err := NewLoader(WithConfigFile("/nonexistent/config.yaml")).Load(&cfg); err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoader_KeepsDefaults(t *testing.T) {
	path := writeConfig(t, "host:\n  debug: true\n")

	var cfg testConfig
	cfg.Server.HTTP.Addr = "127.0.0.1:1"
	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.HTTP.Addr != "127.0.0.1:1" {
		t.Errorf("Addr = %q, want the preset value", cfg.Server.HTTP.Addr)
	}
}

func TestLoader_Env(t *testing.T) {
	t.Setenv("SHAREDSTORE_HOST__ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SHAREDSTORE_SERVER__HTTP__ADDR", "127.0.0.1:8080")

	t.Setenv("OTHER_SERVER__HTTP__ADDR", "127.0.0.1:9090")

	var cfg testConfig
	if err := NewLoader().Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "127.0.0.1:8080" {
		t.Errorf("Addr = %q", cfg.Server.HTTP.Addr)
	}
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.Host.AllowedOrigins); diff != "" {
		t.Errorf("AllowedOrigins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Priority(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    addr: "from-file:5090"
host:
  debug: false
`)
	t.Setenv("SHAREDSTORE_SERVER__HTTP__ADDR", "from-env:8080")
	t.Setenv("SHAREDSTORE_HOST__DEBUG", "false")

	l := NewLoader(WithConfigFile(path))
	if err := l.LoadMap(map[string]any{"host.debug": true}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.HTTP.Addr != "from-env:8080" {
		t.Errorf("Addr = %q, env should override file", cfg.Server.HTTP.Addr)
	}
	if !cfg.Host.Debug {
		t.Error("Debug = false, override should win over env")
	}
}

func TestLoader_Reload(t *testing.T) {
	path := writeConfig(t, "host:\n  allowed_origins: [https://a.example]\n")

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("host:\n  allowed_origins: [https://b.example]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var reloaded testConfig
	if err := l.Reload(&reloaded); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if diff := cmp.Diff([]string{"https://b.example"}, reloaded.Host.AllowedOrigins); diff != "" {
		t.Errorf("AllowedOrigins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Reload_KeepsPreviousOnError(t *testing.T) {
	path := writeConfig(t, "server:\n  http:\n    addr: a:1\n")

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("server: [unclosed\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := l.Reload(&cfg); err == nil {
		t.Fatal("Reload() of invalid yaml should fail")
	}
	if got := l.k.String("server.http.addr"); got != "a:1" {
		t.Errorf("server.http.addr = %q after failed reload", got)
	}
}
