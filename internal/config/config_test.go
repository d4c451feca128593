package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/framectl/internal/testutil/testlog"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framectl.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Protocol.MagicNumber != 0x7F3B29D1 {
		t.Fatalf("unexpected magic: %#x", cfg.Protocol.MagicNumber)
	}
	if cfg.Server.Address() != "127.0.0.1:6198" {
		t.Fatalf("unexpected address: %q", cfg.Server.Address())
	}
}

func TestLoadOverrides(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
[server]
addr = "10.0.0.5"
port = 7000
transport = "WS"
ws_path = "/telemetry"
connect_timeout = "750ms"
read_timeout = "2s"

[protocol]
magic_number = 0xCAFEBABE
max_packet_size = 65536
max_attempts = 3

[log]
level = "debug"
file = ""

[metrics]
addr = "127.0.0.1:9464"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Address() != "10.0.0.5:7000" {
		t.Fatalf("unexpected address: %q", cfg.Server.Address())
	}
	if cfg.Server.Transport != TransportWebSocket {
		t.Fatalf("unexpected transport: %q", cfg.Server.Transport)
	}
	if cfg.Server.WSPath != "/telemetry" {
		t.Fatalf("unexpected ws path: %q", cfg.Server.WSPath)
	}
	if cfg.Server.ConnectTimeout != 750*time.Millisecond || cfg.Server.ReadTimeout != 2*time.Second {
		t.Fatalf("unexpected timeouts: %+v", cfg.Server)
	}
	if cfg.Protocol.MagicNumber != 0xCAFEBABE {
		t.Fatalf("unexpected magic: %#x", cfg.Protocol.MagicNumber)
	}
	if cfg.Protocol.MaxPacketSize != 65536 || cfg.Protocol.MaxAttempts != 3 {
		t.Fatalf("unexpected protocol: %+v", cfg.Protocol)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "" {
		t.Fatalf("unexpected log: %+v", cfg.Log)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9464" {
		t.Fatalf("unexpected metrics addr: %q", cfg.Metrics.Addr)
	}
}

func TestLoadPartialOverrideKeepsDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeConfig(t, "[protocol]\nmax_attempts = 25\n"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Protocol.MaxAttempts != 25 {
		t.Fatalf("unexpected attempts: %d", cfg.Protocol.MaxAttempts)
	}
	if cfg.Protocol.MaxPacketSize != DefaultMaxPacketSize || cfg.Server.Port != DefaultPort {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadBadDuration(t *testing.T) {
	testlog.Start(t)
	if _, err := Load(writeConfig(t, "[server]\nread_timeout = \"soon\"\n")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadReconnect(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeConfig(t, `
[reconnect]
enabled = true
initial_delay = "100ms"
max_delay = "1s"
multiplier = 1.5
jitter = false
max_attempts = 4
`))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := Reconnect{
		Enabled:      true,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   1.5,
		MaxAttempts:  4,
	}
	if cfg.Reconnect != want {
		t.Fatalf("unexpected reconnect: %+v", cfg.Reconnect)
	}
	if _, err := Load(writeConfig(t, "[reconnect]\nmax_delay = \"later\"\n")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadUnknownKey(t *testing.T) {
	testlog.Start(t)
	_, err := Load(writeConfig(t, "[protocol]\nversion = 2\n"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestValidate(t *testing.T) {
	testlog.Start(t)
	cases := map[string]func(*Config){
		"empty addr":        func(c *Config) { c.Server.Addr = " " },
		"port zero":         func(c *Config) { c.Server.Port = 0 },
		"port too large":    func(c *Config) { c.Server.Port = 70000 },
		"unknown transport": func(c *Config) { c.Server.Transport = "udp" },
		"ws path":           func(c *Config) { c.Server.Transport = TransportWebSocket; c.Server.WSPath = "frames" },
		"negative timeout":  func(c *Config) { c.Server.ReadTimeout = -time.Second },
		"tiny packet":       func(c *Config) { c.Protocol.MaxPacketSize = 8 },
		"zero attempts":     func(c *Config) { c.Protocol.MaxAttempts = 0 },
		"shrinking backoff": func(c *Config) { c.Reconnect.Multiplier = 0.5 },
		"negative redials":  func(c *Config) { c.Reconnect.MaxAttempts = -1 },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := Validate(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestWriteTemplateRoundTrip(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "framectl.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("template does not load back to defaults: %+v", cfg)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite template: %v", err)
	}
}
