package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	Server    fileServer    `toml:"server"`
	Protocol  fileProtocol  `toml:"protocol"`
	Log       fileLog       `toml:"log"`
	Metrics   fileMetrics   `toml:"metrics"`
	Reconnect fileReconnect `toml:"reconnect"`
}

type fileServer struct {
	Addr           string `toml:"addr"`
	Port           int    `toml:"port"`
	Transport      string `toml:"transport" comment:"tcp | ws"`
	WSPath         string `toml:"ws_path"`
	ConnectTimeout string `toml:"connect_timeout"`
	ReadTimeout    string `toml:"read_timeout" comment:"0s blocks until data arrives"`
}

type fileProtocol struct {
	MagicNumber   uint32 `toml:"magic_number"`
	MaxPacketSize uint32 `toml:"max_packet_size" comment:"bytes, header included"`
	MaxAttempts   int    `toml:"max_attempts"`
}

type fileLog struct {
	Level string `toml:"level"`
	File  string `toml:"file" comment:"empty logs to the console only"`
}

type fileMetrics struct {
	Addr string `toml:"addr" comment:"status and /metrics listener, empty disables"`
}

type fileReconnect struct {
	Enabled      bool    `toml:"enabled" comment:"watch only"`
	InitialDelay string  `toml:"initial_delay"`
	MaxDelay     string  `toml:"max_delay"`
	Multiplier   float64 `toml:"multiplier"`
	Jitter       bool    `toml:"jitter"`
	MaxAttempts  int     `toml:"max_attempts" comment:"0 retries forever"`
}

// Load reads a TOML file and applies every defined key over Default().
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalidConfig, undecoded[0].String(), path)
	}

	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "port") {
		cfg.Server.Port = raw.Server.Port
	}
	if meta.IsDefined("server", "transport") {
		cfg.Server.Transport = strings.ToLower(strings.TrimSpace(raw.Server.Transport))
	}
	if meta.IsDefined("server", "ws_path") {
		cfg.Server.WSPath = strings.TrimSpace(raw.Server.WSPath)
	}
	if err := applyDuration(meta, &cfg.Server.ConnectTimeout, raw.Server.ConnectTimeout, "server", "connect_timeout"); err != nil {
		return Config{}, err
	}
	if err := applyDuration(meta, &cfg.Server.ReadTimeout, raw.Server.ReadTimeout, "server", "read_timeout"); err != nil {
		return Config{}, err
	}

	if meta.IsDefined("protocol", "magic_number") {
		cfg.Protocol.MagicNumber = raw.Protocol.MagicNumber
	}
	if meta.IsDefined("protocol", "max_packet_size") {
		cfg.Protocol.MaxPacketSize = raw.Protocol.MaxPacketSize
	}
	if meta.IsDefined("protocol", "max_attempts") {
		cfg.Protocol.MaxAttempts = raw.Protocol.MaxAttempts
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "file") {
		cfg.Log.File = strings.TrimSpace(raw.Log.File)
	}
	if meta.IsDefined("metrics", "addr") {
		cfg.Metrics.Addr = strings.TrimSpace(raw.Metrics.Addr)
	}

	if meta.IsDefined("reconnect", "enabled") {
		cfg.Reconnect.Enabled = raw.Reconnect.Enabled
	}
	if err := applyDuration(meta, &cfg.Reconnect.InitialDelay, raw.Reconnect.InitialDelay, "reconnect", "initial_delay"); err != nil {
		return Config{}, err
	}
	if err := applyDuration(meta, &cfg.Reconnect.MaxDelay, raw.Reconnect.MaxDelay, "reconnect", "max_delay"); err != nil {
		return Config{}, err
	}
	if meta.IsDefined("reconnect", "multiplier") {
		cfg.Reconnect.Multiplier = raw.Reconnect.Multiplier
	}
	if meta.IsDefined("reconnect", "jitter") {
		cfg.Reconnect.Jitter = raw.Reconnect.Jitter
	}
	if meta.IsDefined("reconnect", "max_attempts") {
		cfg.Reconnect.MaxAttempts = raw.Reconnect.MaxAttempts
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDuration(meta toml.MetaData, dst *time.Duration, raw string, key ...string) error {
	if !meta.IsDefined(key...) {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse %s: %w", strings.Join(key, "."), err)
	}
	*dst = d
	return nil
}
