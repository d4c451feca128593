package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const templateHeader = "# framectl configuration\n\n"

// Template renders cfg as a commented TOML document.
func Template(cfg Config) (string, error) {
	raw := fileConfig{
		Server: fileServer{
			Addr:           cfg.Server.Addr,
			Port:           cfg.Server.Port,
			Transport:      cfg.Server.Transport,
			WSPath:         cfg.Server.WSPath,
			ConnectTimeout: cfg.Server.ConnectTimeout.String(),
			ReadTimeout:    cfg.Server.ReadTimeout.String(),
		},
		Protocol: fileProtocol{
			MagicNumber:   cfg.Protocol.MagicNumber,
			MaxPacketSize: cfg.Protocol.MaxPacketSize,
			MaxAttempts:   cfg.Protocol.MaxAttempts,
		},
		Log:     fileLog{Level: cfg.Log.Level, File: cfg.Log.File},
		Metrics: fileMetrics{Addr: cfg.Metrics.Addr},
		Reconnect: fileReconnect{
			Enabled:      cfg.Reconnect.Enabled,
			InitialDelay: cfg.Reconnect.InitialDelay.String(),
			MaxDelay:     cfg.Reconnect.MaxDelay.String(),
			Multiplier:   cfg.Reconnect.Multiplier,
			Jitter:       cfg.Reconnect.Jitter,
			MaxAttempts:  cfg.Reconnect.MaxAttempts,
		},
	}
	out, err := toml.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("config template: %w", err)
	}
	return templateHeader + string(out), nil
}

// WriteTemplate writes the default configuration to path.
func WriteTemplate(path string, overwrite bool) error {
	template, err := Template(Default())
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}
