package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/tankwars.yaml
var defaultYAML []byte

// Default returns the built-in configuration. It matches the embedded
// defaults/tankwars.yaml.
func Default() Config {
	return Config{
		Runtime: RuntimeConfig{
			FPS:              30,
			MaxTicksPerFrame: 10,
		},
		Protocol: ProtocolConfig{
			FallbackGraceTicks: 300,
			LinkBuffer:         256,
			PreExplosionDelay:  0,
		},
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          2323,
			HostKeyPath:   ".ssh/tankwars_ed25519",
			IdleTimeout:   30 * time.Minute,
			LobbyTimeout:  2 * time.Minute,
			CleanupPeriod: 30 * time.Second,
		},
		Net: NetConfig{
			ListenAddr:  ":7777",
			DialTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
