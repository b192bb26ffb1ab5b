// Package config loads the peer configuration from YAML. Gameplay
// physics are not configurable: both peers must run identical constants,
// so those live in the simulation package.
package config

import "time"

// Config is the full peer configuration.
type Config struct {
	Runtime  RuntimeConfig  `yaml:"runtime"`
	Protocol ProtocolConfig `yaml:"protocol"`
	Server   ServerConfig   `yaml:"server"`
	Net      NetConfig      `yaml:"net"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// RuntimeConfig controls the frame loop.
type RuntimeConfig struct {
	FPS              int `yaml:"fps"`                 // Render frames per second
	MaxTicksPerFrame int `yaml:"max_ticks_per_frame"` // Catch-up cap after a stall
}

// ProtocolConfig tunes the lockstep driver.
type ProtocolConfig struct {
	FallbackGraceTicks int `yaml:"fallback_grace_ticks"` // <= 0 disables passive fallback
	LinkBuffer         int `yaml:"link_buffer"`          // In-process pipe capacity
	PreExplosionDelay  int `yaml:"pre_explosion_delay"`  // Ticks between impact and detonation
}

// ServerConfig configures `tankwars serve`.
type ServerConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	HostKeyPath   string        `yaml:"host_key_path"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	LobbyTimeout  time.Duration `yaml:"lobby_timeout"`
	CleanupPeriod time.Duration `yaml:"cleanup_period"`
}

// NetConfig configures the websocket link used by host and join.
type NetConfig struct {
	ListenAddr  string        `yaml:"listen_addr"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// StorageConfig locates the match history database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"` // Empty means ~/.tankwars/tankwars.db
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // Empty means ~/.tankwars/tankwars.log
}
