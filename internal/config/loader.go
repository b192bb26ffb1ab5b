package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// DirName is the per-user directory for config, logs and the database.
const DirName = ".tankwars"

// Load reads the configuration.
// Search order: customPath -> ~/.tankwars/config.yaml -> ./configs/tankwars.yaml -> embedded default.
// Files only need to set the keys they change; everything else keeps the
// default value. Only an explicit customPath that cannot be read or parsed
// is an error.
func Load(customPath string) (Config, error) {
	cfg := Default()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	for _, path := range []string{UserPath("config.yaml"), filepath.Join("configs", "tankwars.yaml")} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		candidate := Default()
		if err := yaml.Unmarshal(data, &candidate); err == nil && candidate.Validate() == nil {
			return candidate, nil
		}
	}

	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default(), nil
	}
	return cfg, nil
}

// Validate rejects values the program cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Runtime.FPS <= 0 {
		errs = append(errs, fmt.Errorf("runtime.fps must be positive, got %d", c.Runtime.FPS))
	}
	if c.Runtime.MaxTicksPerFrame <= 0 {
		errs = append(errs, fmt.Errorf("runtime.max_ticks_per_frame must be positive, got %d", c.Runtime.MaxTicksPerFrame))
	}
	if c.Protocol.PreExplosionDelay < 0 {
		errs = append(errs, fmt.Errorf("protocol.pre_explosion_delay must not be negative, got %d", c.Protocol.PreExplosionDelay))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// LogLevel returns the parsed log level, falling back to info.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// DBPath returns the configured database path or the per-user default.
func (c Config) DBPath() string {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath
	}
	if p := UserPath("tankwars.db"); p != "" {
		return p
	}
	return "tankwars.db"
}

// LogPath returns the configured log file or the per-user default.
func (c Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	if p := UserPath("tankwars.log"); p != "" {
		return p
	}
	return "tankwars.log"
}

// UserPath returns a file under ~/.tankwars, or empty if home is unavailable.
func UserPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DirName, filename)
}
