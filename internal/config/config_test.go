package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEmbeddedDefaultsMatchDefault(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		t.Fatalf("embedded YAML does not parse: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("embedded defaults differ from Default():\n%+v\n%+v", cfg, Default())
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default() is invalid: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
		check   func(t *testing.T, cfg Config)
	}{
		{
			name:    "partial override keeps defaults",
			content: "runtime:\n  fps: 60\nserver:\n  idle_timeout: 5m\n",
			check: func(t *testing.T, cfg Config) {
				if cfg.Runtime.FPS != 60 {
					t.Errorf("fps = %d, want 60", cfg.Runtime.FPS)
				}
				if cfg.Runtime.MaxTicksPerFrame != 10 {
					t.Errorf("max_ticks_per_frame = %d, want default 10", cfg.Runtime.MaxTicksPerFrame)
				}
				if cfg.Server.IdleTimeout != 5*time.Minute {
					t.Errorf("idle_timeout = %v, want 5m", cfg.Server.IdleTimeout)
				}
			},
		},
		{
			name:    "disabling fallback is allowed",
			content: "protocol:\n  fallback_grace_ticks: 0\n",
			check: func(t *testing.T, cfg Config) {
				if cfg.Protocol.FallbackGraceTicks != 0 {
					t.Errorf("fallback_grace_ticks = %d", cfg.Protocol.FallbackGraceTicks)
				}
			},
		},
		{name: "invalid fps", content: "runtime:\n  fps: 0\n", wantErr: "runtime.fps"},
		{name: "bad log level", content: "log:\n  level: loud\n", wantErr: "log.level"},
		{name: "malformed", content: "runtime: [", wantErr: "parse"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "cfg"+string(rune('a'+i))+".yaml")
			writeFile(t, path, tt.content)

			cfg, err := Load(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Load() error = %v, want mention of %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() of a missing explicit path should fail")
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Error("with no files Load() should return the defaults")
	}

	writeFile(t, filepath.Join(work, "configs", "tankwars.yaml"), "net:\n  listen_addr: \":9000\"\n")
	cfg, _ = Load("")
	if cfg.Net.ListenAddr != ":9000" {
		t.Errorf("local config ignored: listen_addr = %q", cfg.Net.ListenAddr)
	}

	writeFile(t, filepath.Join(home, DirName, "config.yaml"), "net:\n  listen_addr: \":9100\"\n")
	cfg, _ = Load("")
	if cfg.Net.ListenAddr != ":9100" {
		t.Errorf("user config should win: listen_addr = %q", cfg.Net.ListenAddr)
	}

	writeFile(t, filepath.Join(home, DirName, "config.yaml"), "runtime:\n  fps: -5\n")
	cfg, _ = Load("")
	if cfg.Net.ListenAddr != ":9000" {
		t.Errorf("invalid user config should fall through: listen_addr = %q", cfg.Net.ListenAddr)
	}
}

func TestPathsAndLevel(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	cfg := Default()
	if got, want := cfg.DBPath(), filepath.Join("/home/tester", DirName, "tankwars.db"); got != want {
		t.Errorf("DBPath() = %q, want %q", got, want)
	}
	if got, want := cfg.LogPath(), filepath.Join("/home/tester", DirName, "tankwars.log"); got != want {
		t.Errorf("LogPath() = %q, want %q", got, want)
	}

	cfg.Storage.DBPath = "/tmp/x.db"
	cfg.Log.Level = "debug"
	if cfg.DBPath() != "/tmp/x.db" {
		t.Errorf("DBPath() ignored override")
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}

	cfg.Log.Level = "nonsense"
	if cfg.LogLevel() != log.InfoLevel {
		t.Errorf("bad level should fall back to info")
	}
}
