package core

// RuntimeConfig holds the fallbacks used when the terminal or the config
// file leaves a value unset.
type RuntimeConfig struct {
	ScreenW int // Terminal width in cells
	ScreenH int // Terminal height in cells
	FPS     int // Render frames per second
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW: 100,
		ScreenH: 32,
		FPS:     30,
	}
}
