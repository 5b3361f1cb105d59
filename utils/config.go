// File: utils/config.go
package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config holds all configurable game parameters.
type Config struct {
	// Timing
	GameTickPeriod time.Duration `json:"gameTickPeriod"` // Tick period at speed scale 1.0
	SpeedStep      float64       `json:"speedStep"`      // Speed scale gained per cleared line

	// Pieces
	PieceSeed uint64 `json:"pieceSeed"` // Seed for shape selection, 0 seeds from the clock

	// Server
	ServerAddr  string        `json:"serverAddr"`
	MaxSessions int           `json:"maxSessions"` // Concurrent games served
	ReadTimeout time.Duration `json:"readTimeout"` // Idle time before a websocket is dropped
	AskTimeout  time.Duration `json:"askTimeout"`

	// Terminal
	SoundEnabled bool   `json:"soundEnabled"`
	LogLevel     string `json:"logLevel"`
	LogFile      string `json:"logFile"` // Used by play mode, empty discards logs
}

// DefaultConfig returns a Config struct with default values.
func DefaultConfig() Config {
	return Config{
		// Timing
		GameTickPeriod: DefaultTickPeriod,
		SpeedStep:      DefaultSpeedStep,

		// Pieces
		PieceSeed: 0,

		// Server
		ServerAddr:  ":3001",
		MaxSessions: 75,
		ReadTimeout: 90 * time.Second,
		AskTimeout:  500 * time.Millisecond,

		// Terminal
		SoundEnabled: true,
		LogLevel:     "INFO",
		LogFile:      "",
	}
}

// LoadConfigFromFile reads a JSON file and overlays it on DefaultConfig.
// Fields missing from the file keep their default values.
func LoadConfigFromFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the game loop cannot run with.
func (c Config) Validate() error {
	if c.GameTickPeriod <= 0 {
		return fmt.Errorf("gameTickPeriod must be positive, got %v", c.GameTickPeriod)
	}
	if c.SpeedStep < 0 {
		return fmt.Errorf("speedStep must not be negative, got %v", c.SpeedStep)
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("maxSessions must be at least 1, got %d", c.MaxSessions)
	}
	return nil
}

// TickPeriod is the timer period for the given speed scale.
func (c Config) TickPeriod(speedScale float64) time.Duration {
	if speedScale <= 0 {
		return c.GameTickPeriod
	}
	return time.Duration(float64(c.GameTickPeriod) / speedScale)
}
