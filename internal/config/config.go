package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains agent configuration parameters.
type Config struct {
	LogLevel  int      `env:"LOG_LEVEL" envDefault:"0"`
	AuthToken string   `env:"AUTH_TOKEN"`
	Backend   Backend  `envPrefix:"BACKEND_"`
	Realtime  Realtime `envPrefix:"REALTIME_"`
	Capture   Capture  `envPrefix:"CAPTURE_"`
	History   History  `envPrefix:"HISTORY_"`
}

// Backend contains REST backend parameters.
type Backend struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:8080/api"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Realtime contains realtime channel parameters. Delay bounds mirror the
// transport-level reconnection window layered under the manager's own
// bookkeeping.
type Realtime struct {
	URL                  string        `env:"URL" envDefault:"ws://localhost:8080"`
	Path                 string        `env:"PATH" envDefault:"/socket.io"`
	MaxReconnectAttempts int           `env:"MAX_RECONNECT_ATTEMPTS" envDefault:"5"`
	ReconnectBaseDelay   time.Duration `env:"RECONNECT_BASE_DELAY" envDefault:"1s"`
	ReconnectMaxDelay    time.Duration `env:"RECONNECT_MAX_DELAY" envDefault:"5s"`
}

// Capture contains optical capture engine parameters.
type Capture struct {
	// MountWait bounds how long the engine waits for the capture surface
	// to acknowledge mounting before binding anyway.
	MountWait time.Duration `env:"MOUNT_WAIT" envDefault:"300ms"`
}

// History contains local scan-history storage parameters.
type History struct {
	DBPath string `env:"DB_PATH" envDefault:"courierlink.db"`
}

// NewConfig loads configuration from environment variables, reading a .env
// file first when one is present.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
