package config

import (
	"fmt"
	"time"

	"github.com/ridermi/rider-agent/pkg/configparser"
)

// Config contains all configuration variables of the agent
type (
	Config struct {
		Log      LogConfig
		API      APIConfig
		Firebase FirebaseConfig
		Mapbox   MapboxConfig
		Control  ControlConfig
		Polling  PollingConfig
		State    StateConfig
	}

	LogConfig struct {
		Level string `env:"LOG_LEVEL" default:"DEBUG"`
	}

	// APIConfig points at the delivery platform's GraphQL API.
	APIConfig struct {
		Endpoint string        `env:"API_ENDPOINT" default:"http://localhost:4000/graphql"`
		Timeout  time.Duration `env:"API_TIMEOUT" default:"15s"`
	}

	FirebaseConfig struct {
		APIKey    string        `env:"FIREBASE_API_KEY"`
		ProjectID string        `env:"FIREBASE_PROJECT_ID"`
		Timeout   time.Duration `env:"FIREBASE_TIMEOUT" default:"10s"`
	}

	MapboxConfig struct {
		Token   string        `env:"MAPBOX_TOKEN"`
		Timeout time.Duration `env:"MAPBOX_TIMEOUT" default:"10s"`
	}

	// ControlConfig configures the local control API consumed by the front-end.
	ControlConfig struct {
		Host string `env:"CONTROL_HOST" default:"127.0.0.1"`
		Port string `env:"CONTROL_PORT" default:"7420"`
	}

	// PollingConfig carries the fixed intervals and thresholds of the sync sources.
	PollingConfig struct {
		AvailableInterval time.Duration `env:"POLLING_AVAILABLE_INTERVAL" default:"10s"`
		LookupInterval    time.Duration `env:"POLLING_LOOKUP_INTERVAL" default:"5s"`
		DetailInterval    time.Duration `env:"POLLING_DETAIL_INTERVAL" default:"3s"`
		DetailMaxFailures int           `env:"POLLING_DETAIL_MAX_FAILURES" default:"5"`
		TerminalGrace     time.Duration `env:"POLLING_TERMINAL_GRACE" default:"5s"`
		HandleStaleness   time.Duration `env:"POLLING_HANDLE_STALENESS" default:"2h"`
		BannerTTL         time.Duration `env:"POLLING_BANNER_TTL" default:"5s"`
	}

	StateConfig struct {
		Dir string `env:"STATE_DIR" default:".rider-agent"`
	}
)

func (c ControlConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading environment variables and parsing into the config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	return cfg, nil
}
