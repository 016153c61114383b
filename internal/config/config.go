package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Placeholder connection values used when the remote backend is selected
// but not configured. They keep startup alive and fail at the first call,
// matching the behavior of the original client.
const (
	PlaceholderURL = "https://missing-url.invalid"
	PlaceholderKey = "missing-key"
)

// Config keeps runtime settings for the app. Environment variables are
// parsed from the TASKFLOW_ prefix, e.g. TASKFLOW_BACKEND_URL.
type Config struct {
	// Backend selects the data-source implementation: "local" keeps
	// everything in a sqlite file, "rest" talks to a remote service.
	Backend string `envconfig:"BACKEND" default:"local"`

	// Remote backend connection.
	BackendURL string `envconfig:"BACKEND_URL" default:""`
	BackendKey string `envconfig:"BACKEND_KEY" default:""`

	// Local backend database file.
	DatabaseURL string `envconfig:"DATABASE_URL" default:"taskflow.db"`

	// SessionFile is where the CLI caches the signed-in session.
	SessionFile string `envconfig:"SESSION_FILE" default:""`

	// ReminderInterval drives the periodic summary in watch mode.
	ReminderInterval time.Duration `envconfig:"REMINDER_INTERVAL" default:"24h"`

	// JWTSecret signs session tokens issued by the local backend.
	JWTSecret string `envconfig:"JWT_SECRET" default:"taskflow-dev-secret"`
}

// Load reads configuration from environment variables. A missing remote
// endpoint or key is logged as a warning, not an error: the placeholders
// will fail at the first remote call instead.
func Load(log zerolog.Logger) (Config, error) {
	var cfg Config
	if err := envconfig.Process("TASKFLOW", &cfg); err != nil {
		return cfg, fmt.Errorf("process environment: %w", err)
	}

	switch cfg.Backend {
	case "local", "rest":
	default:
		return cfg, fmt.Errorf("unsupported TASKFLOW_BACKEND: %s", cfg.Backend)
	}

	if cfg.Backend == "rest" && (cfg.BackendURL == "" || cfg.BackendKey == "") {
		log.Warn().Msg("TASKFLOW_BACKEND_URL or TASKFLOW_BACKEND_KEY is not set; remote calls will fail")
		if cfg.BackendURL == "" {
			cfg.BackendURL = PlaceholderURL
		}
		if cfg.BackendKey == "" {
			cfg.BackendKey = PlaceholderKey
		}
	}

	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = 24 * time.Hour
	}

	return cfg, nil
}
