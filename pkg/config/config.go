// Package config loads the tutor configuration from defaults, an optional
// TOML file, a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/papercomputeco/tutor/pkg/completion"
	"github.com/papercomputeco/tutor/pkg/llm"
)

// Environment variables read by Load.
const (
	EnvAPIKey  = "CEREBRAS_API_KEY"
	EnvBaseURL = "TUTOR_BASE_URL"
	EnvModel   = "TUTOR_MODEL"
	EnvListen  = "TUTOR_LISTEN"
	EnvVariant = "TUTOR_VARIANT"
	EnvLogFile = "TUTOR_LOG_FILE"
	EnvDebug   = "TUTOR_DEBUG"
)

// Config is the tutor configuration.
type Config struct {
	// Address the web UI listens on (e.g., ":8501")
	ListenAddr string `toml:"listen"`

	// Variant is "tutor" or "chat"
	Variant string `toml:"variant"`

	// Model identifier sent with every completion
	Model string `toml:"model"`

	// BaseURL of the OpenAI-compatible completion API
	BaseURL string `toml:"base_url"`

	// Timeout bounds one completion call
	Timeout time.Duration `toml:"timeout"`

	// SessionTTL is how long an idle web session is kept
	SessionTTL time.Duration `toml:"session_ttl"`

	// LogFile, when set, receives rotated JSON logs
	LogFile string `toml:"log_file"`

	Debug bool `toml:"debug"`

	// APIKey only ever comes from the environment.
	APIKey string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr: ":8501",
		Variant:    "tutor",
		Model:      llm.DefaultModel,
		BaseURL:    completion.DefaultBaseURL,
		Timeout:    5 * time.Minute,
		SessionTTL: time.Hour,
	}
}

// Load builds the configuration. path may be empty, in which case no file is
// read. A missing .env file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("could not read config file %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("could not read .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.APIKey = os.Getenv(EnvAPIKey)

	if v, ok := os.LookupEnv(EnvBaseURL); ok {
		cfg.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvModel); ok {
		cfg.Model = v
	}
	if v, ok := os.LookupEnv(EnvListen); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv(EnvVariant); ok {
		cfg.Variant = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		cfg.LogFile = v
	}
	if v, ok := os.LookupEnv(EnvDebug); ok {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDebug, err)
		}
		cfg.Debug = debug
	}

	return nil
}
