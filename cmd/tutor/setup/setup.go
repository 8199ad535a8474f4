// Package setup turns command line flags and the loaded configuration into
// the pieces shared by the tutor subcommands.
package setup

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/tutor/pkg/completion"
	"github.com/papercomputeco/tutor/pkg/config"
	"github.com/papercomputeco/tutor/pkg/session"
)

// Overrides are the per-command flags that take precedence over the config.
type Overrides struct {
	Variant string
	Model   string
	Listen  string
}

// LoadConfig reads the configuration named by --config and applies --debug
// and any overrides whose flags were set on cmd.
func LoadConfig(cmd *cobra.Command, overrides Overrides) (config.Config, error) {
	var path string
	if f := cmd.Flags().Lookup("config"); f != nil {
		path = f.Value.String()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if f := cmd.Flags().Lookup("debug"); f != nil && f.Changed {
		cfg.Debug = f.Value.String() == "true"
	}
	if cmd.Flags().Changed("variant") {
		cfg.Variant = overrides.Variant
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = overrides.Model
	}
	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = overrides.Listen
	}

	if _, err := Variant(cfg); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// Variant parses the variant named in cfg.
func Variant(cfg config.Config) (session.Variant, error) {
	v, err := session.ParseVariant(cfg.Variant)
	if err != nil {
		return "", fmt.Errorf("invalid configuration: %w", err)
	}
	return v, nil
}

// CompletionClient creates the client every session of the process shares.
func CompletionClient(cfg config.Config, logger *zap.Logger) *completion.Invoker {
	if cfg.APIKey == "" {
		logger.Warn("no API key configured, completions will fail",
			zap.String("env", config.EnvAPIKey),
		)
	}

	return completion.New(completion.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	}, logger)
}
