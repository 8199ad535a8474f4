package servecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/tutor/cmd/tutor/setup"
	"github.com/papercomputeco/tutor/pkg/config"
	"github.com/papercomputeco/tutor/pkg/logger"
	"github.com/papercomputeco/tutor/pkg/session"
	"github.com/papercomputeco/tutor/server"
)

const serveLongDesc string = `Serve the chat web UI.

Every browser gets its own session through a cookie. Sessions live in
memory only and are dropped after they have been idle for the configured
session_ttl.

Examples:
  tutor serve
  tutor serve --listen 127.0.0.1:9000 --variant chat`

const serveShortDesc string = "Serve the chat web UI"

type serveCommander struct {
	overrides setup.Overrides
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.overrides.Listen, "listen", "l", "", "Address to listen on (default :8501)")
	cmd.Flags().StringVar(&cmder.overrides.Variant, "variant", "", `Chat variant: "tutor" or "chat"`)
	cmd.Flags().StringVarP(&cmder.overrides.Model, "model", "m", "", "Completion model identifier")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := setup.LoadConfig(cmd, c.overrides)
	if err != nil {
		return err
	}
	variant, err := setup.Variant(cfg)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{Debug: cfg.Debug, File: cfg.LogFile})
	defer log.Sync()

	log.Info("tutor web UI starting",
		zap.String("listen", cfg.ListenAddr),
		zap.String("variant", cfg.Variant),
		zap.String("model", cfg.Model),
		zap.Bool("debug", cfg.Debug),
	)

	manager := session.NewManager(session.ManagerConfig{
		Variant: variant,
		Model:   cfg.Model,
		IdleTTL: cfg.SessionTTL,
	}, setup.CompletionClient(cfg, log), log)

	srv, err := server.New(server.Config{
		ListenAddr: cfg.ListenAddr,
		APIKeyEnv:  config.EnvAPIKey,
	}, manager, log)
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down web UI")
		_ = srv.Shutdown()
	}()

	if err := srv.Run(); err != nil {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}
