package chatcmder

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/tutor/cmd/tutor/setup"
	"github.com/papercomputeco/tutor/pkg/config"
	"github.com/papercomputeco/tutor/pkg/logger"
	"github.com/papercomputeco/tutor/pkg/session"
	"github.com/papercomputeco/tutor/pkg/tui"
)

const chatLongDesc string = `Chat in the terminal.

On an interactive terminal this opens a full-screen chat with the learning
state in a sidebar (enter sends, ctrl+r resets, esc quits). Otherwise one
message is read per line and each reply is printed; the commands /state,
/reset and /quit are understood.

Examples:
  tutor chat
  echo "I want to learn calculus" | tutor chat`

const chatShortDesc string = "Chat in the terminal"

type chatCommander struct {
	overrides setup.Overrides
	plain     bool
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.overrides.Variant, "variant", "", `Chat variant: "tutor" or "chat"`)
	cmd.Flags().StringVarP(&cmder.overrides.Model, "model", "m", "", "Completion model identifier")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Use the line-oriented interface even on a terminal")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := setup.LoadConfig(cmd, c.overrides)
	if err != nil {
		return err
	}
	variant, err := setup.Variant(cfg)
	if err != nil {
		return err
	}

	interactive := !c.plain && isTerminal(cmd)

	// The full-screen UI owns the terminal, so logs only go to the log file.
	log := logger.NewFileOnly(logger.Options{Debug: cfg.Debug, File: cfg.LogFile})
	if !interactive {
		log = logger.New(logger.Options{Debug: cfg.Debug, File: cfg.LogFile, Stderr: true})
	}
	defer log.Sync()

	manager := session.NewManager(session.ManagerConfig{
		Variant: variant,
		Model:   cfg.Model,
	}, setup.CompletionClient(cfg, log), log)
	sess := manager.Create()

	opts := tui.Options{APIKeyEnv: config.EnvAPIKey}
	if interactive {
		return tui.Run(ctx, sess, opts)
	}
	return tui.RunLines(ctx, sess, cmd.InOrStdin(), cmd.OutOrStdout(), opts)
}

func isTerminal(cmd *cobra.Command) bool {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	out, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd()))
}
