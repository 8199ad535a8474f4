package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/tutor/cmd/tutor/chat"
	servecmder "github.com/papercomputeco/tutor/cmd/tutor/serve"
)

const rootLongDesc string = `An active-learning tutor and chat client for hosted LLMs.

The tutor variant asks what you want to learn, checks what you already
know and then teaches through questions, feedback and explanations. The
chat variant forwards the conversation to the model as is.

The API key is read from the CEREBRAS_API_KEY environment variable (or a
.env file in the working directory).

Examples:
  tutor serve --listen :8501
  tutor chat --variant chat`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tutor",
		Short:        "Active-learning tutor for hosted LLMs",
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Path to a TOML config file")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
