package cli

import (
	"context"
	"errors"
	"io"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ieee-quiz/internal/app"
	"ieee-quiz/internal/config"
	"ieee-quiz/internal/infra/memory"
	"ieee-quiz/internal/transport/terminal"
)

// NewPlayCmd plays the quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in this terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath, verbose, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log quiz events to stderr")
	return cmd
}

func runPlay(ctx context.Context, configPath string, verbose bool, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service := app.NewQuizService(
		memory.NewSessionStore(),
		memory.NewEmbeddedQuestionBank(),
		settingsFrom(cfg),
		app.WithLogger(log),
	)

	sessionID := uuid.NewString()
	if _, err := service.Open(ctx, sessionID); err != nil {
		return err
	}
	defer service.Close(context.Background(), sessionID)

	timerCtx, cancelTimer := context.WithCancel(ctx)
	timerDone := make(chan struct{})
	go func() {
		defer close(timerDone)
		_ = service.RunTimer(timerCtx, sessionID)
	}()

	err = terminal.New(service, in, out).Run(ctx, sessionID)
	cancelTimer()
	<-timerDone
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
