package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ieee-quiz/internal/app"
	"ieee-quiz/internal/config"
	"ieee-quiz/internal/logger"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	// A local .env is optional.
	_ = godotenv.Load()

	var (
		port       string
		configPath string
	)
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "quiz",
		Short:        "The IEEE quiz: timed multiple-choice questions in the terminal or over websockets",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", os.Getenv("PORT"), "port to listen on (serve)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewPlayCmd(&configPath))
	cmd.AddCommand(NewServeCmd(&configPath, &port))
	return cmd
}

func settingsFrom(cfg config.Config) app.Settings {
	return app.Settings{
		SecondsPerQuestion: cfg.Quiz.SecondsPerQuestion,
		TickInterval:       config.Duration(cfg.Quiz.TickInterval, app.DefaultTickInterval),
		GraceDelay:         config.Duration(cfg.Quiz.GraceDelay, app.DefaultGraceDelay),
	}
}

func newLogger(cfg config.Config, enabled bool) (*zap.Logger, error) {
	if !enabled {
		return zap.NewNop(), nil
	}
	return logger.New(cfg.Log.Env)
}
