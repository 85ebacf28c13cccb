package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ieee-quiz/internal/app"
	"ieee-quiz/internal/config"
	"ieee-quiz/internal/infra/memory"
	redissession "ieee-quiz/internal/infra/redis"
	"ieee-quiz/internal/metrics"
	transport "ieee-quiz/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand that serves the quiz over websockets.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve quiz sessions over websockets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	m := metrics.New()

	var store app.SessionRepository
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		redisStore := redissession.NewSessionStore(redisClient, config.Duration(cfg.Redis.TTL, 10*time.Minute))
		m.WatchLiveSessions(redisStore.LiveSessions)
		store = redisStore
	} else {
		store = memory.NewSessionStore()
	}

	// Fail fast on a broken bank instead of serving sessions stuck in the error status.
	bank := memory.NewEmbeddedQuestionBank()
	if _, err := bank.LoadQuestions(ctx); err != nil {
		return err
	}

	service := app.NewQuizService(
		store,
		bank,
		settingsFrom(cfg),
		app.WithObserver(m),
		app.WithLogger(log),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      newMux(service, m, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting quiz server", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error("failed to start server", zap.Error(err))
		return err
	case <-ctx.Done():
		log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newMux(service *app.QuizService, m *metrics.Metrics, log *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/ws", transport.NewWSHandler(service, log).ServeWS)
	return mux
}
