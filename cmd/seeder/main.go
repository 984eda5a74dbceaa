// cmd/seeder/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/unclebandit/mailer-backend/internal/app"
	"github.com/unclebandit/mailer-backend/internal/config"
	"github.com/unclebandit/mailer-backend/internal/logger"
	"github.com/unclebandit/mailer-backend/internal/queue"
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Mailer backend maintenance CLI",
	Long:  `Applies the schema, seeds demo data, manages users, finishes stuck campaigns and replays provider events.`,
}

// env is loaded once per command.
type env struct {
	cfg     *config.Config
	log     *slog.Logger
	storage *app.Storage
	queue   queue.Queue
	svc     *app.Services
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.NewJSONLogger(cfg.LogLevel)
	storage, err := app.OpenStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	q := queue.NewInMemoryQueue(log)
	return &env{
		cfg:     cfg,
		log:     log,
		storage: storage,
		queue:   q,
		svc:     app.NewServices(cfg, storage.Repos, q, log),
	}, nil
}

func (e *env) Close() {
	e.queue.Close()
	e.storage.Close()
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
