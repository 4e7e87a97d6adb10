package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"newsqa-orchestrator/internal/adapter/archive"
	"newsqa-orchestrator/internal/fetcher"
	"newsqa-orchestrator/internal/infra/config"
	"newsqa-orchestrator/internal/infra/httpclient"
	"newsqa-orchestrator/internal/infra/logger"
)

var defaultCategories = []string{"경제", "정치", "사회", "국제", "IT_과학"}

func main() {
	log := logger.New()
	slog.SetDefault(log)

	var (
		once       bool
		schedule   string
		categories []string
		windowDays int
		rps        float64
	)

	rootCmd := &cobra.Command{
		Use:   "fetcher",
		Short: "Collects news articles into the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			runner := buildRunner(cfg, categories, windowDays, rps, log)

			if once {
				return runner.Run(cmd.Context())
			}
			return runScheduled(cmd.Context(), runner, schedule, log)
		},
	}

	rootCmd.Flags().BoolVar(&once, "once", false, "run a single collection cycle and exit")
	rootCmd.Flags().StringVar(&schedule, "schedule", "0 6 * * *", "cron schedule for collection cycles")
	rootCmd.Flags().StringSliceVar(&categories, "categories", defaultCategories, "news categories to collect")
	rootCmd.Flags().IntVar(&windowDays, "window-days", 1, "collection window in days")
	rootCmd.Flags().Float64Var(&rps, "rps", 2, "news api request rate limit")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error("fetcher failed", "error", err)
		os.Exit(1)
	}
}

func buildRunner(cfg *config.Config, categories []string, windowDays int, rps float64, log *slog.Logger) *fetcher.Runner {
	client := fetcher.NewClient(
		getEnv("NEWS_API_URL", "http://api.bigkinds.or.kr/v2"),
		os.Getenv("NEWS_API_KEY"),
		rps,
		log,
	)
	client.HTTP = httpclient.NewPooledClient(30 * time.Second)

	store := archive.NewHTTPStore(cfg.ArchiveGatewayURL)
	store.Client = httpclient.NewPooledClient(30 * time.Second)
	uploader := fetcher.NewUploader(store, 4, log)

	return fetcher.NewRunner(client, uploader, cfg.ArchiveBucket, categories, windowDays, log)
}

func runScheduled(ctx context.Context, runner *fetcher.Runner, schedule string, log *slog.Logger) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := runner.Run(ctx); err != nil {
			log.Error("collection cycle failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	log.Info("fetcher scheduled", "schedule", schedule)
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
