package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Runner drives one collection cycle: fetch each category's window, dedupe,
// render to the archive format, and upload document plus chunk sidecar.
type Runner struct {
	client     *Client
	uploader   *Uploader
	bucket     string
	categories []string
	windowDays int
	now        func() time.Time
	logger     *slog.Logger
}

func NewRunner(client *Client, uploader *Uploader, bucket string, categories []string, windowDays int, logger *slog.Logger) *Runner {
	if windowDays <= 0 {
		windowDays = 1
	}
	return &Runner{
		client:     client,
		uploader:   uploader,
		bucket:     bucket,
		categories: categories,
		windowDays: windowDays,
		now:        time.Now,
		logger:     logger,
	}
}

// Run collects one window for every configured category. Category failures
// are logged and skipped so one bad category does not starve the rest.
func (r *Runner) Run(ctx context.Context) error {
	until := r.now()
	from := until.AddDate(0, 0, -r.windowDays)
	stamp := until.Format("2006-01-02")

	var jobs []UploadJob
	for _, category := range r.categories {
		articles, err := r.client.FetchWindow(ctx, category, from, until)
		if err != nil {
			r.logger.Error("category_fetch_failed",
				slog.String("category", category),
				slog.String("error", err.Error()))
			continue
		}
		articles = dedupeByURL(articles)
		if len(articles) == 0 {
			r.logger.Info("category_window_empty", slog.String("category", category))
			continue
		}

		locator := fmt.Sprintf("s3://%s/%s/%s.md", r.bucket, category, stamp)
		markdown := BuildDocument(articles, until)
		jsonl, err := BuildJSONL(ChunkText(markdown), locator, category)
		if err != nil {
			return err
		}

		jobs = append(jobs, UploadJob{
			Locator:      locator,
			Markdown:     markdown,
			JSONLLocator: fmt.Sprintf("s3://%s/%s/%s.jsonl", r.bucket, category, stamp),
			JSONL:        jsonl,
		})
		r.logger.Info("category_rendered",
			slog.String("category", category),
			slog.Int("article_count", len(articles)))
	}

	if len(jobs) == 0 {
		r.logger.Warn("collection_cycle_produced_nothing")
		return nil
	}
	return r.uploader.UploadAll(ctx, jobs)
}

// dedupeByURL drops repeated articles, keeping first occurrence. Articles
// without a URL are kept unconditionally.
func dedupeByURL(articles []Article) []Article {
	seen := make(map[string]bool, len(articles))
	var kept []Article
	for _, article := range articles {
		if article.URL != "" {
			if seen[article.URL] {
				continue
			}
			seen[article.URL] = true
		}
		kept = append(kept, article)
	}
	return kept
}
