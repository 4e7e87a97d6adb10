package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// ObjectWriter stores a rendered document under an object locator.
type ObjectWriter interface {
	Put(ctx context.Context, locator string, content []byte, contentType string) error
}

// UploadJob is one document plus its chunk sidecar, addressed by locator.
type UploadJob struct {
	Locator      string
	Markdown     string
	JSONLLocator string
	JSONL        string
}

// Uploader writes rendered documents to the archive with bounded concurrency.
type Uploader struct {
	writer      ObjectWriter
	concurrency int
	logger      *slog.Logger
}

func NewUploader(writer ObjectWriter, concurrency int, logger *slog.Logger) *Uploader {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Uploader{
		writer:      writer,
		concurrency: concurrency,
		logger:      logger,
	}
}

// UploadAll writes every job, failing fast on the first error.
func (u *Uploader) UploadAll(ctx context.Context, jobs []UploadJob) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)

	for _, job := range jobs {
		g.Go(func() error {
			if err := u.writer.Put(ctx, job.Locator, []byte(job.Markdown), "text/markdown"); err != nil {
				return fmt.Errorf("failed to upload %s: %w", job.Locator, err)
			}
			if job.JSONLLocator != "" {
				if err := u.writer.Put(ctx, job.JSONLLocator, []byte(job.JSONL), "application/jsonl"); err != nil {
					return fmt.Errorf("failed to upload %s: %w", job.JSONLLocator, err)
				}
			}
			u.logger.Info("document_uploaded", slog.String("locator", job.Locator))
			return nil
		})
	}
	return g.Wait()
}
