package usecase

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"newsqa-orchestrator/internal/domain"
)

const (
	// minBlockRelevance is the score below which block matching is
	// considered inconclusive and the first article block is used instead.
	minBlockRelevance = 0.1

	titleWordScore    = 0.5
	categoryWordScore = 0.3
	bodyWordScore     = 0.1
	verbatimBonus     = 0.2

	// displayDateLayout is the localized display format for published dates.
	displayDateLayout = "2006년 01월 02일"
)

// Archive documents carry one article per block, separated by horizontal
// rules, with labeled metadata fields. Both label spellings produced by the
// ingest tooling over time are accepted.
var (
	articleTitlePattern = regexp.MustCompile(`###\s*\d+\.\s*(.+)`)
	publishedAtPattern  = regexp.MustCompile(`\*\*발행일:?\*\*:?\s*([^\n]+)`)
	authorPattern       = regexp.MustCompile(`\*\*기자:?\*\*:?\s*([^\n]+)`)
	outletPattern       = regexp.MustCompile(`\*\*언론사:?\*\*:?\s*([^\n]+)`)
	urlPattern          = regexp.MustCompile(`\*\*URL:?\*\*:?\s*(\S+)`)
	categoryPattern     = regexp.MustCompile(`\*\*카테고리:?\*\*:?\s*([^\n]+)`)
)

var isoDateLayouts = []string{
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// MetadataResolver recovers structured source metadata for a retrieved
// passage by re-parsing the archived document behind its locator.
type MetadataResolver interface {
	Resolve(ctx context.Context, locator, passage string) domain.ResolvedSource
}

type metadataResolver struct {
	store         domain.DocumentStore
	defaultOutlet string
	logger        *slog.Logger
}

// NewMetadataResolver creates a resolver reading documents from store.
// defaultOutlet fills the outlet field when the document does not carry one.
func NewMetadataResolver(store domain.DocumentStore, defaultOutlet string, logger *slog.Logger) MetadataResolver {
	return &metadataResolver{
		store:         store,
		defaultOutlet: defaultOutlet,
		logger:        logger,
	}
}

// Resolve is best-effort: fetch or parse failures yield a ResolvedSource with
// default fields, never an error. Idempotent for an unchanged document.
// Callers are expected to deduplicate by locator to avoid repeated fetches.
func (r *metadataResolver) Resolve(ctx context.Context, locator, passage string) domain.ResolvedSource {
	source := domain.ResolvedSource{
		Outlet:  r.defaultOutlet,
		Locator: locator,
	}

	raw, err := r.store.Fetch(ctx, locator)
	if err != nil {
		r.logger.Warn("document_fetch_failed",
			slog.String("locator", locator),
			slog.String("error", err.Error()))
		return source
	}

	blocks := splitArticleBlocks(string(raw))
	if len(blocks) == 0 {
		r.logger.Warn("document_has_no_article_blocks", slog.String("locator", locator))
		return source
	}

	bestIdx := 0
	bestScore := 0.0
	for i, block := range blocks {
		score := blockRelevance(block, passage)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestScore < minBlockRelevance {
		// Inconclusive match: incomplete metadata from the first article
		// beats no metadata at all.
		bestIdx = 0
		bestScore = 0
	}

	r.extractFields(blocks[bestIdx], &source)
	source.Relevance = bestScore
	return source
}

// splitArticleBlocks splits an archive document on its horizontal-rule
// separators and discards the file header block.
func splitArticleBlocks(content string) []string {
	parts := strings.Split(content, "\n---\n")
	if len(parts) <= 1 {
		return nil
	}
	var blocks []string
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) != "" {
			blocks = append(blocks, part)
		}
	}
	return blocks
}

// blockRelevance scores an article block against a retrieved passage.
// Each distinguishing passage word contributes by where it appears (title >
// category > body), a verbatim passage hit adds a flat bonus, and the sum is
// normalized by the word count into [0,1].
func blockRelevance(block, passage string) float64 {
	words := distinguishingWords(passage)
	if len(words) == 0 {
		return 0
	}

	blockLower := strings.ToLower(block)
	titleRegion := titleRegionOf(blockLower)
	categoryLine := ""
	if m := categoryPattern.FindStringSubmatch(blockLower); m != nil {
		categoryLine = m[1]
	}

	score := 0.0
	for _, word := range words {
		switch {
		case strings.Contains(titleRegion, word):
			score += titleWordScore
		case categoryLine != "" && strings.Contains(categoryLine, word):
			score += categoryWordScore
		case strings.Contains(blockLower, word):
			score += bodyWordScore
		}
	}
	if strings.Contains(blockLower, strings.ToLower(passage)) {
		score += verbatimBonus
	}

	normalized := score / float64(len(words))
	if normalized > 1 {
		normalized = 1
	}
	return normalized
}

// titleRegionOf returns the part of a lowercased block before the published
// date label, or its first 200 bytes when the label is missing.
func titleRegionOf(blockLower string) string {
	if idx := strings.Index(blockLower, "**발행일"); idx > 0 {
		return blockLower[:idx]
	}
	if len(blockLower) > 200 {
		// Avoid cutting a multi-byte rune at the boundary.
		cut := 200
		for cut > 0 && !utf8.RuneStart(blockLower[cut]) {
			cut--
		}
		return blockLower[:cut]
	}
	return blockLower
}

// distinguishingWords returns the lowercased words of a passage longer than
// one rune, preserving order.
func distinguishingWords(passage string) []string {
	var words []string
	for _, word := range strings.Fields(strings.ToLower(passage)) {
		if utf8.RuneCountInString(word) > 1 {
			words = append(words, word)
		}
	}
	return words
}

func (r *metadataResolver) extractFields(block string, source *domain.ResolvedSource) {
	if m := articleTitlePattern.FindStringSubmatch(block); m != nil {
		source.Title = strings.TrimSpace(m[1])
	}
	if m := publishedAtPattern.FindStringSubmatch(block); m != nil {
		source.Date = normalizeDisplayDate(strings.TrimSpace(m[1]))
	}
	if m := authorPattern.FindStringSubmatch(block); m != nil {
		source.Author = strings.TrimSpace(m[1])
	}
	if m := outletPattern.FindStringSubmatch(block); m != nil {
		if outlet := strings.TrimSpace(m[1]); outlet != "" {
			source.Outlet = outlet
		}
	}
	if m := urlPattern.FindStringSubmatch(block); m != nil {
		source.URL = strings.TrimSpace(m[1])
	}
}

// normalizeDisplayDate converts an ISO-8601 published date into the localized
// display format, falling back to the raw string on parse failure.
func normalizeDisplayDate(raw string) string {
	if !strings.Contains(raw, "T") && !strings.Contains(raw, "-") {
		return raw
	}
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(displayDateLayout)
		}
	}
	return raw
}
