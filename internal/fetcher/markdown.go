package fetcher

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// chunkByteTarget is the approximate size of an indexable passage. Chunks end
// on a line boundary, so actual sizes vary around the target.
const chunkByteTarget = 700

// BuildDocument renders articles into the archive markdown format the
// metadata resolver reads back: a collection header, then one block per
// article separated by horizontal rules, each with labeled metadata fields.
func BuildDocument(articles []Article, collectedAt time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# 뉴스 기사 모음\n\n**수집 일시:** %s\n**기사 수:** %d\n\n---\n",
		collectedAt.Format("2006-01-02 15:04:05"), len(articles))

	for i, article := range articles {
		fmt.Fprintf(&sb, "\n### %d. %s\n\n", i+1, strings.TrimSpace(article.Title))
		fmt.Fprintf(&sb, "**발행일:** %s\n", article.PublishedAt)
		if article.Author != "" {
			fmt.Fprintf(&sb, "**기자:** %s\n", article.Author)
		}
		if article.Outlet != "" {
			fmt.Fprintf(&sb, "**언론사:** %s\n", article.Outlet)
		}
		if article.URL != "" {
			fmt.Fprintf(&sb, "**URL:** %s\n", article.URL)
		}
		if article.Category != "" {
			fmt.Fprintf(&sb, "**카테고리:** %s\n", article.Category)
		}
		fmt.Fprintf(&sb, "\n%s\n\n---\n", strings.TrimSpace(article.Content))
	}
	return sb.String()
}

// ChunkText splits a document into passages of roughly chunkByteTarget bytes,
// breaking on newlines so no passage starts mid-sentence.
func ChunkText(text string) []string {
	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if current.Len() > 0 && current.Len()+len(line)+1 > chunkByteTarget {
			if chunk := strings.TrimSpace(current.String()); chunk != "" {
				chunks = append(chunks, chunk)
			}
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if chunk := strings.TrimSpace(current.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

type jsonlRecord struct {
	Content  string `json:"content"`
	Locator  string `json:"source_locator"`
	Ordinal  int    `json:"ordinal"`
	Category string `json:"category"`
}

// BuildJSONL renders the chunked passages of a document as one JSON record
// per line, carrying the locator of the markdown document they came from.
func BuildJSONL(chunks []string, locator, category string) (string, error) {
	var sb strings.Builder
	for i, chunk := range chunks {
		record := jsonlRecord{
			Content:  chunk,
			Locator:  locator,
			Ordinal:  i,
			Category: category,
		}
		line, err := json.Marshal(record)
		if err != nil {
			return "", fmt.Errorf("failed to marshal chunk record: %w", err)
		}
		sb.Write(line)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
