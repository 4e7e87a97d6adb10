package fetcher

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocument_ArchiveFormat(t *testing.T) {
	articles := []Article{
		{
			Title:       "삼성전자 실적 발표",
			Content:     "삼성전자가 실적을 발표했다.",
			PublishedAt: "2025-06-12T09:30:00.000+09:00",
			Author:      "김민수",
			Outlet:      "한국경제",
			URL:         "https://news.example.com/a1",
			Category:    "경제",
		},
		{
			Title:   "제목만 있는 기사",
			Content: "본문.",
		},
	}

	doc := BuildDocument(articles, time.Date(2025, 6, 15, 6, 0, 0, 0, time.UTC))

	assert.True(t, strings.HasPrefix(doc, "# 뉴스 기사 모음"))
	assert.Contains(t, doc, "**기사 수:** 2")
	assert.Contains(t, doc, "### 1. 삼성전자 실적 발표")
	assert.Contains(t, doc, "**발행일:** 2025-06-12T09:30:00.000+09:00")
	assert.Contains(t, doc, "**기자:** 김민수")
	assert.Contains(t, doc, "**언론사:** 한국경제")
	assert.Contains(t, doc, "**URL:** https://news.example.com/a1")
	assert.Contains(t, doc, "**카테고리:** 경제")
	assert.Contains(t, doc, "### 2. 제목만 있는 기사")
	// Empty metadata fields are omitted, not rendered blank.
	blocks := strings.Split(doc, "\n---\n")
	require.Len(t, blocks, 4)
	assert.NotContains(t, blocks[2], "**기자:**")
	assert.NotContains(t, blocks[2], "**URL:**")
}

func TestChunkText_BreaksOnLines(t *testing.T) {
	line := strings.Repeat("가", 100)
	text := strings.Repeat(line+"\n", 30)

	chunks := ChunkText(text)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), chunkByteTarget+len(line)*3+1,
			"chunk should not grossly exceed the target")
		assert.NotContains(t, chunk, "\n\n\n")
	}
	assert.Equal(t, strings.TrimSpace(text), strings.Join(chunks, "\n"))
}

func TestChunkText_ShortTextSingleChunk(t *testing.T) {
	chunks := ChunkText("짧은 본문")
	require.Len(t, chunks, 1)
	assert.Equal(t, "짧은 본문", chunks[0])
}

func TestBuildJSONL_OneRecordPerChunk(t *testing.T) {
	jsonl, err := BuildJSONL([]string{"첫 청크", "둘째 청크"}, "s3://b/doc.md", "경제")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(jsonl), "\n")
	require.Len(t, lines, 2)

	var record jsonlRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &record))
	assert.Equal(t, "둘째 청크", record.Content)
	assert.Equal(t, "s3://b/doc.md", record.Locator)
	assert.Equal(t, 1, record.Ordinal)
	assert.Equal(t, "경제", record.Category)
}

func TestDedupeByURL(t *testing.T) {
	articles := []Article{
		{Title: "a", URL: "https://x/1"},
		{Title: "b", URL: "https://x/1"},
		{Title: "c", URL: "https://x/2"},
		{Title: "d"},
		{Title: "e"},
	}

	kept := dedupeByURL(articles)
	require.Len(t, kept, 4)
	assert.Equal(t, "a", kept[0].Title)
	assert.Equal(t, "c", kept[1].Title)
}
