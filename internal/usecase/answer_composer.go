package usecase

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"newsqa-orchestrator/internal/domain"
)

// maxSources caps the source list attached to an answer.
const maxSources = 5

var citationMarkerPattern = regexp.MustCompile(`\[(\d+)\]`)

// Response is the complete answer payload returned to callers.
type Response struct {
	Answer       string
	Sources      []domain.ResolvedSource
	Question     string
	UsedFallback bool
}

// AnswerComposer assembles the final response: it prunes and caps the source
// list and audits the citation markers the model emitted against it.
type AnswerComposer struct {
	appendMarkers bool
	logger        *slog.Logger
}

// NewAnswerComposer creates a composer. When appendMarkers is set, answers
// without any citation marker get per-sentence markers appended.
func NewAnswerComposer(appendMarkers bool, logger *slog.Logger) *AnswerComposer {
	return &AnswerComposer{
		appendMarkers: appendMarkers,
		logger:        logger,
	}
}

// Compose builds the response for an answered question. Sources with no
// resolved title are dropped, duplicates collapse by locator, and the list is
// capped. Markers pointing past the final source list are logged but left in
// the answer text: renumbering would silently reattribute citations.
func (c *AnswerComposer) Compose(question, answer string, sources []domain.ResolvedSource, usedFallback bool) *Response {
	kept := dedupeSources(sources)
	if len(kept) > maxSources {
		kept = kept[:maxSources]
	}

	if c.appendMarkers && len(kept) > 0 && !citationMarkerPattern.MatchString(answer) {
		answer = appendSentenceMarkers(answer, len(kept))
	}

	c.auditCitations(answer, len(kept))

	return &Response{
		Answer:       answer,
		Sources:      kept,
		Question:     question,
		UsedFallback: usedFallback,
	}
}

func dedupeSources(sources []domain.ResolvedSource) []domain.ResolvedSource {
	seen := make(map[string]bool, len(sources))
	var kept []domain.ResolvedSource
	for _, source := range sources {
		if strings.TrimSpace(source.Title) == "" {
			continue
		}
		if source.Locator != "" && seen[source.Locator] {
			continue
		}
		seen[source.Locator] = true
		kept = append(kept, source)
	}
	return kept
}

// auditCitations reports markers that reference citation slots beyond the
// source list. The answer text is not rewritten.
func (c *AnswerComposer) auditCitations(answer string, sourceCount int) {
	for _, match := range citationMarkerPattern.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if n < 1 || n > sourceCount {
			c.logger.Warn("citation_contract_violation",
				slog.Int("marker", n),
				slog.Int("source_count", sourceCount))
		}
	}
}

// appendSentenceMarkers attaches cycling citation markers to sentence ends.
// Used only for answers the model produced without any markers of its own.
func appendSentenceMarkers(answer string, sourceCount int) string {
	var sb strings.Builder
	marker := 1
	sentence := strings.Builder{}
	flush := func() {
		text := strings.TrimSpace(sentence.String())
		sentence.Reset()
		if text == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%s [%d]", text, marker)
		marker++
		if marker > sourceCount {
			marker = 1
		}
	}
	for _, r := range answer {
		sentence.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
		}
	}
	flush()
	return sb.String()
}
