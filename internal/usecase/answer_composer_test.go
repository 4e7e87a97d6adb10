package usecase_test

import (
	"testing"

	"newsqa-orchestrator/internal/domain"
	"newsqa-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func source(title, locator string) domain.ResolvedSource {
	return domain.ResolvedSource{Title: title, Locator: locator, Date: "2025년 06월 01일"}
}

func TestCompose_DropsUntitledSources(t *testing.T) {
	composer := usecase.NewAnswerComposer(false, testLogger())

	resp := composer.Compose("질문", "답변 [1]", []domain.ResolvedSource{
		source("제목 있음", "a"),
		source("", "b"),
		source("  ", "c"),
	}, false)

	assert.Len(t, resp.Sources, 1)
	assert.Equal(t, "제목 있음", resp.Sources[0].Title)
}

func TestCompose_DedupesByLocator(t *testing.T) {
	composer := usecase.NewAnswerComposer(false, testLogger())

	resp := composer.Compose("질문", "답변 [1]", []domain.ResolvedSource{
		source("기사 A", "a"),
		source("기사 A 중복", "a"),
		source("기사 B", "b"),
	}, false)

	assert.Len(t, resp.Sources, 2)
	assert.Equal(t, "기사 A", resp.Sources[0].Title)
	assert.Equal(t, "기사 B", resp.Sources[1].Title)
}

func TestCompose_CapsSources(t *testing.T) {
	composer := usecase.NewAnswerComposer(false, testLogger())

	sources := []domain.ResolvedSource{
		source("1", "a"), source("2", "b"), source("3", "c"),
		source("4", "d"), source("5", "e"), source("6", "f"), source("7", "g"),
	}
	resp := composer.Compose("질문", "답변", sources, false)

	assert.Len(t, resp.Sources, 5)
	assert.Equal(t, "5", resp.Sources[4].Title)
}

func TestCompose_OutOfRangeMarkerKeptInAnswer(t *testing.T) {
	composer := usecase.NewAnswerComposer(false, testLogger())

	// The answer cites [3] but only two sources survived pruning. The marker
	// stays untouched: renumbering would silently reattribute the citation.
	resp := composer.Compose("질문", "답변 내용 [3]", []domain.ResolvedSource{
		source("기사 A", "a"),
		source("기사 B", "b"),
	}, false)

	assert.Equal(t, "답변 내용 [3]", resp.Answer)
	assert.Len(t, resp.Sources, 2)
}

func TestCompose_FallbackCarriesNoSources(t *testing.T) {
	composer := usecase.NewAnswerComposer(false, testLogger())

	resp := composer.Compose("질문", "웹 검색 답변", nil, true)

	assert.True(t, resp.UsedFallback)
	assert.Empty(t, resp.Sources)
	assert.Equal(t, "질문", resp.Question)
}

func TestCompose_AppendsMarkersWhenEnabled(t *testing.T) {
	composer := usecase.NewAnswerComposer(true, testLogger())

	resp := composer.Compose("질문", "첫 번째 문장입니다. 두 번째 문장입니다.", []domain.ResolvedSource{
		source("기사 A", "a"),
		source("기사 B", "b"),
	}, false)

	assert.Equal(t, "첫 번째 문장입니다. [1] 두 번째 문장입니다. [2]", resp.Answer)
}

func TestCompose_MarkerAppendingSkippedWhenAnswerCites(t *testing.T) {
	composer := usecase.NewAnswerComposer(true, testLogger())

	resp := composer.Compose("질문", "이미 각주가 있는 답변 [1]", []domain.ResolvedSource{
		source("기사 A", "a"),
	}, false)

	assert.Equal(t, "이미 각주가 있는 답변 [1]", resp.Answer)
}
