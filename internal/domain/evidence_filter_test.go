package domain_test

import (
	"testing"

	"newsqa-orchestrator/internal/domain"

	"github.com/stretchr/testify/assert"
)

func scored(locator, date string, relevance float64) domain.ScoredSource {
	return domain.ScoredSource{
		Evidence: domain.EvidenceItem{Locator: locator, PassageText: "passage"},
		Source: domain.ResolvedSource{
			Title:     "기사 " + locator,
			Date:      date,
			Locator:   locator,
			Relevance: relevance,
		},
	}
}

func TestFilterEvidence_NoTargetYearsAdmitsAll(t *testing.T) {
	items := []domain.ScoredSource{
		scored("a", "2025년 06월 01일", 0.9),
		scored("b", "2019년 03월 11일", 0.2),
	}

	got := domain.FilterEvidence(items, nil, 3)
	assert.Len(t, got, 2)
}

func TestFilterEvidence_AdmitsMatchingYears(t *testing.T) {
	items := []domain.ScoredSource{
		scored("a", "2025년 06월 01일", 0.9),
		scored("b", "2024년 12월 30일", 0.8),
		scored("c", "2019년 03월 11일", 0.7),
		scored("d", "2025년 01월 15일", 0.6),
	}

	got := domain.FilterEvidence(items, []string{"2025", "2024"}, 3)
	assert.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Source.Locator)
	assert.Equal(t, "b", got[1].Source.Locator)
	assert.Equal(t, "d", got[2].Source.Locator)
}

func TestFilterEvidence_ZeroAdmittedDisablesFilter(t *testing.T) {
	items := []domain.ScoredSource{
		scored("a", "2019년 03월 11일", 0.9),
		scored("b", "2018년 07월 22일", 0.8),
	}

	got := domain.FilterEvidence(items, []string{"2025"}, 3)
	assert.Len(t, got, 2, "an all-pruning filter is inconclusive and must be disabled")
}

func TestFilterEvidence_TopsUpToFloorByRelevance(t *testing.T) {
	items := []domain.ScoredSource{
		scored("a", "2025년 06월 01일", 0.5),
		scored("b", "2019년 03월 11일", 0.3),
		scored("c", "2018년 07월 22일", 0.9),
		scored("d", "2017년 01월 05일", 0.1),
	}

	got := domain.FilterEvidence(items, []string{"2025"}, 3)
	assert.Len(t, got, 3)
	// Admitted item first, then rejected items by descending relevance.
	assert.Equal(t, "a", got[0].Source.Locator)
	assert.Equal(t, "c", got[1].Source.Locator)
	assert.Equal(t, "b", got[2].Source.Locator)
}

func TestFilterEvidence_NoTopUpWhenBelowFloorCandidates(t *testing.T) {
	items := []domain.ScoredSource{
		scored("a", "2025년 06월 01일", 0.5),
		scored("b", "2019년 03월 11일", 0.3),
	}

	got := domain.FilterEvidence(items, []string{"2025"}, 3)
	assert.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Source.Locator)
}

func TestFilterEvidence_EmptyDateNeverMatches(t *testing.T) {
	items := []domain.ScoredSource{
		scored("a", "", 0.9),
		scored("b", "2025년 06월 01일", 0.5),
		scored("c", "2025년 02월 10일", 0.4),
		scored("d", "2025년 01월 03일", 0.3),
	}

	got := domain.FilterEvidence(items, []string{"2025"}, 3)
	assert.Len(t, got, 3)
	for _, item := range got {
		assert.NotEqual(t, "a", item.Source.Locator)
	}
}

func TestFilterEvidence_Deterministic(t *testing.T) {
	items := []domain.ScoredSource{
		scored("a", "2025년 06월 01일", 0.5),
		scored("b", "2019년 03월 11일", 0.3),
		scored("c", "2018년 07월 22일", 0.3),
		scored("d", "2017년 01월 05일", 0.3),
	}

	first := domain.FilterEvidence(items, []string{"2025"}, 3)
	second := domain.FilterEvidence(items, []string{"2025"}, 3)
	assert.Equal(t, first, second)
}

func TestFilterEvidence_EmptyInput(t *testing.T) {
	assert.Nil(t, domain.FilterEvidence(nil, []string{"2025"}, 3))
}
