package domain

import (
	"sort"
	"strings"
)

// DefaultSourceFloor is the minimum admitted-source count the relaxation
// policy tries to maintain when enough candidates exist. It is a reasonable
// default, not a hard invariant; callers may tune it.
const DefaultSourceFloor = 3

// FilterEvidence admits sources whose resolved year falls inside targetYears,
// with a relaxation policy when the filter over-prunes:
//
//   - empty targetYears admits everything (no filter requested)
//   - zero admitted while candidates exist → the filter is treated as
//     inconclusive and disabled for this set
//   - fewer than floor admitted while at least floor candidates exist → the
//     admitted set is topped up with the highest-relevance rejected items
//
// The result preserves retrieval order for admitted items; topped-up items
// follow in relevance order. Deterministic for identical inputs.
func FilterEvidence(items []ScoredSource, targetYears []string, floor int) []ScoredSource {
	if len(items) == 0 {
		return nil
	}
	if len(targetYears) == 0 {
		out := make([]ScoredSource, len(items))
		copy(out, items)
		return out
	}
	if floor <= 0 {
		floor = DefaultSourceFloor
	}

	var admitted, rejected []ScoredSource
	for _, item := range items {
		if yearAdmitted(item.Source.Date, targetYears) {
			admitted = append(admitted, item)
		} else {
			rejected = append(rejected, item)
		}
	}

	if len(admitted) == 0 {
		// Filter pruned everything: inconclusive, disable it.
		out := make([]ScoredSource, len(items))
		copy(out, items)
		return out
	}

	if len(admitted) < floor && len(items) >= floor {
		sort.SliceStable(rejected, func(i, j int) bool {
			return rejected[i].Source.Relevance > rejected[j].Source.Relevance
		})
		for _, item := range rejected {
			if len(admitted) >= floor {
				break
			}
			admitted = append(admitted, item)
		}
	}

	return admitted
}

// yearAdmitted reports whether any target year appears in the display date.
// Substring matching keeps localized display dates ("2025년 06월 12일") and
// raw ISO strings both working.
func yearAdmitted(date string, targetYears []string) bool {
	if date == "" {
		return false
	}
	for _, year := range targetYears {
		if year != "" && strings.Contains(date, year) {
			return true
		}
	}
	return false
}
