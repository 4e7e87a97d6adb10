package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxQuestionLength is the maximum accepted question length in runes.
const MaxQuestionLength = 1000

// DefaultAttemptBudget is the number of archive search attempts the
// orchestrator makes before falling back to live search.
const DefaultAttemptBudget = 3

// ValidateQuestion trims and bounds-checks a raw question string.
// It returns the trimmed question or a ValidationError.
func ValidateQuestion(raw string) (string, error) {
	question := strings.TrimSpace(raw)
	if question == "" {
		return "", NewValidationError("question field is required")
	}
	if utf8.RuneCountInString(question) > MaxQuestionLength {
		return "", NewValidationError("question must not exceed %d characters", MaxQuestionLength)
	}
	return question, nil
}

// Strategy identifies how a question should be searched.
type Strategy string

const (
	// StrategyTypoFix marks garbled input that needs spelling correction
	// before the archive can be searched meaningfully.
	StrategyTypoFix Strategy = "typo_fix"
	// StrategyRecency marks questions about current events where the
	// archive may lag behind.
	StrategyRecency Strategy = "recency"
	// StrategyStandard is the default archive search path.
	StrategyStandard Strategy = "standard"
)

// SearchPlan drives the retrieval attempt loop for one question. It is
// created at the start of a request and discarded after the response is built.
type SearchPlan struct {
	Strategy      Strategy
	UserGoal      string
	TimeContext   string
	TargetYears   []string
	KeyEntities   []string
	AttemptBudget int
}
