package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// shortQuestionLimit marks questions too short to search the archive
	// reliably (e.g. "환율?").
	shortQuestionLimit = 4
	// vocabularySimilarityMin is the difflib ratio above which a question
	// is considered a legitimate domain term rather than a typo.
	vocabularySimilarityMin = 0.8
)

var (
	// Two or more consecutive isolated Hangul jamo indicate garbled input.
	isolatedJamoPattern = regexp.MustCompile(`[ㄱ-ㅎㅏ-ㅣ]{2,}`)
	// Four or more consecutive Latin letters are uncommon in the Korean
	// news context this service targets.
	latinRunPattern = regexp.MustCompile(`[a-zA-Z]{4,}`)
)

// defaultVocabulary holds frequent domain terms the typo heuristic must not
// misfire on.
var defaultVocabulary = []string{
	"삼성전자", "금리", "환율", "부동산", "주가", "인플레이션",
}

// dateKeywords is the closed set of date-relative expressions that route a
// question to the recency path. Matching ignores internal whitespace.
var dateKeywords = []string{
	// day
	"그제", "그저께", "어제", "어저께", "전일", "금일", "오늘", "당일",
	"내일", "익일", "모레", "글피",
	// week
	"지난주", "지난 주", "지지난주", "금주", "이번 주", "이번주",
	"다음주", "다음 주", "차주",
	// month
	"지난달", "지난 달", "지지난달", "금월", "이번 달", "이번달",
	"다음달", "다음 달", "차월",
	// quarter / half-year
	"지난 분기", "지난분기", "이번 분기", "이번분기", "다음 분기", "다음분기",
	"상반기", "하반기",
	// year
	"작년", "지난 해", "지난해", "재작년", "금년", "금년도", "올해", "올 해",
	"내년", "다음 해", "다음해", "차년", "내년도",
	// loose expressions
	"얼마 전", "조만간", "머지않아", "곧", "최근", "현재", "지금", "요즘",
}

// QueryClassifier decides the search strategy for a question. It is pure:
// classification never fails and never performs I/O.
type QueryClassifier struct {
	vocabulary []string
	now        func() time.Time
}

// NewQueryClassifier creates a classifier with the default domain vocabulary.
func NewQueryClassifier() *QueryClassifier {
	return &QueryClassifier{
		vocabulary: defaultVocabulary,
		now:        time.Now,
	}
}

// NewQueryClassifierWithClock creates a classifier with an injected clock,
// for tests exercising the year-literal keywords.
func NewQueryClassifierWithClock(now func() time.Time) *QueryClassifier {
	return &QueryClassifier{
		vocabulary: defaultVocabulary,
		now:        now,
	}
}

// Classify returns the search strategy for a question. Unclassifiable input
// defaults to the standard archive path.
func (c *QueryClassifier) Classify(question string) Strategy {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return StrategyStandard
	}
	if c.looksGarbled(trimmed) {
		return StrategyTypoFix
	}
	if c.needsRecencySearch(trimmed) {
		return StrategyRecency
	}
	return StrategyStandard
}

// looksGarbled applies the typo heuristics, suppressed when the question is
// close to a known-good vocabulary term.
func (c *QueryClassifier) looksGarbled(question string) bool {
	if !isolatedJamoPattern.MatchString(question) && !latinRunPattern.MatchString(question) {
		return false
	}
	for _, term := range c.vocabulary {
		if similarityRatio(term, question) > vocabularySimilarityMin {
			return false
		}
	}
	return true
}

func (c *QueryClassifier) needsRecencySearch(question string) bool {
	if utf8.RuneCountInString(question) <= shortQuestionLimit {
		return true
	}
	normalized := strings.ToLower(strings.ReplaceAll(question, " ", ""))
	for _, keyword := range dateKeywords {
		if strings.Contains(normalized, strings.ReplaceAll(keyword, " ", "")) {
			return true
		}
	}
	currentYear := c.now().Year()
	for _, year := range []int{currentYear, currentYear - 1} {
		if strings.Contains(normalized, strconv.Itoa(year)) {
			return true
		}
	}
	return false
}

// similarityRatio computes the Ratcliff-Obershelp similarity of two strings
// at the rune level, matching Python's difflib.SequenceMatcher.ratio() that
// the vocabulary threshold was calibrated against.
func similarityRatio(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
