package usecase_test

import (
	"strings"
	"testing"
	"time"

	"newsqa-orchestrator/internal/domain"
	"newsqa-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchPlan_PlainJSON(t *testing.T) {
	raw := `{
		"user_goal": "삼성전자 실적 확인",
		"time_context": "최근 분기",
		"target_year_range": ["2025", "2024"],
		"key_entities": ["삼성전자", "실적"],
		"search_strategy": "키워드 중심 검색"
	}`

	plan, err := usecase.ParseSearchPlan(raw)
	require.NoError(t, err)
	assert.Equal(t, "삼성전자 실적 확인", plan.UserGoal)
	assert.Equal(t, []string{"2025", "2024"}, plan.TargetYears)
	assert.Equal(t, []string{"삼성전자", "실적"}, plan.KeyEntities)
}

func TestParseSearchPlan_JSONWrappedInProse(t *testing.T) {
	raw := "분석 결과는 다음과 같습니다.\n```json\n" +
		`{"user_goal":"환율 동향","target_year_range":["2025"],"key_entities":["환율"]}` +
		"\n```\n이상입니다."

	plan, err := usecase.ParseSearchPlan(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025"}, plan.TargetYears)
	assert.Equal(t, []string{"환율"}, plan.KeyEntities)
}

func TestParseSearchPlan_NoJSON(t *testing.T) {
	_, err := usecase.ParseSearchPlan("죄송합니다, 분석할 수 없습니다.")
	assert.Error(t, err)
}

func TestParseSpellfix(t *testing.T) {
	got, err := usecase.ParseSpellfix(`{"corrected":"삼성전자 실적 알려줘","keywords":["삼성전자"]}`)
	require.NoError(t, err)
	assert.Equal(t, "삼성전자 실적 알려줘", got)
}

func TestParseSpellfix_EmptyCorrected(t *testing.T) {
	_, err := usecase.ParseSpellfix(`{"corrected":"  ","keywords":[]}`)
	assert.Error(t, err)
}

func TestBuildAnswerPrompt_NumbersEvidence(t *testing.T) {
	builder := usecase.NewPromptBuilder(usecase.GenerationModeDirect)
	evidence := []domain.ScoredSource{
		{Evidence: domain.EvidenceItem{PassageText: "첫 번째 기사 내용"}},
		{Evidence: domain.EvidenceItem{PassageText: "두 번째 기사 내용"}},
	}

	prompt := builder.BuildAnswerPrompt("질문입니다", domain.SearchPlan{}, evidence)

	assert.Contains(t, prompt, "[기사 1]\n첫 번째 기사 내용")
	assert.Contains(t, prompt, "[기사 2]\n두 번째 기사 내용")
	assert.Contains(t, prompt, "질문입니다")
	// Direct mode carries no plan preamble.
	assert.NotContains(t, prompt, "질문 분석 결과")
}

func TestBuildAnswerPrompt_TemplateModeIncludesPlan(t *testing.T) {
	builder := usecase.NewPromptBuilder(usecase.GenerationModeTemplate)
	plan := domain.SearchPlan{
		UserGoal:    "실적 확인",
		TimeContext: "올해",
		KeyEntities: []string{"삼성전자", "실적"},
	}

	prompt := builder.BuildAnswerPrompt("질문", plan, nil)

	assert.Contains(t, prompt, "질문 분석 결과")
	assert.Contains(t, prompt, "실적 확인")
	assert.Contains(t, prompt, "삼성전자, 실적")
}

func TestBuildAnalysisPrompt_IncludesCurrentDate(t *testing.T) {
	builder := usecase.NewPromptBuilder(usecase.GenerationModeDirect)
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	prompt := builder.BuildAnalysisPrompt("질문", now)

	assert.True(t, strings.Contains(prompt, "2025년 06월 15일"))
	assert.Contains(t, prompt, `"2025", "2024"`)
}

func TestNewPromptBuilder_UnknownModeFallsBackToDirect(t *testing.T) {
	builder := usecase.NewPromptBuilder(usecase.GenerationMode("weird"))
	prompt := builder.BuildAnswerPrompt("질문", domain.SearchPlan{UserGoal: "목표"}, nil)
	assert.NotContains(t, prompt, "질문 분석 결과")
}
