package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"newsqa-orchestrator/internal/domain"
)

// GenerationMode selects the answer prompt variant. The two modes replace the
// parallel handler implementations the service previously maintained.
type GenerationMode string

const (
	// GenerationModeDirect sends the question and numbered evidence only.
	GenerationModeDirect GenerationMode = "direct"
	// GenerationModeTemplate prefixes the prompt with the analysis plan so
	// the model can weigh the question's time context.
	GenerationModeTemplate GenerationMode = "template"
)

// PromptBuilder renders the prompts used across the orchestration states:
// plan analysis, spelling correction, evidence-grounded answering, and the
// live-search fallback.
type PromptBuilder struct {
	mode GenerationMode
}

// NewPromptBuilder creates a builder for the given generation mode.
// Unknown modes fall back to direct.
func NewPromptBuilder(mode GenerationMode) *PromptBuilder {
	if mode != GenerationModeTemplate {
		mode = GenerationModeDirect
	}
	return &PromptBuilder{mode: mode}
}

// BuildAnalysisPrompt asks the model to produce a structured search plan.
func (b *PromptBuilder) BuildAnalysisPrompt(question string, now time.Time) string {
	return fmt.Sprintf(`현재 날짜: %s

다음 사용자 질문을 분석하고 검색 계획을 수립하세요.

사용자 질문: "%s"

다음 형식으로 JSON만 응답:
{
    "user_goal": "사용자가 원하는 것",
    "time_context": "질문의 시간적 맥락",
    "target_year_range": ["%d", "%d"],
    "key_entities": ["핵심 키워드들"],
    "search_strategy": "검색 전략 설명"
}`, now.Format(displayDateLayout), question, now.Year(), now.Year()-1)
}

// BuildSpellfixPrompt asks the model to correct garbled input.
func (b *PromptBuilder) BuildSpellfixPrompt(question string) string {
	return fmt.Sprintf(`다음 문장을 한국어로 올바르게 교정한 뒤 JSON 형태로만 반환하세요.
포맷: {"corrected":"...", "keywords":["..."]}
문장: "%s"`, question)
}

// BuildAnswerPrompt renders the evidence-grounded answer prompt. Evidence is
// numbered in citation-slot order; the model must only use markers [1]..[N]
// for the N articles supplied.
func (b *PromptBuilder) BuildAnswerPrompt(question string, plan domain.SearchPlan, evidence []domain.ScoredSource) string {
	var articles strings.Builder
	for i, item := range evidence {
		fmt.Fprintf(&articles, "[기사 %d]\n%s\n\n", i+1, item.Evidence.PassageText)
	}

	var sb strings.Builder
	if b.mode == GenerationModeTemplate {
		fmt.Fprintf(&sb, `질문 분석 결과:
- 사용자 목표: %s
- 시간적 맥락: %s
- 핵심 엔티티: %s

`, orDefault(plan.UserGoal, "정보 검색"), orDefault(plan.TimeContext, "일반적"), strings.Join(plan.KeyEntities, ", "))
	}

	fmt.Fprintf(&sb, `사용자 질문에 맞는 뉴스 기사를 분석하고 요약 답변을 작성해주세요.

사용자 질문: %s

검색된 뉴스 기사들:
%s
**각주 규칙 (매우 중요):**
- 인용하는 기사 순서대로 [1], [2], [3], [4], [5]를 사용
- 반드시 [1]부터 시작해서 순차적으로 사용
- 제공된 기사 수보다 큰 번호는 절대 사용 금지
- 같은 기사를 여러 번 인용할 때도 같은 번호 사용

**답변 작성 지침:**
- 2~4줄의 간결한 답변
- 구체적 정보 필수: 인명, 날짜, 기관명, 수치
- 인용한 문장 끝에 반드시 각주 표시
- 객관적 사실만 기반으로 작성

답변 작성:`, question, articles.String())

	return sb.String()
}

// BuildWebSearchPrompt renders the live fallback prompt sent to the
// recency-aware search capability.
func (b *PromptBuilder) BuildWebSearchPrompt(question string, now time.Time) string {
	return fmt.Sprintf(`현재 날짜: %s

"%s"에 대한 정보를 찾아 한국어로 답변해주세요.
최신 정보를 우선적으로 참조하고, 구체적인 날짜와 출처를 포함해주세요.`, now.Format(displayDateLayout), question)
}

type planPayload struct {
	UserGoal        string   `json:"user_goal"`
	TimeContext     string   `json:"time_context"`
	TargetYearRange []string `json:"target_year_range"`
	KeyEntities     []string `json:"key_entities"`
	SearchStrategy  string   `json:"search_strategy"`
}

type spellfixPayload struct {
	Corrected string   `json:"corrected"`
	Keywords  []string `json:"keywords"`
}

// ParseSearchPlan extracts the JSON plan from an LLM analysis response.
// Models occasionally wrap the object in prose, so parsing starts at the
// first brace and ends at the last.
func ParseSearchPlan(raw string) (*domain.SearchPlan, error) {
	object, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}
	var payload planPayload
	if err := json.Unmarshal([]byte(object), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse analysis plan: %w", err)
	}
	return &domain.SearchPlan{
		UserGoal:    payload.UserGoal,
		TimeContext: payload.TimeContext,
		TargetYears: payload.TargetYearRange,
		KeyEntities: payload.KeyEntities,
	}, nil
}

// ParseSpellfix extracts the corrected question from a spellfix response.
func ParseSpellfix(raw string) (string, error) {
	object, err := extractJSONObject(raw)
	if err != nil {
		return "", err
	}
	var payload spellfixPayload
	if err := json.Unmarshal([]byte(object), &payload); err != nil {
		return "", fmt.Errorf("failed to parse spellfix response: %w", err)
	}
	if strings.TrimSpace(payload.Corrected) == "" {
		return "", fmt.Errorf("spellfix response has no corrected text")
	}
	return strings.TrimSpace(payload.Corrected), nil
}

func extractJSONObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return raw[start : end+1], nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
