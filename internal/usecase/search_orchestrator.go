package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"newsqa-orchestrator/internal/domain"
	"newsqa-orchestrator/internal/infra/logger"

	"github.com/google/uuid"
)

// OrchestratorConfig carries the tunable parameters of the search loop.
// Threshold and floor are deliberate knobs, not invariants.
type OrchestratorConfig struct {
	AttemptBudget     int
	RetrievalK        int
	DateRelevanceMin  float64
	SourceFloor       int
	PlanMaxTokens     int
	AnswerMaxTokens   int
	SpellfixMaxTokens int
}

func (c OrchestratorConfig) withDefaults() OrchestratorConfig {
	if c.AttemptBudget <= 0 {
		c.AttemptBudget = domain.DefaultAttemptBudget
	}
	if c.RetrievalK <= 0 {
		c.RetrievalK = 5
	}
	if c.DateRelevanceMin <= 0 {
		c.DateRelevanceMin = 0.6
	}
	if c.SourceFloor <= 0 {
		c.SourceFloor = domain.DefaultSourceFloor
	}
	if c.PlanMaxTokens <= 0 {
		c.PlanMaxTokens = 400
	}
	if c.AnswerMaxTokens <= 0 {
		c.AnswerMaxTokens = 1000
	}
	if c.SpellfixMaxTokens <= 0 {
		c.SpellfixMaxTokens = 200
	}
	return c
}

// AnswerQuestionInput is the single parameter of a question request.
type AnswerQuestionInput struct {
	Question string
}

// SearchOrchestrator runs the full question-answering control loop:
// classify, plan, retrieve with retries, evaluate, generate, fall back.
type SearchOrchestrator interface {
	Execute(ctx context.Context, input AnswerQuestionInput) (*Response, error)
}

type searchOrchestrator struct {
	classifier *domain.QueryClassifier
	retriever  domain.Retriever
	llm        domain.LLMClient
	webSearch  domain.WebSearcher
	resolver   MetadataResolver
	prompts    *PromptBuilder
	composer   *AnswerComposer
	cfg        OrchestratorConfig
	now        func() time.Time
	logger     *slog.Logger
}

// NewSearchOrchestrator wires the components of the retrieval loop together.
func NewSearchOrchestrator(
	classifier *domain.QueryClassifier,
	retriever domain.Retriever,
	llm domain.LLMClient,
	webSearch domain.WebSearcher,
	resolver MetadataResolver,
	prompts *PromptBuilder,
	composer *AnswerComposer,
	cfg OrchestratorConfig,
	logger *slog.Logger,
) SearchOrchestrator {
	return &searchOrchestrator{
		classifier: classifier,
		retriever:  retriever,
		llm:        llm,
		webSearch:  webSearch,
		resolver:   resolver,
		prompts:    prompts,
		composer:   composer,
		cfg:        cfg.withDefaults(),
		now:        time.Now,
		logger:     logger,
	}
}

func (o *searchOrchestrator) Execute(ctx context.Context, input AnswerQuestionInput) (*Response, error) {
	question, err := domain.ValidateQuestion(input.Question)
	if err != nil {
		return nil, err
	}

	// The HTTP layer stamps the request ID; direct callers get a fresh one.
	requestID := logger.RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := o.logger.With(slog.String("request_id", requestID))

	strategy := o.classifier.Classify(question)
	log.Info("question_classified",
		slog.String("strategy", string(strategy)),
		slog.Int("question_length", len([]rune(question))))

	searchQuestion := question
	if strategy == domain.StrategyTypoFix {
		searchQuestion = o.spellfix(ctx, question, log)
	}

	plan := o.analyze(ctx, searchQuestion, strategy, log)

	for attempt := 1; attempt <= plan.AttemptBudget; attempt++ {
		query := o.buildAttemptQuery(plan, searchQuestion, attempt)
		log.Info("search_attempt_started",
			slog.Int("attempt", attempt),
			slog.Int("budget", plan.AttemptBudget),
			slog.String("query", query))

		evidence, err := o.runAttempt(ctx, query, plan, log)
		if err != nil {
			log.Warn("search_attempt_failed",
				slog.Int("attempt", attempt),
				slog.String("reason", err.Error()))
			continue
		}

		answer, err := o.generateAnswer(ctx, searchQuestion, *plan, evidence)
		if err != nil {
			log.Warn("answer_generation_failed", slog.String("error", err.Error()))
			break
		}

		log.Info("search_succeeded", slog.Int("attempt", attempt), slog.Int("evidence_count", len(evidence)))
		return o.composer.Compose(question, answer, sourcesOf(evidence), false), nil
	}

	return o.fallback(ctx, question, log)
}

// runAttempt retrieves, resolves metadata, evaluates date relevance, and
// filters the evidence for one attempt. Recoverable failures come back as
// ErrRetrievalEmpty / ErrQualityRejected for the loop to consume.
func (o *searchOrchestrator) runAttempt(ctx context.Context, query string, plan *domain.SearchPlan, log *slog.Logger) ([]domain.ScoredSource, error) {
	items, err := o.retriever.Retrieve(ctx, query, o.cfg.RetrievalK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrRetrievalEmpty
	}

	scored := o.resolveAll(ctx, items)

	if len(plan.TargetYears) > 0 {
		matching := 0
		for _, item := range scored {
			if yearMatches(item.Source.Date, plan.TargetYears) {
				matching++
			}
		}
		ratio := float64(matching) / float64(len(scored))
		log.Info("date_relevance_evaluated",
			slog.Float64("ratio", ratio),
			slog.Float64("threshold", o.cfg.DateRelevanceMin),
			slog.Any("target_years", plan.TargetYears))
		if ratio < o.cfg.DateRelevanceMin {
			return nil, domain.ErrQualityRejected
		}
	}

	return domain.FilterEvidence(scored, plan.TargetYears, o.cfg.SourceFloor), nil
}

// resolveAll resolves source metadata for each passage, resolving every
// distinct locator once per request.
func (o *searchOrchestrator) resolveAll(ctx context.Context, items []domain.EvidenceItem) []domain.ScoredSource {
	resolvedByLocator := make(map[string]domain.ResolvedSource, len(items))
	scored := make([]domain.ScoredSource, 0, len(items))
	for _, item := range items {
		source, ok := resolvedByLocator[item.Locator]
		if !ok {
			source = o.resolver.Resolve(ctx, item.Locator, item.PassageText)
			resolvedByLocator[item.Locator] = source
		}
		scored = append(scored, domain.ScoredSource{Evidence: item, Source: source})
	}
	return scored
}

// analyze asks the LLM for a structured search plan; any failure falls back
// to a deterministic default derived from the question itself.
func (o *searchOrchestrator) analyze(ctx context.Context, question string, strategy domain.Strategy, log *slog.Logger) *domain.SearchPlan {
	plan := o.defaultPlan(question, strategy)

	resp, err := o.llm.Generate(ctx, o.prompts.BuildAnalysisPrompt(question, o.now()), o.cfg.PlanMaxTokens)
	if err != nil {
		log.Warn("plan_analysis_failed", slog.String("error", err.Error()))
		return plan
	}
	parsed, err := ParseSearchPlan(resp.Text)
	if err != nil {
		log.Warn("plan_parse_failed", slog.String("error", err.Error()))
		return plan
	}

	if len(parsed.TargetYears) > 0 {
		plan.TargetYears = parsed.TargetYears
	}
	if len(parsed.KeyEntities) > 0 {
		plan.KeyEntities = parsed.KeyEntities
	}
	plan.UserGoal = parsed.UserGoal
	plan.TimeContext = parsed.TimeContext
	log.Info("plan_analyzed",
		slog.Any("target_years", plan.TargetYears),
		slog.Any("key_entities", plan.KeyEntities))
	return plan
}

// defaultPlan derives target years from the question's own date keywords,
// falling back to the last two calendar years.
func (o *searchOrchestrator) defaultPlan(question string, strategy domain.Strategy) *domain.SearchPlan {
	currentYear := o.now().Year()
	normalized := strings.ToLower(strings.ReplaceAll(question, " ", ""))

	targetYears := []string{strconv.Itoa(currentYear), strconv.Itoa(currentYear - 1)}
	switch {
	case containsAny(normalized, "작년", "지난해", strconv.Itoa(currentYear-1)+"년"):
		targetYears = []string{strconv.Itoa(currentYear - 1)}
	case containsAny(normalized, "올해", "최근", "현재", "지금", "오늘", strconv.Itoa(currentYear)+"년"):
		targetYears = []string{strconv.Itoa(currentYear)}
	default:
		if year := literalYearIn(normalized, currentYear); year != "" {
			targetYears = []string{year}
		}
	}

	return &domain.SearchPlan{
		Strategy:      strategy,
		UserGoal:      question,
		TargetYears:   targetYears,
		KeyEntities:   []string{question},
		AttemptBudget: o.cfg.AttemptBudget,
	}
}

// buildAttemptQuery broadens the search across attempts: entities joined with
// the year window first, entities alone next, the raw question last.
func (o *searchOrchestrator) buildAttemptQuery(plan *domain.SearchPlan, question string, attempt int) string {
	switch {
	case attempt == 1:
		return strings.TrimSpace(strings.Join(plan.KeyEntities, " ") + " " + strings.Join(plan.TargetYears, " "))
	case attempt < plan.AttemptBudget:
		return strings.Join(plan.KeyEntities, " ")
	default:
		return question
	}
}

func (o *searchOrchestrator) generateAnswer(ctx context.Context, question string, plan domain.SearchPlan, evidence []domain.ScoredSource) (string, error) {
	prompt := o.prompts.BuildAnswerPrompt(question, plan, evidence)
	resp, err := o.llm.Generate(ctx, prompt, o.cfg.AnswerMaxTokens)
	if err != nil {
		return "", fmt.Errorf("llm generation failed: %w", err)
	}
	answer := strings.TrimSpace(resp.Text)
	if answer == "" {
		return "", fmt.Errorf("llm returned empty answer")
	}
	return answer, nil
}

// spellfix asks the LLM to correct garbled input. Best-effort: the original
// question is kept on any failure.
func (o *searchOrchestrator) spellfix(ctx context.Context, question string, log *slog.Logger) string {
	resp, err := o.llm.Generate(ctx, o.prompts.BuildSpellfixPrompt(question), o.cfg.SpellfixMaxTokens)
	if err != nil {
		log.Warn("spellfix_failed", slog.String("error", err.Error()))
		return question
	}
	corrected, err := ParseSpellfix(resp.Text)
	if err != nil {
		log.Warn("spellfix_parse_failed", slog.String("error", err.Error()))
		return question
	}
	log.Info("spellfix_applied", slog.String("corrected", corrected))
	return corrected
}

// fallback invokes the live web-search capability with the raw question.
// Its own failure is the only path to a user-visible internal error.
func (o *searchOrchestrator) fallback(ctx context.Context, question string, log *slog.Logger) (*Response, error) {
	log.Warn("all_search_attempts_exhausted")

	text, err := o.webSearch.Search(ctx, o.prompts.BuildWebSearchPrompt(question, o.now()))
	if err != nil {
		log.Error("web_search_fallback_failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("all search paths failed: %w", err)
	}

	log.Info("web_search_fallback_used")
	return o.composer.Compose(question, text, nil, true), nil
}

func sourcesOf(evidence []domain.ScoredSource) []domain.ResolvedSource {
	sources := make([]domain.ResolvedSource, 0, len(evidence))
	for _, item := range evidence {
		sources = append(sources, item.Source)
	}
	return sources
}

func yearMatches(date string, targetYears []string) bool {
	for _, year := range targetYears {
		if year != "" && strings.Contains(date, year) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func literalYearIn(normalized string, currentYear int) string {
	for year := currentYear - 2; year >= currentYear-10; year-- {
		if strings.Contains(normalized, strconv.Itoa(year)+"년") {
			return strconv.Itoa(year)
		}
	}
	return ""
}
