package newsqa_http

import (
	"net/http"

	"newsqa-orchestrator/internal/domain"
	"newsqa-orchestrator/internal/infra/logger"
	"newsqa-orchestrator/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type chatRequest struct {
	Question string `json:"question" validate:"required"`
}

type chatResponse struct {
	Answer       string       `json:"answer"`
	Sources      []sourceItem `json:"sources"`
	Question     string       `json:"question"`
	UsedFallback bool         `json:"usedFallback"`
}

type sourceItem struct {
	Title   string `json:"title"`
	Date    string `json:"date"`
	Author  string `json:"author,omitempty"`
	Outlet  string `json:"outlet"`
	URL     string `json:"url,omitempty"`
	Locator string `json:"locator"`
}

type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

type healthResponse struct {
	Status          string `json:"status"`
	KnowledgeBaseID string `json:"knowledgeBaseId"`
}

type Handler struct {
	orchestrator    usecase.SearchOrchestrator
	knowledgeBaseID string
	validate        *validator.Validate
}

func NewHandler(orchestrator usecase.SearchOrchestrator, knowledgeBaseID string) *Handler {
	return &Handler{
		orchestrator:    orchestrator,
		knowledgeBaseID: knowledgeBaseID,
		validate:        validator.New(),
	}
}

// Register mounts the question-answering routes on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/chat", h.Chat)
	e.GET("/health", h.Health)
}

// Chat answers a news question.
// (POST /chat)
func (h *Handler) Chat(ctx echo.Context) error {
	var req chatRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Error: "invalid request body",
			Type:  "validation_error",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{
			Error: "question is required",
			Type:  "validation_error",
		})
	}

	reqCtx := logger.WithRequestID(ctx.Request().Context(), uuid.NewString())
	output, err := h.orchestrator.Execute(reqCtx, usecase.AnswerQuestionInput{
		Question: req.Question,
	})
	if err != nil {
		if domain.IsValidation(err) {
			return ctx.JSON(http.StatusBadRequest, errorResponse{
				Error: err.Error(),
				Type:  "validation_error",
			})
		}
		return ctx.JSON(http.StatusInternalServerError, errorResponse{
			Error: "failed to answer question",
			Type:  "internal_error",
		})
	}

	sources := make([]sourceItem, 0, len(output.Sources))
	for _, s := range output.Sources {
		sources = append(sources, sourceItem{
			Title:   s.Title,
			Date:    s.Date,
			Author:  s.Author,
			Outlet:  s.Outlet,
			URL:     s.URL,
			Locator: s.Locator,
		})
	}
	return ctx.JSON(http.StatusOK, chatResponse{
		Answer:       output.Answer,
		Sources:      sources,
		Question:     output.Question,
		UsedFallback: output.UsedFallback,
	})
}

// Health reports liveness. It touches no downstream capability so a degraded
// model or store never fails the probe.
// (GET /health)
func (h *Handler) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, healthResponse{
		Status:          "ok",
		KnowledgeBaseID: h.knowledgeBaseID,
	})
}
