package augur

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"newsqa-orchestrator/internal/domain"
)

const webSearchModel = "sonar"

type webSearchRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type webSearchResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// WebSearchClient calls a hosted search-augmented completion API. It backs
// the last-resort path when the archive yields nothing usable.
type WebSearchClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewWebSearchClient(baseURL, apiKey string) *WebSearchClient {
	return &WebSearchClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Search runs a live web-grounded completion for the prompt. The API key is
// checked here rather than at startup so the archive path keeps working when
// the fallback is unconfigured.
func (c *WebSearchClient) Search(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("web search is not configured")
	}

	slog.Info("web_search_started")
	start := time.Now()

	reqBody := webSearchRequest{
		Model:    webSearchModel,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		slog.Error("web_search_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return "", fmt.Errorf("failed to call search endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("search endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var searchResp webSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(searchResp.Choices) == 0 {
		return "", fmt.Errorf("search response has no choices")
	}

	slog.Info("web_search_completed", slog.Duration("elapsed", time.Since(start)))
	return strings.TrimSpace(searchResp.Choices[0].Message.Content), nil
}

var _ domain.WebSearcher = (*WebSearchClient)(nil)
