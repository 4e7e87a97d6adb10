package fetcher

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

	"golang.org/x/time/rate"
)

// Article is one news item returned by the provider API.
type Article struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	PublishedAt string `json:"published_at"`
	Author      string `json:"byline"`
	Outlet      string `json:"provider"`
	URL         string `json:"provider_link_page"`
	Category    string `json:"category"`
}

type searchRequest struct {
	AccessKey string         `json:"access_key"`
	Argument  searchArgument `json:"argument"`
}

type searchArgument struct {
	Query      string      `json:"query"`
	Category   []string    `json:"category,omitempty"`
	DateRange  dateRange   `json:"published_at"`
	SortTarget []sortField `json:"sort"`
	ReturnFrom int         `json:"return_from"`
	ReturnSize int         `json:"return_size"`
	Fields     []string    `json:"fields"`
}

type dateRange struct {
	From  string `json:"from"`
	Until string `json:"until"`
}

type sortField struct {
	Date string `json:"date"`
}

type searchResponse struct {
	ReturnObject struct {
		TotalHits int       `json:"total_hits"`
		Documents []Article `json:"documents"`
	} `json:"return_object"`
}

// Client fetches articles from the news provider API with rate limiting.
// The provider throttles aggressively, so all paging goes through one limiter.
type Client struct {
	BaseURL   string
	AccessKey string
	HTTP      *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
}

func NewClient(baseURL, accessKey string, requestsPerSecond float64, logger *slog.Logger) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		AccessKey: accessKey,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  logger,
	}
}

const pageSize = 100

// FetchWindow retrieves every article in a category published inside the
// window, paging until the reported total is exhausted.
func (c *Client) FetchWindow(ctx context.Context, category string, from, until time.Time) ([]Article, error) {
	var all []Article
	offset := 0
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, total, err := c.fetchPage(ctx, category, from, until, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		c.logger.Info("fetch_page_completed",
			slog.String("category", category),
			slog.Int("offset", offset),
			slog.Int("total_hits", total),
			slog.Int("fetched", len(all)))

		offset += len(page)
		if len(page) == 0 || offset >= total {
			return all, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, category string, from, until time.Time, offset int) ([]Article, int, error) {
	reqBody := searchRequest{
		AccessKey: c.AccessKey,
		Argument: searchArgument{
			Query:      "",
			Category:   []string{category},
			DateRange:  dateRange{From: from.Format("2006-01-02"), Until: until.Format("2006-01-02")},
			SortTarget: []sortField{{Date: "desc"}},
			ReturnFrom: offset,
			ReturnSize: pageSize,
			Fields: []string{
				"title", "content", "published_at", "byline",
				"provider", "provider_link_page", "category",
			},
		},
	}
	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/search/news", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to call news api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, 0, fmt.Errorf("news api returned %d: %s", resp.StatusCode, string(body))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}
	return searchResp.ReturnObject.Documents, searchResp.ReturnObject.TotalHits, nil
}
