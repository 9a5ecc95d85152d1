// internal/ai/client.go

// Package ai talks to an OpenAI-compatible chat completions API in two
// modes: interpreting a business question into a structured intent, and
// summarizing an analytics result for an executive reader.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bi-agent/internal/common/config"
	"bi-agent/internal/common/httpclient"
	"bi-agent/internal/common/logger"
	"bi-agent/internal/models"
)

var (
	ErrProviderFailed  = errors.New("LLM_PROVIDER_FAILED")
	ErrProviderTimeout = errors.New("LLM_TIMEOUT")
)

const intentSystemPrompt = `You translate business questions about deals and work orders into JSON.
Respond with a single JSON object and nothing else:
{"metric": "pipeline_value" | "revenue" | "active_projects_value" | "sector_breakdown",
 "sector": string or null,
 "timeframe": {"type": "quarter" | "year", "year": integer, "quarter": integer or null} or null,
 "data_source": "deals" | "work_orders" | null}
Omit nothing; use null for anything the question does not state.`

const summarySystemPrompt = `You are a concise business analyst. Write a short executive summary
(2-3 sentences) of the metric result you are given. Mention the caveats if any. Plain text only.`

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	client     *httpclient.Client
	logger     logger.Logger
}

func NewClient(cfg config.AIConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		client:     httpclient.New(cfg.Timeout),
		logger:     log.WithFields(map[string]interface{}{"component": "ai-client"}),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// wireIntent is the JSON shape the model is instructed to produce.
type wireIntent struct {
	Metric    string  `json:"metric"`
	Sector    *string `json:"sector"`
	Timeframe *struct {
		Type    string `json:"type"`
		Year    int    `json:"year"`
		Quarter *int   `json:"quarter"`
	} `json:"timeframe"`
	DataSource *string `json:"data_source"`
}

// Interpret asks the model to translate a question into an intent. The JSON
// content is validated against a schema before it is trusted; anything the
// model gets wrong surfaces as ErrProviderFailed so the caller can fall back.
func (c *Client) Interpret(ctx context.Context, question string) (*models.Intent, error) {
	content, err := c.complete(ctx, intentSystemPrompt, question, true)
	if err != nil {
		return nil, err
	}

	if err := validateIntentJSON(content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	var wire wireIntent
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return nil, fmt.Errorf("%w: decode intent: %v", ErrProviderFailed, err)
	}

	intent := &models.Intent{
		Metric: models.Metric(wire.Metric),
		Sector: wire.Sector,
	}
	if wire.DataSource != nil {
		intent.DataSource = models.DataSource(*wire.DataSource)
	}
	if wire.Timeframe != nil {
		tf := &models.Timeframe{Year: wire.Timeframe.Year}
		switch wire.Timeframe.Type {
		case "quarter":
			tf.Kind = models.TimeframeQuarter
			if wire.Timeframe.Quarter != nil {
				tf.Quarter = *wire.Timeframe.Quarter
			}
		case "year":
			tf.Kind = models.TimeframeYear
		}
		intent.Timeframe = tf
	}

	c.logger.Debug("intent interpreted", map[string]interface{}{
		"metric": wire.Metric,
	})

	return intent, nil
}

// Summarize produces a short prose summary of a computed result.
func (c *Client) Summarize(ctx context.Context, question string, result models.AnalyticsResult, caveatList []string) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\nMetric: %s\nRecords considered: %d\n", question, result.Metric, result.RecordCount)
	if result.Value != nil {
		fmt.Fprintf(&sb, "Value: %.2f\n", *result.Value)
	}
	for _, st := range result.Breakdown {
		fmt.Fprintf(&sb, "Sector %s: pipeline %.2f, revenue %.2f\n", st.Sector, st.Pipeline, st.Revenue)
	}
	if len(caveatList) > 0 {
		fmt.Fprintf(&sb, "Caveats: %s\n", strings.Join(caveatList, "; "))
	}

	content, err := c.complete(ctx, summarySystemPrompt, sb.String(), false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// complete runs one chat completion with retries and exponential backoff.
// The request is rebuilt each attempt so the body can be re-sent.
func (c *Client) complete(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	if jsonMode {
		reqBody.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrProviderFailed, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %w", ErrProviderTimeout, ctx.Err())
			}
		}

		content, retryable, err := c.doOnce(ctx, body)
		if err == nil {
			return content, nil
		}
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("%w: %w", ErrProviderTimeout, context.DeadlineExceeded)
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return "", fmt.Errorf("%w: %v", ErrProviderFailed, lastErr)
}

func (c *Client) doOnce(ctx context.Context, body []byte) (content string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, err
	}

	if resp.StatusCode != http.StatusOK {
		// Client errors will not heal on retry; server errors and 429 might.
		canRetry := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
		return "", canRetry, fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", false, fmt.Errorf("decode response: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return "", false, errors.New("no choices in response")
	}
	return parsed.Choices[0].Message.Content, false, nil
}
