package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/potsbox/exchange/internal/reliability"
)

const (
	openAIRequestTimeout = 30 * time.Second
	openAIMaxRetries     = 2
	openAIBackoffBase    = 250 * time.Millisecond
	openAIBackoffCap     = 2 * time.Second
)

// OpenAIAdapter calls the OpenAI Responses API over plain HTTP.
type OpenAIAdapter struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenAIAdapter(apiKey, baseURL, model string) *OpenAIAdapter {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIAdapter{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: openAIRequestTimeout},
	}
}

type responsesRequest struct {
	Model           string         `json:"model"`
	Input           []Message      `json:"input"`
	Temperature     float64        `json:"temperature"`
	MaxOutputTokens int            `json:"max_output_tokens,omitempty"`
	Text            *responsesText `json:"text,omitempty"`
}

type responsesText struct {
	Format responsesFormat `json:"format"`
}

type responsesFormat struct {
	Type string `json:"type"`
}

type responsesReply struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *OpenAIAdapter) Generate(ctx context.Context, req Request) (string, error) {
	payload := responsesRequest{
		Model:           a.model,
		Input:           req.Messages,
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
	}
	if req.ForceJSON {
		payload.Text = &responsesText{Format: responsesFormat{Type: "json_object"}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= openAIMaxRetries; attempt++ {
		if attempt > 0 {
			wait := reliability.ExponentialBackoff(attempt-1, openAIBackoffBase, openAIBackoffCap)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		text, retryable, err := a.doOnce(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", lastErr
}

func (a *OpenAIAdapter) doOnce(ctx context.Context, body []byte) (string, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/responses", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", true, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		retry := reliability.IsRetryableHTTPStatus(resp.StatusCode)
		return "", retry, fmt.Errorf("openai status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var reply responsesReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", false, fmt.Errorf("decode openai response: %w", err)
	}
	if reply.Error != nil {
		return "", false, fmt.Errorf("openai error: %s", reply.Error.Message)
	}

	if text := strings.TrimSpace(reply.OutputText); text != "" {
		return text, false, nil
	}
	var sb strings.Builder
	for _, item := range reply.Output {
		for _, c := range item.Content {
			if c.Type == "output_text" || c.Type == "text" {
				sb.WriteString(c.Text)
			}
		}
	}
	return strings.TrimSpace(sb.String()), false, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
