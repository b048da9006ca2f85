package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"core/internal/config"
	"core/internal/model"
	"core/internal/utils"

	"github.com/sirupsen/logrus"
)

// OpenAIClient talks to an OpenAI-compatible chat/embeddings API. One
// instance is created at process start and is safe for concurrent use.
type OpenAIClient struct {
	config     *config.OpenAIConfig
	httpClient *http.Client
	retryDelay time.Duration
	log        *logrus.Entry
}

// NewOpenAIClient creates a client for an OpenAI-compatible provider.
func NewOpenAIClient(cfg *config.OpenAIConfig, log *logrus.Logger) *OpenAIClient {
	return &OpenAIClient{
		config:     cfg,
		retryDelay: time.Duration(cfg.RetryDelay) * time.Second,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		log: log.WithField("component", "openai"),
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c.config.Enabled
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// post sends a JSON request with a timeout and a single soft retry on
// transient failure (429 or 5xx) with backoff. Terminal failures map into
// the error taxonomy.
func (c *OpenAIClient) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.config.APIBase + path

	var lastStatus int
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			c.log.WithFields(logrus.Fields{"status": lastStatus, "path": path}).
				Warn("transient upstream failure, retrying once")
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, ctx.Err())
			case <-time.After(c.retryDelay):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastStatus = 0
			continue // network failure or timeout: one retry
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastStatus = 0
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastStatus = resp.StatusCode
			continue
		default:
			return nil, fmt.Errorf("%w: upstream status %d", ErrServiceUnavailable, resp.StatusCode)
		}
	}

	if lastStatus == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	return nil, fmt.Errorf("%w: upstream call failed after retry", ErrServiceUnavailable)
}

// chatCompletion performs one chat call and returns the message content.
func (c *OpenAIClient) chatCompletion(ctx context.Context, messages []ChatMessage, temperature float64, jsonOutput bool) (string, error) {
	if !c.config.Enabled {
		return "", fmt.Errorf("%w: missing API key", ErrServiceUnavailable)
	}

	req := chatCompletionRequest{
		Model:       c.config.ChatModel,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   c.config.ChatMaxTokens,
	}
	if jsonOutput {
		req.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	body, err := c.post(ctx, "/chat/completions", req)
	if err != nil {
		return "", err
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", newValidationError("failed to unmarshal chat response: %v", err)
	}
	if len(result.Choices) == 0 {
		return "", newValidationError("chat response contained no choices")
	}

	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", newValidationError("chat response was empty")
	}

	c.log.WithField("tokens", result.Usage.TotalTokens).Debug("chat completion")
	return content, nil
}

// ParseIntent extracts a structured intent from the utterance. The
// conversation history rides along as prior messages; temperature 0 keeps
// identical inputs cacheable.
func (c *OpenAIClient) ParseIntent(ctx context.Context, utterance string, history []model.ChatTurn) (*model.StructuredIntent, error) {
	messages := make([]ChatMessage, 0, 2+2*len(history))
	messages = append(messages, ChatMessage{Role: "system", Content: intentSystemPrompt})
	for _, turn := range history {
		messages = append(messages,
			ChatMessage{Role: "user", Content: turn.Utterance},
			ChatMessage{Role: "assistant", Content: turn.Answer},
		)
	}
	messages = append(messages, ChatMessage{Role: "user", Content: utterance})

	content, err := c.chatCompletion(ctx, messages, 0, true)
	if err != nil {
		return nil, err
	}

	var intent model.StructuredIntent
	if err := utils.ParseAIJSON(content, &intent); err != nil {
		c.log.WithField("content", content).Warn("unparseable intent output")
		return nil, newValidationError("unparseable intent JSON: %v", err)
	}
	return &intent, nil
}

// Summarize generates a grounded comparison over the records. The records
// arrive already deduplicated and capped by the caller.
func (c *OpenAIClient) Summarize(ctx context.Context, question string, records []model.PhoneRecord, totalMatches int) (string, error) {
	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to marshal records: %w", err)
	}

	plural := ""
	if len(records) > 1 {
		plural = "s"
	}
	prompt := fmt.Sprintf(summarySystemPrompt,
		len(records), plural, len(records), totalMatches, string(recordsJSON), question)

	return c.chatCompletion(ctx, []ChatMessage{
		{Role: "system", Content: prompt},
		{Role: "user", Content: question},
	}, 0.2, false)
}

// AnswerGeneral answers a general mobile-technology question.
func (c *OpenAIClient) AnswerGeneral(ctx context.Context, question string) (string, error) {
	return c.chatCompletion(ctx, []ChatMessage{
		{Role: "system", Content: generalQASystemPrompt},
		{Role: "user", Content: question},
	}, 0.4, false)
}

// CreateEmbedding embeds a single short text for nearest-neighbor lookup.
func (c *OpenAIClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("%w: missing API key", ErrServiceUnavailable)
	}

	req := embeddingRequest{
		Model:      c.config.EmbeddingModel,
		Input:      []string{text},
		Dimensions: c.config.EmbeddingDimensions,
	}

	body, err := c.post(ctx, "/embeddings", req)
	if err != nil {
		return nil, err
	}

	var result embeddingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, newValidationError("failed to unmarshal embedding response: %v", err)
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, newValidationError("embedding response contained no vector")
	}

	return result.Data[0].Embedding, nil
}
