package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"commit-analyzer/internal/provider"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "openai/gpt-3.5-turbo"
	DefaultTimeout = 60 * time.Second

	providerName = "openrouter"
)

type Client struct {
	BaseURL string
	Client  *http.Client
	APIKey  string
	logger  *zap.Logger
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse keeps Content as a pointer so a missing key can be told apart
// from an empty reply.
type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message *struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type ModelsResponse struct {
	Data []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Created int64  `json:"created"`
	} `json:"data"`
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: timeout,
		},
		APIKey: strings.TrimSpace(apiKey),
		logger: logger,
	}
}

func (c *Client) Complete(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		model = DefaultModel
	}
	url := fmt.Sprintf("%s/chat/completions", c.BaseURL)

	reqBody := ChatRequest{
		Model: model,
		Messages: []ChatMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	c.attachAuth(req)

	c.logger.Debug("sending chat completion", zap.String("url", url), zap.String("model", model), zap.Int("prompt_bytes", len(prompt)))

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", &provider.RemoteServiceError{Provider: providerName, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", &provider.RemoteServiceError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", &provider.RemoteServiceError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %v", provider.ErrMalformedResponse, err),
		}
	}

	content, err := firstChoiceContent(chatResp)
	if err != nil {
		return "", &provider.RemoteServiceError{Provider: providerName, StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug("chat completion received", zap.String("id", chatResp.ID), zap.Int("total_tokens", chatResp.Usage.TotalTokens))

	return content, nil
}

func firstChoiceContent(chatResp ChatResponse) (string, error) {
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", provider.ErrMalformedResponse)
	}

	message := chatResp.Choices[0].Message
	if message == nil || message.Content == nil {
		return "", fmt.Errorf("%w: choices[0].message.content is missing", provider.ErrMalformedResponse)
	}

	content := strings.TrimSpace(*message.Content)
	if content == "" {
		return "", provider.ErrEmptyResponse
	}
	return content, nil
}

func (c *Client) ListModels(ctx context.Context) ([]provider.Model, error) {
	url := fmt.Sprintf("%s/models", c.BaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.attachAuth(req)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &provider.RemoteServiceError{Provider: providerName, Err: fmt.Errorf("failed to fetch models: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &provider.RemoteServiceError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var modelsResp ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&modelsResp); err != nil {
		return nil, &provider.RemoteServiceError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %v", provider.ErrMalformedResponse, err),
		}
	}

	models := make([]provider.Model, 0, len(modelsResp.Data))
	for _, m := range modelsResp.Data {
		models = append(models, provider.Model{
			Name: m.ID,
		})
	}

	return models, nil
}

func (c *Client) attachAuth(req *http.Request) {
	if c.APIKey == "" {
		return
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
}
