package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"commit-analyzer/internal/provider"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 60 * time.Second
	EnvAPIKey      = "OLLAMA_API_KEY"

	providerName = "ollama"
)

type Client struct {
	BaseURL string
	Client  *http.Client
	APIKey  string
	logger  *zap.Logger
}

type ModelsResponse struct {
	Models []provider.Model `json:"models"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type ChatResponse struct {
	Model           string       `json:"model"`
	CreatedAt       string       `json:"created_at"`
	Message         *ChatMessage `json:"message"`
	Done            bool         `json:"done"`
	TotalDuration   int64        `json:"total_duration"`
	PromptEvalCount int          `json:"prompt_eval_count"`
	EvalCount       int          `json:"eval_count"`
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	apiKey := strings.TrimSpace(os.Getenv(EnvAPIKey))

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: timeout,
		},
		APIKey: apiKey,
		logger: logger,
	}
}

func (c *Client) ListModels(ctx context.Context) ([]provider.Model, error) {
	url := fmt.Sprintf("%s/api/tags", c.BaseURL)

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
		return nil, &provider.RemoteServiceError{Provider: providerName, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var modelsResp ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&modelsResp); err != nil {
		return nil, &provider.RemoteServiceError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %v", provider.ErrMalformedResponse, err),
		}
	}

	return modelsResp.Models, nil
}

func (c *Client) Complete(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		model = DefaultModel
	}
	url := fmt.Sprintf("%s/api/chat", c.BaseURL)

	reqBody := ChatRequest{
		Model: model,
		Messages: []ChatMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		Stream: false,
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

	c.logger.Debug("sending ollama chat", zap.String("url", url), zap.String("model", model))

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", &provider.RemoteServiceError{Provider: providerName, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &provider.RemoteServiceError{Provider: providerName, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", &provider.RemoteServiceError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %v", provider.ErrMalformedResponse, err),
		}
	}

	if chatResp.Message == nil {
		return "", &provider.RemoteServiceError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: message is missing", provider.ErrMalformedResponse),
		}
	}

	content := strings.TrimSpace(chatResp.Message.Content)
	if content == "" {
		return "", &provider.RemoteServiceError{Provider: providerName, StatusCode: resp.StatusCode, Err: provider.ErrEmptyResponse}
	}

	return content, nil
}

func (c *Client) attachAuth(req *http.Request) {
	if c.APIKey == "" {
		return
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
}
