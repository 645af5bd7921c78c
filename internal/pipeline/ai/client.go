package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotConfigured indicates the AI client is not configured
	ErrNotConfigured = errors.New("AI client not configured")
	// ErrAPICallFailed indicates the AI API call failed
	ErrAPICallFailed = errors.New("AI API call failed")
	// ErrInvalidResponse indicates an invalid response from the AI API
	ErrInvalidResponse = errors.New("invalid AI API response")
	// ErrEmptyResponse indicates the model returned no usable content
	ErrEmptyResponse = errors.New("empty AI response")
)

// Provider represents an AI provider
type Provider string

const (
	// ProviderOpenAI represents OpenAI API
	ProviderOpenAI Provider = "openai"
	// ProviderAzure represents Azure OpenAI API
	ProviderAzure Provider = "azure"
	// ProviderClaude represents Anthropic Claude API
	ProviderClaude Provider = "claude"
	// ProviderCustom represents a custom API endpoint
	ProviderCustom Provider = "custom"
)

// maxBodyChars caps how much of an email body is sent to the model.
const maxBodyChars = 20000

// Client handles AI API communication for email analysis and priority
type Client struct {
	provider   Provider
	apiKey     string
	model      string
	imageModel string
	baseURL    string
	httpClient *http.Client
	configured bool
}

// NewClient creates a new AI Client instance
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configure configures the AI client with provider settings
func (c *Client) Configure(provider, apiKey, model string) {
	c.ConfigureWithBaseURL(provider, apiKey, model, "")
}

// ConfigureWithBaseURL configures the AI client with provider settings and custom base URL
func (c *Client) ConfigureWithBaseURL(provider, apiKey, model, baseURL string) {
	c.provider = Provider(strings.ToLower(provider))
	c.apiKey = apiKey
	c.model = model
	c.configured = apiKey != ""

	if baseURL != "" {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	} else {
		switch c.provider {
		case ProviderOpenAI:
			c.baseURL = "https://api.openai.com/v1"
			if c.model == "" {
				c.model = "gpt-4o-mini"
			}
		case ProviderClaude:
			c.baseURL = "https://api.anthropic.com/v1"
			if c.model == "" {
				c.model = "claude-3-haiku-20240307"
			}
		case ProviderAzure:
			// Azure requires custom endpoint
			if c.model == "" {
				c.model = "gpt-35-turbo"
			}
		default:
			c.provider = ProviderOpenAI
			c.baseURL = "https://api.openai.com/v1"
		}
	}
}

// SetImageModel sets the model used for theme image generation.
func (c *Client) SetImageModel(model string) {
	c.imageModel = model
}

// IsConfigured returns whether the client is configured
func (c *Client) IsConfigured() bool {
	return c.configured && c.apiKey != ""
}

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// ChatResponse represents a chat completion response
type ChatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// sendChatRequest sends a chat completion request to the AI API
func (c *Client) sendChatRequest(messages []ChatMessage) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	request := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   1000,
		Temperature: 0.2,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")

	switch c.provider {
	case ProviderClaude:
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	default:
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrAPICallFailed, resp.StatusCode, string(respBody))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrAPICallFailed, chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", ErrInvalidResponse
	}

	return chatResp.Choices[0].Message.Content, nil
}

// extractJSON pulls a JSON object out of a model response, handling fenced
// code blocks and surrounding prose.
func extractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return "", ErrEmptyResponse
	}
	if idx := strings.Index(response, "```"); idx >= 0 {
		rest := response[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			response = strings.TrimSpace(rest[:end])
		}
	}
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object in response", ErrInvalidResponse)
	}
	return response[start : end+1], nil
}

func truncateBody(body string) string {
	if len(body) > maxBodyChars {
		return body[:maxBodyChars]
	}
	return body
}
