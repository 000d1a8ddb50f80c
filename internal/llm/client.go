// Package llm wraps the hosted chat-completion collaborator behind a
// single-turn Complete call.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/korventis/sitedocs/internal/core"
	"github.com/korventis/sitedocs/internal/logger"
)

// DefaultBaseURL targets OpenRouter; any OpenAI-compatible
// /chat/completions endpoint works.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Ensure Client implements the interface.
var _ core.ChatService = (*Client)(nil)

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a chat client. An empty baseURL falls back to
// OpenRouter.
func NewClient(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // generous timeout for LLM responses
		},
	}
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// apiError represents an error response from the API.
type apiError struct {
	Error struct {
		Message  string `json:"message"`
		Code     int    `json:"code"`
		Metadata struct {
			Raw          string `json:"raw"`
			ProviderName string `json:"provider_name"`
		} `json:"metadata"`
	} `json:"error"`
}

type chatResponse struct {
	Choices []struct {
		FinishReason string  `json:"finish_reason"`
		Message      Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// Complete sends one user prompt, no history and no tools, and returns the
// model's text verbatim.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:    c.model,
		Messages: []Message{{Role: "user", Content: prompt}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	logger.Info("Sending prompt of %d characters to model %s", len(prompt), c.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	// The API reports errors in the body regardless of status code.
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		if apiErr.Error.Metadata.ProviderName != "" {
			return "", fmt.Errorf("chat API error (%s): %s", apiErr.Error.Metadata.ProviderName, apiErr.Error.Message)
		}
		return "", fmt.Errorf("chat API error: %s (code: %d)", apiErr.Error.Message, apiErr.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API HTTP error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}

	if parsed.Usage.TotalTokens > 0 {
		logger.Info("LLM usage - prompt: %d, completion: %d, total: %d tokens, finish: %s",
			parsed.Usage.PromptTokens, parsed.Usage.CompletionTokens,
			parsed.Usage.TotalTokens, parsed.Choices[0].FinishReason)
	}

	return parsed.Choices[0].Message.Content, nil
}
