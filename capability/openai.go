package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openAIDefaultBaseURL = "https://api.openai.com/v1"

// OpenAIGenerator talks to an OpenAI-compatible chat completions endpoint.
// Any service exposing the same API (including local gateways) works by
// pointing BaseURL at it.
type OpenAIGenerator struct {
	BaseURL     string
	APIKey      string
	ModelName   string
	Temperature float64
	Client      *http.Client
}

// Ensure OpenAIGenerator implements Generator
var _ Generator = &OpenAIGenerator{}

func NewOpenAIGenerator(baseURL, apiKey, modelName string) *OpenAIGenerator {
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	return &OpenAIGenerator{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		ModelName:   modelName,
		Temperature: 0.4,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// --- Interface Implementation ---

func (o *OpenAIGenerator) Generate(ctx context.Context, system, prompt string, opts ...Option) (string, error) {
	options := &Options{
		Temperature: o.Temperature,
	}
	for _, opt := range opts {
		opt(options)
	}

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	messages := make([]openAIMessage, 0, 2)
	if system != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: system})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: prompt})

	reqPayload := openAIChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: options.Temperature,
	}
	if options.MaxTokens > 0 {
		reqPayload.MaxTokens = options.MaxTokens
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := o.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", &Error{Capability: "generator", Err: fmt.Errorf("openai request failed: %w", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Capability: "generator", Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{Capability: "generator", Err: fmt.Errorf("openai error: status %d, body: %s", resp.StatusCode, string(bodyBytes))}
	}

	var chatResp openAIChatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", &Error{Capability: "generator", Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	if len(chatResp.Choices) == 0 {
		return "", &Error{Capability: "generator", Err: fmt.Errorf("openai returned no choices")}
	}

	return chatResp.Choices[0].Message.Content, nil
}

func init() {
	RegisterGenerator("openai", func(s Settings) (Generator, error) {
		if s.APIKey == "" {
			return nil, fmt.Errorf("openai generator requires an API key")
		}
		g := NewOpenAIGenerator(s.BaseURL, s.APIKey, s.Model)
		if s.Temperature > 0 {
			g.Temperature = s.Temperature
		}
		return g, nil
	})
}
