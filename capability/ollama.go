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

const ollamaDefaultBaseURL = "http://localhost:11434"

// OllamaGenerator runs prompts against a local Ollama server, which keeps
// drafting fully offline. The wire format is Ollama's /api/chat endpoint.
type OllamaGenerator struct {
	BaseURL     string
	ModelName   string
	Temperature float64
	Client      *http.Client
}

// Ensure OllamaGenerator implements Generator
var _ Generator = &OllamaGenerator{}

func NewOllamaGenerator(baseURL, modelName string) *OllamaGenerator {
	if baseURL == "" {
		baseURL = ollamaDefaultBaseURL
	}
	return &OllamaGenerator{
		BaseURL:     baseURL,
		ModelName:   modelName,
		Temperature: 0.4,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (o *OllamaGenerator) Generate(ctx context.Context, system, prompt string, opts ...Option) (string, error) {
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

	messages := make([]ollamaMessage, 0, 2)
	if system != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: system})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: prompt})

	reqPayload := ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
		},
	}
	if options.MaxTokens > 0 {
		reqPayload.Options.NumPredict = options.MaxTokens
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := o.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", &Error{Capability: "generator", Err: fmt.Errorf("ollama request failed: %w", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Capability: "generator", Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{Capability: "generator", Err: fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(bodyBytes))}
	}

	var chatResp ollamaChatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", &Error{Capability: "generator", Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	return chatResp.Message.Content, nil
}

func init() {
	RegisterGenerator("ollama", func(s Settings) (Generator, error) {
		g := NewOllamaGenerator(s.BaseURL, s.Model)
		if s.Temperature > 0 {
			g.Temperature = s.Temperature
		}
		return g, nil
	})
}
