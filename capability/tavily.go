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

const tavilyDefaultBaseURL = "https://api.tavily.com"

// TavilySearcher queries the Tavily web search API. Results come back as
// web snippets, with Tavily's own summary answer first when the API
// provides one.
type TavilySearcher struct {
	BaseURL    string
	APIKey     string
	MaxResults int
	Client     *http.Client
}

// Ensure TavilySearcher implements Searcher
var _ Searcher = &TavilySearcher{}

func NewTavilySearcher(baseURL, apiKey string) *TavilySearcher {
	if baseURL == "" {
		baseURL = tavilyDefaultBaseURL
	}
	return &TavilySearcher{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		MaxResults: 5,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type tavilySearchRequest struct {
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilySearchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (t *TavilySearcher) Search(ctx context.Context, query string, opts ...Option) ([]Snippet, error) {
	options := &Options{
		MaxResults: t.MaxResults,
	}
	for _, opt := range opts {
		opt(options)
	}

	reqPayload := tavilySearchRequest{
		Query:         query,
		MaxResults:    options.MaxResults,
		IncludeAnswer: true,
	}
	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := t.BaseURL + "/search"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, &Error{Capability: "search", Err: fmt.Errorf("tavily request failed: %w", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Capability: "search", Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Capability: "search", Err: fmt.Errorf("tavily error: status %d, body: %s", resp.StatusCode, string(bodyBytes))}
	}

	var searchResp tavilySearchResponse
	if err := json.Unmarshal(bodyBytes, &searchResp); err != nil {
		return nil, &Error{Capability: "search", Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	snippets := make([]Snippet, 0, len(searchResp.Results)+1)
	if searchResp.Answer != "" {
		snippets = append(snippets, Snippet{
			Title:   "Summary answer",
			Content: searchResp.Answer,
			Source:  SourceWeb,
		})
	}
	for _, r := range searchResp.Results {
		snippets = append(snippets, Snippet{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Source:  SourceWeb,
		})
	}
	if len(snippets) == 0 {
		return nil, &Error{Capability: "search", Err: fmt.Errorf("tavily returned no results")}
	}
	return snippets, nil
}

func init() {
	RegisterSearcher("tavily", func(s Settings) (Searcher, error) {
		if s.APIKey == "" {
			return nil, fmt.Errorf("tavily searcher requires an API key")
		}
		ts := NewTavilySearcher(s.BaseURL, s.APIKey)
		if s.MaxResults > 0 {
			ts.MaxResults = s.MaxResults
		}
		return ts, nil
	})
}
