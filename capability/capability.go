package capability

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable is returned by variants that have no backing service, and
// wrapped by providers whose backing service cannot be reached.
var ErrUnavailable = errors.New("capability unavailable")

// Error reports the failure of a named external capability. Stages inspect
// it to decide between degrading and surfacing the failure.
type Error struct {
	Capability string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Capability, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	MaxResults  int    // Search result cap
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxResults(n int) Option {
	return func(o *Options) {
		o.MaxResults = n
	}
}

// Generator produces text from a prompt. The system string selects the
// persona the model should answer as; callers pass a different persona per
// workflow stage.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, options ...Option) (string, error)
}

// Snippet is one unit of research material.
type Snippet struct {
	Title   string
	URL     string
	Content string
	Source  string // "web" or "model"
}

// Snippet sources.
const (
	SourceWeb   = "web"
	SourceModel = "model"
)

// Searcher retrieves research material for a query.
type Searcher interface {
	Search(ctx context.Context, query string, options ...Option) ([]Snippet, error)
}

// Settings carries the construction parameters a provider factory may need.
// Providers ignore fields that do not apply to them.
type Settings struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxResults  int
}
