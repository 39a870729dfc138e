package capability

import (
	"context"
	"sync"
)

// GeneratorCall records one Generate invocation made against a
// StaticGenerator.
type GeneratorCall struct {
	System string
	Prompt string
}

// StaticGenerator returns canned text instead of calling a model. Replies
// are looked up by the system persona of the call, falling back to Reply,
// which makes it easy to script a whole workflow run in tests and demos.
type StaticGenerator struct {
	Replies map[string]string // keyed by system persona
	Reply   string            // used when no persona matches
	Err     error             // when set, every call fails with it

	mu    sync.Mutex
	calls []GeneratorCall
}

// Ensure StaticGenerator implements Generator
var _ Generator = &StaticGenerator{}

func (g *StaticGenerator) Generate(ctx context.Context, system, prompt string, opts ...Option) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	g.mu.Lock()
	g.calls = append(g.calls, GeneratorCall{System: system, Prompt: prompt})
	g.mu.Unlock()
	if g.Err != nil {
		return "", g.Err
	}
	if reply, ok := g.Replies[system]; ok {
		return reply, nil
	}
	return g.Reply, nil
}

// Calls returns a copy of every recorded invocation.
func (g *StaticGenerator) Calls() []GeneratorCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]GeneratorCall(nil), g.calls...)
}

// CallCount returns how many times Generate was invoked.
func (g *StaticGenerator) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// UnavailableGenerator always fails with ErrUnavailable. It stands in when
// no text generation is configured at all.
type UnavailableGenerator struct{}

// Ensure UnavailableGenerator implements Generator
var _ Generator = UnavailableGenerator{}

func (UnavailableGenerator) Generate(context.Context, string, string, ...Option) (string, error) {
	return "", &Error{Capability: "generator", Err: ErrUnavailable}
}

// NoSearcher always fails with ErrUnavailable. Wiring it as the primary
// searcher forces the research stage onto its degraded paths.
type NoSearcher struct{}

// Ensure NoSearcher implements Searcher
var _ Searcher = NoSearcher{}

func (NoSearcher) Search(context.Context, string, ...Option) ([]Snippet, error) {
	return nil, &Error{Capability: "search", Err: ErrUnavailable}
}

func init() {
	RegisterGenerator("static", func(s Settings) (Generator, error) {
		return &StaticGenerator{}, nil
	})
	RegisterGenerator("none", func(s Settings) (Generator, error) {
		return UnavailableGenerator{}, nil
	})
	RegisterSearcher("none", func(s Settings) (Searcher, error) {
		return NoSearcher{}, nil
	})
}
