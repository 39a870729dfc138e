package capability

import (
	"context"
	"errors"
	"fmt"
)

const synthesisPersona = "You are a careful research assistant. You have no web access right now, " +
	"so rely on your own knowledge. Provide key facts, figures, and context that would help " +
	"someone write about the query. Be factual and note where your knowledge may be dated."

// SynthesisSearcher answers search queries from a text generator instead of
// the web. It is the degraded research path: snippets it returns carry
// SourceModel so callers can flag that no live sources were consulted.
type SynthesisSearcher struct {
	Generator Generator
}

// Ensure SynthesisSearcher implements Searcher
var _ Searcher = &SynthesisSearcher{}

func NewSynthesisSearcher(g Generator) *SynthesisSearcher {
	return &SynthesisSearcher{Generator: g}
}

func (s *SynthesisSearcher) Search(ctx context.Context, query string, opts ...Option) ([]Snippet, error) {
	text, err := s.Generator.Generate(ctx, synthesisPersona, "Research query: "+query, opts...)
	if err != nil {
		return nil, fmt.Errorf("synthesizing research notes: %w", err)
	}
	return []Snippet{{
		Title:   "Model-synthesized notes",
		Content: text,
		Source:  SourceModel,
	}}, nil
}

// FallbackSearcher tries a primary searcher and falls over to a secondary
// one when the primary fails. Only when both fail does it return an error,
// carrying both failures.
type FallbackSearcher struct {
	Primary  Searcher
	Fallback Searcher
}

// Ensure FallbackSearcher implements Searcher
var _ Searcher = &FallbackSearcher{}

func NewFallbackSearcher(primary, fallback Searcher) *FallbackSearcher {
	return &FallbackSearcher{Primary: primary, Fallback: fallback}
}

func (f *FallbackSearcher) Search(ctx context.Context, query string, opts ...Option) ([]Snippet, error) {
	snippets, primaryErr := f.Primary.Search(ctx, query, opts...)
	if primaryErr == nil {
		return snippets, nil
	}
	snippets, fallbackErr := f.Fallback.Search(ctx, query, opts...)
	if fallbackErr == nil {
		return snippets, nil
	}
	return nil, errors.Join(primaryErr, fallbackErr)
}
