package capability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeneratorKnownProviders(t *testing.T) {
	g, err := NewGenerator("openai", Settings{APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIGenerator{}, g)

	g, err = NewGenerator("ollama", Settings{Model: "llama3"})
	require.NoError(t, err)
	assert.IsType(t, &OllamaGenerator{}, g)

	g, err = NewGenerator("static", Settings{})
	require.NoError(t, err)
	assert.IsType(t, &StaticGenerator{}, g)

	g, err = NewGenerator("none", Settings{})
	require.NoError(t, err)
	assert.IsType(t, UnavailableGenerator{}, g)
}

func TestNewGeneratorSettingsApplied(t *testing.T) {
	g, err := NewGenerator("openai", Settings{APIKey: "k", Model: "m", Temperature: 0.8, BaseURL: "http://gateway"})
	require.NoError(t, err)
	oa := g.(*OpenAIGenerator)
	assert.Equal(t, 0.8, oa.Temperature)
	assert.Equal(t, "http://gateway", oa.BaseURL)
	assert.Equal(t, "m", oa.ModelName)
}

func TestNewGeneratorMissingKey(t *testing.T) {
	_, err := NewGenerator("openai", Settings{Model: "m"})
	assert.ErrorContains(t, err, "API key")
}

func TestNewGeneratorUnknownProvider(t *testing.T) {
	_, err := NewGenerator("carrier-pigeon", Settings{})
	assert.ErrorContains(t, err, "unsupported generator provider")
}

func TestNewSearcherKnownProviders(t *testing.T) {
	s, err := NewSearcher("tavily", Settings{APIKey: "k", MaxResults: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, s.(*TavilySearcher).MaxResults)

	s, err = NewSearcher("none", Settings{})
	require.NoError(t, err)
	assert.IsType(t, NoSearcher{}, s)

	_, err = NewSearcher("tavily", Settings{})
	assert.ErrorContains(t, err, "API key")

	_, err = NewSearcher("dowsing-rod", Settings{})
	assert.ErrorContains(t, err, "unsupported searcher provider")
}

func TestRegisterDuplicatePanics(t *testing.T) {
	RegisterGenerator("dup-check", func(Settings) (Generator, error) { return UnavailableGenerator{}, nil })
	assert.Panics(t, func() {
		RegisterGenerator("dup-check", func(Settings) (Generator, error) { return UnavailableGenerator{}, nil })
	})
	RegisterSearcher("dup-check", func(Settings) (Searcher, error) { return NoSearcher{}, nil })
	assert.Panics(t, func() {
		RegisterSearcher("dup-check", func(Settings) (Searcher, error) { return NoSearcher{}, nil })
	})
}

func TestStaticGeneratorReplies(t *testing.T) {
	gen := &StaticGenerator{
		Replies: map[string]string{"persona-a": "reply a"},
		Reply:   "default reply",
	}

	out, err := gen.Generate(context.Background(), "persona-a", "p")
	require.NoError(t, err)
	assert.Equal(t, "reply a", out)

	out, err = gen.Generate(context.Background(), "persona-b", "p")
	require.NoError(t, err)
	assert.Equal(t, "default reply", out)
	assert.Equal(t, 2, gen.CallCount())
}

func TestUnavailableVariants(t *testing.T) {
	_, err := UnavailableGenerator{}.Generate(context.Background(), "s", "p")
	assert.ErrorIs(t, err, ErrUnavailable)

	var capErr *Error
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, "generator", capErr.Capability)

	_, err = NoSearcher{}.Search(context.Background(), "q")
	assert.ErrorIs(t, err, ErrUnavailable)
}
