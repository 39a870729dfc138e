// Package capability abstracts the external services the writing workflow
// leans on: text generation and web search.
//
// Both are small interfaces with interchangeable variants. Generators:
// OpenAIGenerator for any OpenAI-compatible endpoint, OllamaGenerator for a
// local Ollama server, StaticGenerator for scripted offline runs, and
// UnavailableGenerator when nothing is configured. Searchers:
// TavilySearcher for live web search, SynthesisSearcher to fake research
// from the generator's own knowledge, NoSearcher for none at all, and
// FallbackSearcher to chain a primary and a degraded variant.
//
// Which variant a deployment gets is decided once, at construction, through
// the provider registry (NewGenerator/NewSearcher); stage code only ever
// sees the interfaces.
package capability
