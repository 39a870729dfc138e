package capability

import "fmt"

// GeneratorFactory builds a Generator from provider settings.
type GeneratorFactory func(Settings) (Generator, error)

// SearcherFactory builds a Searcher from provider settings.
type SearcherFactory func(Settings) (Searcher, error)

var (
	generatorRegistry = make(map[string]GeneratorFactory)
	searcherRegistry  = make(map[string]SearcherFactory)
)

// RegisterGenerator registers a generator factory under a unique provider
// name. Providers register themselves at init time; it panics if the name
// is already taken.
func RegisterGenerator(name string, factory GeneratorFactory) {
	if _, exists := generatorRegistry[name]; exists {
		panic(fmt.Sprintf("generator provider '%s' is already registered", name))
	}
	generatorRegistry[name] = factory
}

// RegisterSearcher registers a searcher factory under a unique provider
// name. It panics if the name is already taken.
func RegisterSearcher(name string, factory SearcherFactory) {
	if _, exists := searcherRegistry[name]; exists {
		panic(fmt.Sprintf("searcher provider '%s' is already registered", name))
	}
	searcherRegistry[name] = factory
}

// NewGenerator builds the named generator provider from settings. It
// returns an error if the provider name is not registered.
func NewGenerator(name string, s Settings) (Generator, error) {
	factory, ok := generatorRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unsupported generator provider: %s", name)
	}
	return factory(s)
}

// NewSearcher builds the named searcher provider from settings. It returns
// an error if the provider name is not registered.
func NewSearcher(name string, s Settings) (Searcher, error) {
	factory, ok := searcherRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unsupported searcher provider: %s", name)
	}
	return factory(s)
}
