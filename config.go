package essayist

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/RBrouq/agentic-system/capability"
	"github.com/RBrouq/agentic-system/store"
)

// Config collects everything the workflow reads from the environment.
type Config struct {
	Generator GeneratorConfig
	Search    SearchConfig
	Store     StoreConfig
	Log       LogConfig
	Workflow  WorkflowConfig
}

type GeneratorConfig struct {
	Provider    string // "openai", "ollama"
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
}

type SearchConfig struct {
	Provider   string // "tavily", "none"
	BaseURL    string
	APIKey     string
	MaxResults int
}

type StoreConfig struct {
	Backend         string // "sqlite", "memory", "cache"
	Path            string
	SessionTTL      time.Duration
	CleanupInterval time.Duration
}

type LogConfig struct {
	FilePath   string
	Production bool
}

type WorkflowConfig struct {
	MaxPlanRevisions int
	RunTimeLimit     time.Duration
}

// LoadConfig reads configuration from the environment, after loading a
// .env file when one is present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		Generator: GeneratorConfig{
			Provider:    getEnv("LLM_PROVIDER", "openai"),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("LLM_MODEL", "gpt-4.1-mini"),
			Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0.4),
		},
		Search: SearchConfig{
			Provider:   getEnv("SEARCH_PROVIDER", "tavily"),
			BaseURL:    getEnv("TAVILY_BASE_URL", ""),
			APIKey:     getEnv("TAVILY_API_KEY", ""),
			MaxResults: getEnvAsInt("SEARCH_MAX_RESULTS", 5),
		},
		Store: StoreConfig{
			Backend:         getEnv("STORE_BACKEND", "sqlite"),
			Path:            getEnv("CHECKPOINTS_DB", "checkpoints.sqlite"),
			SessionTTL:      getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", time.Hour),
		},
		Log: LogConfig{
			FilePath:   getEnv("LOG_FILE_PATH", "logs/essayist.log"),
			Production: getEnv("GO_ENV", "development") == "production",
		},
		Workflow: WorkflowConfig{
			MaxPlanRevisions: getEnvAsInt("MAX_PLAN_REVISIONS", DefaultMaxPlanRevisions),
			RunTimeLimit:     getEnvAsDuration("RUN_TIME_LIMIT", 0),
		},
	}
}

// NewGeneratorFromConfig builds the configured text generator through the
// capability registry.
func NewGeneratorFromConfig(cfg *Config) (capability.Generator, error) {
	return capability.NewGenerator(cfg.Generator.Provider, capability.Settings{
		BaseURL:     cfg.Generator.BaseURL,
		APIKey:      cfg.Generator.APIKey,
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
	})
}

// NewSearcherFromConfig builds the research searcher. The configured web
// provider is fronted by a model-synthesis fallback so research degrades
// instead of failing; with no usable web provider, synthesis alone serves.
func NewSearcherFromConfig(cfg *Config, gen capability.Generator) capability.Searcher {
	synthesis := &capability.SynthesisSearcher{Generator: gen}
	if cfg.Search.Provider == "" || cfg.Search.Provider == "none" {
		return synthesis
	}
	primary, err := capability.NewSearcher(cfg.Search.Provider, capability.Settings{
		BaseURL:    cfg.Search.BaseURL,
		APIKey:     cfg.Search.APIKey,
		MaxResults: cfg.Search.MaxResults,
	})
	if err != nil {
		log.Printf("Note: search provider %s unavailable (%v), research will use model synthesis", cfg.Search.Provider, err)
		return synthesis
	}
	return &capability.FallbackSearcher{Primary: primary, Fallback: synthesis}
}

// NewStoreFromConfig builds the configured session store.
func NewStoreFromConfig(cfg *Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "cache":
		return store.NewCacheStore(cfg.Store.SessionTTL, cfg.Store.CleanupInterval), nil
	case "sqlite":
		return store.NewSQLiteStore(cfg.Store.Path)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
