package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"feedback-insights-go/internal/cost"
	"feedback-insights-go/internal/dataset"
	"feedback-insights-go/internal/llm"
	"feedback-insights-go/internal/processor"
	"feedback-insights-go/internal/types"
)

const (
	defaultConfigPath = "config.yaml"
	defaultOutputDir  = "./results"
	defaultPort       = "8080"
	defaultAPIVersion = "2024-06-01"
)

type Config struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	LLM llm.Config `yaml:"llm"`

	Pricing       cost.Pricing `yaml:"pricing"`
	TokensPerWord float64      `yaml:"tokens_per_word"`

	Concurrency int           `yaml:"concurrency"`
	CallTimeout time.Duration `yaml:"call_timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	MaxItems    int           `yaml:"max_items"`

	LexiconPath string           `yaml:"lexicon_path"`
	TextMode    dataset.TextMode `yaml:"text_mode"`
	OutputDir   string           `yaml:"output_dir"`
	DatasetPath string           `yaml:"dataset_path"`
	Port        string           `yaml:"port"`
}

// Defaults match the Azure GPT-4o list prices the service was first run with.
func Defaults() Config {
	return Config{
		Environment:   "local",
		LogLevel:      "info",
		LLM:           llm.Config{Provider: llm.ProviderAzure, APIVersion: defaultAPIVersion},
		Pricing:       cost.Pricing{Prompt: 0.005, Completion: 0.015},
		TokensPerWord: cost.DefaultTokensPerWord,
		Concurrency:   processor.DefaultConcurrency,
		CallTimeout:   30 * time.Second,
		MaxRetries:    2,
		TextMode:      dataset.TextModeLines,
		OutputDir:     defaultOutputDir,
		Port:          defaultPort,
	}
}

// Load reads .env, then the YAML file named by CONFIG_PATH (missing is
// fine), then environment overrides. The result is not validated.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	path := defaultConfigPath
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, types.NewConfigError("config_path", "parse %s: %v", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, types.NewConfigError("config_path", "read %s: %v", path, err)
	}

	env := &overrides{}
	env.str(&cfg.Environment, "ENVIRONMENT")
	env.str(&cfg.LogLevel, "LOG_LEVEL")

	env.str(&cfg.LLM.Provider, "LLM_PROVIDER")
	if b, ok := os.LookupEnv("USE_MOCK_LLM"); ok && (strings.EqualFold(b, "true") || b == "1") {
		cfg.LLM.Provider = llm.ProviderMock
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	env.str(&cfg.LLM.Model, "LLM_MODEL")
	switch cfg.LLM.Provider {
	case llm.ProviderAzure:
		env.str(&cfg.LLM.Endpoint, "AZURE_OPENAI_ENDPOINT")
		env.str(&cfg.LLM.APIKey, "AZURE_OPENAI_API_KEY")
		env.str(&cfg.LLM.Deployment, "AZURE_OPENAI_DEPLOYMENT_NAME")
		env.str(&cfg.LLM.APIVersion, "AZURE_OPENAI_API_VERSION")
	case llm.ProviderOpenAI:
		env.str(&cfg.LLM.APIKey, "OPENAI_API_KEY")
		env.str(&cfg.LLM.BaseURL, "OPENAI_BASE_URL")
	case llm.ProviderAnthropic:
		env.str(&cfg.LLM.APIKey, "ANTHROPIC_API_KEY")
	}

	env.float(&cfg.Pricing.Prompt, "PRICE_PROMPT_PER_1K")
	env.float(&cfg.Pricing.Completion, "PRICE_COMPLETION_PER_1K")
	env.float(&cfg.TokensPerWord, "TOKENS_PER_WORD")
	env.int(&cfg.Concurrency, "CONCURRENCY")
	env.duration(&cfg.CallTimeout, "CALL_TIMEOUT")
	env.int(&cfg.MaxRetries, "MAX_RETRIES")
	env.int(&cfg.MaxItems, "MAX_ITEMS")
	env.str(&cfg.LexiconPath, "LEXICON_PATH")
	if v := os.Getenv("TEXT_MODE"); v != "" {
		cfg.TextMode = dataset.TextMode(strings.ToLower(v))
	}
	env.str(&cfg.OutputDir, "OUTPUT_DIR")
	env.str(&cfg.DatasetPath, "DATASET_PATH")
	env.str(&cfg.Port, "PORT")

	return cfg, env.err
}

// Validate returns the first problem found as a *types.ConfigurationError.
func (c Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if _, err := cost.NewEstimator(c.Pricing, c.TokensPerWord); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		return types.NewConfigError("concurrency", "must be >= 1, got %d", c.Concurrency)
	}
	if c.CallTimeout <= 0 {
		return types.NewConfigError("call_timeout", "must be positive, got %s", c.CallTimeout)
	}
	if c.MaxRetries < 0 {
		return types.NewConfigError("max_retries", "must be >= 0, got %d", c.MaxRetries)
	}
	if c.MaxItems < 0 {
		return types.NewConfigError("max_items", "must be >= 0, got %d", c.MaxItems)
	}
	if !c.TextMode.Valid() {
		return types.NewConfigError("text_mode", "want %q or %q, got %q", dataset.TextModeLines, dataset.TextModeWhole, c.TextMode)
	}
	return nil
}

// overrides applies env vars and keeps the first parse failure.
type overrides struct {
	err error
}

func (o *overrides) fail(key, val string, err error) {
	if o.err == nil {
		o.err = types.NewConfigError(strings.ToLower(key), "invalid value %q: %v", val, err)
	}
}

func (o *overrides) str(field *string, key string) {
	if val := os.Getenv(key); val != "" {
		*field = val
	}
}

func (o *overrides) int(field *int, key string) {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			o.fail(key, val, err)
			return
		}
		*field = n
	}
}

func (o *overrides) float(field *float64, key string) {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			o.fail(key, val, err)
			return
		}
		*field = f
	}
}

// duration accepts Go durations ("45s") or a bare number of seconds.
func (o *overrides) duration(field *time.Duration, key string) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return
	}
	if d, err := time.ParseDuration(val); err == nil {
		*field = d
		return
	}
	secs, err := strconv.ParseFloat(val, 64)
	if err != nil {
		o.fail(key, val, err)
		return
	}
	*field = time.Duration(secs * float64(time.Second))
}
