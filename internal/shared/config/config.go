package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	Port            string   `yaml:"port"`
	Env             string   `yaml:"env"`
	CORSAllowOrigin []string `yaml:"cors_allow_origins"`

	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	OpenAIModel     string `yaml:"openai_model"`
	LLMMaxRetries   int    `yaml:"llm_max_retries"`
	LLMBaseURL      string `yaml:"llm_base_url"`
	OpenAIAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
	GeminiAPIKey    string `yaml:"-"`

	RepoBackend     string `yaml:"repo_backend"`
	DatabaseURL     string `yaml:"database_url"`
	SQLitePath      string `yaml:"sqlite_path"`
	ObjectStoreType string `yaml:"object_store"`
	LocalStoreDir   string `yaml:"local_store_dir"`
	AWSRegion       string `yaml:"aws_region"`
	S3Bucket        string `yaml:"s3_bucket"`
	S3Prefix        string `yaml:"s3_prefix"`
	SSEKMSKeyID     string `yaml:"sse_kms_key_id"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:            "8080",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LLMProvider:     "openai",
		RepoBackend:     "memory",
		SQLitePath:      "./data/transcripts.db",
		ObjectStoreType: "local",
		LocalStoreDir:   "./data",
	}
}

// Load reads configuration: defaults, then the YAML file named by CONFIG_FILE,
// then environment variables. Local .env files are loaded first for dev convenience.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize maps aliases (prod, claude, pg, ...) onto canonical values.
func (c *Config) Normalize() {
	c.Env = normalizeEnv(c.Env)
	c.LLMProvider = normalizeProvider(c.LLMProvider)
	c.RepoBackend = normalizeBackend(c.RepoBackend)
	c.ObjectStoreType = normalizeStoreType(c.ObjectStoreType)
}

// Validate reports configuration combinations that cannot start.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case "openai", "anthropic", "gemini", "offline":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (want openai, anthropic, gemini or offline)", c.LLMProvider)
	}
	switch c.RepoBackend {
	case "memory", "postgres", "sqlite", "object":
	default:
		return fmt.Errorf("unknown REPO_BACKEND %q (want memory, postgres, sqlite or object)", c.RepoBackend)
	}
	switch c.ObjectStoreType {
	case "local", "s3":
	default:
		return fmt.Errorf("unknown OBJECT_STORE %q (want local or s3)", c.ObjectStoreType)
	}
	if c.RepoBackend == "postgres" && strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required when REPO_BACKEND=postgres")
	}
	if c.RepoBackend == "sqlite" && strings.TrimSpace(c.SQLitePath) == "" {
		return fmt.Errorf("SQLITE_PATH is required when REPO_BACKEND=sqlite")
	}
	if c.RepoBackend == "object" && c.ObjectStoreType == "s3" && strings.TrimSpace(c.S3Bucket) == "" {
		return fmt.Errorf("S3_BUCKET is required when OBJECT_STORE=s3")
	}
	if c.LLMMaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must not be negative")
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.Env, "ENV")
	if raw := os.Getenv("CORS_ALLOW_ORIGINS"); raw != "" {
		cfg.CORSAllowOrigin = splitAndTrim(raw)
	}
	setString(&cfg.LLMProvider, "LLM_PROVIDER")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setString(&cfg.OpenAIModel, "OPENAI_MODEL")
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	if raw := strings.TrimSpace(os.Getenv("LLM_MAX_RETRIES")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			cfg.LLMMaxRetries = n
		}
	}
	setString(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.RepoBackend, "REPO_BACKEND")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.ObjectStoreType, "OBJECT_STORE")
	setString(&cfg.LocalStoreDir, "LOCAL_STORE_DIR")
	setString(&cfg.AWSRegion, "AWS_REGION")
	setString(&cfg.S3Bucket, "S3_BUCKET")
	setString(&cfg.S3Prefix, "S3_PREFIX")
	setString(&cfg.SSEKMSKeyID, "SSE_KMS_KEY_ID")
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

// Unknown provider, backend and store names are returned as given so Validate
// can reject them.

func normalizeProvider(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "", "openai":
		return "openai"
	case "anthropic", "claude":
		return "anthropic"
	case "gemini", "google":
		return "gemini"
	default:
		return v
	}
}

func normalizeBackend(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "", "memory", "mem":
		return "memory"
	case "postgres", "postgresql", "pg":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "object", "s3", "local":
		return "object"
	default:
		return v
	}
}

func normalizeStoreType(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "local"
	}
	return v
}
