package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends accepted by ARNA_DOC_STORE.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StoreS3       = "s3"
	StorePostgres = "postgres"
)

type Config struct {
	Port      string
	Env       string
	Workspace string
	DocStore  DocStoreConfig
	Codegen   CodegenConfig
	LLM       LLMConfig
}

type DocStoreConfig struct {
	Backend     string
	CacheSize   int
	PostgresDSN string
	S3          S3Config
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// CanUse reports whether enough S3 settings are present to build a client.
func (c S3Config) CanUse() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

type CodegenConfig struct {
	Target string
	Strict bool
}

type LLMConfig struct {
	Provider      string
	Model         string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	GeminiAPIKey  string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	switch {
	case port == "":
		port = ":8081"
	case !strings.HasPrefix(port, ":"):
		port = ":" + port
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:      port,
		Env:       env,
		Workspace: firstNonEmpty(strings.TrimSpace(os.Getenv("ARNA_WORKSPACE")), "workspace"),
		DocStore:  loadDocStoreConfig(),
		Codegen: CodegenConfig{
			Target: firstNonEmpty(strings.TrimSpace(os.Getenv("ARNA_CODEGEN_TARGET")), "python"),
			Strict: envBool("ARNA_CODEGEN_STRICT", false),
		},
		LLM: loadLLMConfig(),
	}, nil
}

func loadDocStoreConfig() DocStoreConfig {
	backend := strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("ARNA_DOC_STORE")), StoreFile))
	return DocStoreConfig{
		Backend:     backend,
		CacheSize:   envInt("DOC_CACHE_SIZE", 1024),
		PostgresDSN: firstNonEmpty(strings.TrimSpace(os.Getenv("DOC_STORE_PG_DSN")), strings.TrimSpace(os.Getenv("DATABASE_URL"))),
		S3: S3Config{
			Endpoint:  strings.TrimSpace(os.Getenv("DOC_S3_ENDPOINT")),
			Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("DOC_S3_REGION")), "us-east-1"),
			AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("DOC_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
			SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("DOC_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
			Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("DOC_S3_BUCKET")), "arna-documents"),
			Prefix:    strings.TrimSpace(os.Getenv("DOC_S3_PREFIX")),
			UseSSL:    envBool("DOC_S3_USE_SSL", true),
		},
	}
}

func loadLLMConfig() LLMConfig {
	cfg := LLMConfig{
		Provider:      strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))),
		Model:         strings.TrimSpace(os.Getenv("LLM_MODEL")),
		OpenAIBaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		OpenAIAPIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		GeminiAPIKey:  firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))),
	}
	if cfg.Provider == "" {
		switch {
		case cfg.OpenAIAPIKey != "" || cfg.OpenAIBaseURL != "":
			cfg.Provider = "openai"
		case cfg.GeminiAPIKey != "":
			cfg.Provider = "gemini"
		}
	}
	return cfg
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
