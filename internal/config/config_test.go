package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "APP_ENV", "ARNA_WORKSPACE", "ARNA_DOC_STORE", "ARNA_CODEGEN_TARGET", "ARNA_CODEGEN_STRICT",
		"DOC_S3_ENDPOINT", "DOC_S3_REGION", "DOC_S3_ACCESS_KEY", "DOC_S3_SECRET_KEY", "DOC_S3_BUCKET",
		"DOC_S3_PREFIX", "DOC_S3_USE_SSL", "MINIO_ROOT_USER", "MINIO_ROOT_PASSWORD",
		"DOC_STORE_PG_DSN", "DATABASE_URL", "DOC_CACHE_SIZE",
		"LLM_PROVIDER", "LLM_MODEL", "OPENAI_BASE_URL", "OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != ":8081" || cfg.Env != "local" || cfg.Workspace != "workspace" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DocStore.Backend != StoreFile || cfg.DocStore.CacheSize != 1024 {
		t.Fatalf("unexpected store defaults: %+v", cfg.DocStore)
	}
	if cfg.Codegen.Target != "python" || cfg.Codegen.Strict {
		t.Fatalf("unexpected codegen defaults: %+v", cfg.Codegen)
	}
	if cfg.DocStore.S3.CanUse() {
		t.Fatalf("s3 should not be usable without settings")
	}
	if cfg.LLM.Provider != "" {
		t.Fatalf("provider should be empty, got %q", cfg.LLM.Provider)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("ARNA_DOC_STORE", "S3")
	t.Setenv("ARNA_CODEGEN_STRICT", "true")
	t.Setenv("DOC_S3_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_ROOT_USER", "user")
	t.Setenv("MINIO_ROOT_PASSWORD", "secret")
	t.Setenv("DOC_S3_USE_SSL", "false")
	t.Setenv("DOC_CACHE_SIZE", "bogus")
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != ":9000" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.DocStore.Backend != StoreS3 || !cfg.DocStore.S3.CanUse() || cfg.DocStore.S3.UseSSL {
		t.Fatalf("unexpected s3 config: %+v", cfg.DocStore)
	}
	if cfg.DocStore.CacheSize != 1024 {
		t.Fatalf("invalid cache size should fall back, got %d", cfg.DocStore.CacheSize)
	}
	if !cfg.Codegen.Strict {
		t.Fatalf("strict should be on")
	}
	if cfg.LLM.Provider != "gemini" {
		t.Fatalf("provider = %q, want gemini", cfg.LLM.Provider)
	}
}
