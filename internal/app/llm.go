package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"arna/internal/config"
	"arna/internal/llm"
	"arna/internal/llmclient"
)

// newLLM returns nil when no provider is configured; planning is then
// unavailable but the tools still work.
func newLLM(ctx context.Context, cfg config.LLMConfig) (llmclient.LLMClient, error) {
	var (
		client llmclient.LLMClient
		err    error
	)
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		client, err = llmclient.NewOpenAIClient(llmclient.OpenAIConfig{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   firstNonEmpty(cfg.Model, "gpt-4o-mini"),
		})
	case "gemini":
		client, err = llmclient.NewGeminiClient(ctx, cfg.GeminiAPIKey, firstNonEmpty(cfg.Model, "gemini-2.5-flash"), 0)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	logger := log.New(os.Stderr, "llm ", log.LstdFlags)
	return llm.Wrap(client, llm.WithLogging(logger), llm.Retry(3, 500*time.Millisecond)), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
