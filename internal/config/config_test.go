package config

import "testing"

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"NEWS_API_KEY", "NEWS_API_BASE_URL", "NEWS_LANGUAGE", "NEWS_PAGE_SIZE", "DEFAULT_QUERY",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "HTTP_ADDR", "CORS_ALLOWED_ORIGINS",
		"REDIS_URL", "RUN_GATE_TTL_SECS", "SSH_ALLOWED_KEYS", "MCP_TRANSPORT",
		"TELEGRAM_REQUEST_TIMEOUT_SECS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.NewsLanguage != "en" {
		t.Fatalf("expected default language en, got %s", cfg.NewsLanguage)
	}
	if cfg.NewsPageSize != 3 {
		t.Fatalf("expected default page size 3, got %d", cfg.NewsPageSize)
	}
	if cfg.DefaultQuery != "AAPL" {
		t.Fatalf("expected default query AAPL, got %s", cfg.DefaultQuery)
	}
	if cfg.OpenAIModel != "gpt-3.5-turbo" {
		t.Fatalf("expected default model, got %s", cfg.OpenAIModel)
	}
	if cfg.NewsAPIBaseURL != "https://newsapi.org" || cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RedisURL != "" {
		t.Fatalf("expected empty redis url so the local gate is used, got %s", cfg.RedisURL)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("expected stdio transport, got %s", cfg.MCPTransport)
	}
	if cfg.TelegramRequestTimeoutSecs != 120 {
		t.Fatalf("expected telegram timeout 120, got %d", cfg.TelegramRequestTimeoutSecs)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEWS_API_KEY", "news-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("NEWS_LANGUAGE", "DE")
	t.Setenv("NEWS_PAGE_SIZE", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SSH_ALLOWED_KEYS", "SHA256:abc")
	t.Setenv("MCP_TRANSPORT", "HTTP")
	t.Setenv("TELEGRAM_REQUEST_TIMEOUT_SECS", "30")

	cfg := Load()
	if cfg.NewsAPIKey != "news-key" || cfg.OpenAIAPIKey != "openai-key" {
		t.Fatalf("unexpected keys: %+v", cfg)
	}
	if cfg.NewsLanguage != "de" || cfg.NewsPageSize != 5 {
		t.Fatalf("unexpected news settings: %s %d", cfg.NewsLanguage, cfg.NewsPageSize)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if cfg.TelegramRequestTimeoutSecs != 30 {
		t.Fatalf("unexpected telegram timeout: %d", cfg.TelegramRequestTimeoutSecs)
	}
	if len(cfg.SSHAllowedKeys) != 1 || cfg.MCPTransport != "http" {
		t.Fatalf("unexpected ssh/mcp settings: %+v", cfg)
	}

	t.Setenv("NEWS_PAGE_SIZE", "500")
	cfg = Load()
	if cfg.NewsPageSize != 20 {
		t.Fatalf("oversized page size should be capped at 20, got %d", cfg.NewsPageSize)
	}

	t.Setenv("NEWS_PAGE_SIZE", "-1")
	cfg = Load()
	if cfg.NewsPageSize != 3 {
		t.Fatalf("invalid page size should fall back to default, got %d", cfg.NewsPageSize)
	}

	t.Setenv("MCP_TRANSPORT", "carrier-pigeon")
	cfg = Load()
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("unsupported transport should fall back to stdio, got %s", cfg.MCPTransport)
	}
}
