package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	NewsAPIKey     string
	NewsAPIBaseURL string
	NewsLanguage   string
	NewsPageSize   int
	DefaultQuery   string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	HTTPAddr       string
	CORSOrigins    []string
	RedisURL       string
	RunGateTTLSecs int

	TelegramBotToken           string
	TelegramRequestTimeoutSecs int

	SSHPort        int
	SSHHostKeyPath string
	SSHAllowedKeys []string

	MCPTransport          string
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
}

func Load() *Config {
	cfg := &Config{
		NewsAPIKey:       os.Getenv("NEWS_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
	}

	// Missing keys are only reported; the calls fail when they are made.
	if cfg.NewsAPIKey == "" {
		log.Println("Warning: NEWS_API_KEY not set, article search will fail")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, summaries and sentiment will fall back to defaults")
	}

	cfg.NewsAPIBaseURL = strings.TrimSpace(os.Getenv("NEWS_API_BASE_URL"))
	if cfg.NewsAPIBaseURL == "" {
		cfg.NewsAPIBaseURL = "https://newsapi.org"
	}

	cfg.NewsLanguage = strings.ToLower(strings.TrimSpace(os.Getenv("NEWS_LANGUAGE")))
	if cfg.NewsLanguage == "" {
		cfg.NewsLanguage = "en"
	}

	cfg.NewsPageSize = 3
	if v := strings.TrimSpace(os.Getenv("NEWS_PAGE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil || n <= 0:
			log.Printf("Warning: invalid NEWS_PAGE_SIZE %q, using %d", v, cfg.NewsPageSize)
		case n > 20:
			log.Printf("Warning: NEWS_PAGE_SIZE %d exceeds 20, capping", n)
			cfg.NewsPageSize = 20
		default:
			cfg.NewsPageSize = n
		}
	}

	cfg.DefaultQuery = strings.TrimSpace(os.Getenv("DEFAULT_QUERY"))
	if cfg.DefaultQuery == "" {
		cfg.DefaultQuery = "AAPL"
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-3.5-turbo"
	}
	cfg.OpenAIBaseURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))

	cfg.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.CORSOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:3000"}
	}

	cfg.RunGateTTLSecs = 120
	if v := strings.TrimSpace(os.Getenv("RUN_GATE_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RunGateTTLSecs = n
		}
	}

	cfg.SSHPort = 23234
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/id_ed25519"
	}

	cfg.SSHAllowedKeys = splitList(os.Getenv("SSH_ALLOWED_KEYS"))

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = 8090
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPHTTPPort = n
		}
	}

	cfg.TelegramRequestTimeoutSecs = 120
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TelegramRequestTimeoutSecs = n
		}
	}

	cfg.MCPRequestTimeoutSecs = 60
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRequestTimeoutSecs = n
		}
	}

	return cfg
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
