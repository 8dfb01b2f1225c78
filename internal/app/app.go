// Package app wires the analysis pipeline from configuration. Every binary
// builds its service through here so the surfaces share one behaviour.
package app

import (
	"context"
	"log"
	"time"

	"stock-news-analyzer/internal/advisor"
	"stock-news-analyzer/internal/config"
	"stock-news-analyzer/internal/gate"
	"stock-news-analyzer/internal/provider"
	"stock-news-analyzer/internal/service"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var (
	connectRedisFunc = gate.Connect
	newLLMClientFunc = advisor.NewOpenAIClient
)

// NewAnalysisService builds the pipeline for cfg. The returned func closes
// whatever was opened; it is never nil.
func NewAnalysisService(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (*service.AnalysisService, func()) {
	news := provider.NewNewsAPIProvider(cfg.NewsAPIKey, cfg.NewsAPIBaseURL, tracer)
	adv := advisor.NewAdvisor(tracer, newLLMClientFunc(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), cfg.OpenAIModel)

	runGate, closeGate := newRunGate(ctx, cfg)
	svc := service.NewAnalysisService(tracer, news, adv, adv, runGate, cfg.NewsLanguage, cfg.NewsPageSize)
	return svc, closeGate
}

// newRunGate prefers a Redis lease when REDIS_URL is set and falls back to a
// process-local gate when Redis is unset or unreachable.
func newRunGate(ctx context.Context, cfg *config.Config) (gate.Gate, func()) {
	if cfg.RedisURL == "" {
		return gate.NewLocalGate(), func() {}
	}

	client, err := connectRedisFunc(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: %v, using process-local run gate", err)
		return gate.NewLocalGate(), func() {}
	}

	ttl := time.Duration(cfg.RunGateTTLSecs) * time.Second
	return gate.NewRedisGate(client, ttl), func() { closeRedis(client) }
}

func closeRedis(client *redis.Client) {
	if err := client.Close(); err != nil {
		log.Printf("error closing redis client: %v", err)
	}
}
