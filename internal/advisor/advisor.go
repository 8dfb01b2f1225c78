package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stock-news-analyzer/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

const (
	summarizeOp = "advisor.summarize"
	classifyOp  = "advisor.classify"
)

// Advisor turns article text into a short summary and a sentiment label.
// Both calls are single-shot; failures come back as *domain.CallError and the
// caller decides what to render instead.
type Advisor struct {
	tracer trace.Tracer
	llm    LLMClient
	model  string
}

func NewAdvisor(tracer trace.Tracer, llm LLMClient, model string) *Advisor {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Advisor{
		tracer: tracer,
		llm:    llm,
		model:  model,
	}
}

// Summarize asks the model for a two-sentence summary. Empty text is still sent.
func (a *Advisor) Summarize(ctx context.Context, text string) (string, error) {
	ctx, span := a.tracer.Start(ctx, summarizeOp)
	defer span.End()
	span.SetAttributes(attribute.Int("advisor.input_length", len(text)))

	reply, err := a.callLLM(ctx, summarizePrompt, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", domain.GenericError(summarizeOp, err)
	}
	return strings.TrimSpace(reply), nil
}

// Classify asks the model for Positive, Negative or Neutral. The reply is not
// validated against that set; anything unexpected later maps to Hold.
func (a *Advisor) Classify(ctx context.Context, summary string) (domain.SentimentLabel, error) {
	ctx, span := a.tracer.Start(ctx, classifyOp)
	defer span.End()

	reply, err := a.callLLM(ctx, classifyPrompt, summary)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", domain.GenericError(classifyOp, err)
	}
	label := CleanLabel(reply)
	span.SetAttributes(attribute.String("advisor.sentiment", string(label)))
	return label, nil
}

func (a *Advisor) callLLM(ctx context.Context, p prompt, input string) (string, error) {
	if a.llm == nil {
		return "", errors.New("llm client not configured")
	}
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("llm.model", a.model),
		attribute.Int("llm.max_tokens", int(p.maxTokens)),
	)

	completion, err := a.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.system),
			openai.UserMessage(input),
		},
		MaxTokens:   openai.Int(p.maxTokens),
		Temperature: openai.Float(p.temperature),
	})
	if err != nil {
		return "", err
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	reply := completion.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

// NewOpenAIClient builds a client for OpenAI or, when baseURL is set, any
// OpenAI-compatible gateway.
func NewOpenAIClient(apiKey, baseURL string) LLMClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	// The pipeline never retries a failed call.
	opts = append(opts, option.WithMaxRetries(0))
	client := openai.NewClient(opts...)
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
