package advisor

import (
	"context"
	"errors"
	"testing"

	"stock-news-analyzer/internal/domain"

	"github.com/openai/openai-go"
	"go.opentelemetry.io/otel/trace"
)

func completion(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func newTestAdvisor(llm LLMClient) *Advisor {
	return NewAdvisor(trace.NewNoopTracerProvider().Tracer("test"), llm, "gpt-3.5-turbo")
}

func TestSummarizeHappyPath(t *testing.T) {
	llm := &stubLLMClient{response: completion("  Apple posted record revenue. Shares rose.  ")}
	a := newTestAdvisor(llm)

	summary, err := a.Summarize(context.Background(), "Apple reported results")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "Apple posted record revenue. Shares rose." {
		t.Fatalf("expected trimmed summary, got %q", summary)
	}

	if len(llm.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(llm.calls))
	}
	params := llm.calls[0]
	if params.Model != "gpt-3.5-turbo" {
		t.Fatalf("unexpected model %s", params.Model)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(params.Messages))
	}
	if params.MaxTokens.Value != 60 || params.Temperature.Value != 0.5 {
		t.Fatalf("unexpected sampling params: max_tokens=%d temperature=%v", params.MaxTokens.Value, params.Temperature.Value)
	}
}

func TestSummarizeSendsEmptyText(t *testing.T) {
	llm := &stubLLMClient{response: completion("Nothing to summarize.")}
	a := newTestAdvisor(llm)

	if _, err := a.Summarize(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(llm.calls) != 1 {
		t.Fatal("expected empty text to still reach the model")
	}
}

func TestSummarizeErrors(t *testing.T) {
	a := newTestAdvisor(&stubLLMClient{err: errors.New("api down")})
	summary, err := a.Summarize(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if summary != "" {
		t.Fatalf("expected empty summary on error, got %q", summary)
	}
	if domain.KindOf(err) != domain.ErrorKindGeneric {
		t.Fatalf("expected generic kind, got %s", domain.KindOf(err))
	}

	a = newTestAdvisor(&stubLLMClient{response: &openai.ChatCompletion{}})
	if _, err := a.Summarize(context.Background(), "text"); err == nil {
		t.Fatal("expected error for zero choices")
	}
}

func TestClassify(t *testing.T) {
	llm := &stubLLMClient{response: completion("Negative.\n")}
	a := newTestAdvisor(llm)

	label, err := a.Classify(context.Background(), "Shares fell sharply.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != domain.SentimentNegative {
		t.Fatalf("expected Negative, got %q", label)
	}
	params := llm.calls[0]
	if params.MaxTokens.Value != 5 || params.Temperature.Value != 0 {
		t.Fatalf("unexpected sampling params: max_tokens=%d temperature=%v", params.MaxTokens.Value, params.Temperature.Value)
	}
}

func TestClassifyError(t *testing.T) {
	a := newTestAdvisor(&stubLLMClient{err: errors.New("rate limited")})
	label, err := a.Classify(context.Background(), "summary")
	if err == nil {
		t.Fatal("expected error")
	}
	if label != "" {
		t.Fatalf("expected no label on error, got %q", label)
	}
}

func TestNilLLMClient(t *testing.T) {
	a := newTestAdvisor(nil)
	if _, err := a.Summarize(context.Background(), "text"); err == nil {
		t.Fatal("expected error without llm client")
	}
}

func TestNewAdvisorDefaultModel(t *testing.T) {
	a := NewAdvisor(trace.NewNoopTracerProvider().Tracer("test"), &stubLLMClient{}, " ")
	if a.model != DefaultModel {
		t.Fatalf("expected default model, got %q", a.model)
	}
}

// --- stubs ---

type stubLLMClient struct {
	response *openai.ChatCompletion
	err      error
	calls    []openai.ChatCompletionNewParams
}

func (s *stubLLMClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	s.calls = append(s.calls, params)
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}
