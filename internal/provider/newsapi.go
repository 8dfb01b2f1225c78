package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"stock-news-analyzer/internal/domain"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	newsAPIBaseURL      = "https://newsapi.org"
	defaultNewsLang     = "en"
	defaultNewsSize     = 5
	maxNewsSize         = 20
	newsAPISearchOp     = "newsapi.search"
	maxNewsErrorSnippet = 300
)

var htmlTagPattern = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)

// SearchParams narrows a NewsAPI /v2/everything query.
type SearchParams struct {
	Query    string
	Language string
	PageSize int
}

// NewsAPIProvider searches recent articles through NewsAPI.
type NewsAPIProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	md      *converter.Converter
}

func NewNewsAPIProvider(apiKey, baseURL string, tracer trace.Tracer) *NewsAPIProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = newsAPIBaseURL
	}
	return &NewsAPIProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
		tracer:  tracer,
		md: converter.NewConverter(
			converter.WithEscapeMode(converter.EscapeModeDisabled),
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

type newsAPIResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Search returns up to PageSize articles, newest first, in the order NewsAPI
// returned them. Failures are *domain.CallError values; nothing is retried.
func (p *NewsAPIProvider) Search(ctx context.Context, params SearchParams) ([]domain.Article, error) {
	ctx, span := p.tracer.Start(ctx, newsAPISearchOp)
	defer span.End()

	articles, err := p.search(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return articles, nil
}

func (p *NewsAPIProvider) search(ctx context.Context, params SearchParams) ([]domain.Article, error) {
	lang := strings.ToLower(strings.TrimSpace(params.Language))
	if lang == "" {
		lang = defaultNewsLang
	}
	size := params.PageSize
	if size <= 0 {
		size = defaultNewsSize
	}
	if size > maxNewsSize {
		size = maxNewsSize
	}

	q := url.Values{}
	q.Set("q", params.Query)
	q.Set("language", lang)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(size))
	u := fmt.Sprintf("%s/v2/everything?%s", strings.TrimRight(p.baseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, domain.GenericError(newsAPISearchOp, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, domain.GenericError(newsAPISearchOp, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.GenericError(newsAPISearchOp, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.HTTPError(newsAPISearchOp, resp.StatusCode, errors.New(errorMessage(body)))
	}

	var payload newsAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.GenericError(newsAPISearchOp, fmt.Errorf("decode newsapi response: %w", err))
	}
	if payload.Status != "ok" {
		msg := strings.TrimSpace(payload.Message)
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %q", payload.Status)
		}
		return nil, domain.GenericError(newsAPISearchOp, errors.New(msg))
	}

	out := make([]domain.Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if len(out) == size {
			break
		}
		out = append(out, domain.Article{
			Title:       strings.TrimSpace(a.Title),
			Source:      strings.TrimSpace(a.Source.Name),
			PublishedAt: a.PublishedAt,
			Description: p.toMarkdown(a.Description),
			URL:         strings.TrimSpace(a.URL),
		})
	}
	return out, nil
}

// toMarkdown flattens HTML descriptions. Text without a tag is passed through
// untouched, stray "<" and Markdown punctuation included.
func (p *NewsAPIProvider) toMarkdown(in string) string {
	in = strings.TrimSpace(in)
	if !htmlTagPattern.MatchString(in) {
		return in
	}
	out, err := p.md.ConvertString(in)
	if err != nil || strings.TrimSpace(out) == "" {
		return in
	}
	return strings.TrimSpace(out)
}

func errorMessage(body []byte) string {
	var payload newsAPIResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		if payload.Code != "" {
			return payload.Code + ": " + payload.Message
		}
		return payload.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxNewsErrorSnippet {
		msg = msg[:maxNewsErrorSnippet]
	}
	if msg == "" {
		msg = "empty response body"
	}
	return msg
}
