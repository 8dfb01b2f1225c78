package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stock-news-analyzer/internal/domain"

	"github.com/go-playground/assert/v2"
	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestNewsProvider(rt roundTripFunc) *NewsAPIProvider {
	p := NewNewsAPIProvider("test-key", "https://news.example", trace.NewNoopTracerProvider().Tracer("test"))
	p.client = &http.Client{Transport: rt}
	return p
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestNewsAPISearch(t *testing.T) {
	p := newTestNewsProvider(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/v2/everything", req.URL.Path)
		q := req.URL.Query()
		assert.Equal(t, "AAPL earnings", q.Get("q"))
		assert.Equal(t, "en", q.Get("language"))
		assert.Equal(t, "publishedAt", q.Get("sortBy"))
		assert.Equal(t, "3", q.Get("pageSize"))
		assert.Equal(t, "test-key", req.Header.Get("X-Api-Key"))
		assert.Equal(t, "", q.Get("apiKey"))

		body := `{"status":"ok","totalResults":2,"articles":[
			{"source":{"id":null,"name":"Reuters"},"title":"Apple beats","description":"Record quarter","url":"https://r.example/1","publishedAt":"2024-05-01T10:00:00Z"},
			{"source":{"id":"bbc","name":"BBC"},"title":"Apple slips","description":null,"url":"https://b.example/2","publishedAt":"2024-05-01T09:00:00Z"}
		]}`
		return jsonResponse(http.StatusOK, body), nil
	})

	articles, err := p.Search(context.Background(), SearchParams{Query: "AAPL earnings", PageSize: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 2, len(articles))
	assert.Equal(t, domain.Article{
		Title:       "Apple beats",
		Source:      "Reuters",
		PublishedAt: "2024-05-01T10:00:00Z",
		Description: "Record quarter",
		URL:         "https://r.example/1",
	}, articles[0])
	assert.Equal(t, "Apple slips", articles[1].Title)
	assert.Equal(t, "", articles[1].Description)
}

func TestNewsAPISearchDefaultsAndTruncation(t *testing.T) {
	p := newTestNewsProvider(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "5", req.URL.Query().Get("pageSize"))
		assert.Equal(t, "en", req.URL.Query().Get("language"))
		var sb strings.Builder
		sb.WriteString(`{"status":"ok","articles":[`)
		for i := 0; i < 7; i++ {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(`{"source":{"name":"S"},"title":"t","publishedAt":"p"}`)
		}
		sb.WriteString(`]}`)
		return jsonResponse(http.StatusOK, sb.String()), nil
	})

	articles, err := p.Search(context.Background(), SearchParams{Query: "TSLA"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 5, len(articles))
}

func TestNewsAPISearchClampsPageSize(t *testing.T) {
	p := newTestNewsProvider(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "20", req.URL.Query().Get("pageSize"))
		assert.Equal(t, "de", req.URL.Query().Get("language"))
		return jsonResponse(http.StatusOK, `{"status":"ok","articles":[]}`), nil
	})

	articles, err := p.Search(context.Background(), SearchParams{Query: "SAP", Language: "DE", PageSize: 99})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 0, len(articles))
}

func TestNewsAPISearchHTTPError(t *testing.T) {
	p := newTestNewsProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`), nil
	})

	articles, err := p.Search(context.Background(), SearchParams{Query: "AAPL"})
	if err == nil {
		t.Fatal("expected error")
	}
	assert.Equal(t, 0, len(articles))
	assert.Equal(t, domain.ErrorKindHTTP, domain.KindOf(err))

	var ce *domain.CallError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CallError, got %T", err)
	}
	assert.Equal(t, http.StatusUnauthorized, ce.StatusCode)
	if !strings.Contains(err.Error(), "Your API key is invalid.") {
		t.Fatalf("expected provider message in error, got %q", err.Error())
	}
}

func TestNewsAPISearchTransportError(t *testing.T) {
	p := newTestNewsProvider(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := p.Search(context.Background(), SearchParams{Query: "AAPL"})
	if err == nil {
		t.Fatal("expected error")
	}
	assert.Equal(t, domain.ErrorKindGeneric, domain.KindOf(err))
}

func TestNewsAPISearchBadPayload(t *testing.T) {
	p := newTestNewsProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `not json`), nil
	})
	_, err := p.Search(context.Background(), SearchParams{Query: "AAPL"})
	assert.Equal(t, domain.ErrorKindGeneric, domain.KindOf(err))

	p = newTestNewsProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"status":"error","message":"maximumResultsReached"}`), nil
	})
	_, err = p.Search(context.Background(), SearchParams{Query: "AAPL"})
	if err == nil || !strings.Contains(err.Error(), "maximumResultsReached") {
		t.Fatalf("expected status error, got %v", err)
	}
	assert.Equal(t, domain.ErrorKindGeneric, domain.KindOf(err))
}

func TestNewsAPISearchConvertsHTMLDescription(t *testing.T) {
	p := newTestNewsProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"status":"ok","articles":[{"source":{"name":"S"},"title":"t","description":"<p>Shares <b>rallied</b> today</p>","publishedAt":"p"}]}`), nil
	})

	articles, err := p.Search(context.Background(), SearchParams{Query: "AAPL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	desc := articles[0].Description
	if strings.Contains(desc, "<b>") || !strings.Contains(desc, "rallied") {
		t.Fatalf("expected markdown description, got %q", desc)
	}
}

func TestNewsAPISearchKeepsPlainTextDescription(t *testing.T) {
	const plain = "Revenue grew < 5% while Q1_EPS rose *sharply* to $1.2 [est] & a <3 rating"
	body, err := json.Marshal(map[string]any{
		"status": "ok",
		"articles": []map[string]any{
			{"source": map[string]string{"name": "S"}, "title": "t", "description": plain, "publishedAt": "p"},
		},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	p := newTestNewsProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, string(body)), nil
	})

	articles, err := p.Search(context.Background(), SearchParams{Query: "AAPL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, plain, articles[0].Description)
}

func TestNewsAPISearchHTMLDescriptionIsNotEscaped(t *testing.T) {
	p := newTestNewsProvider(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"status":"ok","articles":[{"source":{"name":"S"},"title":"t","description":"<p>Q1_EPS beat [est]</p>","publishedAt":"p"}]}`), nil
	})

	articles, err := p.Search(context.Background(), SearchParams{Query: "AAPL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, "Q1_EPS beat [est]", articles[0].Description)
}

func TestNewsAPISearchAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","articles":[{"source":{"name":"CNBC"},"title":"Apple news","publishedAt":"2024-01-01T00:00:00Z"}]}`))
	}))
	defer srv.Close()

	p := NewNewsAPIProvider("k", srv.URL+"/", trace.NewNoopTracerProvider().Tracer("test"))
	articles, err := p.Search(context.Background(), SearchParams{Query: "AAPL", PageSize: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 1, len(articles))
	assert.Equal(t, "CNBC", articles[0].Source)
}
