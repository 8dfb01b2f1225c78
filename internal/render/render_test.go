package render

import (
	"errors"
	"strings"
	"testing"

	"stock-news-analyzer/internal/domain"
)

func TestMarkdownHTML(t *testing.T) {
	got := string(MarkdownHTML("Apple **beat** estimates."))
	if !strings.Contains(got, "<strong>beat</strong>") {
		t.Fatalf("expected bold markup, got %q", got)
	}

	got = string(MarkdownHTML(`Click [here](javascript:alert(1)) <script>alert(1)</script>`))
	if strings.Contains(got, "<script>") || strings.Contains(got, "javascript:") {
		t.Fatalf("expected unsafe content stripped, got %q", got)
	}

	if MarkdownHTML("   ") != "" {
		t.Fatal("expected empty output for blank input")
	}
}

func TestPlainText(t *testing.T) {
	report := domain.Report{
		Query:   "AAPL",
		Notices: []domain.Notice{{Level: domain.NoticeSuccess, Message: `Analyzed 1 recent articles about "AAPL".`}},
		Cards: []domain.Card{{
			Article:   domain.Article{Title: "Apple beats", Source: "Reuters", PublishedAt: "2024-05-01T10:00:00Z"},
			Summary:   "Strong quarter.",
			Sentiment: domain.SentimentPositive,
			Action:    domain.ActionBuy,
		}},
	}

	out := PlainText(report)
	for _, want := range []string{
		`[success] Analyzed 1 recent articles about "AAPL".`,
		"Apple beats",
		"Source: Reuters",
		"Published At: 2024-05-01T10:00:00Z",
		"Summary: Strong quarter.",
		"Sentiment: Positive",
		"Suggested Action: Buy",
		"---",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Link:") {
		t.Fatal("did not expect a link line without a URL")
	}
}

type failingWriter struct{ n int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.n++
	return 0, errors.New("closed")
}

func TestTextSinkStopsAfterError(t *testing.T) {
	w := &failingWriter{}
	sink := NewTextSink(w)
	sink.Card(domain.Card{Article: domain.Article{Title: "x"}})
	if sink.Err() == nil {
		t.Fatal("expected write error")
	}
	if w.n != 1 {
		t.Fatalf("expected writes to stop after the first error, got %d", w.n)
	}
}
