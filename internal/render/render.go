// Package render turns analysis output into HTML fragments and plain text.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log"
	"strings"

	"stock-news-analyzer/internal/domain"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var policy = bluemonday.UGCPolicy()

// MarkdownHTML renders model-written Markdown as sanitized HTML. Summaries are
// untrusted text, so the output always goes through the UGC policy.
func MarkdownHTML(md string) template.HTML {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		log.Printf("markdown render failed: %v", err)
		return template.HTML(policy.Sanitize(template.HTMLEscapeString(md)))
	}
	return template.HTML(policy.Sanitize(buf.String()))
}

// TextSink writes notices and cards as they arrive.
type TextSink struct {
	w   io.Writer
	err error
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Err returns the first write error, if any.
func (s *TextSink) Err() error { return s.err }

func (s *TextSink) Notice(n domain.Notice) {
	s.printf("[%s] %s\n", n.Level, n.Message)
}

func (s *TextSink) Card(c domain.Card) {
	s.printf("\n%s\n", c.Article.Title)
	s.printf("Source: %s\n", c.Article.Source)
	s.printf("Published At: %s\n", c.Article.PublishedAt)
	s.printf("Summary: %s\n", c.Summary)
	s.printf("Sentiment: %s\n", c.Sentiment)
	s.printf("Suggested Action: %s\n", c.Action)
	if c.Article.URL != "" {
		s.printf("Link: %s\n", c.Article.URL)
	}
	s.printf("---\n")
}

func (s *TextSink) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

// PlainText renders a finished report: notices first, then one block per card.
func PlainText(r domain.Report) string {
	var sb strings.Builder
	sink := NewTextSink(&sb)
	for _, n := range r.Notices {
		sink.Notice(n)
	}
	for _, c := range r.Cards {
		sink.Card(c)
	}
	return sb.String()
}
