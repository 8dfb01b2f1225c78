package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"stock-news-analyzer/internal/advisor"
	"stock-news-analyzer/internal/domain"
	"stock-news-analyzer/internal/gate"
	"stock-news-analyzer/internal/provider"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	MsgEmptyQuery   = "Please enter a stock symbol or company name."
	MsgNoArticles   = "No articles found. Please try a different query."
	MsgGateBusy     = "Another analysis is still running. Please try again shortly."
	defaultPageSize = 3
)

type ArticleSearcher interface {
	Search(ctx context.Context, params provider.SearchParams) ([]domain.Article, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type Classifier interface {
	Classify(ctx context.Context, summary string) (domain.SentimentLabel, error)
}

// Sink receives a run's output as it is produced. Notices and cards arrive in
// the order a reader should see them.
type Sink interface {
	Notice(n domain.Notice)
	Card(c domain.Card)
}

// ReportSink collects a run into a domain.Report.
type ReportSink struct {
	Report domain.Report
}

func (s *ReportSink) Notice(n domain.Notice) { s.Report.Notices = append(s.Report.Notices, n) }
func (s *ReportSink) Card(c domain.Card)     { s.Report.Cards = append(s.Report.Cards, c) }

// AnalysisService runs fetch, summarize, classify and suggest for one query.
// Every article is processed in provider order, one at a time.
type AnalysisService struct {
	tracer     trace.Tracer
	searcher   ArticleSearcher
	summarizer Summarizer
	classifier Classifier
	gate       gate.Gate
	language   string
	pageSize   int
}

func NewAnalysisService(
	tracer trace.Tracer,
	searcher ArticleSearcher,
	summarizer Summarizer,
	classifier Classifier,
	runGate gate.Gate,
	language string,
	pageSize int,
) *AnalysisService {
	if runGate == nil {
		runGate = gate.NewLocalGate()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &AnalysisService{
		tracer:     tracer,
		searcher:   searcher,
		summarizer: summarizer,
		classifier: classifier,
		gate:       runGate,
		language:   language,
		pageSize:   pageSize,
	}
}

// Analyze runs the pipeline and returns everything it rendered.
func (s *AnalysisService) Analyze(ctx context.Context, query string) domain.Report {
	sink := &ReportSink{}
	s.Run(ctx, query, sink)
	sink.Report.Query = query
	return sink.Report
}

// Run streams notices and cards for query into sink. Failures never abort the
// run; each one becomes an error notice and a placeholder value. A blank query
// is refused; any other query reaches the provider exactly as given.
func (s *AnalysisService) Run(ctx context.Context, query string, sink Sink) {
	ctx, span := s.tracer.Start(ctx, "analysis.run")
	defer span.End()

	span.SetAttributes(attribute.String("analysis.query", query))
	if strings.TrimSpace(query) == "" {
		sink.Notice(domain.Notice{Level: domain.NoticeWarning, Message: MsgEmptyQuery})
		return
	}

	release, err := s.gate.Acquire(ctx)
	if err != nil {
		log.Printf("run gate not acquired for %q: %v", query, err)
		span.RecordError(err)
		sink.Notice(domain.Notice{Level: domain.NoticeError, Message: MsgGateBusy})
		return
	}
	defer release()

	articles, err := s.searcher.Search(ctx, provider.SearchParams{
		Query:    query,
		Language: s.language,
		PageSize: s.pageSize,
	})
	if err != nil {
		log.Printf("news search failed for %q: %v", query, err)
		span.RecordError(err)
		sink.Notice(domain.Notice{Level: domain.NoticeError, Message: fetchErrorMessage(err)})
		articles = nil
	}

	if len(articles) == 0 {
		sink.Notice(domain.Notice{Level: domain.NoticeWarning, Message: MsgNoArticles})
		return
	}

	span.SetAttributes(attribute.Int("analysis.articles", len(articles)))
	sink.Notice(domain.Notice{
		Level:   domain.NoticeSuccess,
		Message: fmt.Sprintf("Analyzed %d recent articles about \"%s\".", len(articles), query),
	})

	for _, article := range articles {
		sink.Card(s.analyzeArticle(ctx, article, sink))
	}
}

func (s *AnalysisService) analyzeArticle(ctx context.Context, article domain.Article, sink Sink) domain.Card {
	card := domain.Card{Article: article}

	summary, err := s.summarizer.Summarize(ctx, article.Description)
	if err != nil {
		log.Printf("summarize failed for %q: %v", article.Title, err)
		sink.Notice(domain.Notice{Level: domain.NoticeError, Message: fmt.Sprintf("Error summarizing article: %v", err)})
		summary = ""
		card.SummaryFailed = true
	}
	card.Summary = summary

	label, err := s.classifier.Classify(ctx, summary)
	if err != nil {
		log.Printf("classify failed for %q: %v", article.Title, err)
		sink.Notice(domain.Notice{Level: domain.NoticeError, Message: fmt.Sprintf("Error analyzing the sentiment: %v", err)})
		label = domain.SentimentNeutral
		card.SentimentFailed = true
	}
	card.Sentiment = label
	card.Action = advisor.SuggestAction(label)
	return card
}

func fetchErrorMessage(err error) string {
	if domain.KindOf(err) == domain.ErrorKindHTTP {
		return fmt.Sprintf("HTTP error occurred: %v", err)
	}
	return fmt.Sprintf("An error occurred: %v", err)
}
