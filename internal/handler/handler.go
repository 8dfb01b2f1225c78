package handler

import (
	"context"
	"embed"
	"html/template"

	"stock-news-analyzer/internal/domain"
	"stock-news-analyzer/internal/render"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

const pageTitle = "📰 AI-Powered Stock Market News Analyzer"

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("").Funcs(template.FuncMap{"markdown": render.MarkdownHTML}).ParseFS(templateFS, "templates/*.html"),
)

// Analyzer runs one analysis and returns its rendered output.
type Analyzer interface {
	Analyze(ctx context.Context, query string) domain.Report
}

type Handler struct {
	tracer       trace.Tracer
	analyzer     Analyzer
	defaultQuery string
}

func New(tracer trace.Tracer, analyzer Analyzer, defaultQuery string) *Handler {
	return &Handler{
		tracer:       tracer,
		analyzer:     analyzer,
		defaultQuery: defaultQuery,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(pageTemplate)

	r.GET("/", h.Index)
	r.POST("/analyze", h.AnalyzeForm)
	r.GET("/health", h.Health)
	r.POST("/api/analyze", h.AnalyzeAPI)
}
