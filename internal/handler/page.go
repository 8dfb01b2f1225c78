package handler

import (
	"net/http"

	"stock-news-analyzer/internal/domain"

	"github.com/gin-gonic/gin"
)

type pageView struct {
	Title  string
	Query  string
	Report *domain.Report
}

// Index renders the empty form with the default query filled in.
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageView{Title: pageTitle, Query: h.defaultQuery})
}

// AnalyzeForm runs the submitted query and renders the page with its results.
// Pipeline failures are shown inline; the response is always 200.
func (h *Handler) AnalyzeForm(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze-form")
	defer span.End()

	query := c.PostForm("query")
	report := h.analyzer.Analyze(ctx, query)
	c.HTML(http.StatusOK, "index.html", pageView{Title: pageTitle, Query: query, Report: &report})
}
