package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AnalyzeRequest struct {
	Query string `json:"query" example:"AAPL"`
}

// AnalyzeAPI godoc
// @Summary      Analyze recent news for a stock
// @Description  Fetches recent articles for the query, summarizes each one, classifies its sentiment and suggests Buy, Sell or Hold. Upstream failures are reported as notices inside the report.
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        request  body      AnalyzeRequest  true  "Query to analyze"
// @Success      200      {object}  domain.Report
// @Failure      400      {object}  map[string]string
// @Router       /api/analyze [post]
func (h *Handler) AnalyzeAPI(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze")
	defer span.End()

	c.JSON(http.StatusOK, h.analyzer.Analyze(ctx, req.Query))
}
