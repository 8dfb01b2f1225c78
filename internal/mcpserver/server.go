// Package mcpserver exposes the analysis pipeline as an MCP tool.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"stock-news-analyzer/internal/domain"
	"stock-news-analyzer/internal/handler"
	"stock-news-analyzer/internal/render"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ToolName      = "analyze_stock_news"
	serverName    = "stock-news-analyzer"
	serverVersion = "1.0.0"
)

type Analyzer interface {
	Analyze(ctx context.Context, query string) domain.Report
}

type analyzeArgs struct {
	Query string `json:"query"`
}

// NewServer builds an MCP server with the analyze tool registered. A positive
// timeout bounds each tool call.
func NewServer(analyzer Analyzer, defaultQuery string, timeout time.Duration) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerAnalyzeTool(srv, analyzer, defaultQuery, timeout)
	return srv
}

func registerAnalyzeTool(srv *mcp.Server, analyzer Analyzer, defaultQuery string, timeout time.Duration) {
	tool := &mcp.Tool{
		Name: ToolName,
		Description: "Fetch recent news articles about a stock symbol or company, summarize each one, " +
			"classify its sentiment and suggest Buy, Sell or Hold. Upstream failures appear as notices in the report.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": fmt.Sprintf("Stock symbol or company name (default %q)", defaultQuery),
				},
			},
		},
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args analyzeArgs
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
			}
		}
		query := strings.TrimSpace(args.Query)
		if query == "" {
			query = defaultQuery
		}

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		report := analyzer.Analyze(ctx, query)
		data, err := json.Marshal(report)
		if err != nil {
			return errorResult(fmt.Errorf("marshal: %w", err)), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(data)},
				&mcp.TextContent{Text: render.PlainText(report)},
			},
		}, nil
	})
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

// NewHTTPRouter serves srv over streamable HTTP at /mcp, behind X-API-Key
// auth when authToken is set.
func NewHTTPRouter(srv *mcp.Server, authToken string) *gin.Engine {
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return srv }, nil)

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "healthy"}) })
	r.Any("/mcp", handler.APIKeyAuth(authToken), gin.WrapH(streamable))
	return r
}
