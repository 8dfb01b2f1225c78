package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"stock-news-analyzer/internal/app"
	"stock-news-analyzer/internal/config"
	"stock-news-analyzer/internal/mcpserver"
	"stock-news-analyzer/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initTracerFunc         = tracing.InitTracer
	newAnalysisServiceFunc = app.NewAnalysisService
	runStdioFunc           = func(ctx context.Context, srv *mcp.Server) error { return srv.Run(ctx, &mcp.StdioTransport{}) }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	if err := loadEnvFunc(); err != nil {
		// stdout belongs to the protocol on stdio; log goes to stderr.
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.DefaultServiceName+"-mcp")
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	analysis, closeAnalysis := newAnalysisServiceFunc(ctx, cfg, tracer)
	defer closeAnalysis()

	timeout := time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second
	srv := mcpserver.NewServer(analysis, cfg.DefaultQuery, timeout)

	if cfg.MCPTransport != "http" {
		log.Println("MCP server running on stdio")
		if err := runStdioFunc(ctx, srv); err != nil {
			log.Printf("MCP stdio server stopped: %v", err)
		}
		return
	}

	if cfg.MCPAuthToken == "" {
		log.Println("Warning: MCP_AUTH_TOKEN not set, MCP HTTP endpoint is unauthenticated")
	}
	gin.SetMode(gin.ReleaseMode)
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.MCPHTTPBind, cfg.MCPHTTPPort),
		Handler: mcpserver.NewHTTPRouter(srv, cfg.MCPAuthToken),
	}

	go func() {
		log.Printf("MCP HTTP server listening on %s", httpSrv.Addr)
		if err := startHTTPServerFunc(httpSrv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down MCP server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(httpSrv, shutdownCtx); err != nil {
		log.Printf("MCP server shutdown error: %v", err)
	}
	log.Println("MCP server exited")
}
