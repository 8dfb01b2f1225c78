// Command analyze runs one news analysis from the terminal and prints the
// report as text or JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"stock-news-analyzer/internal/app"
	"stock-news-analyzer/internal/config"
	"stock-news-analyzer/internal/domain"
	"stock-news-analyzer/internal/render"
	"stock-news-analyzer/internal/service"
	"stock-news-analyzer/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type runner interface {
	Run(ctx context.Context, query string, sink service.Sink)
	Analyze(ctx context.Context, query string) domain.Report
}

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initTracerFunc = tracing.InitTracer
	newLocalTPFunc = func() *sdktrace.TracerProvider { return sdktrace.NewTracerProvider() }
	newRunnerFunc  = func(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (runner, func()) {
		return app.NewAnalysisService(ctx, cfg, tracer)
	}
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		asJSON    bool
		withTrace bool
		pageSize  int
		language  string
	)

	cmd := &cobra.Command{
		Use:   "analyze [symbol or company]",
		Short: "Summarize recent news for a stock and suggest Buy, Sell or Hold",
		Long: `Fetches recent articles from NewsAPI, summarizes each with an LLM,
classifies the sentiment of every summary and maps it to a naive trading
suggestion. With no argument the DEFAULT_QUERY (AAPL) is analyzed.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFunc(); err != nil {
				log.Printf("no .env file loaded: %v", err)
			}
			cfg := loadConfigFunc()
			if pageSize > 0 {
				cfg.NewsPageSize = pageSize
			}
			if language != "" {
				cfg.NewsLanguage = strings.ToLower(language)
			}

			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				query = cfg.DefaultQuery
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tp, tracer, err := cliTracer(ctx, withTrace)
			if err != nil {
				return fmt.Errorf("init tracer: %w", err)
			}
			defer func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					log.Printf("error shutting down tracer provider: %v", err)
				}
			}()

			r, closeRunner := newRunnerFunc(ctx, cfg, tracer)
			defer closeRunner()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(r.Analyze(ctx, query))
			}

			sink := render.NewTextSink(out)
			r.Run(ctx, query, sink)
			return sink.Err()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&withTrace, "trace", false, "export spans over OTLP")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "number of articles to analyze (default NEWS_PAGE_SIZE)")
	cmd.Flags().StringVar(&language, "language", "", "article language (default NEWS_LANGUAGE)")
	return cmd
}

// cliTracer exports over OTLP only when asked; otherwise spans stay in-process.
func cliTracer(ctx context.Context, export bool) (*sdktrace.TracerProvider, trace.Tracer, error) {
	name := tracing.DefaultServiceName + "-cli"
	if export {
		return initTracerFunc(ctx, name)
	}
	tp := newLocalTPFunc()
	return tp, tp.Tracer(name), nil
}
