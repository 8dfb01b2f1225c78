package bot

import (
	"context"
	"log"
	"strings"
	"time"

	"stock-news-analyzer/internal/domain"
	"stock-news-analyzer/internal/render"

	tele "gopkg.in/telebot.v3"
)

// Telegram rejects messages longer than this.
const maxMessageLen = 4096

type Analyzer interface {
	Analyze(ctx context.Context, query string) domain.Report
}

// StartTelegramBot serves /ping and /analyze. Each analysis, including any wait
// for the run gate, is bounded by timeout when it is positive.
func StartTelegramBot(token string, analyzer Analyzer, defaultQuery string, timeout time.Duration) {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/analyze", func(c tele.Context) error {
		_ = c.Notify(tele.Typing)
		return c.Send(analyzeReply(context.Background(), analyzer, c.Args(), defaultQuery, timeout))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

// analyzeReply runs the query made of args, or defaultQuery when none given.
func analyzeReply(ctx context.Context, analyzer Analyzer, args []string, defaultQuery string, timeout time.Duration) string {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		query = defaultQuery
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return truncate(render.PlainText(analyzer.Analyze(ctx, query)), maxMessageLen)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit - len("…")
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
