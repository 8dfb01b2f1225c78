package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"stock-news-analyzer/internal/app"
	"stock-news-analyzer/internal/config"
	"stock-news-analyzer/internal/tui"
	"stock-news-analyzer/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initTracerFunc         = tracing.InitTracer
	newAnalysisServiceFunc = app.NewAnalysisService
	newWishServerFunc      = wish.NewServer
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	if err := loadEnvFunc(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.DefaultServiceName+"-ssh")
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

	allowed := allowList(cfg.SSHAllowedKeys)
	if len(allowed) == 0 {
		log.Println("Warning: SSH_ALLOWED_KEYS not set, any public key is accepted")
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			fingerprint := gossh.FingerprintSHA256(key)
			if !keyAllowed(allowed, fingerprint) {
				log.Printf("SSH auth denied: user=%s fingerprint=%s", ctx.User(), fingerprint)
				return false
			}
			log.Printf("SSH auth accepted: user=%s fingerprint=%s", ctx.User(), fingerprint)
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				model := tui.NewModel(s.Context(), analysis, cfg.DefaultQuery)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}

func allowList(fingerprints []string) map[string]struct{} {
	out := make(map[string]struct{}, len(fingerprints))
	for _, fp := range fingerprints {
		out[fp] = struct{}{}
	}
	return out
}

// keyAllowed accepts every key when the allow list is empty.
func keyAllowed(allowed map[string]struct{}, fingerprint string) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[fingerprint]
	return ok
}
