package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AutmateStudio/Anonimiser/internal/anonymize"
	"github.com/AutmateStudio/Anonimiser/internal/audit"
	"github.com/AutmateStudio/Anonimiser/internal/config"
	"github.com/AutmateStudio/Anonimiser/internal/server"
)

var (
	servePort         int
	serveGlobalRPM    int
	servePerCallerRPM int
	serveNoAudit      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the redaction HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8000, "HTTP server port")
	serveCmd.Flags().IntVar(&serveGlobalRPM, "global-rpm", 600, "total requests/minute across all callers")
	serveCmd.Flags().IntVar(&servePerCallerRPM, "per-caller-rpm", 120, "requests/minute per caller")
	serveCmd.Flags().BoolVar(&serveNoAudit, "no-audit", false, "disable the signed audit trail")
	rootCmd.AddCommand(serveCmd)
}

// parseAPIKeys returns a map of key -> caller from ANONIMISER_API_KEYS
// (comma-separated; each entry key or key:caller).
func parseAPIKeys(env string) map[string]string {
	m := make(map[string]string)
	if env == "" {
		return m
	}
	for _, part := range strings.Split(env, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		caller := "default"
		if idx := strings.Index(part, ":"); idx > 0 {
			if c := strings.TrimSpace(part[idx+1:]); c != "" {
				caller = c
			}
			part = strings.TrimSpace(part[:idx])
		}
		m[part] = caller
	}
	return m
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	cfg.WarnIfDefaultKey()

	engine, nerEnabled, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	anonymizer := anonymize.New(engine)

	apiKeys := parseAPIKeys(os.Getenv("ANONIMISER_API_KEYS"))
	if len(apiKeys) == 0 {
		log.Warn().Msg("ANONIMISER_API_KEYS not set; all API endpoints will return 401")
	}

	opts := []server.Option{
		server.WithCORSOrigins([]string{"*"}),
		server.WithMaxTextKB(cfg.MaxTextKB),
		server.WithNEREnabled(nerEnabled),
		server.WithRateLimiter(server.NewRateLimiter(serveGlobalRPM, servePerCallerRPM)),
	}

	if !serveNoAudit {
		auditStore, err := audit.NewStore(cfg.AuditDBPath(), cfg.SigningKey)
		if err != nil {
			return fmt.Errorf("initializing audit store: %w", err)
		}
		defer auditStore.Close()
		opts = append(opts, server.WithAuditStore(auditStore))
	}

	srv := server.NewServer(anonymizer, apiKeys, opts...)

	addr := fmt.Sprintf(":%d", servePort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Bool("ner", nerEnabled).
		Bool("audit", !serveNoAudit).
		Msg("anonimiser_serve_started")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown_signal_received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server_stopped")
	return nil
}
