package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sidnevart/commercial-real-estate-analysis/api"
	"github.com/sidnevart/commercial-real-estate-analysis/cache"
	"github.com/sidnevart/commercial-real-estate-analysis/config"
	"github.com/sidnevart/commercial-real-estate-analysis/proxy"
	"github.com/sidnevart/commercial-real-estate-analysis/scraper"
	"github.com/sidnevart/commercial-real-estate-analysis/storage"
)

func main() {
	once := flag.Bool("once", false, "run a single extraction, print the offers as JSON and exit")
	flag.Parse()

	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("cian-parser starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"entryURLs", len(cfg.Parser.EntryURLs),
		"httpFirst", cfg.Parser.HTTPFirst,
	)

	// ── 3. Initialise scraper ────────────────────────────────────────
	sc := scraper.New(cfg.Browser, cfg.Parser, proxy.FromEnv("CIAN_PROXY"))

	// ── 3b. Optional Postgres sink ──────────────────────────────────
	var store *storage.Store
	if cfg.Storage.DSN != "" {
		var err error
		store, err = storage.New(context.Background(), cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to initialise offer store", "error", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	// ── 4. One-shot mode ────────────────────────────────────────────
	if *once {
		code := runOnce(sc, store)
		// os.Exit skips deferred calls, so drain the pool here.
		if store != nil {
			store.Close()
		}
		os.Exit(code)
	}

	// ── 4b. Optional result cache ───────────────────────────────────
	var cc *cache.Cache
	if cfg.Cache.MaxAge > 0 {
		cc = cache.New(cfg.Cache.MaxEntries)
		slog.Info("result cache enabled", "maxAge", cfg.Cache.MaxAge, "maxEntries", cfg.Cache.MaxEntries)
	}

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(sc, store, cc, cfg)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight runs 30 seconds: a parse request holds a live
	// browser session that should finish rather than orphan Chrome.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("cian-parser stopped")
}

// runOnce performs a single extraction run and prints the result to
// stdout, for cron-style operation without the HTTP surface.
func runOnce(sc *scraper.Scraper, store *storage.Store) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := sc.FetchOffers(ctx)
	if err != nil {
		slog.Error("extraction run failed", "error", err)
		return 1
	}

	if store != nil && len(result.Offers) > 0 {
		if saved, saveErr := store.SaveOffers(ctx, result.Offers); saveErr != nil {
			slog.Error("offer persistence failed", "error", saveErr)
		} else {
			slog.Info("offers persisted", "count", saved)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Offers); err != nil {
		slog.Error("result encoding failed", "error", err)
		return 1
	}
	return 0
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
