// Command chat-analyze turns an exported group-chat transcript into a single
// analysis JSON artifact: activity and word statistics, per-day sentiment,
// viral messages, shared links, media stats, and model-written narratives.
// Results are cached by transcript fingerprint so reruns over the same export
// are free.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/quietfield/chatlens/analysis"
	"github.com/quietfield/chatlens/analysis/fileutils"
	"github.com/quietfield/chatlens/analysis/provider"
	"github.com/quietfield/chatlens/analysis/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "missing OPENAI_API_KEY (or pass -api-key)")
		os.Exit(2)
	}

	log, err := newLogger(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, err := os.ReadFile(cfg.InPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("read -in: %w", err).Error())
		os.Exit(2)
	}

	var cache store.Store
	if cfg.NoCache {
		cache = store.NewMemory()
	} else {
		db, err := store.OpenSQLite(cfg.CacheDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(2)
		}
		defer db.Close()
		cache = db
	}

	model := provider.NewOpenAI(apiKey, cfg.Model, cfg.CallTimeout)
	pipeline := analysis.New(model, cache, analysis.Options{
		SentimentConcurrency: cfg.Concurrency,
		Logger:               log,
	})

	res, err := pipeline.Analyze(ctx, raw)
	if err != nil {
		var perr *analysis.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintln(os.Stderr, perr.Error())
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if err := fileutils.WriteJSONFileAtomic(cfg.OutPath, res, cfg.Pretty); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "result=%s days=%d users=%d messages_categorized=%d\n",
		cfg.OutPath, len(res.SentimentOverTime), len(res.MostActiveUsers), len(res.MessageCategories))
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "dev" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
