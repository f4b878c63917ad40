package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	InPath   string
	OutPath  string
	Model    string
	CacheDir string
	APIKey   string

	Concurrency int
	CallTimeout time.Duration

	Pretty  bool
	NoCache bool
	LogMode string
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must be >= 0")
	}
	if c.CallTimeout <= 0 {
		return errors.New("call-timeout must be > 0")
	}
	if c.LogMode != "dev" && c.LogMode != "prod" {
		return errors.New("log-mode must be dev or prod")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		OutPath:     "analysis.json",
		Model:       "gpt-5-mini",
		CacheDir:    filepath.FromSlash(".chatlens"),
		Concurrency: 4,
		CallTimeout: 90 * time.Second,
		LogMode:     "prod",
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Path to an exported chat transcript (.txt)")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Output path for the analysis JSON")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model to use (e.g. gpt-5-mini)")
	fs.StringVar(&cfg.CacheDir, "cache-dir", cfg.CacheDir, "Directory for the result cache database")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Max concurrent sentiment inferences (0 = default)")
	fs.DurationVar(&cfg.CallTimeout, "call-timeout", cfg.CallTimeout, "Per-attempt timeout for model calls")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print the output JSON")
	fs.BoolVar(&cfg.NoCache, "no-cache", false, "Skip the on-disk result cache")
	fs.StringVar(&cfg.LogMode, "log-mode", cfg.LogMode, "Logger mode: dev or prod")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.InPath != "" {
		cfg.InPath = filepath.Clean(cfg.InPath)
	}
	cfg.OutPath = filepath.Clean(cfg.OutPath)
	cfg.CacheDir = filepath.Clean(cfg.CacheDir)
	return cfg, nil
}
