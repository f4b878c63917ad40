package main

import (
	"flag"
	"io"
	"testing"
	"time"
)

func parse(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	fs := flag.NewFlagSet("chat-analyze", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return parseFlags(fs, args)
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := parse(t, "-in", "chat.txt")
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Model != "gpt-5-mini" {
		t.Fatalf("Model=%q", cfg.Model)
	}
	if cfg.OutPath != "analysis.json" {
		t.Fatalf("OutPath=%q", cfg.OutPath)
	}
	if cfg.Concurrency != 4 || cfg.CallTimeout != 90*time.Second {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.NoCache || cfg.Pretty {
		t.Fatalf("cfg=%+v, want cache and compact output by default", cfg)
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := parse(t,
		"-in", "chat.txt",
		"-out", "res.json",
		"-model", "gpt-5",
		"-concurrency", "8",
		"-call-timeout", "30s",
		"-no-cache",
		"-pretty",
		"-log-mode", "dev",
	)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Model != "gpt-5" || cfg.OutPath != "res.json" || cfg.Concurrency != 8 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.CallTimeout != 30*time.Second || !cfg.NoCache || !cfg.Pretty || cfg.LogMode != "dev" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing in", func(c *Config) { c.InPath = "" }},
		{"missing out", func(c *Config) { c.OutPath = "" }},
		{"missing model", func(c *Config) { c.Model = "" }},
		{"negative concurrency", func(c *Config) { c.Concurrency = -1 }},
		{"zero timeout", func(c *Config) { c.CallTimeout = 0 }},
		{"bad log mode", func(c *Config) { c.LogMode = "verbose" }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			cfg.InPath = "chat.txt"
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("Validate accepted invalid config: %+v", cfg)
			}
		})
	}
}
