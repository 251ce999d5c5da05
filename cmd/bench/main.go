// README: Benchmark runner; executes in-process workflow, HTTP, DB and Redis checks and prints a summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BaseURL     string
	DSN         string
	RedisAddr   string
	Strict      bool
	Timeout     time.Duration
	Concurrency int
	Duration    time.Duration
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	results := NewRunner(cfg).RunAll(ctx)

	tally := map[string]int{}
	for _, r := range results {
		tally[r.Status]++
	}
	fmt.Printf("\n== Summary ==\n%s=%d %s=%d %s=%d\n",
		statusPass, tally[statusPass], statusFail, tally[statusFail], statusSkip, tally[statusSkip])

	if tally[statusFail] > 0 || (cfg.Strict && tally[statusSkip] > 0) {
		os.Exit(1)
	}
}

// parseFlags reads flags whose defaults come from CITYCAB_BENCH_* variables.
func parseFlags() Config {
	env := func(key string) string { return os.Getenv("CITYCAB_BENCH_" + key) }

	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", env("BASE_URL"), "API base URL; empty skips HTTP cases")
	flag.StringVar(&cfg.DSN, "dsn", env("DSN"), "Postgres DSN; empty skips DB cases")
	flag.StringVar(&cfg.RedisAddr, "redis", env("REDIS"), "Redis address; empty skips Redis cases")
	flag.BoolVar(&cfg.Strict, "strict", parseBool(env("STRICT")), "fail when any case is skipped")
	flag.DurationVar(&cfg.Timeout, "timeout", parseDuration(env("TIMEOUT"), time.Minute), "total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", parseInt(env("CONCURRENCY"), 20), "concurrent bookings / clients")
	flag.DurationVar(&cfg.Duration, "duration", parseDuration(env("DURATION"), 5*time.Second), "duration of perf cases")
	flag.Parse()

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return cfg
}

func parseBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func parseInt(v string, def int) int {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func parseDuration(v string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}
