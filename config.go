package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func StringEnv(key string, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func IntEnv(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func FloatEnv(key string, def float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func DurationEnv(key string, def time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

// Config collects every tunable of a benchmark run. Values come from the
// environment (optionally seeded from a .env file).
type Config struct {
	SampleInterval   time.Duration
	QueryTimeout     time.Duration
	ProvisionTimeout time.Duration
	TeardownRetries  int
	Warmup           int
	Parallel         int
	DatasetPath      string
	DatasetTable     string
	QueryFile        string
	CSVPath          string
	ResultsDSN       string
	RunID            string
	MetricsAddr      string
}

func ConfigFromEnv() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		Logger.Debugf("no .env file loaded: %v", err)
	}
	return Config{
		SampleInterval:   DurationEnv("BENCH_SAMPLE_INTERVAL", 100*time.Millisecond),
		QueryTimeout:     DurationEnv("BENCH_QUERY_TIMEOUT", 60*time.Second),
		ProvisionTimeout: DurationEnv("BENCH_PROVISION_TIMEOUT", 90*time.Second),
		TeardownRetries:  IntEnv("BENCH_TEARDOWN_RETRIES", 3),
		Warmup:           IntEnv("BENCH_WARMUP", 0),
		Parallel:         IntEnv("BENCH_PARALLEL", 1),
		DatasetPath:      StringEnv("BENCH_DATASET", ""),
		DatasetTable:     StringEnv("BENCH_DATASET_TABLE", "data"),
		QueryFile:        StringEnv("BENCH_QUERIES", ""),
		CSVPath:          StringEnv("BENCH_CSV", "benchmark_results.csv"),
		ResultsDSN:       StringEnv("BENCH_RESULTS_DSN", ""),
		RunID:            StringEnv("BENCH_RUN_ID", ""),
		MetricsAddr:      StringEnv("BENCH_METRICS_ADDR", ""),
	}
}
