package config

import (
	"flag"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is everything the transform driver needs for one run.
type Config struct {
	Input     string // NDJSON of accumulated records ("-" for stdin)
	Output    string // NDJSON destination ("-" for stdout)
	ConfigDir string // directory with languages.json / edm_types.json / has_types.json
	Source    string // institution config identifier for records lacking __source
	Workers   int
	OnError   string // "skip" or "abort"

	Upload UploadConfig
	Report ReportConfig
}

// UploadConfig controls the optional S3 upload of the finished batch.
type UploadConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Key       string
	UseSSL    bool
}

// ReportConfig controls the optional Postgres rejection-report sink.
type ReportConfig struct {
	DSN string
}

// Load reads flags and environment (a .env file is honored when present).
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("transform", flag.ContinueOnError)
	input := fs.String("input", "-", "accumulated-record NDJSON input, - for stdin")
	output := fs.String("output", "-", "validated NDJSON output, - for stdout")
	configDir := fs.String("config-dir", os.Getenv("TRANSFORM_CONFIG_DIR"), "directory with language/vocabulary lists")
	source := fs.String("source", "", "institution config identifier for records without __source")
	workers := fs.Int("workers", defaultWorkers(), "parallel record workers")
	onError := fs.String("on-error", firstNonEmpty(os.Getenv("TRANSFORM_ON_ERROR"), "abort"), "per-record failure policy: skip or abort")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		Input:     *input,
		Output:    *output,
		ConfigDir: *configDir,
		Source:    *source,
		Workers:   *workers,
		OnError:   strings.ToLower(strings.TrimSpace(*onError)),
		Upload:    loadUploadConfig(),
		Report:    ReportConfig{DSN: strings.TrimSpace(os.Getenv("TRANSFORM_REPORT_PG_DSN"))},
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.OnError != "skip" {
		cfg.OnError = "abort"
	}
	return cfg, nil
}

func loadUploadConfig() UploadConfig {
	endpoint := strings.TrimSpace(os.Getenv("TRANSFORM_S3_ENDPOINT"))
	return UploadConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("TRANSFORM_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("TRANSFORM_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("TRANSFORM_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("TRANSFORM_S3_BUCKET")), "transformed-records"),
		Key:       strings.TrimSpace(os.Getenv("TRANSFORM_S3_KEY")),
		UseSSL:    resolveUseSSL(),
	}
}

func resolveUseSSL() bool {
	raw := strings.TrimSpace(os.Getenv("TRANSFORM_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func defaultWorkers() int {
	if raw := strings.TrimSpace(os.Getenv("TRANSFORM_WORKERS")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
