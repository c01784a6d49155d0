package config

import (
	"time"

	"github.com/glossarch/stratigraphy/internal/domain"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Resolver ResolverConfig `yaml:"resolver"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// ResolverConfig holds entity resolution thresholds and feature weights.
// Thresholds must satisfy auto_merge >= merge_with_flag >= review.
type ResolverConfig struct {
	AutoMergeThreshold     float64 `yaml:"auto_merge_threshold"      env:"RESOLVER_AUTO_MERGE_THRESHOLD"      env-default:"0.95"`
	MergeWithFlagThreshold float64 `yaml:"merge_with_flag_threshold" env:"RESOLVER_MERGE_WITH_FLAG_THRESHOLD" env-default:"0.85"`
	ReviewThreshold        float64 `yaml:"review_threshold"          env:"RESOLVER_REVIEW_THRESHOLD"          env-default:"0.70"`

	Weights domain.SimilarityWeights `yaml:"weights"`
}

// IngestConfig holds offline ingestion pipeline settings.
type IngestConfig struct {
	WiktionaryPath string   `yaml:"wiktionary_path" env:"INGEST_WIKTIONARY_PATH"`
	CLLDPath       string   `yaml:"clld_path"       env:"INGEST_CLLD_PATH"`
	CLLDDataset    string   `yaml:"clld_dataset"    env:"INGEST_CLLD_DATASET"    env-default:"clics"`
	Languages      []string `yaml:"languages"       env:"INGEST_LANGUAGES"`
	BatchSize      int      `yaml:"batch_size"      env:"INGEST_BATCH_SIZE"      env-default:"500"`
	MaxEntries     int      `yaml:"max_entries"     env:"INGEST_MAX_ENTRIES"     env-default:"0"`
	DryRun         bool     `yaml:"dry_run"         env:"INGEST_DRY_RUN"         env-default:"false"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
