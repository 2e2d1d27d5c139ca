package config

import "time"

// StorageConfig configures the durable backends behind the storage
// engine (C5): Postgres for the canonical store, ClickHouse for the
// optional audit sink, Qdrant for vector search.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
	QdrantAddr    string `yaml:"qdrant_addr"`
}

// EmbeddingConfig configures the provider chain (C11): primary/fallback
// API credentials plus the self-hosted HTTP and cache layers.
type EmbeddingConfig struct {
	OpenAIAPIKey   string `yaml:"openai_api_key"`
	OpenAIModel    string `yaml:"openai_model"`
	GenAIAPIKey    string `yaml:"genai_api_key"`
	GenAIModel     string `yaml:"genai_model"`
	HTTPEndpoint   string `yaml:"http_endpoint"`
	Dimensions     int    `yaml:"dimensions"`
	RedisCacheAddr string `yaml:"redis_cache_addr"`
}

func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		OpenAIModel: "text-embedding-3-small",
		GenAIModel:  "text-embedding-004",
		Dimensions:  1536,
	}
}

// DecayConfig configures confidence decay (C6).
type DecayConfig struct {
	HalfLifeDays float64 `yaml:"half_life_days"`
	MinFloor     float64 `yaml:"min_floor"`
}

func DefaultDecayConfig() DecayConfig {
	return DecayConfig{HalfLifeDays: 90, MinFloor: 0.05}
}

// ValidationConfig configures the validation engine (C7).
type ValidationConfig struct {
	CitationWeight     float64 `yaml:"citation_weight"`
	TemporalWeight     float64 `yaml:"temporal_weight"`
	PatternWeight      float64 `yaml:"pattern_weight"`
	ContradictionWeight float64 `yaml:"contradiction_weight"`
	PassThreshold      float64 `yaml:"pass_threshold"`
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		CitationWeight:      0.25,
		TemporalWeight:      0.25,
		PatternWeight:       0.25,
		ContradictionWeight: 0.25,
		PassThreshold:       0.5,
	}
}

// ConsolidationConfig configures recall-gated consolidation (C9).
type ConsolidationConfig struct {
	ClusterThreshold float64 `yaml:"cluster_threshold"`
	RecallPassScore  float64 `yaml:"recall_pass_score"`
}

func DefaultConsolidationConfig() ConsolidationConfig {
	return ConsolidationConfig{ClusterThreshold: 0.65, RecallPassScore: 0.3}
}

// PredictionConfig configures the prediction cache (C12).
type PredictionConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

// ObservabilityConfig configures structured logging.
type ObservabilityConfig struct {
	LogPath string `yaml:"log_path"`
	Level   string `yaml:"level"`
}

func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{Level: "info"}
}

// TelemetryConfig configures OTLP trace export.
type TelemetryConfig struct {
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	Environment    string `yaml:"environment"`
}

func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{ServiceName: "cortex", Environment: "development"}
}

// Config is the top-level options bundle. This package deliberately
// carries no file/env loader: callers construct Config from whatever
// configuration source their deployment uses and pass it in, matching
// this spec's Non-goal of a configuration-management subsystem.
type Config struct {
	Storage       StorageConfig
	Embedding     EmbeddingConfig
	Decay         DecayConfig
	Validation    ValidationConfig
	Consolidation ConsolidationConfig
	Prediction    PredictionConfig
	Observability ObservabilityConfig
	Telemetry     TelemetryConfig
}

// Default returns a Config populated with this package's per-section
// defaults. Credentials and endpoints are left zero-valued; callers
// must supply them.
func Default() Config {
	return Config{
		Embedding:     DefaultEmbeddingConfig(),
		Decay:         DefaultDecayConfig(),
		Validation:    DefaultValidationConfig(),
		Consolidation: DefaultConsolidationConfig(),
		Observability: DefaultObservabilityConfig(),
		Telemetry:     DefaultTelemetryConfig(),
	}
}
