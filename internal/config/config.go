package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	ConnectRetries     int
	AppName            string
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level    string
	Timezone string
}

// Location resolves Timezone, falling back to UTC.
func (c LogConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TracingConfig selects the OTLP exporter. An empty Endpoint disables export.
type TracingConfig struct {
	Endpoint string
	Protocol string // "grpc" or "http"
	Insecure bool
}

// WorkerConfig sizes the background discovery pool.
type WorkerConfig struct {
	Count         int
	QueueSize     int
	JobTimeoutSec int
}

// DiscoveryConfig holds defaults and limits for discovery runs.
type DiscoveryConfig struct {
	Slack          float64
	ElbowDeviation float64
	Workers        int   // distance matrix goroutines per run
	MaxUploadBytes int64 // largest accepted dataset upload
	MaxLength      int   // longest accepted series
	PresignTTLSec  int
	ResamplePoints int   // series are thinned to about this many points before a search
	MaxMatrixCells int64 // dims x n x n bound on the distance matrix of one run
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Log       LogConfig
	Tracing   TracingConfig
	Worker    WorkerConfig
	Discovery DiscoveryConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			ConnectRetries:     getEnvInt("DB_CONNECT_RETRIES", 5),
			AppName:            getEnv("DB_APP_NAME", "motifapi"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Timezone: getEnv("LOG_TIMEZONE", "UTC"),
		},
		Tracing: TracingConfig{
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Protocol: getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			Insecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
		Worker: WorkerConfig{
			Count:         getEnvInt("WORKER_COUNT", 2),
			QueueSize:     getEnvInt("WORKER_QUEUE_SIZE", 32),
			JobTimeoutSec: getEnvInt("WORKER_JOB_TIMEOUT_SEC", 900),
		},
		Discovery: DiscoveryConfig{
			Slack:          getEnvFloat("DISCOVERY_SLACK", 0.5),
			ElbowDeviation: getEnvFloat("DISCOVERY_ELBOW_DEVIATION", 1.0),
			Workers:        getEnvInt("DISCOVERY_WORKERS", 0),
			MaxUploadBytes: int64(getEnvInt("DISCOVERY_MAX_UPLOAD_BYTES", 32<<20)),
			MaxLength:      getEnvInt("DISCOVERY_MAX_LENGTH", 20000),
			PresignTTLSec:  getEnvInt("DISCOVERY_PRESIGN_TTL_SEC", 900),
			ResamplePoints: getEnvInt("DISCOVERY_RESAMPLE_POINTS", 10000),
			MaxMatrixCells: int64(getEnvInt("DISCOVERY_MAX_MATRIX_CELLS", 250_000_000)),
		},
	}
}

func getEnv(key, def string) string {
	return envOr(key, def, func(v string) (string, error) { return v, nil })
}

func getEnvBool(key string, def bool) bool { return envOr(key, def, strconv.ParseBool) }

func getEnvInt(key string, def int) int { return envOr(key, def, strconv.Atoi) }

func getEnvFloat(key string, def float64) float64 {
	return envOr(key, def, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}

// envOr parses the variable named key, returning def when it is unset, empty
// or does not parse.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}
