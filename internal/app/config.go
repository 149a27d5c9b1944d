package app

import (
	"time"

	"github.com/yungbote/workpulse-backend/internal/data/db"
	"github.com/yungbote/workpulse-backend/internal/jobs/sweep"
	"github.com/yungbote/workpulse-backend/internal/observability"
	"github.com/yungbote/workpulse-backend/internal/pkg/envutil"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/platform/neo4jdb"
	"github.com/yungbote/workpulse-backend/internal/platform/redisdb"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	PolicyFile     string

	DB    db.Config
	Redis redisdb.Config
	// RedisChannel is the pub/sub channel realtime messages fan out on.
	RedisChannel string
	CachePrefix  string
	Neo4j        neo4jdb.Config
	Otel         observability.OtelConfig

	Sweep                  sweep.Config
	RecommenderConcurrency int

	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:           envutil.String("PORT", "8080", log),
		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil, log),
		PolicyFile:     envutil.String("ENGINE_POLICY_FILE", "", log),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", "postgres", log),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432", log),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", log),
			PostgresName:     envutil.String("POSTGRES_NAME", "workpulse", log),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable", log),
			SQLitePath:       envutil.String("SQLITE_PATH", "workpulse.db", log),
			SlowThreshold:    envutil.Duration("DB_SLOW_THRESHOLD", time.Second, log),
		},
		Redis: redisdb.Config{
			Addr:        envutil.String("REDIS_ADDR", "", log),
			Password:    envutil.String("REDIS_PASSWORD", "", log),
			DB:          envutil.Int("REDIS_DB", 0, log),
			DialTimeout: envutil.Duration("REDIS_DIAL_TIMEOUT", 5*time.Second, log),
		},
		RedisChannel: envutil.String("REDIS_CHANNEL", "workpulse:sse", log),
		CachePrefix:  envutil.String("REDIS_CACHE_PREFIX", "workpulse:cache", log),
		Neo4j: neo4jdb.Config{
			URI:         envutil.String("NEO4J_URI", "", log),
			User:        envutil.String("NEO4J_USER", "neo4j", log),
			Password:    envutil.String("NEO4J_PASSWORD", "", log),
			Database:    envutil.String("NEO4J_DATABASE", "", log),
			Timeout:     envutil.Duration("NEO4J_TIMEOUT", 10*time.Second, log),
			MaxPoolSize: envutil.Int("NEO4J_MAX_POOL_SIZE", 50, log),
		},
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "workpulse-backend", log),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development", log),
			Version:     envutil.String("OTEL_SERVICE_VERSION", "dev", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: observability.ParseRatio(envutil.String("OTEL_SAMPLE_RATIO", "1", log)),
		},

		Sweep: sweep.Config{
			Interval:    envutil.Duration("SWEEP_INTERVAL", time.Hour, log),
			Suggest:     envutil.Bool("SWEEP_SUGGEST", true, log),
			NotifyTop:   envutil.Int("SWEEP_NOTIFY_TOP", 3, log),
			Concurrency: envutil.Int("SWEEP_CONCURRENCY", 4, log),
		},
		RecommenderConcurrency: envutil.Int("RECOMMENDER_CONCURRENCY", 8, log),

		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second, log),
	}
}
