package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "REDIS_ADDR", "NEO4J_URI", "SWEEP_INTERVAL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(logger.Nop())
	if cfg.Port != "8080" || cfg.DB.Driver != "postgres" {
		t.Fatalf("unexpected defaults: port=%q driver=%q", cfg.Port, cfg.DB.Driver)
	}
	if cfg.Redis.Addr != "" || cfg.Neo4j.URI != "" {
		t.Fatalf("redis and neo4j must be off by default")
	}
	if cfg.Sweep.Interval != time.Hour || len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("sweep=%s origins=%v", cfg.Sweep.Interval, cfg.AllowedOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/pulse.db")
	t.Setenv("SWEEP_INTERVAL", "15m")
	t.Setenv("SWEEP_CONCURRENCY", "2")
	t.Setenv("RECOMMENDER_CONCURRENCY", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.25")

	cfg := LoadConfig(logger.Nop())
	if cfg.Port != "9090" || cfg.DB.Driver != "sqlite" || cfg.DB.SQLitePath != "/tmp/pulse.db" {
		t.Fatalf("db/port overrides not applied: %+v", cfg.DB)
	}
	if cfg.Sweep.Interval != 15*time.Minute || cfg.Sweep.Concurrency != 2 || cfg.RecommenderConcurrency != 3 {
		t.Fatalf("concurrency overrides: %+v rec=%d", cfg.Sweep, cfg.RecommenderConcurrency)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("origins: %v", cfg.AllowedOrigins)
	}
	if cfg.Otel.SampleRatio != 0.25 {
		t.Fatalf("sample ratio: %v", cfg.Otel.SampleRatio)
	}

	policy, err := loadPolicy(logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("loadPolicy: %v", err)
	}
	if policy.Recommender.Concurrency != 3 || policy.Pattern.SweepConcurrency != 2 {
		t.Fatalf("env concurrency not applied to policy: %+v", policy)
	}
}

func TestLoadPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("recommender:\n  min_score: 40\n"), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	policy, err := loadPolicy(logger.Nop(), Config{PolicyFile: path})
	if err != nil {
		t.Fatalf("loadPolicy: %v", err)
	}
	if policy.Recommender.MinScore != 40 || policy.Recommender.TopicWeight != 10 {
		t.Fatalf("policy overlay: %+v", policy.Recommender)
	}

	if _, err := loadPolicy(logger.Nop(), Config{PolicyFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatalf("missing policy file should fail")
	}
}
