package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParsePolicyOverlaysDefaults(t *testing.T) {
	raw := []byte(`
pattern:
  ttl: 2h
recommender:
  min_score: 40
  topic_weight: 12
similar_work:
  knowledge_item_threshold: 65
`)
	p, err := ParsePolicy(raw)
	if err != nil {
		t.Fatalf("ParsePolicy: %v", err)
	}
	if p.Pattern.TTL != 2*time.Hour || p.Recommender.MinScore != 40 || p.Recommender.TopicWeight != 12 {
		t.Fatalf("overrides not applied: %+v", p)
	}
	if p.SimilarWork.KnowledgeItemThreshold != 65 || p.SimilarWork.ProjectThreshold != 60 {
		t.Fatalf("similar work thresholds: %+v", p.SimilarWork)
	}
	if p.Recommender.SkillWeight != 15 || p.Insights.TimelineRiskPriority != 90 {
		t.Fatalf("untouched fields must keep defaults: %+v", p)
	}
}

func TestParsePolicyRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"negative ttl":   "pattern:\n  ttl: -1h\n",
		"ratio too high": "insights:\n  slowdown_ratio: 1.5\n",
		"window too big": "insights:\n  recent_window: 900h\n",
		"not yaml":       "pattern: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParsePolicy([]byte(raw)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestLoadPolicy(t *testing.T) {
	p, err := LoadPolicy("")
	if err != nil || p.Recommender.MinScore != 30 {
		t.Fatalf("empty path should yield defaults: %+v err=%v", p.Recommender, err)
	}
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("recommender:\n  max_results: 5\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err = LoadPolicy(path)
	if err != nil || p.Recommender.MaxResults != 5 {
		t.Fatalf("LoadPolicy: %+v err=%v", p.Recommender, err)
	}
	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file should fail")
	}
}
