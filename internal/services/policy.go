package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy collects the engine's scoring weights, thresholds and windows. The
// defaults reproduce the production behavior; a YAML file may override any
// subset of fields.
type Policy struct {
	Pattern       PatternPolicy      `yaml:"pattern"`
	Recommender   RecommenderPolicy  `yaml:"recommender"`
	SimilarWork   SimilarWorkPolicy  `yaml:"similar_work"`
	Insights      InsightPolicy      `yaml:"insights"`
	Notifications NotificationPolicy `yaml:"notifications"`
}

type PatternPolicy struct {
	TTL               time.Duration `yaml:"ttl"`
	Lookback          time.Duration `yaml:"lookback"`
	TopHours          int           `yaml:"top_hours"`
	ContributeWeight  int           `yaml:"contribute_weight"`
	CollaborateWeight int           `yaml:"collaborate_weight"`
	SweepConcurrency  int           `yaml:"sweep_concurrency"`
}

type RecommenderPolicy struct {
	TopicWeight         int           `yaml:"topic_weight"`
	MinSharedTopics     int           `yaml:"min_shared_topics"`
	SkillWeight         int           `yaml:"skill_weight"`
	MinSharedSkills     int           `yaml:"min_shared_skills"`
	ComplementaryWeight int           `yaml:"complementary_weight"`
	MinComplementary    int           `yaml:"min_complementary"`
	DepartmentBonus     int           `yaml:"department_bonus"`
	MinScore            int           `yaml:"min_score"`
	MaxResults          int           `yaml:"max_results"`
	CacheTTL            time.Duration `yaml:"cache_ttl"`
	Concurrency         int           `yaml:"concurrency"`
}

type SimilarWorkPolicy struct {
	KnowledgeItemThreshold int `yaml:"knowledge_item_threshold"`
	ProjectThreshold       int `yaml:"project_threshold"`
	MaxResults             int `yaml:"max_results"`
	CandidateLimit         int `yaml:"candidate_limit"`
}

type InsightPolicy struct {
	TTL                   time.Duration `yaml:"ttl"`
	SharedTeamBase        int           `yaml:"shared_team_base"`
	SharedTeamStep        int           `yaml:"shared_team_step"`
	DependencyBase        int           `yaml:"dependency_base"`
	DependencyStep        int           `yaml:"dependency_step"`
	KnowledgeTransferBase int           `yaml:"knowledge_transfer_base"`
	OpportunityPerTopic   int           `yaml:"opportunity_per_topic"`
	MaxOpportunity        int           `yaml:"max_opportunity"`
	TimelineRiskPriority  int           `yaml:"timeline_risk_priority"`
	RecentWindow          time.Duration `yaml:"recent_window"`
	MinOlderEvents        int           `yaml:"min_older_events"`
	SlowdownRatio         float64       `yaml:"slowdown_ratio"`
}

type NotificationPolicy struct {
	HighSimilarity      int `yaml:"high_similarity"`
	HighConfidence      int `yaml:"high_confidence"`
	HighInsightPriority int `yaml:"high_insight_priority"`
}

func DefaultPolicy() Policy {
	return Policy{
		Pattern: PatternPolicy{
			TTL:               time.Hour,
			Lookback:          30 * 24 * time.Hour,
			TopHours:          5,
			ContributeWeight:  5,
			CollaborateWeight: 3,
			SweepConcurrency:  4,
		},
		Recommender: RecommenderPolicy{
			TopicWeight:         10,
			MinSharedTopics:     3,
			SkillWeight:         15,
			MinSharedSkills:     2,
			ComplementaryWeight: 12,
			MinComplementary:    2,
			DepartmentBonus:     10,
			MinScore:            30,
			MaxResults:          10,
			CacheTTL:            time.Hour,
			Concurrency:         8,
		},
		SimilarWork: SimilarWorkPolicy{
			KnowledgeItemThreshold: 70,
			ProjectThreshold:       60,
			MaxResults:             5,
			CandidateLimit:         1000,
		},
		Insights: InsightPolicy{
			TTL:                   time.Hour,
			SharedTeamBase:        80,
			SharedTeamStep:        2,
			DependencyBase:        75,
			DependencyStep:        3,
			KnowledgeTransferBase: 70,
			OpportunityPerTopic:   5,
			MaxOpportunity:        20,
			TimelineRiskPriority:  90,
			RecentWindow:          7 * 24 * time.Hour,
			MinOlderEvents:        10,
			SlowdownRatio:         0.3,
		},
		Notifications: NotificationPolicy{
			HighSimilarity:      80,
			HighConfidence:      80,
			HighInsightPriority: 85,
		},
	}
}

// LoadPolicy returns DefaultPolicy overlaid with the YAML file at path. An
// empty path yields the defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	path = strings.TrimSpace(path)
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(raw)
}

func ParsePolicy(raw []byte) (Policy, error) {
	p := DefaultPolicy()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return DefaultPolicy(), fmt.Errorf("parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return DefaultPolicy(), err
	}
	return p, nil
}

func (p Policy) Validate() error {
	switch {
	case p.Pattern.TTL <= 0:
		return fmt.Errorf("policy: pattern.ttl must be positive")
	case p.Pattern.Lookback <= 0:
		return fmt.Errorf("policy: pattern.lookback must be positive")
	case p.Pattern.TopHours <= 0 || p.Pattern.TopHours > 24:
		return fmt.Errorf("policy: pattern.top_hours must be in 1..24")
	case p.Recommender.MaxResults <= 0:
		return fmt.Errorf("policy: recommender.max_results must be positive")
	case p.Recommender.CacheTTL <= 0:
		return fmt.Errorf("policy: recommender.cache_ttl must be positive")
	case p.SimilarWork.MaxResults <= 0:
		return fmt.Errorf("policy: similar_work.max_results must be positive")
	case p.Insights.TTL <= 0:
		return fmt.Errorf("policy: insights.ttl must be positive")
	case p.Insights.RecentWindow <= 0 || p.Insights.RecentWindow >= p.Pattern.Lookback:
		return fmt.Errorf("policy: insights.recent_window must be positive and shorter than pattern.lookback")
	case p.Insights.SlowdownRatio <= 0 || p.Insights.SlowdownRatio > 1:
		return fmt.Errorf("policy: insights.slowdown_ratio must be in (0,1]")
	}
	return nil
}
