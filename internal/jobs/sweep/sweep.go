// Package sweep runs the periodic "analyze all active users" batch.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/domain/analytics"
	"github.com/yungbote/workpulse-backend/internal/observability"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/services"
)

type Config struct {
	Interval time.Duration
	// Suggest runs the recommender for every analyzed user.
	Suggest bool
	// NotifyTop is how many of each user's suggestions become notifications.
	NotifyTop   int
	Concurrency int
}

type Result struct {
	services.SweepResult
	Suggested int `json:"suggested"`
	Notified  int `json:"notified"`
}

type Sweeper struct {
	log         *logger.Logger
	cfg         Config
	patterns    services.WorkPatternService
	connections services.ConnectionService
	dispatcher  services.Dispatcher
	now         func() time.Time

	mu      sync.Mutex
	running bool
}

func New(
	baseLog *logger.Logger,
	cfg Config,
	patterns services.WorkPatternService,
	connections services.ConnectionService,
	dispatcher services.Dispatcher,
) *Sweeper {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Sweeper{
		log:         baseLog.With("component", "PatternSweeper"),
		cfg:         cfg,
		patterns:    patterns,
		connections: connections,
		dispatcher:  dispatcher,
		now:         time.Now,
	}
}

// Start runs the sweep loop in the background until ctx is cancelled. The
// returned channel is closed once the loop has exited.
func (s *Sweeper) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if s.cfg.Interval <= 0 {
		s.log.Info("Sweep disabled", "interval", s.cfg.Interval)
		close(done)
		return done
	}
	s.log.Info("Starting pattern sweep", "interval", s.cfg.Interval, "suggest", s.cfg.Suggest)
	go func() {
		defer close(done)
		s.runLoop(ctx)
	}()
	return done
}

func (s *Sweeper) runLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sweep loop stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Sweep panic", "panic", r)
		}
	}()
	res, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Warn("Sweep ended early", "error", err, "analyzed", res.Analyzed)
	}
}

// RunOnce performs one sweep. Overlapping calls are skipped.
func (s *Sweeper) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Debug("Sweep already running; skipping tick")
		return res, nil
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	now := s.now()
	sr, err := s.patterns.AnalyzeAll(ctx, now)
	res.SweepResult = sr
	if err != nil {
		observability.Current().ObserveSweep("aborted", sr.Analyzed, sr.Failed)
		return res, err
	}
	observability.Current().ObserveSweep("ok", sr.Analyzed, sr.Failed)
	if !s.cfg.Suggest || s.connections == nil {
		return res, nil
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)
	for _, userID := range sr.AnalyzedUsers {
		if ctx.Err() != nil {
			break
		}
		userID := userID
		g.Go(func() error {
			suggested, notified := s.suggestFor(ctx, userID, now)
			mu.Lock()
			res.Suggested += suggested
			res.Notified += notified
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	s.log.Info("Sweep finished",
		"users", res.Users,
		"analyzed", res.Analyzed,
		"failed", res.Failed,
		"suggested", res.Suggested,
		"notified", res.Notified,
	)
	return res, ctx.Err()
}

func (s *Sweeper) suggestFor(ctx context.Context, userID uuid.UUID, now time.Time) (int, int) {
	if ctx.Err() != nil {
		return 0, 0
	}
	suggestions, err := s.connections.Suggest(ctx, userID, now)
	if err != nil {
		s.log.Warn("Suggest failed; skipping user", "user_id", userID, "error", err)
		return 0, 0
	}
	if s.dispatcher == nil {
		return len(suggestions), 0
	}
	notified := 0
	for i, sg := range suggestions {
		if i >= s.cfg.NotifyTop {
			break
		}
		n, err := s.dispatcher.Dispatch(ctx, SuggestionCandidate(sg))
		if err != nil {
			s.log.Warn("Suggestion notification failed", "user_id", userID, "error", err)
			continue
		}
		if n != nil {
			notified++
		}
	}
	return len(suggestions), notified
}

// SuggestionCandidate turns a suggestion into a notification candidate.
// Complementary-skill suggestions are expertise matches.
func SuggestionCandidate(sg *types.ConnectionSuggestion) services.Candidate {
	kind := types.NotificationConnectionSuggestion
	title := "Someone you may want to connect with"
	if sg.SignalKind == analytics.SignalComplementary {
		kind = types.NotificationExpertiseMatch
		title = "Your expertise matches someone's work"
	}
	return services.Candidate{
		UserID:  sg.SourceUserID,
		Kind:    kind,
		Title:   title,
		Message: sg.Reason,
		Metadata: map[string]any{
			"suggestion_id":    sg.ID,
			"target_user_id":   sg.TargetUserID,
			"confidence":       sg.Confidence,
			"shared_interests": sg.SharedInterests,
		},
		ActionURL:   fmt.Sprintf("/people/%s", sg.TargetUserID),
		ActionLabel: "View profile",
		DedupKey:    fmt.Sprintf("connection:%s:%s", sg.SourceUserID, sg.TargetUserID),
		Signal:      services.Signal{Confidence: sg.Confidence},
	}
}
