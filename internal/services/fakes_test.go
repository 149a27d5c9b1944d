package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/realtime"
)

type fakeFeed struct {
	mu      sync.Mutex
	records []*types.ActivityRecord
	err     error
}

func inWindow(at, since, until time.Time) bool {
	return !at.Before(since) && at.Before(until)
}

func (f *fakeFeed) ListByUser(_ dbctx.Context, userID uuid.UUID, since, until time.Time) ([]*types.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.ActivityRecord
	for _, r := range f.records {
		if r.UserID == userID && inWindow(r.OccurredAt, since, until) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFeed) ListBySubjects(_ dbctx.Context, subjectIDs []uuid.UUID, since, until time.Time) ([]*types.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	want := map[uuid.UUID]bool{}
	for _, id := range subjectIDs {
		want[id] = true
	}
	var out []*types.ActivityRecord
	for _, r := range f.records {
		if want[r.SubjectID] && inWindow(r.OccurredAt, since, until) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFeed) ActiveUserIDs(_ dbctx.Context, since time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	seen := map[uuid.UUID]struct{}{}
	for _, r := range f.records {
		if !r.OccurredAt.Before(since) {
			seen[r.UserID] = struct{}{}
		}
	}
	return sortedIDs(seen), nil
}

func (f *fakeFeed) add(userID, subjectID uuid.UUID, subjectKind types.WorkKind, kind types.ActivityKind, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, &types.ActivityRecord{
		ID:          uuid.New(),
		UserID:      userID,
		SubjectID:   subjectID,
		SubjectKind: subjectKind,
		Kind:        kind,
		OccurredAt:  at,
	})
}

type fakeActivityLog struct {
	rows []*types.ActivityRecord
}

func (f *fakeActivityLog) CreateIgnoreDuplicates(_ dbctx.Context, rows []*types.ActivityRecord) (int, error) {
	seen := map[string]bool{}
	for _, r := range f.rows {
		seen[r.UserID.String()+"|"+r.ClientEventID] = true
	}
	n := 0
	for _, r := range rows {
		key := r.UserID.String() + "|" + r.ClientEventID
		if seen[key] {
			continue
		}
		seen[key] = true
		f.rows = append(f.rows, r)
		n++
	}
	return n, nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*types.UserProfile
	failFor  map[uuid.UUID]bool
	panicFor map[uuid.UUID]bool
}

func newFakeProfiles(profiles ...*types.UserProfile) *fakeProfiles {
	f := &fakeProfiles{byID: map[uuid.UUID]*types.UserProfile{}, failFor: map[uuid.UUID]bool{}, panicFor: map[uuid.UUID]bool{}}
	for _, p := range profiles {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) GetByID(_ dbctx.Context, id uuid.UUID) (*types.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicFor[id] {
		panic("profile store exploded")
	}
	if f.failFor[id] {
		return nil, errStoreDown
	}
	return f.byID[id], nil
}

func (f *fakeProfiles) ListActive(_ dbctx.Context) ([]*types.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.UserProfile, 0, len(f.byID))
	for _, p := range f.byID {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

type fakeRels struct {
	rows []*types.Relationship
}

func (f *fakeRels) ListForUser(_ dbctx.Context, userID uuid.UUID, statuses ...types.RelationshipStatus) ([]*types.Relationship, error) {
	var out []*types.Relationship
	for _, r := range f.rows {
		if r.UserID != userID && r.TargetUserID != userID {
			continue
		}
		if len(statuses) > 0 {
			ok := false
			for _, s := range statuses {
				if r.Status == s {
					ok = true
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

type fakeItems struct {
	mu    sync.Mutex
	items []*types.WorkItem
	err   error
}

func (f *fakeItems) Create(_ dbctx.Context, row *types.WorkItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.items = append(f.items, row)
	return nil
}

func (f *fakeItems) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.WorkItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []*types.WorkItem
	for _, it := range f.items {
		if want[it.ID] {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItems) ListByKindExcludingOwner(_ dbctx.Context, kind types.WorkKind, ownerID uuid.UUID, limit int) ([]*types.WorkItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.WorkItem
	for _, it := range f.items {
		if it.Kind == kind && it.OwnerUserID != ownerID {
			out = append(out, it)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeItems) ListByKind(_ dbctx.Context, kind types.WorkKind) ([]*types.WorkItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.WorkItem
	for _, it := range f.items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out, nil
}

type fakePatternStore struct {
	mu      sync.Mutex
	byUser  map[uuid.UUID]*types.WorkPattern
	upserts int
}

func newFakePatternStore() *fakePatternStore {
	return &fakePatternStore{byUser: map[uuid.UUID]*types.WorkPattern{}}
}

func (f *fakePatternStore) GetByUserID(_ dbctx.Context, userID uuid.UUID) (*types.WorkPattern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byUser[userID], nil
}

func (f *fakePatternStore) Upsert(_ dbctx.Context, row *types.WorkPattern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUser[row.UserID] = row
	f.upserts++
	return nil
}

// stubPatterns serves precomputed patterns in place of the analyzer.
type stubPatterns struct {
	byUser map[uuid.UUID]*types.WorkPattern
	err    error
}

func (s *stubPatterns) Analyze(_ context.Context, userID uuid.UUID, _ time.Time) (*types.WorkPattern, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.byUser[userID]; ok {
		return p, nil
	}
	return &types.WorkPattern{UserID: userID}, nil
}

func (s *stubPatterns) AnalyzeAll(context.Context, time.Time) (SweepResult, error) {
	return SweepResult{}, nil
}

type fakeSuggestions struct {
	mu   sync.Mutex
	rows []*types.ConnectionSuggestion
	err  error
}

func (f *fakeSuggestions) CreateIfAbsent(_ dbctx.Context, row *types.ConnectionSuggestion) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, r := range f.rows {
		if r.SourceUserID == row.SourceUserID && r.TargetUserID == row.TargetUserID && !r.IsDismissed {
			return false, nil
		}
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	cp := *row
	f.rows = append(f.rows, &cp)
	return true, nil
}

func (f *fakeSuggestions) ListOpen(_ dbctx.Context, sourceUserID uuid.UUID, limit int) ([]*types.ConnectionSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.ConnectionSuggestion
	for _, r := range f.rows {
		if r.SourceUserID == sourceUserID && !r.IsDismissed {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSuggestions) set(sourceUserID, id uuid.UUID, fn func(*types.ConnectionSuggestion)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id && r.SourceUserID == sourceUserID && !r.IsDismissed {
			fn(r)
			return true
		}
	}
	return false
}

func (f *fakeSuggestions) SetDismissed(_ dbctx.Context, sourceUserID, id uuid.UUID) (bool, error) {
	return f.set(sourceUserID, id, func(r *types.ConnectionSuggestion) { r.IsDismissed = true }), nil
}

func (f *fakeSuggestions) SetAccepted(_ dbctx.Context, sourceUserID, id uuid.UUID) (bool, error) {
	return f.set(sourceUserID, id, func(r *types.ConnectionSuggestion) { r.IsAccepted = true }), nil
}

type fakeInsights struct {
	mu      sync.Mutex
	rows    []*types.Insight
	upserts int
}

func (f *fakeInsights) ListFresh(_ dbctx.Context, userID uuid.UUID, projectKey string, now time.Time) ([]*types.Insight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Insight
	for _, r := range f.rows {
		if r.UserID == userID && r.ProjectKey == projectKey && r.ExpiresAt.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeInsights) Upsert(_ dbctx.Context, rows []*types.Insight) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	f.rows = append(f.rows, rows...)
	return nil
}

type fakeGraph struct {
	shared map[uuid.UUID][]types.SharedDependency
	synced map[uuid.UUID][]*types.WorkDependency
}

func (g *fakeGraph) SharedWith(_ context.Context, projectID uuid.UUID) ([]types.SharedDependency, error) {
	return g.shared[projectID], nil
}

func (g *fakeGraph) SyncProject(_ context.Context, projectID uuid.UUID, deps []*types.WorkDependency) error {
	if g.synced == nil {
		g.synced = map[uuid.UUID][]*types.WorkDependency{}
	}
	g.synced[projectID] = deps
	return nil
}

type fakeDepWriter struct {
	rows []*types.WorkDependency
}

func (f *fakeDepWriter) Upsert(_ dbctx.Context, rows []*types.WorkDependency) error {
	f.rows = append(f.rows, rows...)
	return nil
}

type fakeNotifications struct {
	mu   sync.Mutex
	rows []*types.Notification
	// deleted keeps soft-deleted rows so their dedup key stays reserved.
	deleted []*types.Notification
}

func (f *fakeNotifications) CreateIfAbsent(_ dbctx.Context, row *types.Notification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range append(append([]*types.Notification{}, f.rows...), f.deleted...) {
		if r.UserID == row.UserID && r.DedupKey == row.DedupKey {
			return false, nil
		}
	}
	f.rows = append(f.rows, row)
	return true, nil
}

func (f *fakeNotifications) ListByUser(_ dbctx.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Notification
	for _, r := range f.rows {
		if r.UserID == userID && (!unreadOnly || !r.IsRead) {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotifications) CountUnread(_ dbctx.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if r.UserID == userID && !r.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) MarkRead(_ dbctx.Context, userID, id uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id && r.UserID == userID && !r.IsRead {
			r.IsRead = true
			r.ReadAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifications) MarkAllRead(_ dbctx.Context, userID uuid.UUID, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if r.UserID == userID && !r.IsRead {
			r.IsRead = true
			r.ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) Delete(_ dbctx.Context, userID, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID == id && r.UserID == userID {
			f.deleted = append(f.deleted, r)
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakePrefStore struct {
	byUser map[uuid.UUID]*types.NotificationPreferences
}

func (f *fakePrefStore) GetByUserID(_ dbctx.Context, userID uuid.UUID) (*types.NotificationPreferences, error) {
	return f.byUser[userID], nil
}

func (f *fakePrefStore) Upsert(_ dbctx.Context, row *types.NotificationPreferences) error {
	if f.byUser == nil {
		f.byUser = map[uuid.UUID]*types.NotificationPreferences{}
	}
	f.byUser[row.UserID] = row
	return nil
}

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) count(event realtime.SSEEvent) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, m := range e.msgs {
		if m.Event == event {
			n++
		}
	}
	return n
}

type recordingDispatcher struct {
	mu         sync.Mutex
	candidates []Candidate
}

func (d *recordingDispatcher) Dispatch(_ context.Context, c Candidate) (*types.Notification, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.candidates = append(d.candidates, c)
	return &types.Notification{ID: uuid.New(), UserID: c.UserID, Kind: c.Kind, Title: c.Title}, nil
}
