package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestMemoryStoreExpiry(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(clk.Now)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []string{"a", "b"}, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var got []string
	if err := s.Get(ctx, "k", &got); err != nil || len(got) != 2 {
		t.Fatalf("Get: got=%v err=%v", got, err)
	}

	clk.t = clk.t.Add(time.Hour)
	if err := s.Get(ctx, "k", &got); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected miss after ttl, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expired entry was not evicted")
	}
}

func TestRememberCachesSuccessOnly(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	s := NewMemoryStore(clk.Now)
	ctx := context.Background()

	calls := 0
	compute := func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}
	v, hit, err := Remember(ctx, s, "answer", time.Hour, compute)
	if err != nil || hit || v != 42 {
		t.Fatalf("first Remember: v=%d hit=%v err=%v", v, hit, err)
	}
	v, hit, err = Remember(ctx, s, "answer", time.Hour, compute)
	if err != nil || !hit || v != 42 || calls != 1 {
		t.Fatalf("second Remember: v=%d hit=%v err=%v calls=%d", v, hit, err, calls)
	}

	boom := errors.New("boom")
	_, _, err = Remember(ctx, s, "broken", time.Hour, func(ctx context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected computation error, got %v", err)
	}
	var dst int
	if err := s.Get(ctx, "broken", &dst); !errors.Is(err, ErrMiss) {
		t.Fatalf("failed computation must not be cached")
	}
}

func TestRememberWithoutStore(t *testing.T) {
	v, hit, err := Remember(context.Background(), nil, "k", time.Hour, func(ctx context.Context) (string, error) {
		return "x", nil
	})
	if err != nil || hit || v != "x" {
		t.Fatalf("Remember(nil store): v=%q hit=%v err=%v", v, hit, err)
	}
}

func TestFresh(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		last time.Time
		want bool
	}{
		{"zero", time.Time{}, false},
		{"just computed", now, true},
		{"59m old", now.Add(-59 * time.Minute), true},
		{"exactly ttl", now.Add(-time.Hour), false},
		{"future", now.Add(time.Minute), false},
	}
	for _, tc := range cases {
		if got := Fresh(tc.last, now, time.Hour); got != tc.want {
			t.Fatalf("%s: Fresh=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	if got := SuggestionsKey(id); got != "suggestions:11111111-1111-1111-1111-111111111111" {
		t.Fatalf("SuggestionsKey = %q", got)
	}
	if got := InsightsKey(id, ""); got != "insights:11111111-1111-1111-1111-111111111111:all" {
		t.Fatalf("InsightsKey = %q", got)
	}
}
