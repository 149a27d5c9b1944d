package observability

import "testing"

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" authorization=Bearer abc , bad, x-team = core ,=v")
	if len(got) != 2 || got["authorization"] != "Bearer abc" || got["x-team"] != "core" {
		t.Fatalf("ParseHeaders: %v", got)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("empty input should yield nil")
	}
}

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{0: 0.1, -1: 0.1, 0.5: 0.5, 3: 1}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v): want=%v got=%v", in, want, got)
		}
	}
	if ParseRatio("0.25") != 0.25 || ParseRatio("nope") != 0 {
		t.Fatalf("ParseRatio")
	}
}
