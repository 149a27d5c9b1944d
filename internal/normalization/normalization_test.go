package normalization

import (
	"reflect"
	"testing"
)

func TestKeys(t *testing.T) {
	got := Keys([]string{" React", "react", "", "Go ", "  "})
	want := []string{"go", "react"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys: want=%v got=%v", want, got)
	}
	if Keys(nil) != nil {
		t.Fatalf("Keys(nil) should be nil")
	}
}

func TestTitle(t *testing.T) {
	if got := Title("  React   Performance\tTips "); got != "React Performance Tips" {
		t.Fatalf("Title: got %q", got)
	}
}
