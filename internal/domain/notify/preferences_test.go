package notify

import (
	"testing"

	"github.com/google/uuid"
)

func TestPreferencesAllows(t *testing.T) {
	p := DefaultPreferences(uuid.New())
	for _, k := range []Kind{KindSimilarWork, KindConnectionSuggestion, KindCollaborationOpportunity, KindExpertiseMatch} {
		if !p.Allows(k) {
			t.Fatalf("default prefs should allow %s", k)
		}
	}
	if p.Allows(Kind("unknown")) {
		t.Fatalf("unknown kinds must not be allowed")
	}
	var nilPrefs *Preferences
	if !nilPrefs.Allows(KindSimilarWork) {
		t.Fatalf("nil prefs should fall back to allow")
	}
}

func TestPatchApply(t *testing.T) {
	off := false
	base := DefaultPreferences(uuid.New())
	got := Patch{ConnectionSuggestions: &off}.Apply(base)
	if got.ConnectionSuggestions {
		t.Fatalf("patch not applied")
	}
	if !got.SimilarWork || !got.CollaborationOpportunities || !got.ExpertiseMatch {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if !base.ConnectionSuggestions {
		t.Fatalf("Apply mutated its input")
	}
	if !(Patch{}).Empty() {
		t.Fatalf("zero patch should be empty")
	}
}
