package tracker

import (
	"testing"
	"time"
)

func candidateURL(url string) ClassifiedVideo {
	return ClassifiedVideo{VideoSample: VideoSample{URL: url}}
}

func TestDedupFiltersKnownURLs(t *testing.T) {
	candidates := []ClassifiedVideo{
		candidateURL("https://www.youtube.com/watch?v=a"),
		candidateURL("https://www.youtube.com/watch?v=b"),
		candidateURL("https://www.youtube.com/watch?v=c"),
	}
	known := map[string]struct{}{
		"https://www.youtube.com/watch?v=b": {},
	}

	fresh, skipped := Dedup(candidates, known)

	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(fresh) != 2 {
		t.Fatalf("fresh = %d, want 2", len(fresh))
	}
	if fresh[0].URL != "https://www.youtube.com/watch?v=a" || fresh[1].URL != "https://www.youtube.com/watch?v=c" {
		t.Errorf("fresh order not preserved: %s, %s", fresh[0].URL, fresh[1].URL)
	}
}

func TestDedupEmptyKnownSetPassesAll(t *testing.T) {
	candidates := []ClassifiedVideo{candidateURL("u1"), candidateURL("u2")}

	fresh, skipped := Dedup(candidates, map[string]struct{}{})
	if skipped != 0 || len(fresh) != 2 {
		t.Errorf("Dedup() = %d fresh, %d skipped, want 2, 0", len(fresh), skipped)
	}
}

func TestDedupAllKnown(t *testing.T) {
	candidates := []ClassifiedVideo{candidateURL("u1"), candidateURL("u2")}
	known := map[string]struct{}{"u1": {}, "u2": {}}

	fresh, skipped := Dedup(candidates, known)
	if len(fresh) != 0 || skipped != 2 {
		t.Errorf("Dedup() = %d fresh, %d skipped, want 0, 2", len(fresh), skipped)
	}
}

func TestKnownURLs(t *testing.T) {
	records := []Record{
		{ID: "p1", URL: "u1", FoundAt: time.Now()},
		{ID: "p2", URL: ""},
		{ID: "p3", URL: "u3"},
	}

	known := KnownURLs(records)
	if len(known) != 2 {
		t.Fatalf("len(known) = %d, want 2 (empty URL skipped)", len(known))
	}
	if _, ok := known["u1"]; !ok {
		t.Error("u1 missing from known set")
	}
	if _, ok := known["u3"]; !ok {
		t.Error("u3 missing from known set")
	}
}
