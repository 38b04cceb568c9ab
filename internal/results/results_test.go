package results

import (
	"testing"
)

func TestRecordStrictThreshold(t *testing.T) {
	set := New([]string{"ref1"}, 10)

	accepted, err := set.Record("ref1", "/a.jpg", 9.999)
	if err != nil || !accepted {
		t.Fatalf("score below threshold rejected: accepted=%v err=%v", accepted, err)
	}
	accepted, err = set.Record("ref1", "/b.jpg", 10)
	if err != nil {
		t.Fatal(err)
	}
	if accepted {
		t.Fatal("score exactly equal to threshold must not match")
	}
	accepted, err = set.Record("ref1", "/c.jpg", 10.001)
	if err != nil {
		t.Fatal(err)
	}
	if accepted {
		t.Fatal("score above threshold must not match")
	}

	if got := len(set.Matches("ref1")); got != 1 {
		t.Fatalf("got %d matches, want 1", got)
	}
}

func TestRecordUnknownReference(t *testing.T) {
	set := New([]string{"ref1"}, 10)
	if _, err := set.Record("ref2", "/a.jpg", 0); err == nil {
		t.Fatal("expected error for unknown reference")
	}
}

func TestEmptyReferencesStillListed(t *testing.T) {
	set := New([]string{"ref1", "ref2", "ref3"}, 10)
	if _, err := set.Record("ref2", "/hit.png", 1); err != nil {
		t.Fatal(err)
	}

	ids := set.ReferenceIDs()
	if len(ids) != 3 {
		t.Fatalf("got %d reference IDs, want 3", len(ids))
	}
	for i, want := range []string{"ref1", "ref2", "ref3"} {
		if ids[i] != want {
			t.Fatalf("ids = %v, want load order preserved", ids)
		}
	}
	if set.Matches("ref1") != nil {
		t.Fatal("ref1 should have no matches")
	}
	if len(set.Matches("ref2")) != 1 {
		t.Fatal("ref2 should have one match")
	}
}

func TestOrderPreservedPerReference(t *testing.T) {
	set := New([]string{"ref"}, 100)
	paths := []string{"/z.jpg", "/a.jpg", "/m.jpg"}
	for i, p := range paths {
		if _, err := set.Record("ref", p, float64(i)); err != nil {
			t.Fatal(err)
		}
	}

	matches := set.Matches("ref")
	for i, p := range paths {
		if matches[i].Path != p {
			t.Fatalf("match order %v, want insertion order %v", matches, paths)
		}
	}
}

func TestSameCandidateInTwoReferences(t *testing.T) {
	set := New([]string{"ref1", "ref2"}, 10)
	if _, err := set.Record("ref1", "/dup.png", 3); err != nil {
		t.Fatal(err)
	}
	if _, err := set.Record("ref2", "/dup.png", 7); err != nil {
		t.Fatal(err)
	}

	if set.Total() != 2 {
		t.Fatalf("total = %d, want 2 independent records", set.Total())
	}
	if set.Matches("ref1")[0].Score != 3 || set.Matches("ref2")[0].Score != 7 {
		t.Fatal("scores must stay attached to their reference")
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	scores := []float64{0, 2.5, 5, 9.99, 10, 15, 30}

	matchesAt := func(threshold float64) map[string]bool {
		set := New([]string{"ref"}, threshold)
		out := make(map[string]bool)
		for i, score := range scores {
			path := string(rune('a'+i)) + ".png"
			accepted, err := set.Record("ref", path, score)
			if err != nil {
				t.Fatal(err)
			}
			if accepted {
				out[path] = true
			}
		}
		return out
	}

	loose := matchesAt(20)
	strict := matchesAt(5)
	for path := range strict {
		if !loose[path] {
			t.Fatalf("match %s at threshold 5 missing at threshold 20", path)
		}
	}
	if len(loose) <= len(strict) {
		t.Fatalf("expected looser threshold to accept more: %d vs %d", len(loose), len(strict))
	}
}

func TestHasMatches(t *testing.T) {
	set := New([]string{"ref"}, 10)
	if set.HasMatches() {
		t.Fatal("fresh set should have no matches")
	}
	if _, err := set.Record("ref", "/a.png", 0); err != nil {
		t.Fatal(err)
	}
	if !set.HasMatches() {
		t.Fatal("expected HasMatches after a record")
	}
}
