package main

import (
	"bytes"
	"strings"
	"testing"

	"pixhunt/internal/results"
)

func TestWriteReportNoMatches(t *testing.T) {
	set := results.New([]string{"ref1.png", "ref2.png"}, 10)
	var buf bytes.Buffer
	writeReport(&buf, set)

	out := buf.String()
	if !strings.Contains(out, "No similar images identified") {
		t.Fatalf("missing no-matches notice: %q", out)
	}
	if strings.Contains(out, "Final report") {
		t.Fatalf("empty result should not print a report header: %q", out)
	}
}

func TestWriteReportGroupsByReference(t *testing.T) {
	set := results.New([]string{"refA.png", "refB.png", "refC.png"}, 10)
	record(t, set, "refA.png", "/pics/a.jpg", 0)
	record(t, set, "refA.png", "/pics/b.jpg", 4.25)
	record(t, set, "refB.png", "/pics/a.jpg", 7)

	var buf bytes.Buffer
	writeReport(&buf, set)
	out := buf.String()

	if !strings.Contains(out, "Final report:") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, "For reference image refA.png:") {
		t.Fatalf("missing refA group: %q", out)
	}
	if !strings.Contains(out, "For reference image refB.png:") {
		t.Fatalf("missing refB group: %q", out)
	}
	// References without matches are omitted from the report body.
	if strings.Contains(out, "refC.png") {
		t.Fatalf("matchless reference should not appear: %q", out)
	}
	if !strings.Contains(out, "/pics/a.jpg") || !strings.Contains(out, "difference: 4.25") {
		t.Fatalf("match lines incomplete: %q", out)
	}
	// Discovery order within a group.
	if strings.Index(out, "/pics/a.jpg") > strings.Index(out, "/pics/b.jpg") {
		t.Fatalf("match order lost: %q", out)
	}
}

func TestRenderMatchTable(t *testing.T) {
	set := results.New([]string{"ref.png"}, 10)
	record(t, set, "ref.png", "/found/hit.png", 1.5)

	rendered := renderMatchTable(set)
	for _, want := range []string{"Reference", "Candidate", "Difference", "/found/hit.png", "1.5"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("table missing %q:\n%s", want, rendered)
		}
	}
}

func TestFormatScore(t *testing.T) {
	cases := map[float64]string{
		0:      "0",
		4.25:   "4.25",
		0.5:    "0.5",
		10:     "10",
		7.0625: "7.0625",
	}
	for score, want := range cases {
		if got := formatScore(score); got != want {
			t.Errorf("formatScore(%v) = %q, want %q", score, got, want)
		}
	}
}

func record(t *testing.T, set *results.Set, ref, path string, score float64) {
	t.Helper()
	accepted, err := set.Record(ref, path, score)
	if err != nil {
		t.Fatal(err)
	}
	if !accepted {
		t.Fatalf("expected %s/%s to be accepted", ref, path)
	}
}
