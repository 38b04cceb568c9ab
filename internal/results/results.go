// Package results accumulates the matches a scan produces.
//
// The result set is keyed by reference identifier and initialized with
// every loaded reference up front, so references with zero matches
// still appear in the final report. Appends are the only mutation and
// preserve traversal discovery order.
package results

import (
	"fmt"
)

// Match records a single candidate that scored under the threshold
// against one reference.
type Match struct {
	// Path is the candidate's logical path inside the scanned image.
	Path string
	// Score is the mean pixel difference; lower is more similar.
	Score float64
}

// Set maps reference identifiers to their matches. Not safe for
// concurrent use; the pipeline has a single writer.
type Set struct {
	threshold float64
	ids       []string
	byID      map[string][]Match
}

// New creates a result set covering exactly the given reference IDs.
// References cannot be added after construction.
func New(referenceIDs []string, threshold float64) *Set {
	ids := make([]string, len(referenceIDs))
	copy(ids, referenceIDs)
	byID := make(map[string][]Match, len(ids))
	for _, id := range ids {
		byID[id] = nil
	}
	return &Set{threshold: threshold, ids: ids, byID: byID}
}

// Threshold returns the configured similarity threshold.
func (s *Set) Threshold() float64 {
	return s.threshold
}

// Record appends a match for referenceID iff score is strictly below
// the threshold, and reports whether it was accepted. A score exactly
// equal to the threshold is not a match. Recording against an unknown
// reference is a programming error and is rejected.
func (s *Set) Record(referenceID, candidatePath string, score float64) (bool, error) {
	if _, ok := s.byID[referenceID]; !ok {
		return false, fmt.Errorf("unknown reference %q", referenceID)
	}
	if !(score < s.threshold) {
		return false, nil
	}
	s.byID[referenceID] = append(s.byID[referenceID], Match{Path: candidatePath, Score: score})
	return true, nil
}

// ReferenceIDs returns every reference identifier in load order,
// including references with no matches.
func (s *Set) ReferenceIDs() []string {
	ids := make([]string, len(s.ids))
	copy(ids, s.ids)
	return ids
}

// Matches returns the matches recorded for referenceID in discovery
// order. The returned slice must not be modified.
func (s *Set) Matches(referenceID string) []Match {
	return s.byID[referenceID]
}

// Total returns the number of matches across all references. The same
// candidate matching two references counts twice.
func (s *Set) Total() int {
	total := 0
	for _, matches := range s.byID {
		total += len(matches)
	}
	return total
}

// HasMatches reports whether any reference matched anything.
func (s *Set) HasMatches() bool {
	return s.Total() > 0
}
