// Package scanner drives the traversal-and-matching pipeline.
//
// One Scanner runs one scan: it walks the image's tree, filters entries
// by extension, decodes candidates, scores each against every loaded
// reference, aggregates matches, and optionally exports them. Per-entry
// failures are logged and skipped so a single corrupt file never aborts
// a multi-hour scan.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/google/uuid"

	"pixhunt/internal/diskimage"
	"pixhunt/internal/export"
	"pixhunt/internal/imaging"
	"pixhunt/internal/refset"
	"pixhunt/internal/results"
	"pixhunt/internal/walk"
)

// Options configures a Scanner.
type Options struct {
	// Refs is the loaded reference set. Required.
	Refs *refset.Set
	// Threshold is the strict upper bound for a match's score.
	Threshold float64
	// Exporter, when set, receives every matched candidate image.
	Exporter *export.Exporter
	// ProgressEvery logs a progress line every N visited entries.
	// Zero disables progress logging.
	ProgressEvery int
	// Logger receives pipeline and soft-error logs. Defaults to a
	// no-op logger.
	Logger *slog.Logger
}

// Stats summarizes one scan.
type Stats struct {
	// EntriesVisited counts every leaf entry the walker yielded.
	EntriesVisited int
	// CandidatesScored counts entries that decoded successfully and
	// were compared against the reference set.
	CandidatesScored int
	// SoftErrors counts skipped-and-logged per-entry failures.
	SoftErrors int
}

// Scanner runs the matching pipeline against one filesystem tree.
type Scanner struct {
	refs          *refset.Set
	threshold     float64
	exporter      *export.Exporter
	progressEvery int
	logger        *slog.Logger
	runID         string
}

// New validates options and constructs a Scanner with a fresh run ID.
func New(opts Options) (*Scanner, error) {
	if opts.Refs == nil || opts.Refs.Len() == 0 {
		return nil, errors.New("scanner requires a non-empty reference set")
	}
	if opts.Threshold < 0 {
		return nil, fmt.Errorf("threshold must not be negative, got %v", opts.Threshold)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	runID := uuid.NewString()
	return &Scanner{
		refs:          opts.Refs,
		threshold:     opts.Threshold,
		exporter:      opts.Exporter,
		progressEvery: opts.ProgressEvery,
		logger:        logger.With(slog.String("run_id", runID)),
		runID:         runID,
	}, nil
}

// RunID returns the scan's unique identifier.
func (s *Scanner) RunID() string {
	return s.runID
}

// Scan walks the tree rooted at root and returns the accumulated result
// set. On cancellation the error is ctx.Err() and the returned set
// holds everything aggregated up to that point; it remains valid and
// reportable.
func (s *Scanner) Scan(ctx context.Context, root diskimage.Entry) (*results.Set, Stats, error) {
	set := results.New(s.refs.IDs(), s.threshold)
	stats := Stats{}

	s.logger.Info("scan starting",
		slog.Int("references", s.refs.Len()),
		slog.Float64("threshold", s.threshold))

	onDirError := func(entry diskimage.Entry, err error) {
		stats.SoftErrors++
		s.logger.Warn("skipping unreadable directory",
			slog.String("path", entry.Path()),
			slog.Any("error", err))
	}

	err := walk.Leaves(ctx, root, onDirError, func(entry diskimage.Entry) error {
		stats.EntriesVisited++
		if s.progressEvery > 0 && stats.EntriesVisited%s.progressEvery == 0 {
			s.logger.Info("scan progress",
				slog.Int("entries", stats.EntriesVisited),
				slog.Int("matches", set.Total()))
		}
		if !imaging.IsImageName(entry.Name()) {
			return nil
		}
		s.scoreCandidate(entry, set, &stats)
		return nil
	})

	s.logger.Info("scan finished",
		slog.Int("entries", stats.EntriesVisited),
		slog.Int("candidates", stats.CandidatesScored),
		slog.Int("matches", set.Total()),
		slog.Int("soft_errors", stats.SoftErrors))

	return set, stats, err
}

// scoreCandidate decodes one candidate and compares it against every
// reference. All failures here are soft: logged, counted, skipped.
func (s *Scanner) scoreCandidate(entry diskimage.Entry, set *results.Set, stats *Stats) {
	img, err := decodeEntry(entry)
	if err != nil {
		stats.SoftErrors++
		s.logger.Warn("skipping undecodable candidate",
			slog.String("path", entry.Path()),
			slog.Any("error", err))
		return
	}
	stats.CandidatesScored++

	matched := false
	for _, ref := range s.refs.References() {
		score, err := imaging.Diff(img, ref.Image)
		if err != nil {
			if errors.Is(err, imaging.ErrSizeMismatch) {
				// Differently-sized images are simply not similar.
				s.logger.Debug("dimension mismatch",
					slog.String("path", entry.Path()),
					slog.String("reference", ref.ID))
				continue
			}
			stats.SoftErrors++
			s.logger.Warn("comparison failed",
				slog.String("path", entry.Path()),
				slog.String("reference", ref.ID),
				slog.Any("error", err))
			continue
		}

		accepted, err := set.Record(ref.ID, entry.Path(), score)
		if err != nil {
			s.logger.Error("record match", slog.Any("error", err))
			continue
		}
		if accepted {
			matched = true
			s.logger.Info("similar image identified",
				slog.String("path", entry.Path()),
				slog.String("reference", ref.ID),
				slog.Float64("score", score))
		}
	}

	if matched && s.exporter != nil {
		if err := s.exporter.Save(img, entry.Path()); err != nil {
			stats.SoftErrors++
			s.logger.Warn("export failed",
				slog.String("path", entry.Path()),
				slog.Any("error", err))
		}
	}
}

func decodeEntry(entry diskimage.Entry) (image.Image, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return imaging.Decode(rc)
}
