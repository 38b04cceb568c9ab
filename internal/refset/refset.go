// Package refset loads the reference images a scan searches for.
//
// References live on the local filesystem (not inside the evidence
// image). They are decoded once at startup and immutable afterwards, so
// the scorer can read them freely for the lifetime of the scan.
package refset

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"pixhunt/internal/imaging"
)

// ErrNoReferences reports that the reference folder yielded no usable
// images. A scan without references is meaningless, so this is fatal.
var ErrNoReferences = errors.New("no reference images loaded")

// Reference is one decoded reference image.
type Reference struct {
	// ID is the reference's stable identifier: the path it was loaded
	// from. Result sets and reports are keyed by it.
	ID    string
	Image image.Image
}

// Set is the immutable collection of loaded references, in load order.
type Set struct {
	refs []Reference
}

// Load reads every candidate image file directly inside dir and decodes
// it. Files that are not images by extension are ignored; files that
// fail to decode are logged and skipped. An unreadable directory or an
// empty result is an error.
func Load(dir string, logger *slog.Logger) (*Set, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read reference folder: %w", err)
	}

	var refs []Reference
	for _, entry := range entries {
		if entry.IsDir() || !imaging.IsImageName(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		img, err := decodeFile(path)
		if err != nil {
			logger.Warn("skipping unreadable reference image",
				slog.String("path", path),
				slog.Any("error", err))
			continue
		}
		refs = append(refs, Reference{ID: path, Image: img})
	}

	if len(refs) == 0 {
		return nil, fmt.Errorf("%w from %s", ErrNoReferences, dir)
	}
	return &Set{refs: refs}, nil
}

func decodeFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return imaging.Decode(file)
}

// References returns the loaded references in load order.
func (s *Set) References() []Reference {
	return s.refs
}

// IDs returns the reference identifiers in load order.
func (s *Set) IDs() []string {
	ids := make([]string, len(s.refs))
	for i, ref := range s.refs {
		ids[i] = ref.ID
	}
	return ids
}

// Len returns the number of loaded references.
func (s *Set) Len() int {
	return len(s.refs)
}
