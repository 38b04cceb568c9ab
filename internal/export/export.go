// Package export copies matched candidate images out of the evidence
// image into a local review folder.
//
// Matched images are re-encoded from their decoded pixels in the format
// implied by the candidate's extension. Two candidates sharing a base
// filename overwrite each other (last write wins); that limitation is
// inherited from the tool this one replaces and kept for parity.
package export

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"

	"github.com/gofrs/flock"

	"pixhunt/internal/imaging"
)

// ErrLocked reports that another scan is already exporting into the
// requested directory.
var ErrLocked = errors.New("export directory is locked by another scan")

const lockFileName = ".pixhunt.lock"

// Exporter writes matched images into a single output directory. One
// exporter owns the directory for the lifetime of a scan.
type Exporter struct {
	dir  string
	lock *flock.Flock
}

// New prepares dir for export: creates it if absent and takes an
// exclusive lock so concurrent scans cannot interleave their output.
func New(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock export directory: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}

	return &Exporter{dir: dir, lock: lock}, nil
}

// Dir returns the export directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// Save re-encodes img under the export directory using candidatePath's
// base filename. An existing file with the same name is replaced.
func (e *Exporter) Save(img image.Image, candidatePath string) error {
	name := path.Base(candidatePath)
	dst := filepath.Join(e.dir, name)

	file, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if err := imaging.Encode(file, img, name); err != nil {
		_ = file.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("encode %s: %w", dst, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}

// Close releases the directory lock.
func (e *Exporter) Close() error {
	return e.lock.Unlock()
}
