package diskimage

import (
	"fmt"
	"io"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
)

// Entry is one node of a scanned filesystem tree. Implementations are
// read-only handles; the scanner never mutates the underlying image.
type Entry interface {
	// Name is the entry's base name.
	Name() string
	// Path is the entry's logical path inside the image, "/"-separated.
	Path() string
	// IsDir reports whether the entry is a directory.
	IsDir() bool
	// Children lists a directory's entries in the order the filesystem
	// reports them. Calling Children on a non-directory is an error.
	Children() ([]Entry, error)
	// Open returns the entry's content for reading.
	Open() (io.ReadCloser, error)
}

// Image is an opened disk image with a resolved filesystem.
type Image struct {
	path string
	disk *disk.Disk
	fsys filesystem.FileSystem
}

// Open opens the disk image at path read-only and resolves a filesystem
// from it: the whole-disk filesystem when the image is unpartitioned,
// otherwise the first partition that carries a recognized filesystem.
func Open(path string) (*Image, error) {
	d, err := diskfs.Open(path, diskfs.WithOpenMode(diskfs.ReadOnly))
	if err != nil {
		return nil, fmt.Errorf("open disk image %s: %w", path, err)
	}

	fsys, err := resolveFilesystem(d)
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("disk image %s: %w", path, err)
	}

	return &Image{path: path, disk: d, fsys: fsys}, nil
}

func resolveFilesystem(d *disk.Disk) (filesystem.FileSystem, error) {
	// Unpartitioned images carry the filesystem at partition 0.
	if fsys, err := d.GetFilesystem(0); err == nil {
		return fsys, nil
	}

	table, err := d.GetPartitionTable()
	if err != nil {
		return nil, fmt.Errorf("no whole-disk filesystem and no partition table: %w", err)
	}
	for i := range table.GetPartitions() {
		fsys, err := d.GetFilesystem(i + 1)
		if err == nil {
			return fsys, nil
		}
	}
	return nil, fmt.Errorf("no recognized filesystem in any of %d partitions", len(table.GetPartitions()))
}

// Path returns the path the image was opened from.
func (im *Image) Path() string {
	return im.path
}

// FilesystemType returns a short name for the resolved filesystem.
func (im *Image) FilesystemType() string {
	switch im.fsys.Type() {
	case filesystem.TypeFat32:
		return "fat32"
	case filesystem.TypeISO9660:
		return "iso9660"
	case filesystem.TypeSquashfs:
		return "squashfs"
	case filesystem.TypeExt4:
		return "ext4"
	default:
		return "unknown"
	}
}

// Root returns the filesystem's root directory entry.
func (im *Image) Root() Entry {
	return &fsEntry{fsys: im.fsys, path: "/", name: "/", dir: true}
}

// Close releases the underlying image handle.
func (im *Image) Close() error {
	return im.disk.Close()
}
