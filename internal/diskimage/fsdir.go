package diskimage

import (
	"fmt"
	"io"
	"io/fs"
	"path"
)

// FromFS adapts an io/fs tree to the Entry interface. Used to scan
// plain directories (already-mounted evidence) and by tests.
func FromFS(fsys fs.FS) Entry {
	return &dirEntry{fsys: fsys, fsPath: ".", name: "/", dir: true}
}

type dirEntry struct {
	fsys   fs.FS
	fsPath string
	name   string
	dir    bool
}

func (e *dirEntry) Name() string { return e.name }
func (e *dirEntry) IsDir() bool  { return e.dir }

func (e *dirEntry) Path() string {
	if e.fsPath == "." {
		return "/"
	}
	return "/" + e.fsPath
}

func (e *dirEntry) Children() ([]Entry, error) {
	if !e.dir {
		return nil, fmt.Errorf("%s is not a directory", e.Path())
	}
	entries, err := fs.ReadDir(e.fsys, e.fsPath)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", e.Path(), err)
	}
	children := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		children = append(children, &dirEntry{
			fsys:   e.fsys,
			fsPath: joinFSPath(e.fsPath, entry.Name()),
			name:   entry.Name(),
			dir:    entry.IsDir(),
		})
	}
	return children, nil
}

func (e *dirEntry) Open() (io.ReadCloser, error) {
	if e.dir {
		return nil, fmt.Errorf("%s is a directory", e.Path())
	}
	file, err := e.fsys.Open(e.fsPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", e.Path(), err)
	}
	return file, nil
}

func joinFSPath(parent, name string) string {
	if parent == "." {
		return name
	}
	return path.Join(parent, name)
}
