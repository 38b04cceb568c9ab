package diskimage

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/diskfs/go-diskfs/filesystem"
)

// fsEntry adapts a go-diskfs filesystem node to the Entry interface.
type fsEntry struct {
	fsys filesystem.FileSystem
	path string
	name string
	dir  bool
}

func (e *fsEntry) Name() string { return e.name }
func (e *fsEntry) Path() string { return e.path }
func (e *fsEntry) IsDir() bool  { return e.dir }

func (e *fsEntry) Children() ([]Entry, error) {
	if !e.dir {
		return nil, fmt.Errorf("%s is not a directory", e.path)
	}
	infos, err := e.fsys.ReadDir(e.path)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", e.path, err)
	}
	children := make([]Entry, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if name == "." || name == ".." {
			continue
		}
		children = append(children, &fsEntry{
			fsys: e.fsys,
			path: path.Join(e.path, name),
			name: name,
			dir:  info.IsDir(),
		})
	}
	return children, nil
}

func (e *fsEntry) Open() (io.ReadCloser, error) {
	if e.dir {
		return nil, fmt.Errorf("%s is a directory", e.path)
	}
	file, err := e.fsys.OpenFile(e.path, os.O_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", e.path, err)
	}
	return &entryReader{r: file}, nil
}

// entryReader normalizes the provider's file handle to io.ReadCloser.
// Not every go-diskfs filesystem hands back a closer.
type entryReader struct {
	r io.Reader
}

func (er *entryReader) Read(p []byte) (int, error) {
	return er.r.Read(p)
}

func (er *entryReader) Close() error {
	if closer, ok := er.r.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
