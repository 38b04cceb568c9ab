package refset

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDecodesReferences(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "ref1.png"), color.NRGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(dir, "ref2.png"), color.NRGBA{G: 255, A: 255})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := Load(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 2 {
		t.Fatalf("loaded %d references, want 2", set.Len())
	}

	ids := set.IDs()
	if ids[0] != filepath.Join(dir, "ref1.png") || ids[1] != filepath.Join(dir, "ref2.png") {
		t.Fatalf("ids = %v", ids)
	}
	for _, ref := range set.References() {
		if ref.Image == nil {
			t.Fatalf("reference %s has no decoded image", ref.ID)
		}
	}
}

func TestLoadSkipsCorruptReference(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "good.png"), color.NRGBA{B: 255, A: 255})
	if err := os.WriteFile(filepath.Join(dir, "bad.jpg"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := Load(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 1 {
		t.Fatalf("loaded %d references, want 1 (corrupt one skipped)", set.Len())
	}
}

func TestLoadEmptyFolderFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.md"), []byte("no images here"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir, nil); !errors.Is(err, ErrNoReferences) {
		t.Fatalf("err = %v, want ErrNoReferences", err)
	}
}

func TestLoadMissingFolderFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent"), nil); err == nil {
		t.Fatal("expected error for missing reference folder")
	}
}

func TestLoadIgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "ref.png"), color.NRGBA{A: 255})
	sub := filepath.Join(dir, "nested.png")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	set, err := Load(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 1 {
		t.Fatalf("loaded %d references, want 1", set.Len())
	}
}
