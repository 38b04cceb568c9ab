// Package imaging holds the pixel-level half of the pipeline: deciding
// which entries look like images, decoding candidate bytes, scoring a
// candidate against a reference, and re-encoding matches for export.
//
// Supported formats are jpeg, png, gif, bmp, and tiff; importing their
// codec packages registers the decoders with image.Decode.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrSizeMismatch reports that two images cannot be compared because
// their dimensions differ. Differently-sized images are treated as not
// similar rather than resized or cropped.
var ErrSizeMismatch = errors.New("image dimensions differ")

// imageExtensions is the fixed set of filename extensions worth
// decoding. Matching is case-insensitive.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".gif":  {},
	".tiff": {},
}

// IsImageName reports whether a filename's extension marks it as a
// candidate image. Pure and I/O-free; cheap rejection before decode.
func IsImageName(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	_, ok := imageExtensions[ext]
	return ok
}

// Decode decodes image bytes from r in any registered format.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Diff scores the dissimilarity of two same-sized images as the mean
// absolute per-pixel difference over the R, G, and B channels after
// normalizing both to NRGBA. 0 means pixel-identical; 255 is the
// maximum. Images of differing dimensions return ErrSizeMismatch.
func Diff(a, b image.Image) (float64, error) {
	aw, ah := a.Bounds().Dx(), a.Bounds().Dy()
	bw, bh := b.Bounds().Dx(), b.Bounds().Dy()
	if aw != bw || ah != bh {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, aw, ah, bw, bh)
	}
	if aw == 0 || ah == 0 {
		return 0, nil
	}

	na := toNRGBA(a)
	nb := toNRGBA(b)

	var total uint64
	for y := 0; y < ah; y++ {
		rowA := na.Pix[y*na.Stride : y*na.Stride+aw*4]
		rowB := nb.Pix[y*nb.Stride : y*nb.Stride+aw*4]
		for x := 0; x < aw; x++ {
			off := x * 4
			total += absDiff(rowA[off], rowB[off])
			total += absDiff(rowA[off+1], rowB[off+1])
			total += absDiff(rowA[off+2], rowB[off+2])
		}
	}
	return float64(total) / float64(aw*ah*3), nil
}

func absDiff(a, b uint8) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == image.Pt(0, 0) {
		return n
	}
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}

// Encode writes img to w in the format implied by name's extension.
func Encode(w io.Writer, img image.Image, name string) error {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, nil)
	case ".png":
		return png.Encode(w, img)
	case ".gif":
		return gif.Encode(w, img, nil)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tiff":
		return tiff.Encode(w, img, nil)
	default:
		return fmt.Errorf("no encoder for %s", name)
	}
}
