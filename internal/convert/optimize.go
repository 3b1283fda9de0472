// Package convert post-processes rendered slides for the kiosk dashboard.
package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/ericpauley/go-quantize/quantize"

	appLog "kioskcal/internal/log"
)

// Stats reports what Optimize did to one file.
type Stats struct {
	Path   string
	Before int64
	After  int64

	// Replaced is false when the optimized encoding was not smaller and
	// the rendered file was kept.
	Replaced bool
}

// Saved is the number of bytes removed; zero when the file was kept.
func (s Stats) Saved() int64 { return s.Before - s.After }

// Optimize rewrites the PNG at path for dashboard display:
//
//   - transparent pixels are flattened onto white,
//   - colours are reduced to an adaptive 256 entry median-cut palette,
//   - the result is encoded with the best PNG compression.
//
// The file is replaced atomically, and only when the result is smaller.
func Optimize(path string) (Stats, error) {
	st := Stats{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		return st, fmt.Errorf("convert: stat %s: %w", path, err)
	}
	st.Before = info.Size()

	src, err := imaging.Open(path)
	if err != nil {
		return st, fmt.Errorf("convert: open %s: %w", path, err)
	}

	out := Quantize(Flatten(src))

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, out); err != nil {
		return st, fmt.Errorf("convert: encode %s: %w", path, err)
	}

	if int64(buf.Len()) >= st.Before {
		st.After = st.Before
		appLog.Debug("optimized slide not smaller; kept as rendered",
			"path", path,
			"size", humanize.Bytes(uint64(st.Before)),
			"candidate", humanize.Bytes(uint64(buf.Len())),
		)
		return st, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".optimize-*.png")
	if err != nil {
		return st, fmt.Errorf("convert: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return st, fmt.Errorf("convert: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return st, fmt.Errorf("convert: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return st, fmt.Errorf("convert: replace %s: %w", path, err)
	}

	st.After = int64(buf.Len())
	st.Replaced = true
	appLog.Debug("optimized slide",
		"path", path,
		"before", humanize.Bytes(uint64(st.Before)),
		"after", humanize.Bytes(uint64(st.After)),
	)
	return st, nil
}

// OptimizeAll runs Optimize on every path. Failures are logged and the
// file is left as rendered; the returned stats cover the successes.
func OptimizeAll(paths []string) []Stats {
	out := make([]Stats, 0, len(paths))
	var saved int64
	for _, p := range paths {
		st, err := Optimize(p)
		if err != nil {
			appLog.Error("optimize failed; keeping original", err, "path", p)
			continue
		}
		saved += st.Saved()
		out = append(out, st)
	}
	if len(out) > 0 {
		appLog.Info("optimized slides",
			"count", len(out),
			"saved", humanize.Bytes(uint64(saved)),
		)
	}
	return out
}

// Flatten composites img over an opaque white background.
func Flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// Quantize maps img onto a median-cut palette of at most 256 colours built
// from its own pixels. Pixels snap to the nearest entry without dithering.
func Quantize(img image.Image) *image.Paletted {
	b := img.Bounds()
	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, 256), img)
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), p)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
