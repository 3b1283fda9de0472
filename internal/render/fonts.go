// Package render draws layout results into PNG images with gg.
//
// Nothing in here decides where an event goes: positions, slots, colours
// and label text all come from internal/layout. This package only converts
// grid coordinates into pixels.
package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	regularOnce sync.Once
	regularFont *opentype.Font
	regularErr  error

	boldOnce sync.Once
	boldFont *opentype.Font
	boldErr  error
)

// RegularFace returns the Go Regular font at size points (72 DPI, so
// points equal pixels).
func RegularFace(size float64) (font.Face, error) {
	regularOnce.Do(func() {
		regularFont, regularErr = opentype.Parse(goregular.TTF)
	})
	if regularErr != nil {
		return nil, fmt.Errorf("render: parse regular font: %w", regularErr)
	}
	return newFace(regularFont, size)
}

// BoldFace returns the Go Bold font at size points.
func BoldFace(size float64) (font.Face, error) {
	boldOnce.Do(func() {
		boldFont, boldErr = opentype.Parse(gobold.TTF)
	})
	if boldErr != nil {
		return nil, fmt.Errorf("render: parse bold font: %w", boldErr)
	}
	return newFace(boldFont, size)
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
