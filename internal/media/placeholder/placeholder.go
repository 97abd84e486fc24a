// Package placeholder decodes an item's stored blurhash descriptor into a
// tiny PNG clients can show while the real media loads.
package placeholder

import (
	"bytes"
	"image"
	"image/png"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"

	domainerrors "github.com/PrivateGER/hydrus-nextbooru-sub001/internal/errors"
)

// Blurhash carries no real detail, so the hash is decoded at a small base
// size and upscaled; decoding directly at large sizes is pure waste.
const (
	decodeBase  = 32
	DefaultSize = 64
	MaxSize     = 256
)

// Render decodes a blurhash to a PNG of the requested dimensions.
// Dimensions are clamped to [1, MaxSize]; zero values take DefaultSize.
func Render(hash string, width, height int) ([]byte, error) {
	if hash == "" {
		return nil, domainerrors.Validation("empty blurhash")
	}
	width = clampSize(width)
	height = clampSize(height)

	dw, dh := decodeDims(width, height)
	small, err := blurhash.Decode(hash, dw, dh, 1)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid blurhash")
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(img, img.Bounds(), small, small.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "encode placeholder")
	}
	return buf.Bytes(), nil
}

func clampSize(v int) int {
	switch {
	case v <= 0:
		return DefaultSize
	case v > MaxSize:
		return MaxSize
	}
	return v
}

// decodeDims picks the decode size: the longest side at decodeBase, the
// other scaled to preserve the requested aspect ratio.
func decodeDims(width, height int) (int, int) {
	if width >= height {
		h := (height * decodeBase) / width
		if h < 1 {
			h = 1
		}
		return decodeBase, h
	}
	w := (width * decodeBase) / height
	if w < 1 {
		w = 1
	}
	return w, decodeBase
}
