package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// Composite stacks PNG images vertically, left aligned, on a white canvas as
// wide as the widest image.
func Composite(images ...[]byte) ([]byte, error) {
	if len(images) == 0 {
		return nil, ErrNoData
	}
	decoded := make([]image.Image, 0, len(images))
	width, height := 0, 0
	for i, data := range images {
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: image %d: %v", ErrRenderFailure, i, err)
		}
		bounds := img.Bounds()
		if bounds.Dx() > width {
			width = bounds.Dx()
		}
		height += bounds.Dy()
		decoded = append(decoded, img)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	offset := 0
	for _, img := range decoded {
		bounds := img.Bounds()
		target := image.Rect(0, offset, bounds.Dx(), offset+bounds.Dy())
		draw.Draw(canvas, target, img, bounds.Min, draw.Over)
		offset += bounds.Dy()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	return buf.Bytes(), nil
}
