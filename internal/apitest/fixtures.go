// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apitest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// PNG returns a valid PNG of the given size.
func PNG(width, height int) []byte {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			canvas.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
