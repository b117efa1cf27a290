package raster

import (
	"image"
	"image/color"

	"ragdoll-renderer/internal/mathutil"
)

// FrameBuffer holds the rendering target as a flat slice for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8 // NRGBA interleaved, len = W*H*4
}

// NewFrameBuffer allocates a fully transparent buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, w*h*4),
	}
}

// Clear fills every pixel with c.
func (fb *FrameBuffer) Clear(c color.NRGBA) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = c.R
		fb.Color[i+1] = c.G
		fb.Color[i+2] = c.B
		fb.Color[i+3] = c.A
	}
}

// Image copies the buffer into a new NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}

// blend composites (r, g, b, a) over the pixel at byte offset i.
func (fb *FrameBuffer) blend(i int, r, g, b, a uint8) {
	if a == 255 {
		fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3] = r, g, b, 255
		return
	}
	sa := float64(a) / 255
	da := float64(fb.Color[i+3]) / 255 * (1 - sa)
	oa := sa + da
	if oa <= 0 {
		return
	}
	mix := func(s, d uint8) uint8 {
		return clamp255((float64(s)*sa + float64(d)*da) / oa)
	}
	fb.Color[i] = mix(r, fb.Color[i])
	fb.Color[i+1] = mix(g, fb.Color[i+1])
	fb.Color[i+2] = mix(b, fb.Color[i+2])
	fb.Color[i+3] = clamp255(oa * 255)
}

func clamp255(v float64) uint8 {
	return uint8(mathutil.Clamp(v, 0, 255) + 0.5)
}
