package raster

import (
	"image"
	"image/color"
	"math"

	"ragdoll-renderer/internal/mathutil"
)

// RasterizeTriangle fills one triangle given in pixel coordinates, sampling
// tex at the interpolated uvs or using fill when tex is nil. Pixels are
// composited source-over. Degenerate and off-screen triangles draw nothing.
func RasterizeTriangle(
	fb *FrameBuffer,
	px, py []float64,
	uvs []float32,
	idx [3]int,
	tex *image.NRGBA,
	fill color.NRGBA,
) {
	x0, y0 := px[idx[0]], py[idx[0]]
	x1, y1 := px[idx[1]], py[idx[1]]
	x2, y2 := px[idx[2]], py[idx[2]]

	hasUV := tex != nil && len(uvs) >= 2*len(px)
	var u0, v0, u1, v1, u2, v2 float64
	if hasUV {
		u0, v0 = float64(uvs[2*idx[0]]), float64(uvs[2*idx[0]+1])
		u1, v1 = float64(uvs[2*idx[1]]), float64(uvs[2*idx[1]+1])
		u2, v2 = float64(uvs[2*idx[2]]), float64(uvs[2*idx[2]+1])
	}

	// Bounds stay float64 until clamped to the framebuffer.
	w, h := float64(fb.Width-1), float64(fb.Height-1)
	fMinX := math.Floor(math.Min(math.Min(x0, x1), x2))
	fMaxX := math.Ceil(math.Max(math.Max(x0, x1), x2))
	fMinY := math.Floor(math.Min(math.Min(y0, y1), y2))
	fMaxY := math.Ceil(math.Max(math.Max(y0, y1), y2))
	if !(fMinX <= w && fMaxX >= 0 && fMinY <= h && fMaxY >= 0) {
		return
	}
	minX := int(mathutil.Clamp(fMinX, 0, w))
	maxX := int(mathutil.Clamp(fMaxX, 0, w))
	minY := int(mathutil.Clamp(fMinY, 0, h))
	maxY := int(mathutil.Clamp(fMaxY, 0, h))

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-12 && det < 1e-12 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			r, g, b, a := fill.R, fill.G, fill.B, fill.A
			if hasUV {
				u := w0*u0 + w1*u1 + w2*u2
				v := w0*v0 + w1*v1 + w2*v2
				r, g, b, a = SampleTexture(tex, u, v)
			}
			if a == 0 {
				continue
			}
			fb.blend((rowOff+sx)*4, r, g, b, a)
		}
	}
}
