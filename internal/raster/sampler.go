package raster

import (
	"image"
	"math"
)

// SampleTexture performs bilinear filtering with UV wrapping. v = 0 is the
// top row of the image. Accesses tex.Pix directly for performance.
func SampleTexture(tex *image.NRGBA, u, v float64) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	u = wrap01(u)
	v = wrap01(v)

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0 := min(int(fx), w-1)
	y0 := min(int(fy), h-1)
	x1 := (x0 + 1) % w
	y1 := (y0 + 1) % h
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	stride := tex.Stride
	pix := tex.Pix

	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	ch := func(k int) uint8 {
		f := float64(pix[i00+k])*w00 + float64(pix[i10+k])*w10 +
			float64(pix[i01+k])*w01 + float64(pix[i11+k])*w11
		return clamp255(f)
	}
	return ch(0), ch(1), ch(2), ch(3)
}

// wrap01 maps any coordinate into [0, 1] by repeating, keeping exactly 1 at 1.
// NaN and infinities sample at 0.
func wrap01(t float64) float64 {
	if t >= 0 && t <= 1 {
		return t
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	t -= math.Floor(t)
	if t >= 1 {
		return 0
	}
	return t
}
