package raster

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"ragdoll-renderer/internal/render"
)

// fullScreen is one triangle covering the whole clip square.
var fullScreen = []float32{-1, -1, 3, -1, -1, 3}

func TestDrawFill(t *testing.T) {
	b := NewBackend(8, 8)
	b.SetFill(color.NRGBA{R: 255, A: 255})
	b.UploadPositions(fullScreen)
	b.UploadIndices([]uint16{0, 1, 2})
	if err := b.DrawIndexedTriangles(3); err != nil {
		t.Fatalf("draw: %v", err)
	}
	img := b.Image()
	for _, p := range []image.Point{{0, 0}, {7, 7}, {3, 5}} {
		if got := img.NRGBAAt(p.X, p.Y); got != (color.NRGBA{R: 255, A: 255}) {
			t.Fatalf("pixel %v = %v, want opaque red", p, got)
		}
	}
}

func TestDrawTextured(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			tex.SetNRGBA(x, y, color.NRGBA{G: 200, A: 255})
		}
	}

	b := NewBackend(4, 4)
	b.UploadPositions(fullScreen)
	b.UploadTexCoords([]float32{0, 0, 1, 0, 0, 1})
	b.UploadIndices([]uint16{0, 1, 2})
	b.BindTexture(tex)
	if err := b.DrawIndexedTriangles(3); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if got := b.Image().NRGBAAt(1, 1); got != (color.NRGBA{G: 200, A: 255}) {
		t.Fatalf("pixel = %v, want texture colour", got)
	}
}

func TestDrawTransformMovesMesh(t *testing.T) {
	// A small triangle in the lower-left quadrant, moved to the upper-right.
	b := NewBackend(10, 10)
	b.UploadPositions([]float32{-1, -1, 0, -1, -1, 0})
	b.UploadIndices([]uint16{0, 1, 2})
	rt := render.Transform{Translation: mgl32.Vec2{1, 1}, Scale: mgl32.Vec2{1, 1}}
	b.SetTransform(rt.Matrix())
	if err := b.DrawIndexedTriangles(3); err != nil {
		t.Fatalf("draw: %v", err)
	}
	img := b.Image()
	if img.NRGBAAt(6, 3).A == 0 {
		t.Fatalf("upper-right quadrant should be covered")
	}
	if img.NRGBAAt(1, 8).A != 0 {
		t.Fatalf("lower-left quadrant should be empty after the move")
	}
}

func TestDrawRejectsBadIndices(t *testing.T) {
	b := NewBackend(4, 4)
	b.UploadPositions(fullScreen)
	cases := []struct {
		name    string
		indices []uint16
		count   int
	}{
		{"too_many", []uint16{0, 1, 2}, 6},
		{"not_triangles", []uint16{0, 1, 2}, 2},
		{"vertex_range", []uint16{0, 1, 9}, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b.UploadIndices(c.indices)
			if err := b.DrawIndexedTriangles(c.count); !errors.Is(err, ErrIndexRange) {
				t.Fatalf("expected ErrIndexRange, got %v", err)
			}
		})
	}
}

func TestBlendHalfAlpha(t *testing.T) {
	fb := NewFrameBuffer(1, 1)
	fb.Clear(color.NRGBA{B: 255, A: 255})
	fb.blend(0, 255, 0, 0, 128)
	got := color.NRGBA{fb.Color[0], fb.Color[1], fb.Color[2], fb.Color[3]}
	if got.A != 255 || got.R < 120 || got.R > 135 || got.B < 120 || got.B > 135 {
		t.Fatalf("half red over blue = %v", got)
	}
}

func TestSampleTextureWraps(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	tex.SetNRGBA(0, 0, color.NRGBA{R: 9, G: 8, B: 7, A: 255})
	for _, uv := range [][2]float64{{0, 0}, {1.5, -0.25}, {-3, 2}} {
		r, g, b, a := SampleTexture(tex, uv[0], uv[1])
		if r != 9 || g != 8 || b != 7 || a != 255 {
			t.Fatalf("sample %v = %d,%d,%d,%d", uv, r, g, b, a)
		}
	}
}

func TestSampleTextureExtremeUV(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			tex.SetNRGBA(x, y, color.NRGBA{R: 50, A: 255})
		}
	}
	uvs := []float64{1e20, -1e20, 1e300, -1e-20, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, u := range uvs {
		for _, v := range uvs {
			if r, _, _, a := SampleTexture(tex, u, v); r != 50 || a != 255 {
				t.Fatalf("sample (%v, %v) = %d,%d", u, v, r, a)
			}
		}
	}
}

func TestWrap01(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0.25, 0.25},
		{1, 1},
		{1.25, 0.25},
		{-0.25, 0.75},
		{-3, 0},
		{1e20, 0},
		{math.NaN(), 0},
		{math.Inf(-1), 0},
	}
	for _, c := range cases {
		if got := wrap01(c.in); got != c.want {
			t.Fatalf("wrap01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestDrawHugeTexCoords(t *testing.T) {
	b := NewBackend(4, 4)
	b.UploadPositions(fullScreen)
	b.UploadTexCoords([]float32{1e20, 0, -1e20, 1, 0, float32(math.Inf(1))})
	b.UploadIndices([]uint16{0, 1, 2})
	b.BindTexture(image.NewNRGBA(image.Rect(0, 0, 3, 3)))
	if err := b.DrawIndexedTriangles(3); err != nil {
		t.Fatalf("draw: %v", err)
	}
}

func TestDrawClipsFarVertices(t *testing.T) {
	// One vertex far outside the viewport: the visible part is still drawn.
	b := NewBackend(8, 8)
	b.UploadPositions([]float32{-1, -1, 1e19, -1, -1, 1})
	b.UploadIndices([]uint16{0, 1, 2})
	if err := b.DrawIndexedTriangles(3); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if b.Image().NRGBAAt(0, 7).A == 0 {
		t.Fatalf("triangle with a far vertex should still cover the lower-left corner")
	}
}

func TestClamp255(t *testing.T) {
	cases := []struct {
		in   float64
		want uint8
	}{
		{-3, 0},
		{0, 0},
		{127.6, 128},
		{255, 255},
		{300, 255},
	}
	for _, c := range cases {
		if got := clamp255(c.in); got != c.want {
			t.Fatalf("clamp255(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
