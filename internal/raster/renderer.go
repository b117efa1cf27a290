package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"ragdoll-renderer/internal/logging"
	"ragdoll-renderer/internal/render"
)

// ErrIndexRange is returned when a draw references data that was not uploaded.
var ErrIndexRange = errors.New("raster: index out of range")

// DefaultFill is used for triangles drawn without a texture.
var DefaultFill = color.NRGBA{R: 160, G: 160, B: 170, A: 255}

// Backend is a CPU render.Backend. Clip space [-1, 1]² (y up) maps onto the
// frame buffer, like a GL viewport covering the whole target.
type Backend struct {
	fb        *FrameBuffer
	positions []float32
	texcoords []float32
	indices   []uint16
	transform mgl32.Mat4
	tex       *image.NRGBA
	fill      color.NRGBA
}

var _ render.Backend = (*Backend)(nil)

// NewBackend allocates a width×height transparent target.
func NewBackend(width, height int) *Backend {
	return &Backend{
		fb:        NewFrameBuffer(width, height),
		transform: mgl32.Ident4(),
		fill:      DefaultFill,
	}
}

// Clear fills the target with c.
func (b *Backend) Clear(c color.NRGBA) { b.fb.Clear(c) }

// SetFill sets the colour used when no texture is bound.
func (b *Backend) SetFill(c color.NRGBA) { b.fill = c }

// Image returns a copy of the current target.
func (b *Backend) Image() *image.NRGBA { return b.fb.Image() }

func (b *Backend) UploadPositions(p []float32) { b.positions = append(b.positions[:0], p...) }

func (b *Backend) UploadTexCoords(p []float32) { b.texcoords = append(b.texcoords[:0], p...) }

func (b *Backend) UploadIndices(i []uint16) { b.indices = append(b.indices[:0], i...) }

func (b *Backend) SetTransform(m mgl32.Mat4) { b.transform = m }

// BindTexture accepts an *image.NRGBA. Any other handle unbinds the texture.
func (b *Backend) BindTexture(handle any) {
	tex, ok := handle.(*image.NRGBA)
	if !ok && handle != nil {
		logging.Warnf("raster: unsupported texture handle %T", handle)
	}
	b.tex = tex
}

// DrawIndexedTriangles rasterizes the first count indices.
func (b *Backend) DrawIndexedTriangles(count int) error {
	if count < 0 || count > len(b.indices) || count%3 != 0 {
		return fmt.Errorf("raster: draw %d of %d indices: %w", count, len(b.indices), ErrIndexRange)
	}
	n := len(b.positions) / 2
	for _, i := range b.indices[:count] {
		if int(i) >= n {
			return fmt.Errorf("raster: index %d with %d vertices: %w", i, n, ErrIndexRange)
		}
	}

	px := make([]float64, n)
	py := make([]float64, n)
	w, h := float64(b.fb.Width), float64(b.fb.Height)
	for v := 0; v < n; v++ {
		x, y := render.Apply(b.transform, b.positions[2*v], b.positions[2*v+1])
		px[v] = (float64(x) + 1) * 0.5 * w
		py[v] = (1 - float64(y)) * 0.5 * h
	}

	for t := 0; t < count; t += 3 {
		idx := [3]int{int(b.indices[t]), int(b.indices[t+1]), int(b.indices[t+2])}
		RasterizeTriangle(b.fb, px, py, b.texcoords, idx, b.tex, b.fill)
	}
	return nil
}
