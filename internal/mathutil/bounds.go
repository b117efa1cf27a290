package mathutil

import "math"

// Bounds2 is an axis-aligned 2D box.
type Bounds2 struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Empty reports whether no point has been added.
func (b Bounds2) Empty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Size returns the width and height.
func (b Bounds2) Size() (float64, float64) {
	if b.Empty() {
		return 0, 0
	}
	return b.MaxX - b.MinX, b.MaxY - b.MinY
}

// BoundsOf computes the bounding box of a flat stride-2 (x, y, x, y, ...) array.
func BoundsOf(flat []float32) Bounds2 {
	b := Bounds2{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for i := 0; i+1 < len(flat); i += 2 {
		x, y := float64(flat[i]), float64(flat[i+1])
		b.MinX = math.Min(b.MinX, x)
		b.MinY = math.Min(b.MinY, y)
		b.MaxX = math.Max(b.MaxX, x)
		b.MaxY = math.Max(b.MaxY, y)
	}
	return b
}
