package render

import "github.com/go-gl/mathgl/mgl32"

// Transform places the whole mesh, independent of any bone.
type Transform struct {
	Translation mgl32.Vec2
	Scale       mgl32.Vec2
	Rotation    float32 // radians
}

// DefaultTransform leaves the mesh where it is.
func DefaultTransform() Transform {
	return Transform{Scale: mgl32.Vec2{1, 1}}
}

// Matrix returns translation · rotation · scale.
func (t Transform) Matrix() mgl32.Mat4 {
	tr := mgl32.Translate3D(t.Translation[0], t.Translation[1], 0)
	rot := mgl32.HomogRotate3DZ(t.Rotation)
	sc := mgl32.Scale3D(t.Scale[0], t.Scale[1], 1)
	return tr.Mul4(rot).Mul4(sc)
}

// Apply transforms a 2D point by m.
func Apply(m mgl32.Mat4, x, y float32) (float32, float32) {
	p := m.Mul4x1(mgl32.Vec4{x, y, 0, 1})
	return p[0], p[1]
}
