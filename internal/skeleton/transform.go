package skeleton

import "github.com/go-gl/mathgl/mgl64"

// Transform is a 2D local transform relative to the parent bone.
// Rotation is in radians, counter-clockwise.
type Transform struct {
	Translation mgl64.Vec2
	Rotation    float64
	Scale       mgl64.Vec2
}

// Identity returns a transform with no translation, no rotation and unit scale.
// The zero Transform has zero scale and collapses everything to a point.
func Identity() Transform {
	return Transform{Scale: mgl64.Vec2{1, 1}}
}

// Uniform returns a transform with a single scale factor on both axes.
func Uniform(translation mgl64.Vec2, rotation, scale float64) Transform {
	return Transform{Translation: translation, Rotation: rotation, Scale: mgl64.Vec2{scale, scale}}
}

// Matrix returns translation · rotation · scale as a homogeneous 3×3 matrix,
// so a point is scaled first, then rotated, then translated.
func (t Transform) Matrix() mgl64.Mat3 {
	tr := mgl64.Translate2D(t.Translation[0], t.Translation[1])
	rot := mgl64.HomogRotate2D(t.Rotation)
	sc := mgl64.Scale2D(t.Scale[0], t.Scale[1])
	return tr.Mul3(rot).Mul3(sc)
}

// ApplyPoint transforms a 2D point by a homogeneous matrix.
func ApplyPoint(m mgl64.Mat3, p mgl64.Vec2) mgl64.Vec2 {
	return m.Mul3x1(mgl64.Vec3{p[0], p[1], 1}).Vec2()
}
