package skin

import (
	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-renderer/internal/skeleton"
)

// VertexID identifies a skinned vertex inside its owning mesh.
type VertexID int

// Pose resolves a bone handle to its current world matrix.
type Pose interface {
	BoneWorld(id skeleton.BoneID) (mgl64.Mat3, bool)
}

// Vertex is a skinned vertex. Its rest position is never modified by
// skinning; only its slot in the shared position array is.
type Vertex struct {
	id       VertexID
	rest     mgl64.Vec2
	texcoord mgl64.Vec2
	offset   int
}

// NewVertex creates a vertex whose x/y live at positions[offset:offset+2].
func NewVertex(id VertexID, offset int) *Vertex {
	return &Vertex{id: id, offset: offset}
}

func (v *Vertex) ID() VertexID { return v.id }

// Offset returns the index of the vertex's x component in the backing arrays.
func (v *Vertex) Offset() int { return v.offset }

// SetOffset moves the vertex to a new slot after the backing arrays are compacted.
func (v *Vertex) SetOffset(offset int) { v.offset = offset }

// Rest returns the rest-pose position.
func (v *Vertex) Rest() mgl64.Vec2 { return v.rest }

// SetRest sets the rest-pose position.
func (v *Vertex) SetRest(p mgl64.Vec2) { v.rest = p }

// TexCoord returns the texture coordinate.
func (v *Vertex) TexCoord() mgl64.Vec2 { return v.texcoord }

// SetTexCoord sets the texture coordinate.
func (v *Vertex) SetTexCoord(uv mgl64.Vec2) { v.texcoord = uv }

// Blend returns Σ weight(b) · world(b) · rest over every bone with a non-zero
// weight in row. Bones the pose does not know are skipped. An all-zero row
// yields the origin.
func (v *Vertex) Blend(pose Pose, row []float64) mgl64.Vec2 {
	var out mgl64.Vec2
	for b, w := range row {
		if w == 0 {
			continue
		}
		world, ok := pose.BoneWorld(skeleton.BoneID(b))
		if !ok {
			continue
		}
		out = out.Add(skeleton.ApplyPoint(world, v.rest).Mul(w))
	}
	return out
}

// CalculatePosition blends the vertex and writes the result into its slot of
// positions in place.
func (v *Vertex) CalculatePosition(pose Pose, row []float64, positions []float32) {
	p := v.Blend(pose, row)
	positions[v.offset] = float32(p[0])
	positions[v.offset+1] = float32(p[1])
}
