package ragdoll

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"ragdoll-renderer/internal/skeleton"
	"ragdoll-renderer/internal/skin"
)

// AddVertex allocates a vertex and appends a zeroed slot to the position and
// texture coordinate arrays.
func (r *Ragdoll) AddVertex() (skin.VertexID, error) {
	id, err := r.vertexIDs.Allocate()
	if err != nil {
		return id, fmt.Errorf("ragdoll: add vertex: %w", err)
	}
	v := skin.NewVertex(id, len(r.positions))
	r.positions = append(r.positions, 0, 0)
	r.texcoords = append(r.texcoords, 0, 0)
	r.vertices = append(r.vertices, v)
	r.vertexTable[id] = len(r.vertices) - 1
	r.touch()
	return id, nil
}

// FindVertex returns the live vertex for id.
func (r *Ragdoll) FindVertex(id skin.VertexID) (*skin.Vertex, error) {
	if !r.vertexIDs.IsLive(id) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVertex, id)
	}
	return r.vertices[r.vertexTable[id]], nil
}

// SetVertexPosition sets a vertex's rest position. The position array shows
// the rest position until the next UpdateVertexPositions.
func (r *Ragdoll) SetVertexPosition(id skin.VertexID, pos mgl64.Vec2) error {
	v, err := r.FindVertex(id)
	if err != nil {
		return fmt.Errorf("ragdoll: set position: %w", err)
	}
	if !finite(pos) {
		return fmt.Errorf("ragdoll: set position %d %v: %w", id, pos, ErrNonFinite)
	}
	v.SetRest(pos)
	r.positions[v.Offset()] = float32(pos[0])
	r.positions[v.Offset()+1] = float32(pos[1])
	r.touch()
	return nil
}

// SetVertexTextureCoordinates sets a vertex's texture coordinate.
func (r *Ragdoll) SetVertexTextureCoordinates(id skin.VertexID, uv mgl64.Vec2) error {
	v, err := r.FindVertex(id)
	if err != nil {
		return fmt.Errorf("ragdoll: set texcoord: %w", err)
	}
	if !finite(uv) {
		return fmt.Errorf("ragdoll: set texcoord %d %v: %w", id, uv, ErrNonFinite)
	}
	v.SetTexCoord(uv)
	r.texcoords[v.Offset()] = float32(uv[0])
	r.texcoords[v.Offset()+1] = float32(uv[1])
	r.touch()
	return nil
}

func finite(p mgl64.Vec2) bool {
	for _, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// RemoveVertex releases a vertex, clears its weight row, drops every face
// using it and compacts the backing arrays. Later vertices move down one slot.
func (r *Ragdoll) RemoveVertex(id skin.VertexID) error {
	if _, err := r.FindVertex(id); err != nil {
		return fmt.Errorf("ragdoll: remove vertex: %w", err)
	}
	idx := r.vertexTable[id]

	r.vertices = append(r.vertices[:idx], r.vertices[idx+1:]...)
	r.positions = append(r.positions[:2*idx], r.positions[2*idx+2:]...)
	r.texcoords = append(r.texcoords[:2*idx], r.texcoords[2*idx+2:]...)
	for i := idx; i < len(r.vertices); i++ {
		v := r.vertices[i]
		v.SetOffset(2 * i)
		r.vertexTable[v.ID()] = i
	}
	r.vertexTable[id] = -1
	r.weights.ClearRow(int(id))

	kept := r.faces[:0]
	for _, f := range r.faces {
		if f[0] != id && f[1] != id && f[2] != id {
			kept = append(kept, f)
		}
	}
	r.faces = kept
	r.rebuildIndices()

	if err := r.vertexIDs.Release(id); err != nil {
		return fmt.Errorf("ragdoll: remove vertex %d: %w", id, err)
	}
	r.touch()
	return nil
}

// AddFace appends a triangle. All three handles must be live.
func (r *Ragdoll) AddFace(ids Face) error {
	for _, id := range ids {
		if !r.vertexIDs.IsLive(id) {
			return fmt.Errorf("ragdoll: add face %v: %w: %d", ids, ErrInvalidVertex, id)
		}
	}
	r.faces = append(r.faces, ids)
	for _, id := range ids {
		r.indices = append(r.indices, uint16(r.vertexTable[id]))
	}
	r.touch()
	return nil
}

func (r *Ragdoll) rebuildIndices() {
	r.indices = r.indices[:0]
	for _, f := range r.faces {
		for _, id := range f {
			r.indices = append(r.indices, uint16(r.vertexTable[id]))
		}
	}
}

// SetWeight binds a vertex to a spine with weight w in [0, 1]. Weights of a
// vertex are not normalized; callers keep each row summing to 1.
func (r *Ragdoll) SetWeight(vertexID skin.VertexID, spineID skeleton.BoneID, w float64) error {
	if !r.vertexIDs.IsLive(vertexID) {
		return fmt.Errorf("ragdoll: set weight: %w: %d", ErrInvalidVertex, vertexID)
	}
	if !r.spineIDs.IsLive(spineID) {
		return fmt.Errorf("ragdoll: set weight: %w: %d", ErrInvalidSpine, spineID)
	}
	if err := r.weights.Set(int(vertexID), int(spineID), w); err != nil {
		return fmt.Errorf("ragdoll: set weight: %w", err)
	}
	r.touch()
	return nil
}

// Weight returns the weight binding a vertex to a spine.
func (r *Ragdoll) Weight(vertexID skin.VertexID, spineID skeleton.BoneID) float64 {
	return r.weights.Get(int(vertexID), int(spineID))
}
