package render

import "github.com/go-gl/mathgl/mgl32"

// Backend is the sink a mesh draws into. It owns whatever device resources it
// needs; callers keep the CPU-side arrays and hand them over every frame.
type Backend interface {
	// UploadPositions replaces the stride-2 position buffer.
	UploadPositions(positions []float32)
	// UploadTexCoords replaces the stride-2 texture coordinate buffer.
	UploadTexCoords(texcoords []float32)
	// UploadIndices replaces the triangle index buffer.
	UploadIndices(indices []uint16)
	// SetTransform sets the whole-mesh transform applied after skinning.
	SetTransform(m mgl32.Mat4)
	// BindTexture binds the opaque handle returned by a ready Texture.
	BindTexture(handle any)
	// DrawIndexedTriangles draws count indices from the index buffer as triangles.
	DrawIndexedTriangles(count int) error
}

// Texture is a texture that may still be loading.
type Texture interface {
	Ready() bool
	Handle() any
}
