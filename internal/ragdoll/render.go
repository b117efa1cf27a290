package ragdoll

import (
	"fmt"

	"ragdoll-renderer/internal/logging"
	"ragdoll-renderer/internal/render"
)

// SetTexture assigns the texture drawn by Render. It may still be loading.
func (r *Ragdoll) SetTexture(tex render.Texture) { r.texture = tex }

// Texture returns the assigned texture, or nil.
func (r *Ragdoll) Texture() render.Texture { return r.texture }

// Render uploads the current arrays to b and draws the mesh with the
// whole-mesh transform t. Without a ready texture nothing is drawn and
// ErrNoTexture is returned.
func (r *Ragdoll) Render(b render.Backend, t render.Transform) error {
	if r.texture == nil || !r.texture.Ready() {
		logging.Warnf("ragdoll: no texture, skipping render")
		return ErrNoTexture
	}

	b.UploadPositions(r.positions)
	b.UploadTexCoords(r.texcoords)
	b.UploadIndices(r.indices)
	b.SetTransform(t.Matrix())
	b.BindTexture(r.texture.Handle())

	if err := b.DrawIndexedTriangles(len(r.indices)); err != nil {
		return fmt.Errorf("ragdoll: draw: %w", err)
	}
	return nil
}
