package scene

import (
	"render-pipeline/core"
)

// Mesh holds CPU-side vertex/index data. GPU upload is managed by the
// renderer backend, which wraps the mesh in a Drawable.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32

	// LocalAABB is computed by CreateMeshFromData.
	LocalAABB AABB
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space AABB.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	if len(vertices) > 0 {
		box := AABB{Min: vertices[0].Position, Max: vertices[0].Position}
		for _, v := range vertices[1:] {
			box = box.Extend(v.Position)
		}
		m.LocalAABB = box
	}
	return m
}

// IndexCount is the number of indices drawn, or the vertex count for
// non-indexed meshes.
func (m *Mesh) IndexCount() int {
	if len(m.Indices) > 0 {
		return len(m.Indices)
	}
	return len(m.Vertices)
}
