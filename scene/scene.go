package scene

import (
	"render-pipeline/core"
	"render-pipeline/math"
)

// Drawable is GPU geometry that can issue its own draw call with whatever
// program and targets are currently bound.
type Drawable interface {
	Draw()
}

// MeshAndTransform pairs one shared mesh with the transforms of every placed
// instance of it.
type MeshAndTransform struct {
	Mesh       Drawable
	Transforms []core.Transform
}

// Meshes is a scene keyed by unique mesh name. Iteration order carries no
// meaning.
type Meshes map[string]*MeshAndTransform

// Add places one more instance of mesh under name.
func (m Meshes) Add(name string, mesh Drawable, t core.Transform) {
	entry, ok := m[name]
	if !ok {
		entry = &MeshAndTransform{Mesh: mesh}
		m[name] = entry
	}
	entry.Transforms = append(entry.Transforms, t)
}

// InstanceCount is the total number of transforms across all meshes.
func (m Meshes) InstanceCount() int {
	n := 0
	for _, entry := range m {
		n += len(entry.Transforms)
	}
	return n
}

// ForEachInstance calls fn with every instance's mesh and world matrix.
func (m Meshes) ForEachInstance(fn func(mesh Drawable, world math.Mat4)) {
	for _, entry := range m {
		for i := range entry.Transforms {
			fn(entry.Mesh, entry.Transforms[i].Final())
		}
	}
}
