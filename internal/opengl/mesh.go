package opengl

import (
	"errors"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"render-pipeline/core"
	"render-pipeline/scene"
)

var ErrEmptyMesh = errors.New("mesh has no vertices")

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	Name        string
	VAO         uint32
	VBO         uint32
	EBO         uint32
	IndexCount  int32
	VertexCount int32
	HasIndices  bool
}

var _ scene.Drawable = (*GPUMesh)(nil)

// UploadMesh copies the mesh into a VAO with position, normal, UV and
// colour at attribute locations 0 to 3.
func UploadMesh(mesh *scene.Mesh) (*GPUMesh, error) {
	if len(mesh.Vertices) == 0 {
		return nil, ErrEmptyMesh
	}
	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		Name:        mesh.Name,
		IndexCount:  int32(len(mesh.Indices)),
		VertexCount: int32(len(mesh.Vertices)),
		HasIndices:  len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(stride), gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	attribs := []struct {
		size   int32
		offset uintptr
	}{
		{3, unsafe.Offsetof(v.Position)},
		{3, unsafe.Offsetof(v.Normal)},
		{2, unsafe.Offsetof(v.UV)},
		{4, unsafe.Offsetof(v.Color)},
	}
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), a.size, gl.FLOAT, false, stride, gl.PtrOffset(int(a.offset)))
	}

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	return gpu, nil
}

// Draw issues one draw call with the currently bound program and targets.
func (m *GPUMesh) Draw() {
	gl.BindVertexArray(m.VAO)
	if m.HasIndices {
		gl.DrawElements(gl.TRIANGLES, m.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, m.VertexCount)
	}
	gl.BindVertexArray(0)
}

// Destroy frees GPU resources.
func (m *GPUMesh) Destroy() {
	if m.VAO != 0 {
		gl.DeleteVertexArrays(1, &m.VAO)
		m.VAO = 0
	}
	if m.VBO != 0 {
		gl.DeleteBuffers(1, &m.VBO)
		m.VBO = 0
	}
	if m.EBO != 0 {
		gl.DeleteBuffers(1, &m.EBO)
		m.EBO = 0
	}
}

// MeshCache uploads each mesh once and releases them together.
type MeshCache struct {
	meshes []*GPUMesh
}

// Upload satisfies scene.Uploader.
func (c *MeshCache) Upload(mesh *scene.Mesh) (scene.Drawable, error) {
	gpu, err := UploadMesh(mesh)
	if err != nil {
		return nil, err
	}
	c.meshes = append(c.meshes, gpu)
	return gpu, nil
}

func (c *MeshCache) Destroy() {
	for _, m := range c.meshes {
		m.Destroy()
	}
	c.meshes = nil
}
