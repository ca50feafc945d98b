package scene

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"render-pipeline/core"
	"render-pipeline/math"
)

// GLTFInstance places one imported mesh in the world.
type GLTFInstance struct {
	Mesh      string
	Transform core.Transform
}

// GLTFResult holds the geometry and instance placements of a .glb / .gltf
// file. Materials and textures are not imported; the geometry pass shades
// with vertex colour.
type GLTFResult struct {
	Meshes    map[string]*Mesh
	Instances []GLTFInstance
}

// LoadGLTF opens a .glb or .gltf file. Each primitive becomes one Mesh and
// every node that references it becomes one instance. Node hierarchies are
// flattened into a single TRS per instance.
func LoadGLTF(path string) (*GLTFResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	result := &GLTFResult{Meshes: make(map[string]*Mesh)}

	meshPrims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, mi, gm.Name, pi, *prim)
			if err != nil {
				return nil, fmt.Errorf("gltf %q: mesh %d prim %d: %w", path, mi, pi, err)
			}
			meshPrims[mi] = append(meshPrims[mi], m)
			result.Meshes[m.Name] = m
		}
	}

	var visit func(idx int, parent core.Transform, depth int)
	visit = func(idx int, parent core.Transform, depth int) {
		if idx < 0 || idx >= len(doc.Nodes) || depth > len(doc.Nodes) {
			return
		}
		gn := doc.Nodes[idx]
		world := composeTransforms(parent, nodeTransform(gn))

		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			for _, m := range meshPrims[*gn.Mesh] {
				result.Instances = append(result.Instances, GLTFInstance{Mesh: m.Name, Transform: world})
			}
		}
		for _, child := range gn.Children {
			visit(child, world, depth+1)
		}
	}

	for _, root := range rootNodes(doc) {
		visit(root, core.NewTransform(), 0)
	}
	return result, nil
}

// rootNodes returns the default scene's roots, or every parentless node if
// the document has no default scene.
func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func nodeTransform(gn *gltf.Node) core.Transform {
	t := gn.TranslationOrDefault()
	s := gn.ScaleOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]
	return core.Transform{
		Translation: math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		Rotation:    math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		Scale:       math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
	}
}

// composeTransforms applies child inside parent. Exact for uniform parent
// scale; non-uniform parent scale with a rotated child loses shear.
func composeTransforms(parent, child core.Transform) core.Transform {
	scaled := math.Vec3{
		X: child.Translation.X * parent.Scale.X,
		Y: child.Translation.Y * parent.Scale.Y,
		Z: child.Translation.Z * parent.Scale.Z,
	}
	return core.Transform{
		Translation: parent.Translation.Add(parent.Rotation.RotateVector(scaled)),
		Rotation:    parent.Rotation.Mul(child.Rotation).Normalize(),
		Scale: math.Vec3{
			X: parent.Scale.X * child.Scale.X,
			Y: parent.Scale.Y * child.Scale.Y,
			Z: parent.Scale.Z * child.Scale.Z,
		},
	}
}

// loadGLTFPrimitive converts one glTF mesh primitive into a scene.Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshIdx int, meshName string, primIdx int, prim gltf.Primitive) (*Mesh, error) {
	if meshName == "" {
		meshName = fmt.Sprintf("mesh%d", meshIdx)
	}
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	var colors [][4]uint8

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["COLOR_0"]; ok {
		colors, _ = modeler.ReadColor(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		if i < len(colors) {
			c := colors[i]
			v.Color = core.Color{R: float32(c[0]) / 255, G: float32(c[1]) / 255, B: float32(c[2]) / 255, A: float32(c[3]) / 255}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	return CreateMeshFromData(name, verts, indices), nil
}
