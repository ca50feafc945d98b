package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"render-pipeline/core"
	"render-pipeline/math"
)

// ── TOML data structures ──────────────────────────────────────────────────────

type vec3TOML [3]float32

type attenuationTOML struct {
	Constant float32 `toml:"constant"`
	Linear   float32 `toml:"linear"`
	Exp      float32 `toml:"exp"`
}

type lightTOML struct {
	Type        string           `toml:"type"`
	Name        string           `toml:"name,omitempty"`
	Color       vec3TOML         `toml:"color"`
	Ambient     float32          `toml:"ambient"`
	Diffuse     float32          `toml:"diffuse"`
	Position    *vec3TOML        `toml:"position,omitempty"`
	Direction   *vec3TOML        `toml:"direction,omitempty"`
	Attenuation *attenuationTOML `toml:"attenuation,omitempty"`
	Cutoff      float32          `toml:"cutoff,omitempty"`
}

// ObjectTOML places instances of a built-in primitive or a glTF model.
type ObjectTOML struct {
	Name      string     `toml:"name"`
	Primitive string     `toml:"primitive,omitempty"`
	Model     string     `toml:"model,omitempty"`
	Size      float32    `toml:"size,omitempty"`
	Instances []Instance `toml:"instances"`
}

// Instance is one placement of an object. Rotation is an axis plus an
// angle in degrees.
type Instance struct {
	Translation vec3TOML  `toml:"translation"`
	Axis        *vec3TOML `toml:"axis,omitempty"`
	Angle       float32   `toml:"angle,omitempty"`
	Scale       *vec3TOML `toml:"scale,omitempty"`
}

type sceneTOML struct {
	Version int          `toml:"version"`
	Lights  []lightTOML  `toml:"lights"`
	Objects []ObjectTOML `toml:"objects"`
}

// SceneFile is the decoded form of a scene description. Meshes are not
// stored; objects name a primitive or a model file and are built by
// BuildMeshes.
type SceneFile struct {
	Lights  []Light
	Objects []ObjectTOML

	dir string
}

// LoadSceneFile reads and decodes the TOML scene at path. Relative model
// paths resolve against the file's directory.
func LoadSceneFile(path string) (*SceneFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %q: %w", path, err)
	}
	defer f.Close()

	sf, err := DecodeSceneFile(f)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", path, err)
	}
	sf.dir = filepath.Dir(path)
	return sf, nil
}

func DecodeSceneFile(r io.Reader) (*SceneFile, error) {
	var ts sceneTOML
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&ts); err != nil {
		return nil, fmt.Errorf("unmarshal scene: %w", err)
	}

	sf := &SceneFile{Objects: ts.Objects}
	for i, lt := range ts.Lights {
		l, err := tomlToLight(lt)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		sf.Lights = append(sf.Lights, l)
	}
	for _, o := range sf.Objects {
		if (o.Primitive == "") == (o.Model == "") {
			return nil, fmt.Errorf("object %q: exactly one of primitive or model is required", o.Name)
		}
	}
	return sf, nil
}

// SaveSceneFile writes lights and objects to path as TOML.
func SaveSceneFile(path string, lights []Light, objects []ObjectTOML) error {
	ts := sceneTOML{Version: 1, Objects: objects}
	for _, l := range lights {
		ts.Lights = append(ts.Lights, lightToTOML(l))
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(ts); err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write scene %q: %w", path, err)
	}
	return nil
}

// Uploader turns CPU geometry into something the renderer can draw.
type Uploader func(*Mesh) (Drawable, error)

// BuildMeshes creates the geometry of every object and places its
// instances. glTF models contribute one entry per primitive.
func (sf *SceneFile) BuildMeshes(upload Uploader) (Meshes, error) {
	meshes := make(Meshes)
	for _, o := range sf.Objects {
		if o.Model != "" {
			if err := sf.addModel(meshes, o, upload); err != nil {
				return nil, err
			}
			continue
		}

		mesh, err := primitiveMesh(o)
		if err != nil {
			return nil, err
		}
		d, err := upload(mesh)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", o.Name, err)
		}
		for _, inst := range o.Instances {
			meshes.Add(o.Name, d, tomlToTransform(inst))
		}
	}
	return meshes, nil
}

func (sf *SceneFile) addModel(meshes Meshes, o ObjectTOML, upload Uploader) error {
	path := o.Model
	if !filepath.IsAbs(path) {
		path = filepath.Join(sf.dir, path)
	}
	model, err := LoadGLTF(path)
	if err != nil {
		return fmt.Errorf("object %q: %w", o.Name, err)
	}

	drawables := make(map[string]Drawable, len(model.Meshes))
	for name, m := range model.Meshes {
		d, err := upload(m)
		if err != nil {
			return fmt.Errorf("object %q mesh %q: %w", o.Name, name, err)
		}
		drawables[name] = d
	}
	for _, inst := range o.Instances {
		outer := tomlToTransform(inst)
		for _, mi := range model.Instances {
			meshes.Add(o.Name+"/"+mi.Mesh, drawables[mi.Mesh], composeTransforms(outer, mi.Transform))
		}
	}
	return nil
}

func primitiveMesh(o ObjectTOML) (*Mesh, error) {
	size := o.Size
	if size <= 0 {
		size = 1
	}
	switch o.Primitive {
	case "sphere":
		return CreateSphere(size, 32, 16), nil
	case "cube":
		return CreateCube(size), nil
	case "plane":
		return CreatePlane(size, size, 1), nil
	}
	return nil, fmt.Errorf("object %q: unknown primitive %q", o.Name, o.Primitive)
}

// ── conversion helpers ────────────────────────────────────────────────────────

func tomlToVec3(v vec3TOML) math.Vec3 { return math.Vec3{X: v[0], Y: v[1], Z: v[2]} }
func vec3ToTOML(v math.Vec3) vec3TOML { return vec3TOML{v.X, v.Y, v.Z} }

func tomlToTransform(inst Instance) core.Transform {
	t := core.NewTransform()
	t.Translation = tomlToVec3(inst.Translation)
	if inst.Scale != nil {
		t.Scale = tomlToVec3(*inst.Scale)
	}
	if inst.Axis != nil && inst.Angle != 0 {
		t.Rotate(tomlToVec3(*inst.Axis), math.ToRadian(inst.Angle))
	}
	return t
}

func tomlToLight(lt lightTOML) (Light, error) {
	typ, err := ParseLightType(lt.Type)
	if err != nil {
		return nil, err
	}
	name := lt.Name
	if name == "" {
		name = typ.String() + "-" + uuid.NewString()
	}
	color := tomlToVec3(lt.Color)

	var position, direction math.Vec3
	if lt.Position != nil {
		position = tomlToVec3(*lt.Position)
	}
	if lt.Direction != nil {
		direction = tomlToVec3(*lt.Direction)
	}
	atten := DefaultAttenuation
	if lt.Attenuation != nil {
		atten = Attenuation(*lt.Attenuation)
	}

	switch typ {
	case LightDirectional:
		if lt.Direction == nil {
			return nil, fmt.Errorf("directional light %q needs a direction", name)
		}
		return NewDirectionalLight(name, color, lt.Ambient, lt.Diffuse, direction), nil
	case LightPoint:
		return NewPointLight(name, color, lt.Ambient, lt.Diffuse, position, atten), nil
	default:
		if lt.Direction == nil {
			return nil, fmt.Errorf("spot light %q needs a direction", name)
		}
		return NewSpotLight(name, color, lt.Ambient, lt.Diffuse, position, atten, direction, lt.Cutoff), nil
	}
}

func lightToTOML(l Light) lightTOML {
	b := l.Base()
	lt := lightTOML{
		Type:    l.Type().String(),
		Name:    b.Name,
		Color:   vec3ToTOML(b.Color),
		Ambient: b.AmbientIntensity,
		Diffuse: b.DiffuseIntensity,
	}
	setPoint := func(p *PointLight) {
		pos := vec3ToTOML(p.Position)
		atten := attenuationTOML(p.Attenuation)
		lt.Position = &pos
		lt.Attenuation = &atten
	}

	switch l := l.(type) {
	case *DirectionalLight:
		dir := vec3ToTOML(l.Direction)
		lt.Direction = &dir
	case *PointLight:
		setPoint(l)
	case *SpotLight:
		setPoint(&l.PointLight)
		dir := vec3ToTOML(l.Direction)
		lt.Direction = &dir
		lt.Cutoff = l.Cutoff
	}
	return lt
}
