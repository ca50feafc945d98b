package main

import (
	"fmt"

	"render-pipeline/core"
	"render-pipeline/math"
	"render-pipeline/scene"
)

// buildDefaultScene lays out a grid of cubes and spheres lit by a ring of
// coloured point lights, one spot light and the sun. The ground plane is
// left out when the technique draws its own floor.
func buildDefaultScene(upload scene.Uploader, withGround bool) (scene.Meshes, []scene.Light, error) {
	meshes := scene.Meshes{}

	cube, err := upload(scene.CreateCube(2))
	if err != nil {
		return nil, nil, fmt.Errorf("cube: %w", err)
	}
	sphere, err := upload(scene.CreateSphere(1, 32, 16))
	if err != nil {
		return nil, nil, fmt.Errorf("sphere: %w", err)
	}

	for x := -2; x <= 2; x++ {
		for z := 0; z < 4; z++ {
			t := core.NewTransform()
			t.Translation = math.NewVec3(float32(x)*6, 1, float32(z)*8)
			if (x+z)%2 == 0 {
				t.Rotate(math.Vec3Up, math.ToRadian(float32(15*(x+z))))
				meshes.Add("cube", cube, t)
			} else {
				meshes.Add("sphere", sphere, t)
			}
		}
	}

	if withGround {
		ground, err := upload(scene.CreatePlane(200, 200, 1))
		if err != nil {
			return nil, nil, fmt.Errorf("ground: %w", err)
		}
		meshes.Add("ground", ground, core.NewTransform())
	}

	lights := []scene.Light{
		scene.NewDirectionalLight("sun", math.NewVec3(1, 0.98, 0.92), 0.2, 0.9, math.NewVec3(0.3, -1, 0.35)),
		scene.NewSpotLight("searchlight", math.NewVec3(0.9, 0.9, 1), 0, 1, math.NewVec3(0, 12, 12),
			scene.Attenuation{Constant: 1, Linear: 0.05, Exp: 0.01}, math.NewVec3(0, -1, 0.2), 25),
	}
	colors := []math.Vec3{
		math.NewVec3(1, 0.2, 0.2),
		math.NewVec3(0.2, 1, 0.2),
		math.NewVec3(0.2, 0.3, 1),
		math.NewVec3(1, 0.8, 0.2),
	}
	for i, c := range colors {
		pos := math.NewVec3(float32(i*8-12), 2, float32(4+(i%2)*12))
		lights = append(lights, scene.NewPointLight(fmt.Sprintf("lamp-%d", i), c, 0, 1, pos, scene.DefaultAttenuation))
	}
	return meshes, lights, nil
}

func firstDirectional(lights []scene.Light) *scene.DirectionalLight {
	for _, l := range lights {
		if d, ok := l.(*scene.DirectionalLight); ok {
			return d
		}
	}
	return nil
}
