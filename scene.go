package vantage

import "github.com/go-gl/mathgl/mgl64"

// SetupDefaultScene populates an engine with the stock starter scene:
// a sun light, a soft blue-gray background, a red cube at the origin,
// and a green sphere beside it. Any existing scene content is cleared
// first; the camera is left for the caller to bind.
func SetupDefaultScene(e Engine) {
	e.Clear()

	e.AddLight(LightSpec{
		Direction: mgl64.Vec3{-0.3, -0.3, -1},
		Energy:    3,
		Color:     ColorWhite,
	})
	e.SetBackground(DefaultBackground, 1)

	cube := NewCube("cube", 2)
	cube.Material = SolidMaterial(Color{R: 0.8, G: 0.1, B: 0.1, A: 1})
	e.AddMesh(cube)

	sphere := NewIcosphere("sphere", 1, 2)
	sphere.Material = SolidMaterial(Color{R: 0.1, G: 0.8, B: 0.1, A: 1})
	sphere.Offset = mgl64.Vec3{2, 2, 1}
	e.AddMesh(sphere)
}

// ClearScene removes every object and light from the engine, leaving an
// empty world. The camera is removed as well; rebind it before the next
// render.
func ClearScene(e Engine) {
	e.Clear()
}
