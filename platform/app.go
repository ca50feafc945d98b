package platform

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"render-pipeline/scene"
)

// App routes window input to a camera. It replaces global input callbacks:
// every callback closes over the App that registered it.
type App struct {
	Window *Window
	Camera *scene.Camera
	// Speed is the distance one frame of a held movement key covers.
	Speed float32
	// OnResize receives every new framebuffer size. When set it owns the
	// camera update; otherwise the App resizes the camera itself.
	OnResize func(width, height int)
	// OnKey receives key presses the App does not handle itself.
	OnKey func(key int)
}

var moveKeys = []struct {
	keys []int
	dir  scene.MoveDirection
}{
	{[]int{KeyW, KeyUp}, scene.MoveForward},
	{[]int{KeyS, KeyDown}, scene.MoveBackward},
	{[]int{KeyA, KeyLeft}, scene.MoveLeft},
	{[]int{KeyD, KeyRight}, scene.MoveRight},
	{[]int{KeyE}, scene.MoveUp},
	{[]int{KeyQ}, scene.MoveDown},
}

// NewApp installs the cursor, framebuffer and key callbacks on w and sizes
// cam to the current framebuffer.
func NewApp(w *Window, cam *scene.Camera, speed float32) *App {
	app := &App{Window: w, Camera: cam, Speed: speed}

	fbw, fbh := w.GetFramebufferSize()
	cam.SetFrameBufferDimensions(fbw, fbh)

	w.Handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		winW, winH := w.GetSize()
		fbw, fbh := w.GetFramebufferSize()
		app.Camera.RotateFromMouse(framebufferCursor(x, y, winW, winH, fbw, fbh))
	})
	w.Handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		app.framebufferResized(width, height)
	})
	w.Handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if int(key) == KeyEscape {
			w.SetShouldClose(true)
			return
		}
		if app.OnKey != nil {
			app.OnKey(int(key))
		}
	})
	return app
}

func (a *App) framebufferResized(width, height int) {
	if a.OnResize != nil {
		a.OnResize(width, height)
		return
	}
	a.Camera.SetFrameBufferDimensions(width, height)
}

// HandleInput moves the camera for every held movement key. Call once per
// frame after PollEvents.
func (a *App) HandleInput() {
	for _, m := range moveKeys {
		for _, k := range m.keys {
			if a.Window.IsKeyPressed(k) {
				a.Camera.Move(m.dir, a.Speed)
				break
			}
		}
	}
}

// framebufferCursor converts a cursor position from screen coordinates to
// framebuffer pixels. The two differ on HiDPI displays.
func framebufferCursor(x, y float64, winW, winH, fbw, fbh int) (int, int) {
	if winW > 0 && fbw > 0 {
		x *= float64(fbw) / float64(winW)
	}
	if winH > 0 && fbh > 0 {
		y *= float64(fbh) / float64(winH)
	}
	return int(x), int(y)
}
