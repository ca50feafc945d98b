package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"render-pipeline/scene"
)

func TestFramebufferCursor(t *testing.T) {
	tests := []struct {
		name         string
		x, y         float64
		winW, winH   int
		fbw, fbh     int
		wantX, wantY int
	}{
		{"same units", 640, 360, 1280, 720, 1280, 720, 640, 360},
		{"retina", 1279.5, 719, 1280, 720, 2560, 1440, 2559, 1438},
		{"minimised", 10, 20, 0, 0, 0, 0, 10, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := framebufferCursor(tt.x, tt.y, tt.winW, tt.winH, tt.fbw, tt.fbh)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestFramebufferCursorReachesEveryEdge(t *testing.T) {
	cam := scene.NewCamera(2560, 1440)
	yaw, pitch := cam.Angles()

	// The far corner of a 1280x720 window on a 2x display.
	cam.RotateFromMouse(framebufferCursor(1279, 719, 1280, 720, 2560, 1440))
	rotatedYaw, rotatedPitch := cam.Angles()
	assert.Greater(t, rotatedYaw, yaw)
	assert.Greater(t, rotatedPitch, pitch)

	// Right and bottom margins are both in reach.
	assert.True(t, cam.OnRender())
	edgeYaw, edgePitch := cam.Angles()
	assert.Greater(t, edgeYaw, rotatedYaw)
	assert.Greater(t, edgePitch, rotatedPitch)
}

func TestFramebufferResizedUpdatesCameraOnce(t *testing.T) {
	cam := scene.NewCamera(800, 600)
	app := &App{Camera: cam}

	app.framebufferResized(1024, 512)
	assert.Equal(t, float32(2), cam.AspectRatio())

	var sizes [][2]int
	app.OnResize = func(w, h int) { sizes = append(sizes, [2]int{w, h}) }
	app.framebufferResized(640, 480)

	// The hook owns the camera update.
	assert.Equal(t, [][2]int{{640, 480}}, sizes)
	assert.Equal(t, float32(2), cam.AspectRatio())
}
