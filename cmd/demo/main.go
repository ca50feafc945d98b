package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"

	"render-pipeline/core"
	"render-pipeline/internal/config"
	"render-pipeline/platform"
	"render-pipeline/renderer"
	"render-pipeline/scene"
)

func main() {
	configPath := flag.String("config", "", "engine TOML config (defaults when empty)")
	flag.Parse()

	logger, err := core.NewLogger(os.Stderr, "info", "demo")
	if err != nil {
		panic(err)
	}

	cfg := config.Default()
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Fatal("Failed to load config", "err", err)
		}
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	window, err := platform.NewWindow(platform.WindowConfig{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title,
		Resizable: true,
		VSync:     cfg.Window.VSync,
	})
	if err != nil {
		logger.Fatal("Failed to create window", "err", err)
	}
	defer window.Destroy()

	camera := scene.NewCamera(cfg.Window.Width, cfg.Window.Height)
	camera.SetVerticalFoV(cfg.Camera.FoV)
	camera.SetNearPlane(cfg.Camera.Near)
	camera.SetFarPlane(cfg.Camera.Far)
	camera.SetPosition(cfg.Camera.PositionVec())
	camera.SetLookAt(cfg.Camera.LookAtVec())

	// The framebuffer can differ from the window size on HiDPI displays, so
	// the camera is sized before any technique derives state from it.
	app := platform.NewApp(window, camera, cfg.Camera.Speed)

	engine, err := renderer.NewRenderEngine(cfg, camera, logger)
	if err != nil {
		logger.Fatal("Failed to create render engine", "err", err)
	}
	defer engine.Destroy()

	app.OnResize = func(width, height int) {
		if err := engine.Resize(width, height); err != nil {
			logger.Error("Resize failed", "err", err)
		}
	}

	if cfg.Scene != "" {
		if err := engine.LoadScene(cfg.Scene); err != nil {
			logger.Fatal("Failed to load scene", "err", err)
		}
	} else {
		meshes, lights, err := buildDefaultScene(engine.UploadMesh, cfg.Technique != config.TechniqueCSM)
		if err != nil {
			logger.Fatal("Failed to build scene", "err", err)
		}
		engine.SetScene(meshes, lights)
	}

	dayNight := NewDayNight()
	app.OnKey = func(key int) {
		switch key {
		case platform.KeyN:
			dayNight.Active = !dayNight.Active
		case platform.KeyF1:
			h, v := camera.Angles()
			logger.Info("Camera", "position", camera.Position(), "look_at", camera.LookAt(), "angle_h", h, "angle_v", v)
		}
	}

	var overlay DebugOverlay
	frames := 0
	lastFrame := platform.Time()
	lastTitle := lastFrame

	for !window.ShouldClose() {
		window.PollEvents()
		app.HandleInput()

		now := platform.Time()
		dt := float32(now - lastFrame)
		lastFrame = now

		dayNight.Update(dt)
		dayNight.Apply(firstDirectional(engine.Lights()))

		if err := engine.Render(); err != nil {
			logger.Error("Frame failed", "err", err)
			break
		}
		window.SwapBuffers()

		frames++
		if now-lastTitle >= 1 {
			pos := camera.Position()
			overlay.Clear()
			overlay.Add("%s", cfg.Window.Title)
			overlay.Add("%s", cfg.Technique)
			overlay.Add("FPS: %d", frames)
			overlay.Add("(%.1f, %.1f, %.1f)", pos.X, pos.Y, pos.Z)
			overlay.Add("%s", dayNight.TimeOfDayStr())
			window.SetTitle(overlay.Text())
			frames = 0
			lastTitle = now
		}
	}

	logger.Info("Exiting")
}
