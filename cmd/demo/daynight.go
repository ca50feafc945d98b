package main

import (
	"fmt"

	"github.com/chewxy/math32"

	"render-pipeline/core"
	"render-pipeline/math"
	"render-pipeline/scene"
)

// dayPalette holds the sun values for one key time of day.
type dayPalette struct {
	t       float32 // normalised time 0..1
	sun     core.Color
	diffuse float32
	ambient float32
}

// palettes is ordered by t and wraps (0 == 1).
var palettes = []dayPalette{
	{t: 0.00, sun: core.Color{R: 1.00, G: 0.98, B: 0.92, A: 1}, diffuse: 0.90, ambient: 0.20}, // noon
	{t: 0.22, sun: core.Color{R: 1.00, G: 0.65, B: 0.25, A: 1}, diffuse: 0.70, ambient: 0.15}, // golden hour
	{t: 0.30, sun: core.Color{R: 0.70, G: 0.40, B: 0.55, A: 1}, diffuse: 0.25, ambient: 0.10}, // dusk
	{t: 0.50, sun: core.Color{R: 0.40, G: 0.45, B: 0.65, A: 1}, diffuse: 0.12, ambient: 0.05}, // midnight
	{t: 0.70, sun: core.Color{R: 0.75, G: 0.42, B: 0.60, A: 1}, diffuse: 0.20, ambient: 0.08}, // pre-dawn
	{t: 0.78, sun: core.Color{R: 1.00, G: 0.60, B: 0.28, A: 1}, diffuse: 0.60, ambient: 0.12}, // sunrise
}

// DayNight swings the directional light around the scene.
type DayNight struct {
	Time   float32 // 0..1: 0=noon, 0.25=sunset, 0.5=midnight, 0.75=sunrise
	Speed  float32 // full-cycle duration in seconds
	Active bool
}

func NewDayNight() *DayNight {
	return &DayNight{Speed: 120, Active: true}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active {
		return
	}
	dn.Time += dt / dn.Speed
	dn.Time -= math32.Floor(dn.Time)
}

func lerpColor(a, b core.Color, t float32) core.Color {
	return core.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: 1,
	}
}

// samplePalette interpolates the two keyframes around t.
func samplePalette(t float32) dayPalette {
	n := len(palettes)
	a, b := palettes[n-1], palettes[0]
	span := 1 - a.t + b.t
	local := t - a.t
	if t < palettes[0].t || t >= a.t {
		if local < 0 {
			local += 1
		}
	} else {
		for i := 0; i < n-1; i++ {
			if t >= palettes[i].t && t < palettes[i+1].t {
				a, b = palettes[i], palettes[i+1]
				span = b.t - a.t
				local = t - a.t
				break
			}
		}
	}
	f := local / span

	return dayPalette{
		t:       t,
		sun:     lerpColor(a.sun, b.sun, f),
		diffuse: a.diffuse + (b.diffuse-a.diffuse)*f,
		ambient: a.ambient + (b.ambient-a.ambient)*f,
	}
}

// Direction is the sun direction at the current time: straight down at
// noon, straight up at midnight, tilted along Z so the light camera never
// looks along world up.
func (dn *DayNight) Direction() math.Vec3 {
	s, c := math32.Sincos(dn.Time * 2 * math32.Pi)
	return math.NewVec3(s, -c, 0.35).Normalize()
}

// Apply writes the current time's state into sun.
func (dn *DayNight) Apply(sun *scene.DirectionalLight) {
	if sun == nil {
		return
	}
	p := samplePalette(dn.Time)
	sun.Direction = dn.Direction()
	sun.Color = p.sun.RGB()
	sun.DiffuseIntensity = p.diffuse
	sun.AmbientIntensity = p.ambient
}

// TimeOfDayStr returns a human-readable time label.
func (dn *DayNight) TimeOfDayStr() string {
	hours := dn.Time * 24
	h := int(hours) % 24
	m := int((hours - float32(int(hours))) * 60)
	period := "AM"
	displayH := h
	switch {
	case h == 0:
		displayH = 12
	case h == 12:
		period = "PM"
	case h > 12:
		displayH = h - 12
		period = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", displayH, m, period)
}
