package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal drag bar over [Min, Max]. With Step > 0 the value
// snaps to multiples of Step above Min.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	Step     float64
	X, Y     float64
	W, H     float64
}

// NewSlider creates a slider with a default height of 12px.
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Label: label,
		Min:   min,
		Max:   max,
		X:     x,
		Y:     y,
		W:     w,
		H:     12,
	}
	s.SetValue(value)
	return s
}

// SetValue clamps v into range and applies Step.
func (s *Slider) SetValue(v float64) {
	if s.Step > 0 {
		v = s.Min + float64(int((v-s.Min)/s.Step+0.5))*s.Step
	}
	s.Value = max(s.Min, min(s.Max, v))
}

// Ratio is the fill fraction of the bar, in [0, 1].
func (s *Slider) Ratio() float64 {
	if s.Max <= s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

// Update checks for mouse interaction
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	s.handlePress(float64(mx), float64(my))
}

func (s *Slider) handlePress(mx, my float64) bool {
	if mx < s.X || mx > s.X+s.W || my < s.Y || my > s.Y+s.H {
		return false
	}
	s.SetValue(s.Min + (mx-s.X)/s.W*(s.Max-s.Min))
	return true
}

// Draw renders the slider
func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*s.Ratio()), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, s.formatValue(), int(s.X+s.W-40), int(s.Y-15))
}

func (s *Slider) formatValue() string {
	if s.Step >= 1 {
		return fmt.Sprintf("%.0f", s.Value)
	}
	return fmt.Sprintf("%.2f", s.Value)
}
