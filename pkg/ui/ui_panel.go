package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30
	sectionHeight = 25
)

// UIWidget is an interface for all UI widgets
type UIWidget interface {
	Update()
	Draw(screen *ebiten.Image)
	GetHeight() float64
	moveTo(y float64)
}

// SliderWrapper adapts Slider to UIWidget
type SliderWrapper struct {
	*Slider
}

func (s *SliderWrapper) GetHeight() float64 { return s.H + 25 } // bar + label
func (s *SliderWrapper) moveTo(y float64)   { s.Y = y }

// CheckboxWrapper adapts Checkbox to UIWidget
type CheckboxWrapper struct {
	*Checkbox
}

func (c *CheckboxWrapper) GetHeight() float64 { return c.Size + 20 }
func (c *CheckboxWrapper) moveTo(y float64)   { c.Y = y }

// ButtonWrapper adapts Button to UIWidget
type ButtonWrapper struct {
	*Button
}

func (b *ButtonWrapper) GetHeight() float64 { return b.Height + 25 }
func (b *ButtonWrapper) moveTo(y float64)   { b.Y = y }

// UIPanel manages a collection of UI widgets in a scrollable panel
type UIPanel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	Widgets       []UIWidget
	Labels        []string
	ScrollOffset  float64

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []PanelSection
}

// PanelSection groups the widgets [StartIndex, EndIndex) under a header.
type PanelSection struct {
	Title      string
	StartIndex int
	EndIndex   int
}

// NewUIPanel creates a new UI panel
func NewUIPanel(title string, x, y, width, height float64) *UIPanel {
	return &UIPanel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection opens a section; widgets added until EndSection belong to it.
func (p *UIPanel) AddSection(title string) {
	p.sections = append(p.sections, PanelSection{
		Title:      title,
		StartIndex: len(p.Widgets),
		EndIndex:   -1,
	})
}

// EndSection closes the current section
func (p *UIPanel) EndSection() {
	if n := len(p.sections); n > 0 {
		p.sections[n-1].EndIndex = len(p.Widgets)
	}
}

// AddSlider adds a slider widget to the panel
func (p *UIPanel) AddSlider(label string, min, max, value, step float64) *Slider {
	slider := NewSlider(p.X+10, 0, p.Width-20, label, min, max, value)
	slider.Step = step
	slider.SetValue(value)
	p.add(label, &SliderWrapper{slider})
	return slider
}

// AddCheckbox adds a checkbox widget to the panel
func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	checkbox := NewCheckbox(p.X+10, 0, label, value)
	p.add(label, &CheckboxWrapper{checkbox})
	return checkbox
}

// AddButton adds a full-width button to the panel
func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	button := NewButton(p.X+10, 0, p.Width-20, 22, label, onClick)
	p.add("", &ButtonWrapper{button})
	return button
}

func (p *UIPanel) add(label string, w UIWidget) {
	p.Widgets = append(p.Widgets, w)
	p.Labels = append(p.Labels, label)
	p.layout()
}

// layout assigns every widget its on-screen Y for the current scroll offset.
// Widgets outside any section are placed after the last one.
func (p *UIPanel) layout() {
	y := p.Y + titleHeight - p.ScrollOffset
	placed := 0
	for _, s := range p.sections {
		y += sectionHeight
		end := s.EndIndex
		if end < 0 {
			end = len(p.Widgets)
		}
		for i := s.StartIndex; i < end; i++ {
			p.Widgets[i].moveTo(y + 15)
			y += p.Widgets[i].GetHeight()
			placed = i + 1
		}
	}
	for i := placed; i < len(p.Widgets); i++ {
		p.Widgets[i].moveTo(y + 15)
		y += p.Widgets[i].GetHeight()
	}
}

// Update handles input for all widgets
func (p *UIPanel) Update() {
	if _, dy := ebiten.Wheel(); dy != 0 {
		p.scroll(dy)
	}
	for _, widget := range p.Widgets {
		widget.Update()
	}
}

func (p *UIPanel) scroll(dy float64) {
	maxScroll := max(p.totalHeight()-p.Height+40, 0)
	p.ScrollOffset = max(0, min(maxScroll, p.ScrollOffset-dy*20))
	p.layout()
}

// Draw renders the panel and all visible widgets
func (p *UIPanel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	for _, s := range p.sections {
		if s.StartIndex >= len(p.Widgets) {
			continue
		}
		headerY := p.headerY(s)
		if p.visible(headerY) {
			vector.FillRect(screen,
				float32(p.X+5), float32(headerY),
				float32(p.Width-10), 20,
				color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, s.Title, int(p.X+10), int(headerY+5))
		}
	}

	for i, widget := range p.Widgets {
		y := widgetY(widget)
		if !p.visible(y - 15) {
			continue
		}
		if p.Labels[i] != "" {
			ebitenutil.DebugPrintAt(screen, p.Labels[i], int(p.X+10), int(y-15))
		}
		widget.Draw(screen)
	}
}

func (p *UIPanel) headerY(s PanelSection) float64 {
	return widgetY(p.Widgets[s.StartIndex]) - 15 - sectionHeight
}

func (p *UIPanel) visible(y float64) bool {
	return y >= p.Y+titleHeight-5 && y <= p.Y+p.Height-20
}

func widgetY(w UIWidget) float64 {
	switch w := w.(type) {
	case *SliderWrapper:
		return w.Y
	case *CheckboxWrapper:
		return w.Y
	case *ButtonWrapper:
		return w.Y
	}
	return 0
}

func (p *UIPanel) totalHeight() float64 {
	height := float64(titleHeight + len(p.sections)*sectionHeight)
	for _, widget := range p.Widgets {
		height += widget.GetHeight()
	}
	return height
}
