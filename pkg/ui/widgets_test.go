package ui

import "testing"

func TestSlider_SetValue(t *testing.T) {
	tests := []struct {
		name string
		step float64
		in   float64
		want float64
	}{
		{"inside", 0, 3.3, 3.3},
		{"below min", 0, -4, 1},
		{"above max", 0, 42, 10},
		{"snapped down", 1, 4.4, 4},
		{"snapped up", 1, 4.6, 5},
		{"snapped and clamped", 4, 10, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSlider(0, 0, 100, "x", 1, 10, 1)
			s.Step = tt.step
			s.SetValue(tt.in)
			if s.Value != tt.want {
				t.Errorf("SetValue(%v) with step %v = %v; want %v", tt.in, tt.step, s.Value, tt.want)
			}
		})
	}
}

func TestSlider_handlePress(t *testing.T) {
	s := NewSlider(10, 20, 100, "speed", 0, 50, 0)

	if !s.handlePress(60, 25) {
		t.Fatal("press inside the bar was ignored")
	}
	if s.Value != 25 {
		t.Errorf("press at the middle = %v; want 25", s.Value)
	}
	if s.Ratio() != 0.5 {
		t.Errorf("Ratio() = %v; want 0.5", s.Ratio())
	}

	if s.handlePress(200, 25) {
		t.Error("press outside the bar was handled")
	}
	if s.Value != 25 {
		t.Errorf("press outside changed the value to %v", s.Value)
	}
}

func TestCheckbox_TogglesOncePerClick(t *testing.T) {
	c := NewCheckbox(0, 0, "show", false)

	c.handle(5, 5, true)
	c.handle(5, 5, true) // held
	if !c.Value {
		t.Fatal("checkbox did not toggle on")
	}
	c.handle(5, 5, false)
	c.handle(5, 5, true)
	if c.Value {
		t.Error("second click did not toggle off")
	}
	c.handle(50, 50, false)
	c.handle(50, 50, true)
	if c.Value {
		t.Error("click outside toggled the checkbox")
	}
}

func TestButton_FiresOncePerPress(t *testing.T) {
	clicks := 0
	b := NewButton(0, 0, 40, 20, "pause", func() { clicks++ })

	b.handle(10, 10, true)
	b.handle(10, 10, true)
	b.handle(10, 10, false)
	b.handle(10, 10, true)
	if clicks != 2 {
		t.Errorf("clicks = %d; want 2", clicks)
	}
}

func TestUIPanel_Layout(t *testing.T) {
	p := NewUIPanel("Swarm", 10, 10, 200, 400)
	p.AddSection("Run")
	speed := p.AddSlider("Ticks / frame", 1, 10, 1, 1)
	pause := p.AddButton("Pause", nil)
	p.EndSection()
	p.AddSection("View")
	show := p.AddCheckbox("Estimates", true)
	p.EndSection()

	if !(speed.Y < pause.Y && pause.Y < show.Y) {
		t.Errorf("widgets not stacked: slider %v, button %v, checkbox %v", speed.Y, pause.Y, show.Y)
	}

	before := speed.Y
	p.ScrollOffset = 0
	p.Height = 50 // force a scrollable panel
	p.scroll(-1)
	if speed.Y >= before {
		t.Errorf("scrolling down did not move widgets up: %v -> %v", before, speed.Y)
	}
}
