package gesture

import (
	"math"
	"testing"
)

func TestClassifySwipe(t *testing.T) {
	cfg := DefaultSwipe
	cases := []struct {
		name       string
		start, end Point
		want       Direction
	}{
		{"left swipe goes next", Point{200, 100}, Point{100, 110}, Next},
		{"right swipe goes previous", Point{100, 100}, Point{200, 90}, Previous},
		{"short travel ignored", Point{100, 100}, Point{80, 100}, None},
		{"too vertical ignored", Point{200, 100}, Point{100, 140}, None},
		{"not dominant enough", Point{200, 100}, Point{110, 70}, None},
	}
	for _, c := range cases {
		if got := cfg.Classify(c.start, c.end); got != c.want {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestSwipeMovesOneTabFromMiddle(t *testing.T) {
	const tabs = 3
	cfg := DefaultSwipe

	d := cfg.Classify(Point{300, 200}, Point{200, 210}) // dx 100, dy 10
	if got := Step(1, tabs, d); got != 2 {
		t.Fatalf("expected next tab 2, got %d", got)
	}
	d = cfg.Classify(Point{200, 200}, Point{300, 190})
	if got := Step(1, tabs, d); got != 0 {
		t.Fatalf("expected previous tab 0, got %d", got)
	}
	d = cfg.Classify(Point{200, 200}, Point{220, 200}) // dx 20
	if got := Step(1, tabs, d); got != 1 {
		t.Fatalf("20px swipe must not change tab, got %d", got)
	}
}

func TestStepClampsWithoutWraparound(t *testing.T) {
	if got := Step(2, 3, Next); got != 2 {
		t.Fatalf("last tab must stay, got %d", got)
	}
	if got := Step(0, 3, Previous); got != 0 {
		t.Fatalf("first tab must stay, got %d", got)
	}
}

func TestZoomPinchClamped(t *testing.T) {
	z := NewZoom()
	z.Start([]Point{{0, 0}, {100, 0}})
	z.Move([]Point{{0, 0}, {1000, 0}})
	if z.Scale != MaxScale {
		t.Fatalf("expected clamp to %v, got %v", MaxScale, z.Scale)
	}
	z.Move([]Point{{0, 0}, {10, 0}})
	if z.Scale != MinScale {
		t.Fatalf("expected clamp to %v, got %v", MinScale, z.Scale)
	}
	z.Move([]Point{{0, 0}, {250, 0}})
	if math.Abs(z.Scale-2.5) > 1e-9 {
		t.Fatalf("expected 2.5, got %v", z.Scale)
	}
}

func TestZoomDegenerateStartDistance(t *testing.T) {
	z := NewZoom()
	z.Start([]Point{{50, 50}, {50, 50}})
	z.Move([]Point{{0, 0}, {300, 400}})
	if z.Scale < MinScale || z.Scale > MaxScale || math.IsNaN(z.Scale) {
		t.Fatalf("scale escaped bounds: %v", z.Scale)
	}
}

func TestZoomScaleBuildsOnPreviousPinch(t *testing.T) {
	z := NewZoom()
	z.Start([]Point{{0, 0}, {100, 0}})
	z.Move([]Point{{0, 0}, {200, 0}})
	z.End()
	z.Start([]Point{{0, 0}, {100, 0}})
	z.Move([]Point{{0, 0}, {150, 0}})
	if math.Abs(z.Scale-3) > 1e-9 {
		t.Fatalf("expected 2 * 1.5 = 3, got %v", z.Scale)
	}
}

func TestZoomDragAndReset(t *testing.T) {
	z := NewZoom()
	z.Start([]Point{{0, 0}, {100, 0}})
	z.Move([]Point{{0, 0}, {200, 0}})
	z.End()

	z.Start([]Point{{10, 10}})
	z.Move([]Point{{40, 30}})
	if z.OffsetX != 30 || z.OffsetY != 20 {
		t.Fatalf("offset mismatch: %v,%v", z.OffsetX, z.OffsetY)
	}
	z.End()
	if z.OffsetX != 30 {
		t.Fatal("zoomed image keeps its translation")
	}

	z.Start([]Point{{0, 0}, {200, 0}})
	z.Move([]Point{{0, 0}, {100, 0}})
	z.End()
	if z.Scale != 1 || z.OffsetX != 0 || z.OffsetY != 0 {
		t.Fatalf("expected reset at 1x, got %+v", z)
	}
}

func TestDispatcherAttachDetach(t *testing.T) {
	d := NewDispatcher()
	var got []Phase
	detach := d.Attach(TargetPage, func(ev Event) { got = append(got, ev.Phase) })

	if !d.Dispatch(Event{Target: TargetPage, Phase: PhaseStart}) {
		t.Fatal("expected a listener")
	}
	if d.Dispatch(Event{Target: TargetLightbox, Phase: PhaseStart}) {
		t.Fatal("lightbox has no listener")
	}
	detach()
	detach()
	if d.Dispatch(Event{Target: TargetPage, Phase: PhaseEnd}) {
		t.Fatal("detached handler still listening")
	}
	if len(got) != 1 || got[0] != PhaseStart {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestDispatcherClose(t *testing.T) {
	d := NewDispatcher()
	d.Attach(TargetPage, func(Event) {})
	d.Attach(TargetLightbox, func(Event) {})
	d.Close()
	if d.Listeners(TargetPage) != 0 || d.Listeners(TargetLightbox) != 0 {
		t.Fatal("close must detach everything")
	}
	d.Attach(TargetPage, func(Event) {})
	if d.Listeners(TargetPage) != 0 {
		t.Fatal("attach after close must be ignored")
	}
}
