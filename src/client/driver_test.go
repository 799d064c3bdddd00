package client

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"lifeview/src/grid"
	"lifeview/src/render"
)

//fakeSource replays the given states, Load returns the first one
type fakeSource struct {
	mu      sync.Mutex
	states  []grid.State
	next    int
	loads   int
	steps   int
	failAt  int
	loadErr error
}

func (s *fakeSource) Load(_ context.Context, width int, height int, density float64) (grid.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	s.next = 1
	return s.states[0], nil
}

func (s *fakeSource) Step(_ context.Context) (grid.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps++
	if s.failAt > 0 && s.steps == s.failAt {
		return nil, errors.New("connection refused")
	}
	st := s.states[s.next%len(s.states)]
	s.next++
	return st, nil
}

type nullSurface struct {
	mu    sync.Mutex
	fills int
}

func (s *nullSurface) Size() (int, int) { return 40, 40 }

func (s *nullSurface) FillRect(image.Rectangle, color.Color) {
	s.mu.Lock()
	s.fills++
	s.mu.Unlock()
}

func (s *nullSurface) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fills
}

type countingViewer struct {
	mu       sync.Mutex
	refresh  int
	register int
}

func (v *countingViewer) Refresh() {
	v.mu.Lock()
	v.refresh++
	v.mu.Unlock()
}
func (v *countingViewer) Register(*Driver) { v.register++ }
func (v *countingViewer) Start()           {}

func newTestDriver(src Source, o Options) (*Driver, *render.Renderer) {
	r := render.New(&nullSurface{}, render.Options{Width: 4, Height: 2})
	return NewDriver(src, r, &o), r
}

func TestDriver_MaxSteps(t *testing.T) {
	src := &fakeSource{states: []grid.State{{{0}, {}}, {{0, 1}, {3}}, {{}, {3}}}}
	d, r := newTestDriver(src, Options{Width: 4, Height: 2, MaxSteps: 2})
	v := &countingViewer{}
	d.RegisterViewer(v)

	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if src.loads != 1 || src.steps != 2 {
		t.Errorf("requests: got %d loads %d steps, want 1 and 2", src.loads, src.steps)
	}
	st := d.Status()
	if st.Generation != 2 || st.RunningMode != RunningStateFinished || st.LiveCells != 1 {
		t.Errorf("status: got %+v", st)
	}
	if st.Born != 0 || st.Died != 2 {
		t.Errorf("paint counters: got born %d died %d, want 0 and 2", st.Born, st.Died)
	}
	if got := r.State().LiveCells(); got != 1 {
		t.Errorf("renderer state: got %d live cells", got)
	}
	if v.register != 1 || v.refresh == 0 {
		t.Errorf("viewer: got %d registrations %d refreshes", v.register, v.refresh)
	}
}

func TestDriver_ShapeMismatchContinues(t *testing.T) {
	src := &fakeSource{states: []grid.State{{{0}, {}}, {{1}}, {{2}, {}}}}
	d, r := newTestDriver(src, Options{Width: 4, Height: 2, MaxSteps: 2})

	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if st := d.Status(); st.Rejected != 1 {
		t.Errorf("rejected: got %d, want 1", st.Rejected)
	}
	if got := r.State(); len(got[0]) != 1 || got[0][0] != 2 {
		t.Errorf("renderer state: got %v", got)
	}
}

func TestDriver_StepFailureStops(t *testing.T) {
	src := &fakeSource{states: []grid.State{{{0}, {}}}, failAt: 3}
	d, _ := newTestDriver(src, Options{Width: 4, Height: 2})

	err := d.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if src.steps != 3 {
		t.Errorf("steps: got %d, want 3", src.steps)
	}
	st := d.Status()
	if st.Generation != 2 || st.Err == nil || st.RunningMode != RunningStateFinished {
		t.Errorf("status: got %+v", st)
	}
}

func TestDriver_LoadFailure(t *testing.T) {
	loadErr := errors.New("no route to host")
	d, _ := newTestDriver(&fakeSource{loadErr: loadErr}, Options{})
	if err := d.Run(context.Background()); !errors.Is(err, loadErr) {
		t.Errorf("got %v, want wrapped %v", err, loadErr)
	}
}

func TestDriver_Cancel(t *testing.T) {
	src := &fakeSource{states: []grid.State{{{0}, {}}, {{1}, {}}}}
	d, _ := newTestDriver(src, Options{Width: 4, Height: 2, Interval: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("driver did not stop after cancel")
	}
}

func TestDriver_PauseResume(t *testing.T) {
	src := &fakeSource{states: []grid.State{{{0}, {}}, {{1}, {}}}}
	d, _ := newTestDriver(src, Options{Width: 4, Height: 2, Interval: time.Millisecond, MaxSteps: 5})
	d.Pause()

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	time.Sleep(30 * time.Millisecond)
	src.mu.Lock()
	steps := src.steps
	src.mu.Unlock()
	if steps != 0 {
		t.Fatalf("paused driver requested %d steps", steps)
	}
	if st := d.Status(); st.RunningMode != RunningStatePaused {
		t.Errorf("mode: got %v, want paused", st.RunningMode)
	}

	d.TogglePause()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("driver did not resume")
	}
	if src.steps != 5 {
		t.Errorf("steps: got %d, want 5", src.steps)
	}
}

func TestDriver_Repaint(t *testing.T) {
	src := &fakeSource{states: []grid.State{{{0, 1}, {2}}}}
	surface := &nullSurface{}
	r := render.New(surface, render.Options{Width: 4, Height: 2})
	d := NewDriver(src, r, &Options{Width: 4, Height: 2, MaxSteps: 1})

	if err := d.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	//three cells on the first frame, nothing changes on the second one
	if got := surface.count(); got != 3 {
		t.Fatalf("fills: got %d, want 3", got)
	}
	//the finished driver still redraws: one clear and three cells
	d.Repaint()
	if got := surface.count(); got != 7 {
		t.Errorf("fills after repaint: got %d, want 7", got)
	}
	if got := r.State().LiveCells(); got != 3 {
		t.Errorf("renderer state after repaint: got %d live cells", got)
	}
}

func TestDriver_RepaintPaused(t *testing.T) {
	src := &fakeSource{states: []grid.State{{{0, 1}, {2}}}}
	surface := &nullSurface{}
	r := render.New(surface, render.Options{Width: 4, Height: 2})
	d := NewDriver(src, r, &Options{Width: 4, Height: 2, Interval: time.Millisecond})
	d.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.Now().Add(time.Second)
	for surface.count() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("first frame not rendered")
		}
		time.Sleep(time.Millisecond)
	}

	d.Repaint()
	if got := surface.count(); got != 7 {
		t.Errorf("fills after repaint: got %d, want 7", got)
	}
	src.mu.Lock()
	steps := src.steps
	src.mu.Unlock()
	if steps != 0 {
		t.Errorf("repaint requested %d steps", steps)
	}
}

func TestNewDriver_Defaults(t *testing.T) {
	d := NewDriver(&fakeSource{}, nil, nil)
	if o := d.Options(); o != DefaultDriverOptions {
		t.Errorf("got %+v, want %+v", o, DefaultDriverOptions)
	}
}
