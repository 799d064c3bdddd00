package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lifeview/src/grid"
	"lifeview/src/logger"
	"lifeview/src/render"
)

//Options represents the driver's configurable options
type Options struct {
	Width    int
	Height   int
	Density  float64
	Interval time.Duration
	MaxSteps int
}

//default options
const (
	DefWidth    = 100
	DefHeight   = 100
	DefDensity  = 0.35
	DefInterval = time.Millisecond * 20
	DefMaxSteps = 0 //unbounded
)

var DefaultDriverOptions = Options{
	Width:    DefWidth,
	Height:   DefHeight,
	Density:  DefDensity,
	Interval: DefInterval,
	MaxSteps: DefMaxSteps,
}

//The driver running status at the concrete moment
type RunningState int

const (
	RunningStateLoading  RunningState = 0x0
	RunningStateRun      RunningState = 0x1
	RunningStatePaused   RunningState = 0x2
	RunningStateFinished RunningState = 0x3
)

//Status represents the status of the driver after the last frame
type Status struct {
	Generation  int
	RunningMode RunningState
	LiveCells   int
	Born        int
	Died        int
	Rejected    int
	RequestTime time.Duration
	FrameTime   time.Duration
	Err         error
}

//Renderer is the consumer of the fetched states
type Renderer interface {
	Render(s grid.State) error
	Reset()
	State() grid.State
	Stats() render.Stats
}

//Viewer is the interface to any Viewer - the object who displays the driver progress or controls it
type Viewer interface {
	Refresh()
	Register(d *Driver)
	Start()
}

//Driver fetches the states one by one and passes them to the renderer
//requests are strictly sequential: the next step is requested only after
//the previous state is rendered and the interval has elapsed
type Driver struct {
	options  Options
	source   Source
	renderer Renderer
	views    []Viewer
	state    struct {
		Status
		sync.Mutex
	}
	paused   bool
	resumeCh chan struct{}
	renderMu sync.Mutex
}

//NewDriver creates the driver, zero options are replaced by the defaults
func NewDriver(src Source, r Renderer, o *Options) *Driver {
	if o == nil {
		o = &DefaultDriverOptions
	}
	opts := *o
	if opts.Width <= 0 {
		opts.Width = DefWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefHeight
	}
	if opts.Interval < 0 {
		opts.Interval = 0
	}
	return &Driver{
		options:  opts,
		source:   src,
		renderer: r,
		resumeCh: make(chan struct{}, 1),
	}
}

//Options returns the driver configuration
func (d *Driver) Options() Options {
	return d.options
}

//Status returns current driver status represented by Status struct
func (d *Driver) Status() Status {
	d.state.Lock()
	defer d.state.Unlock()
	return d.state.Status
}

//RegisterViewer registers the viewer, it is refreshed after every frame
//must be called before Run
func (d *Driver) RegisterViewer(v Viewer) {
	d.views = append(d.views, v)
	v.Register(d)
}

//Pause holds the step requests until Resume, the current frame stays on the surface
func (d *Driver) Pause() {
	d.state.Lock()
	d.paused = true
	if d.state.RunningMode == RunningStateRun {
		d.state.RunningMode = RunningStatePaused
	}
	d.state.Unlock()
	d.refreshView()
}

//Resume continues the paused driver
func (d *Driver) Resume() {
	d.state.Lock()
	d.paused = false
	if d.state.RunningMode == RunningStatePaused {
		d.state.RunningMode = RunningStateRun
	}
	d.state.Unlock()
	select {
	case d.resumeCh <- struct{}{}:
	default:
	}
	d.refreshView()
}

//TogglePause pauses the running driver or resumes the paused one
func (d *Driver) TogglePause() {
	d.state.Lock()
	paused := d.paused
	d.state.Unlock()
	if paused {
		d.Resume()
	} else {
		d.Pause()
	}
}

//Repaint clears the surface and draws the last rendered state again
//it works in any mode, the paused or finished driver included
//renderMu serializes it with the frames of the running loop
func (d *Driver) Repaint() {
	d.renderMu.Lock()
	s := d.renderer.State()
	d.renderer.Reset()
	err := d.renderer.Render(s)
	d.renderMu.Unlock()
	if err != nil {
		logger.Logger().Error("repaint failed", "err", err)
	}
	d.refreshView()
}

//Run loads the initial board and keeps stepping until ctx is cancelled,
//MaxSteps generations are rendered or the source fails
//the source failure is returned, cancellation returns ctx.Err()
func (d *Driver) Run(ctx context.Context) (err error) {
	defer func() {
		d.state.Lock()
		d.state.RunningMode = RunningStateFinished
		d.state.Err = err
		d.state.Unlock()
		d.refreshView()
		logger.Logger().Info("driver stopped", "generation", d.Status().Generation, "err", err)
	}()

	d.switchRunningState(RunningStateLoading)
	start := time.Now()
	s, err := d.source.Load(ctx, d.options.Width, d.options.Height, d.options.Density)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("client: load: %w", err)
	}
	//the first frame publishes the running mode
	d.state.Lock()
	d.state.RunningMode = RunningStateRun
	if d.paused {
		d.state.RunningMode = RunningStatePaused
	}
	d.state.Unlock()

	for generation := 0; ; generation++ {
		d.frame(generation, s, time.Since(start))

		if d.options.MaxSteps > 0 && generation >= d.options.MaxSteps {
			return nil
		}
		if err := d.wait(ctx); err != nil {
			return err
		}

		start = time.Now()
		s, err = d.source.Step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("client: step %d: %w", generation+1, err)
		}
	}
}

//frame renders one state and publishes the status
//a state with the wrong shape is dropped, the loop goes on
func (d *Driver) frame(generation int, s grid.State, requestTime time.Duration) {
	d.renderMu.Lock()
	start := time.Now()
	err := d.renderer.Render(s)
	frameTime := time.Since(start)
	st := d.renderer.Stats()
	d.renderMu.Unlock()

	d.state.Lock()
	d.state.Generation = generation
	d.state.RequestTime = requestTime
	d.state.FrameTime = frameTime
	if err != nil {
		d.state.Rejected++
	} else {
		d.state.LiveCells = s.LiveCells()
		d.state.Born = st.Born
		d.state.Died = st.Died
	}
	d.state.Unlock()

	if err != nil && !errors.Is(err, render.ErrShapeMismatch) {
		logger.Logger().Error("render failed", "generation", generation, "err", err)
	}
	d.refreshView()
}

//wait sleeps for the interval, then blocks while the driver is paused
func (d *Driver) wait(ctx context.Context) error {
	if d.options.Interval > 0 {
		t := time.NewTimer(d.options.Interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	for {
		d.state.Lock()
		paused := d.paused
		d.state.Unlock()
		if !paused {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.resumeCh:
		}
	}
}

//switchRunningState switch the state of the driver to RunningState
func (d *Driver) switchRunningState(to RunningState) {
	d.state.Lock()
	d.state.RunningMode = to
	d.state.Unlock()
	d.refreshView()
}

//refreshView calls Refresh event for all registered views
func (d *Driver) refreshView() {
	for _, v := range d.views {
		v.Refresh()
	}
}
