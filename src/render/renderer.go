package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"lifeview/src/grid"
	"lifeview/src/logger"
)

//Surface is the pixel canvas the renderer paints on
//it is owned by the caller, the renderer only keeps a reference
type Surface interface {
	Size() (width int, height int)
	FillRect(r image.Rectangle, c color.Color)
}

//Options represents the renderer's configuration, fixed at construction
type Options struct {
	Width  int
	Height int
	Live   color.Color
	Dead   color.Color
}

//default options
const (
	DefWidth  = 100
	DefHeight = 100
)

var (
	DefLiveColor = color.RGBA{R: 200, A: 255}
	DefDeadColor = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

var DefaultOptions = Options{
	Width:  DefWidth,
	Height: DefHeight,
	Live:   DefLiveColor,
	Dead:   DefDeadColor,
}

//ErrShapeMismatch is reported when the incoming state has the wrong number of rows
var ErrShapeMismatch = errors.New("grid shape mismatch")

//ShapeError describes the rejected state
type ShapeError struct {
	Got  int
	Want int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("incoming rows has wrong height %d should be %d", e.Got, e.Want)
}

func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

//Stats counts the cells painted by the last successful Render call
type Stats struct {
	Born int
	Died int
}

//Renderer draws grid states on the surface repainting only the cells whose liveness changed
type Renderer struct {
	options Options
	surface Surface
	rows    grid.State
	stats   Stats
}

//New creates the renderer, the displayed state is assumed to be empty
func New(s Surface, o Options) *Renderer {
	if o.Width <= 0 {
		o.Width = DefWidth
	}
	if o.Height <= 0 {
		o.Height = DefHeight
	}
	if o.Live == nil {
		o.Live = DefLiveColor
	}
	if o.Dead == nil {
		o.Dead = DefDeadColor
	}
	return &Renderer{
		options: o,
		surface: s,
		rows:    grid.Empty(o.Height),
	}
}

//Options returns the renderer configuration
func (r *Renderer) Options() Options {
	return r.options
}

//State returns the last rendered state
func (r *Renderer) State() grid.State {
	return r.rows
}

//Stats returns the paint counters of the last successful Render
func (r *Renderer) Stats() Stats {
	return r.stats
}

//Render draws the new state as the delta against the previous one
//a state with the wrong number of rows is rejected without touching the surface
func (r *Renderer) Render(next grid.State) error {
	if len(next) != r.options.Height {
		err := &ShapeError{Got: len(next), Want: r.options.Height}
		logger.Logger().Warn("render rejected", "err", err)
		return err
	}

	sw, sh := r.surface.Size()
	cw := sw / r.options.Width
	ch := sh / r.options.Height

	var st Stats
	for y := range next {
		top := y * ch
		oldRow, newRow := r.rows[y], next[y]
		oi, ni := 0, 0
		for oi < len(oldRow) || ni < len(newRow) {
			oldDone, newDone := oi >= len(oldRow), ni >= len(newRow)
			switch {
			case !oldDone && !newDone && oldRow[oi] == newRow[ni]:
				//live before and after
				oi++
				ni++
			case oldDone || (!newDone && newRow[ni] < oldRow[oi]):
				x := newRow[ni] * cw
				r.surface.FillRect(image.Rect(x, top, x+cw, top+ch), r.options.Live)
				st.Born++
				ni++
			default:
				x := oldRow[oi] * cw
				r.surface.FillRect(image.Rect(x, top, x+cw, top+ch), r.options.Dead)
				st.Died++
				oi++
			}
		}
	}

	r.rows = next
	r.stats = st
	logger.Logger().Debug("frame rendered", "born", st.Born, "died", st.Died, "cell_w", cw, "cell_h", ch)
	return nil
}

//Reset clears the whole surface with the dead color and forgets the displayed state
//the next Render paints every live cell again, used when the surface geometry changes
func (r *Renderer) Reset() {
	w, h := r.surface.Size()
	r.surface.FillRect(image.Rect(0, 0, w, h), r.options.Dead)
	r.rows = grid.Empty(r.options.Height)
	r.stats = Stats{}
}
