package universe

import (
	"math/rand"
	"time"

	"lifeview/src/grid"
	"lifeview/src/logger"
)

//BaseUniverse is the base universe's engine
//implements Universe interface
//the world is toroidal: the cells on the edges are neighbours of the opposite edges
//can be used to create different implementations by redefining nextIteration func
type BaseUniverse struct {
	options       Options
	state         Status
	area          Area
	tmpBuff       Area
	rnd           *rand.Rand
	controlCh     chan func()
	closeCh       chan bool
	nextIteration func() (liveCells int)
}

//NewBaseUniverse creates the BaseUniverse instance with an empty area
func NewBaseUniverse(o *Options) *BaseUniverse {
	if o == nil {
		o = &DefaultUniverseOptions
	}
	opts := *o
	if opts.Width <= 0 {
		opts.Width = DefWidth
	}
	if opts.Height <= 0 {
		opts.Height = opts.Width
	}
	opts.Engine = EngineSimple

	u := BaseUniverse{
		options:   opts,
		rnd:       rand.New(rand.NewSource(opts.Seed)),
		controlCh: make(chan func()),
		closeCh:   make(chan bool, 1),
	}
	//nextIteration can be implemented by successor
	u.nextIteration = u._nextIteration
	u.area = createArea(opts.Width, opts.Height)
	u.tmpBuff = createArea(opts.Width, opts.Height)
	go u.mainLoop()
	return &u
}

//Options returns the universe configuration
func (u *BaseUniverse) Options() Options {
	var o Options
	u.do(func() { o = u.options })
	return o
}

//Status returns current universe status represented by Status struct
func (u *BaseUniverse) Status() Status {
	var st Status
	u.do(func() { st = u.state })
	return st
}

//State returns the current generation as live column lists
func (u *BaseUniverse) State() grid.State {
	var s grid.State
	u.do(func() { s = u.area.serialize() })
	return s
}

//Reset replaces the area with a new one of the given size
//every cell is settled with the probability density, density <= 0 gives an empty area
func (u *BaseUniverse) Reset(width int, height int, density float64) grid.State {
	var s grid.State
	u.do(func() {
		u.area = createArea(width, height)
		u.tmpBuff = createArea(width, height)
		u.options.Width, u.options.Height = width, height
		u.state = Status{}
		if density > 0 {
			u.settleWithRandomData(density)
		}
		u.state.LiveCells = u.liveCells()
		s = u.area.serialize()
		logger.Logger().Info("universe reset", "width", width, "height", height, "density", density, "live", u.state.LiveCells)
	})
	return s
}

//Step does one simulation step and returns the new generation
func (u *BaseUniverse) Step() grid.State {
	var s grid.State
	u.do(func() {
		start := time.Now()
		u.state.LiveCells = u.nextIteration()
		u.state.IterationNum++
		u.state.IterationTime = time.Since(start)
		s = u.area.serialize()
		logger.Logger().Debug("universe step", "iteration", u.state.IterationNum, "live", u.state.LiveCells, "took", u.state.IterationTime)
	})
	return s
}

//Close stops the main loop, returns immediately
func (u *BaseUniverse) Close() {
	u.closeCh <- true
}

//do passes f to the main loop and waits for it
func (u *BaseUniverse) do(f func()) {
	done := make(chan struct{})
	u.controlCh <- func() {
		f()
		close(done)
	}
	<-done
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (u *BaseUniverse) mainLoop() {
	var c = false
	for !c {
		select {
		case cmd := <-u.controlCh:
			cmd()
		case c = <-u.closeCh:
		}
	}
}

//settleWithRandomData populates the area with random data
func (u *BaseUniverse) settleWithRandomData(density float64) {
	for y := range u.area.Entities {
		for x := range u.area.Entities[y] {
			u.area.Entities[y][x] = Cell(u.rnd.Float64() < density)
		}
	}
}

//liveCells calculates the count of live cells
func (u *BaseUniverse) liveCells() int {
	liveCells := 0
	for y := range u.area.Entities {
		for x := range u.area.Entities[y] {
			if u.area.Entities[y][x] {
				liveCells++
			}
		}
	}
	return liveCells
}

//_nextIteration does one simulation cycle with two buffers
//all cells state is calculated to the tmp buffer and then the buffers are swapped
func (u *BaseUniverse) _nextIteration() (liveCells int) {
	for y := range u.area.Entities {
		for x := range u.area.Entities[y] {
			nextState := u.cellNextState(x, y)
			if nextState {
				liveCells++
			}
			u.tmpBuff.Entities[y][x] = Cell(nextState)
		}
	}
	u.area, u.tmpBuff = u.tmpBuff, u.area
	return
}

//cellNextState calculates the next state for the cell
//exactly 3 neighbours: on, exactly 2: keep the current state, otherwise: off
func (u *BaseUniverse) cellNextState(x int, y int) (live bool) {
	liveNeighbours := 0
	area := u.area
	for i := -1; i < 2; i++ {
		for j := -1; j < 2; j++ {
			//skip my position
			if i == 0 && j == 0 {
				continue
			}
			nx := (x + i + area.Width) % area.Width
			ny := (y + j + area.Height) % area.Height
			if area.Entities[ny][nx] {
				liveNeighbours++
			}
		}
	}
	return liveNeighbours == 3 || (liveNeighbours == 2 && bool(area.Entities[y][x]))
}
