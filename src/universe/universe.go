package universe

import (
	"time"

	"lifeview/src/grid"
)

type Cell bool

type Area struct {
	Width    int
	Height   int
	Entities [][]Cell
}

//Options represents the Universe's configurable options
type Options struct {
	Width   int
	Height  int
	Seed    int64
	Engine  string
	Workers int
}

//Status represents the status of the Universe at concrete moment
type Status struct {
	IterationNum  int
	LiveCells     int
	IterationTime time.Duration
}

//default options
const (
	DefWidth   = 100
	DefHeight  = 100
	DefSeed    = 32
	DefEngine  = EngineSimple
	DefWorkers = 10
)

//engine names
const (
	EngineSimple        = "simple"
	EngineMultithreaded = "multithreaded"
)

var DefaultUniverseOptions = Options{
	Width:   DefWidth,
	Height:  DefHeight,
	Seed:    DefSeed,
	Engine:  DefEngine,
	Workers: DefWorkers,
}

//Universe is the simulation process behind the board server
//all calls are serialized, it is safe to use from concurrent request handlers
type Universe interface {
	Options() Options
	Status() Status
	State() grid.State
	Reset(width int, height int, density float64) grid.State
	Step() grid.State
	Close()
}

//Engines lists the available engine names
func Engines() []string {
	return []string{EngineSimple, EngineMultithreaded}
}

//New creates the universe with the engine named in the options
//unknown engine names fall back to the simple one
func New(o *Options) Universe {
	if o == nil {
		o = &DefaultUniverseOptions
	}
	if o.Engine == EngineMultithreaded {
		return NewMultithreadedUniverse(o)
	}
	return NewBaseUniverse(o)
}

//createArea allocate the new area
func createArea(width int, height int) Area {
	area := Area{Width: width, Height: height, Entities: make([][]Cell, height)}
	b := make([]Cell, width*height)
	for i := range area.Entities {
		start := width * i
		area.Entities[i] = b[start : start+width : start+width]
	}
	return area
}

//serialize converts the area to the live column lists
func (a Area) serialize() grid.State {
	s := make(grid.State, a.Height)
	for y, line := range a.Entities {
		row := []int{}
		for x, e := range line {
			if e {
				row = append(row, x)
			}
		}
		s[y] = row
	}
	return s
}
