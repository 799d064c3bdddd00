package universe

import (
	"sync"
)

/*
	Universe implementation with multithreaded computation algorithm
	the field is splitted into the row bands each of which is computed by individual goroutine
*/

const (
	DefMinRowsPerWorker = 3 //minimum rows for one worker
)

type MultithreadedUniverse struct {
	*BaseUniverse
	workers   int
	workAreas []workArea
}

//workArea describe the rows [y1, y2] computed by one worker
type workArea struct {
	y1        int
	y2        int
	liveCells int
}

func NewMultithreadedUniverse(o *Options) *MultithreadedUniverse {
	mu := MultithreadedUniverse{BaseUniverse: NewBaseUniverse(o)}
	//redefine the nextIteration
	mu.BaseUniverse.nextIteration = mu.nextIteration
	mu.options.Engine = EngineMultithreaded
	mu.workers = mu.options.Workers
	if mu.workers <= 0 {
		mu.workers = DefWorkers
	}
	return &mu
}

//splitRows divides height rows into at most workers bands of at least DefMinRowsPerWorker rows
func splitRows(height int, workers int) []workArea {
	linesPerWorker := height / workers
	if linesPerWorker < DefMinRowsPerWorker {
		linesPerWorker = DefMinRowsPerWorker
	} else if linesPerWorker*workers < height {
		linesPerWorker++
	}
	areas := make([]workArea, 0, workers)
	for y1 := 0; y1 < height; y1 += linesPerWorker {
		y2 := y1 + linesPerWorker - 1
		if y2 > height-1 {
			y2 = height - 1
		}
		areas = append(areas, workArea{y1: y1, y2: y2})
	}
	return areas
}

//nextIteration calcualtes next state for the universe
//starts goroutines, waiting for finishing and swaps the buffers
func (mu *MultithreadedUniverse) nextIteration() (liveCells int) {
	if n := len(mu.workAreas); n == 0 || mu.workAreas[n-1].y2 != mu.area.Height-1 {
		mu.workAreas = splitRows(mu.area.Height, mu.workers)
	}
	var waitGroup sync.WaitGroup
	for i := range mu.workAreas {
		workArea := &mu.workAreas[i]
		waitGroup.Add(1)
		go func() {
			mu.calcArea(workArea)
			waitGroup.Done()
		}()
	}
	waitGroup.Wait()
	for _, workArea := range mu.workAreas {
		liveCells += workArea.liveCells
	}
	mu.area, mu.tmpBuff = mu.tmpBuff, mu.area
	return
}

//calcArea calculates new states for the cells inside workArea
//every worker reads the shared area and writes only its own rows of the tmp buffer
func (mu *MultithreadedUniverse) calcArea(wa *workArea) {
	wa.liveCells = 0
	for y := wa.y1; y <= wa.y2; y++ {
		for x := 0; x < mu.area.Width; x++ {
			nextState := mu.cellNextState(x, y)
			if nextState {
				wa.liveCells++
			}
			mu.tmpBuff.Entities[y][x] = Cell(nextState)
		}
	}
}
