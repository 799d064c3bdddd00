package grid

//State is one generation of the grid
//every row holds the live column indices of that row in strictly ascending order
type State [][]int

//Empty returns the state with height rows and no live cells
func Empty(height int) State {
	s := make(State, height)
	for i := range s {
		s[i] = []int{}
	}
	return s
}

//Height returns the number of rows
func (s State) Height() int {
	return len(s)
}

//LiveCells calculates the count of live cells
func (s State) LiveCells() int {
	n := 0
	for _, row := range s {
		n += len(row)
	}
	return n
}

//FromCells converts the row-major matrix of cells to the live column lists
func FromCells(cells [][]bool) State {
	s := make(State, len(cells))
	for y, line := range cells {
		row := []int{}
		for x, live := range line {
			if live {
				row = append(row, x)
			}
		}
		s[y] = row
	}
	return s
}

//Cells expands the state back to a width x height matrix, columns outside [0, width) are dropped
func (s State) Cells(width int) [][]bool {
	cells := make([][]bool, len(s))
	b := make([]bool, width*len(s))
	for y, row := range s {
		start := width * y
		cells[y] = b[start : start+width : start+width]
		for _, x := range row {
			if x >= 0 && x < width {
				cells[y][x] = true
			}
		}
	}
	return cells
}
