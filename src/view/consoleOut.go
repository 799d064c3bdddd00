package view

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"lifeview/src/client"
)

//ConsoleOut is the headless viewer printing the progress lines
type ConsoleOut struct {
	d         *client.Driver
	w         io.Writer
	every     int
	last      int
	startTime time.Time
}

//NewConsoleOut creates the viewer printing every n-th generation to stdout
func NewConsoleOut(every int) *ConsoleOut {
	if every <= 0 {
		every = 10
	}
	return &ConsoleOut{w: os.Stdout, every: every, last: -1}
}

func (c *ConsoleOut) Refresh() {
	st := c.d.Status()
	switch st.RunningMode {
	case client.RunningStateFinished:
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last generation": st.Generation,
			"Total time":      totalTime,
			"Live cells":      st.LiveCells,
			"Rejected frames": st.Rejected,
		}
		if st.Err != nil {
			resultData["Error"] = st.Err
		}
		_, _ = fmt.Fprintln(c.w, "\nFinished:")
		c.printHashData(resultData)
	case client.RunningStateRun:
		if st.Generation != c.last && st.Generation%c.every == 0 {
			c.last = st.Generation
			_, _ = fmt.Fprintf(c.w, "  Generation: %v, live cells: %v, painted: +%v -%v\n", st.Generation, st.LiveCells, st.Born, st.Died)
		}
	}
}

func (c *ConsoleOut) Register(d *client.Driver) {
	c.d = d
	o := d.Options()
	_, _ = fmt.Fprintln(c.w, "Running configuration:")
	_, _ = fmt.Fprintf(c.w, "  Dimension: %v x %v\n", o.Width, o.Height)
	_, _ = fmt.Fprintf(c.w, "  Density: %v\n", o.Density)
	_, _ = fmt.Fprintf(c.w, "  Interval: %v\n", o.Interval)
	_, _ = fmt.Fprintf(c.w, "  Max generations: %v steps\n", o.MaxSteps)
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	_, _ = fmt.Fprintln(c.w, "\nRendering started...")
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		_, _ = fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}
