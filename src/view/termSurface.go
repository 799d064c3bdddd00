package view

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/logrusorgru/aurora"
)

//basicColors are the 8 ANSI colors a terminal view can show, with their usual xterm values
var basicColors = []struct {
	rgb   color.RGBA
	color aurora.Color
}{
	{color.RGBA{0, 0, 0, 255}, aurora.BlackFg},
	{color.RGBA{205, 0, 0, 255}, aurora.RedFg},
	{color.RGBA{0, 205, 0, 255}, aurora.GreenFg},
	{color.RGBA{205, 205, 0, 255}, aurora.YellowFg},
	{color.RGBA{0, 0, 238, 255}, aurora.BlueFg},
	{color.RGBA{205, 0, 205, 255}, aurora.MagentaFg},
	{color.RGBA{0, 205, 205, 255}, aurora.CyanFg},
	{color.RGBA{229, 229, 229, 255}, aurora.WhiteFg},
}

//nearestColor maps c to the closest basic ANSI color
func nearestColor(c color.Color) aurora.Color {
	r, g, b, _ := c.RGBA()
	best, bestDist := aurora.WhiteFg, uint64(1<<63)
	for _, bc := range basicColors {
		dr := int64(r>>8) - int64(bc.rgb.R)
		dg := int64(g>>8) - int64(bc.rgb.G)
		db := int64(b>>8) - int64(bc.rgb.B)
		if d := uint64(dr*dr + dg*dg + db*db); d < bestDist {
			best, bestDist = bc.color, d
		}
	}
	return best
}

//TermSurface is a render.Surface where every pixel is one character cell of a terminal view
//fills go to a buffer, WriteTo copies the buffer to the view
type TermSurface struct {
	mu      sync.Mutex
	width   int
	height  int
	cells   []string
	fillers map[color.RGBA]string
}

//NewTermSurface creates the surface of width x height characters
func NewTermSurface(width int, height int) *TermSurface {
	t := &TermSurface{fillers: map[color.RGBA]string{}}
	t.Resize(width, height)
	return t
}

//Size returns the size in characters
func (t *TermSurface) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

//Resize reallocates the buffer, the content is dropped
func (t *TermSurface) Resize(width int, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	t.mu.Lock()
	t.width, t.height = width, height
	t.cells = make([]string, width*height)
	t.mu.Unlock()
}

//FillRect paints the characters of r, clipped to the surface
func (t *TermSurface) FillRect(r image.Rectangle, c color.Color) {
	filler := t.filler(c)
	t.mu.Lock()
	defer t.mu.Unlock()
	r = r.Intersect(image.Rect(0, 0, t.width, t.height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := t.cells[y*t.width : (y+1)*t.width]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = filler
		}
	}
}

//WriteTo writes the buffer line by line, unpainted characters are blanks
func (t *TermSurface) WriteTo(w io.Writer) (int64, error) {
	t.mu.Lock()
	var b bytes.Buffer
	for y := 0; y < t.height; y++ {
		//line feed char
		if y != 0 {
			b.WriteByte(10)
		}
		for _, f := range t.cells[y*t.width : (y+1)*t.width] {
			if f == "" {
				f = " "
			}
			b.WriteString(f)
		}
	}
	t.mu.Unlock()
	return b.WriteTo(w)
}

func (t *TermSurface) filler(c color.Color) string {
	key := color.RGBAModel.Convert(c).(color.RGBA)
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.fillers[key]
	if !ok {
		f = aurora.Colorize("█", nearestColor(c)).String()
		t.fillers[key] = f
	}
	return f
}
