package render

import (
	"errors"
	"image"
	"image/color"
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"lifeview/src/grid"
)

var (
	live = color.RGBA{R: 1, A: 255}
	dead = color.RGBA{G: 1, A: 255}
)

type fill struct {
	rect  image.Rectangle
	color color.Color
}

//recordingSurface remembers every fill and the color of each pixel cell painted last
type recordingSurface struct {
	w, h  int
	fills []fill
}

func (s *recordingSurface) Size() (int, int) { return s.w, s.h }

func (s *recordingSurface) FillRect(r image.Rectangle, c color.Color) {
	s.fills = append(s.fills, fill{r, c})
}

func (s *recordingSurface) reset() { s.fills = nil }

//columns returns the columns of row y painted with c, assuming cells of cw x ch pixels
func (s *recordingSurface) columns(c color.Color, cw, ch int) map[int][]int {
	out := map[int][]int{}
	for _, f := range s.fills {
		if f.color != c {
			continue
		}
		out[f.rect.Min.Y/ch] = append(out[f.rect.Min.Y/ch], f.rect.Min.X/cw)
	}
	return out
}

func newTestRenderer(width, height int) (*Renderer, *recordingSurface) {
	s := &recordingSurface{w: width * 10, h: height * 5}
	r := New(s, Options{Width: width, Height: height, Live: live, Dead: dead})
	return r, s
}

func TestRender_FromEmpty(t *testing.T) {
	r, s := newTestRenderer(10, 1)
	if err := r.Render(grid.State{{0, 4, 9}}); err != nil {
		t.Fatal(err)
	}
	want := []fill{
		{image.Rect(0, 0, 10, 5), live},
		{image.Rect(40, 0, 50, 5), live},
		{image.Rect(90, 0, 100, 5), live},
	}
	if !reflect.DeepEqual(s.fills, want) {
		t.Errorf("got %v, want %v", s.fills, want)
	}
	if st := r.Stats(); st.Born != 3 || st.Died != 0 {
		t.Errorf("stats: got %+v", st)
	}
}

func TestRender_ToEmpty(t *testing.T) {
	r, s := newTestRenderer(10, 1)
	_ = r.Render(grid.State{{0, 4, 9}})
	s.reset()
	if err := r.Render(grid.State{{}}); err != nil {
		t.Fatal(err)
	}
	want := []fill{
		{image.Rect(0, 0, 10, 5), dead},
		{image.Rect(40, 0, 50, 5), dead},
		{image.Rect(90, 0, 100, 5), dead},
	}
	if !reflect.DeepEqual(s.fills, want) {
		t.Errorf("got %v, want %v", s.fills, want)
	}
}

func TestRender_UnchangedRow(t *testing.T) {
	r, s := newTestRenderer(8, 1)
	_ = r.Render(grid.State{{2, 5}})
	s.reset()
	_ = r.Render(grid.State{{2, 5}})
	if len(s.fills) != 0 {
		t.Errorf("unchanged row painted %v", s.fills)
	}
}

func TestRender_Mixed(t *testing.T) {
	r, s := newTestRenderer(8, 1)
	_ = r.Render(grid.State{{1, 3, 5}})
	s.reset()
	_ = r.Render(grid.State{{1, 4, 5}})
	want := []fill{
		{image.Rect(30, 0, 40, 5), dead},
		{image.Rect(40, 0, 50, 5), live},
	}
	if !reflect.DeepEqual(s.fills, want) {
		t.Errorf("got %v, want %v", s.fills, want)
	}
}

func TestRender_RowOrigin(t *testing.T) {
	r, s := newTestRenderer(4, 3)
	_ = r.Render(grid.State{{}, {}, {2}})
	want := []fill{{image.Rect(20, 10, 30, 15), live}}
	if !reflect.DeepEqual(s.fills, want) {
		t.Errorf("got %v, want %v", s.fills, want)
	}
}

func TestRender_ShapeMismatch(t *testing.T) {
	r, s := newTestRenderer(10, 10)
	first := grid.Empty(10)
	first[3] = []int{1, 2}
	_ = r.Render(first)
	s.reset()

	short := grid.Empty(9)
	short[0] = []int{5}
	err := r.Render(short)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("got %v, want ErrShapeMismatch", err)
	}
	var se *ShapeError
	if !errors.As(err, &se) || se.Got != 9 || se.Want != 10 {
		t.Errorf("shape error: got %+v", se)
	}
	if len(s.fills) != 0 {
		t.Errorf("rejected state painted %v", s.fills)
	}
	if !reflect.DeepEqual(r.State(), first) {
		t.Errorf("state changed after rejection: %v", r.State())
	}
}

func TestRender_Idempotent(t *testing.T) {
	r, s := newTestRenderer(16, 16)
	st := randomState(rand.New(rand.NewSource(1)), 16, 16, 0.4)
	_ = r.Render(st)
	s.reset()
	_ = r.Render(st)
	if len(s.fills) != 0 {
		t.Errorf("second render painted %d rects", len(s.fills))
	}
}

func TestRender_ResizedSurface(t *testing.T) {
	r, s := newTestRenderer(4, 2)
	_ = r.Render(grid.State{{0}, {}})
	s.reset()
	s.w, s.h = 9, 5
	_ = r.Render(grid.State{{0, 3}, {}})
	want := []fill{{image.Rect(6, 0, 8, 2), live}}
	if !reflect.DeepEqual(s.fills, want) {
		t.Errorf("got %v, want %v", s.fills, want)
	}
}

func TestReset(t *testing.T) {
	r, s := newTestRenderer(4, 2)
	_ = r.Render(grid.State{{0, 1}, {3}})
	s.reset()
	r.Reset()
	want := []fill{{image.Rect(0, 0, 40, 10), dead}}
	if !reflect.DeepEqual(s.fills, want) {
		t.Errorf("got %v, want %v", s.fills, want)
	}
	if r.State().LiveCells() != 0 {
		t.Errorf("state not cleared: %v", r.State())
	}
	s.reset()
	_ = r.Render(grid.State{{0, 1}, {3}})
	if len(s.fills) != 3 {
		t.Errorf("full repaint: got %d fills, want 3", len(s.fills))
	}
}

func TestNew_Defaults(t *testing.T) {
	r := New(&recordingSurface{}, Options{})
	o := r.Options()
	if o.Width != DefWidth || o.Height != DefHeight || o.Live != DefLiveColor || o.Dead != DefDeadColor {
		t.Errorf("got %+v", o)
	}
	if r.State().Height() != DefHeight {
		t.Errorf("initial state height: got %d", r.State().Height())
	}
}

//the painted set must equal the symmetric difference, split by direction
func TestRender_RandomSequences(t *testing.T) {
	const width, height = 24, 12
	rng := rand.New(rand.NewSource(32))
	r, s := newTestRenderer(width, height)
	prev := grid.Empty(height)
	for i := 0; i < 50; i++ {
		next := randomState(rng, width, height, rng.Float64())
		s.reset()
		if err := r.Render(next); err != nil {
			t.Fatal(err)
		}
		born := s.columns(live, 10, 5)
		died := s.columns(dead, 10, 5)
		for y := 0; y < height; y++ {
			wantBorn, wantDied := diff(prev[y], next[y])
			if got := sorted(born[y]); !reflect.DeepEqual(got, wantBorn) {
				t.Fatalf("step %d row %d born: got %v, want %v", i, y, got, wantBorn)
			}
			if got := sorted(died[y]); !reflect.DeepEqual(got, wantDied) {
				t.Fatalf("step %d row %d died: got %v, want %v", i, y, got, wantDied)
			}
		}
		prev = next
	}
	if !reflect.DeepEqual(r.State(), prev) {
		t.Errorf("final state is not the last rendered one")
	}
}

func BenchmarkRender(b *testing.B) {
	const width, height = 400, 400
	rng := rand.New(rand.NewSource(7))
	states := []grid.State{
		randomState(rng, width, height, 0.35),
		randomState(rng, width, height, 0.35),
	}
	r := New(&recordingSurface{w: width, h: height}, Options{Width: width, Height: height})
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Render(states[i%2])
	}
}

func randomState(rng *rand.Rand, width, height int, density float64) grid.State {
	s := make(grid.State, height)
	for y := range s {
		row := []int{}
		for x := 0; x < width; x++ {
			if rng.Float64() < density {
				row = append(row, x)
			}
		}
		s[y] = row
	}
	return s
}

func diff(old, next []int) (born []int, died []int) {
	in := func(v int, list []int) bool {
		for _, x := range list {
			if x == v {
				return true
			}
		}
		return false
	}
	born, died = []int{}, []int{}
	for _, x := range next {
		if !in(x, old) {
			born = append(born, x)
		}
	}
	for _, x := range old {
		if !in(x, next) {
			died = append(died, x)
		}
	}
	return
}

func sorted(v []int) []int {
	out := append([]int{}, v...)
	sort.Ints(out)
	return out
}
