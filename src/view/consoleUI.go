package view

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"lifeview/src/client"
)

const fieldView = "field"

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

//ConsoleUI is the terminal viewer: the field pane is the drawing surface of the renderer
type ConsoleUI struct {
	d       *client.Driver
	g       *gocui.Gui
	k       []keyBindings
	surface *TermSurface
	onQuit  func()
}

var (
	runningStateDescr = map[client.RunningState]string{
		client.RunningStateLoading:  aurora.Colorize("loading", aurora.BlueFg).String(),
		client.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
		client.RunningStatePaused:   aurora.Colorize("paused", aurora.YellowFg).String(),
		client.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
	}
)

//NewViewTerminal creates the terminal viewer drawing the field on surface
//onQuit is called when the user leaves the UI, usually it cancels the driver
func NewViewTerminal(surface *TermSurface, onQuit func()) (*ConsoleUI, error) {
	t := ConsoleUI{
		surface: surface,
		onQuit:  onQuit,
	}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, fmt.Errorf("view: init terminal: %w", err)
	}
	t.g = g

	t.k = []keyBindings{
		{gocui.KeyCtrlC,
			"^C",
			"Exit",
			t.cmdQuit,
			""},
		{'q',
			"Q",
			"Exit",
			t.cmdQuit,
			""},
		{'p',
			"P",
			"Pause/Resume",
			t.cmdPause,
			""},
		{'c',
			"C",
			"Repaint",
			t.cmdRepaint,
			""},
	}
	t.g.SetManagerFunc(t.layout)

	if err := t.initKeyBindings(t.k); err != nil {
		t.g.Close()
		return nil, err
	}
	return &t, nil
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) error {
	for _, kb := range k {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			return fmt.Errorf("view: key binding %s: %w", kb.name, err)
		}
	}
	return nil
}

func (t *ConsoleUI) Register(d *client.Driver) {
	t.d = d
}

//Start runs the terminal main loop until the user quits
func (t *ConsoleUI) Start() {
	defer t.g.Close()
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		t.quit()
	}
}

//Refresh is called by the driver after every frame, it is safe to call from any goroutine
func (t *ConsoleUI) Refresh() {
	t.g.Update(func(g *gocui.Gui) error {
		t.renderField(g)
		t.renderConfiguration(g)
		t.renderStatus(g)
		return nil
	})
}

//renderField copies the surface buffer to the field pane
//the renderer only touched the cells that changed, the view itself is rebuilt from the buffer
func (t *ConsoleUI) renderField(g *gocui.Gui) {
	v, err := g.View(fieldView)
	if err != nil {
		return
	}
	v.Clear()
	_, _ = t.surface.WriteTo(v)
}

func (t *ConsoleUI) renderStatus(g *gocui.Gui) {
	if t.d == nil {
		return
	}
	s := t.d.Status()
	if v, e := g.View("status"); e == nil {
		v.Clear()
		_, _ = fmt.Fprintln(v, t.renderProp("Generation", "%v", s.Generation))
		_, _ = fmt.Fprintln(v, t.renderProp("Live Cells", "%v", s.LiveCells))
		_, _ = fmt.Fprintln(v, t.renderProp("Painted", "+%v -%v", s.Born, s.Died))
		_, _ = fmt.Fprintln(v, t.renderProp("Request time", "%v", s.RequestTime.Round(time.Microsecond)))
		_, _ = fmt.Fprintln(v, t.renderProp("Render time", "%v", s.FrameTime.Round(time.Microsecond)))
		_, _ = fmt.Fprintln(v, t.renderProp("Rejected", "%v", s.Rejected))
		_, _ = fmt.Fprintln(v, t.renderProp("Mode", "%v", runningStateDescr[s.RunningMode]))
		if s.Err != nil {
			_, _ = fmt.Fprintln(v, " "+aurora.Red(s.Err.Error()).String())
		}
	}
}

func (t *ConsoleUI) renderConfiguration(g *gocui.Gui) {
	if t.d == nil {
		return
	}
	c := t.d.Options()
	if v, e := g.View("configuration"); e == nil {
		v.Clear()
		_, _ = fmt.Fprintln(v, t.renderProp("Dimension", "%v x %v", c.Width, c.Height))
		_, _ = fmt.Fprintln(v, t.renderProp("Density", "%v", c.Density))
		_, _ = fmt.Fprintln(v, t.renderProp("Interval", "%v", c.Interval))
		if c.MaxSteps > 0 {
			_, _ = fmt.Fprintln(v, t.renderProp("Generations", "%v steps", c.MaxSteps))
		}
	}
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {

	maxX, maxY := g.Size()
	leftColumnWidth := 28
	minWindowHeight := 20

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView(fieldView)
		return nil
	}
	if _, err := t.headerLayout(g, 3, "\"The Life\" viewer"); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
	}

	if v, err := g.SetView("configuration", 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
		t.renderConfiguration(g)
	}

	if v, err := g.SetView("status", 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
		t.renderStatus(g)
	}

	v, err := g.SetView(fieldView, leftColumnWidth+1, 3, maxX-1, maxY-5)
	if err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Field"
		v.Frame = true
	}
	t.resizeField(v)

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		b := bytes.Buffer{}
		b.WriteString("KEYBINDINGS: ")
		for i, k := range t.k {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		_, _ = fmt.Fprintln(v, b.String())
	}

	return nil
}

//resizeField follows the field pane size, a new size drops the surface content
//and asks the driver for a full repaint
func (t *ConsoleUI) resizeField(v *gocui.View) {
	w, h := v.Size()
	if sw, sh := t.surface.Size(); sw == w && sh == h {
		return
	}
	t.surface.Resize(w, h)
	if t.d != nil {
		t.d.Repaint()
	}
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		pad := 0
		if maxX > len(text) {
			pad = (maxX - len(text)) / 2
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", pad)+text)
	}
	return
}

func (t *ConsoleUI) quit() {
	if t.onQuit != nil {
		t.onQuit()
	}
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	t.quit()
	return gocui.ErrQuit
}

func (t *ConsoleUI) cmdPause(_ *gocui.View) error {
	if t.d != nil {
		t.d.TogglePause()
	}
	return nil
}

func (t *ConsoleUI) cmdRepaint(_ *gocui.View) error {
	if t.d != nil {
		t.d.Repaint()
	}
	return nil
}
