package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/integrii/flaggy"

	"lifeview/src/client"
	"lifeview/src/logger"
	"lifeview/src/render"
	"lifeview/src/server"
	"lifeview/src/surface"
	"lifeview/src/universe"
	"lifeview/src/view"
)

const (
	DefPort    = 8080
	DefURL     = "http://localhost:8080"
	DefOutDir  = "frames"
	DefEvery   = 10
	DefScale   = 4
	DefTimeout = 5 * time.Second
)

type EnvOptions struct {
	debug   bool
	logFile string
	url     string
	live    string
	dead    string
	outDir  string
	every   int
	scale   int
	port    int
}

var (
	serveCmd  *flaggy.Subcommand
	viewCmd   *flaggy.Subcommand
	recordCmd *flaggy.Subcommand
)

func main() {
	eo, uo, do := initOptions()

	if err := initLogger(eo); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var err error
	switch {
	case serveCmd.Used:
		err = serve(eo, uo)
	case viewCmd.Used:
		err = runView(eo, do)
	case recordCmd.Used:
		err = record(eo, do)
	default:
		flaggy.ShowHelpAndExit("")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initOptions() (eo *EnvOptions, uo *universe.Options, do *client.Options) {
	o := universe.DefaultUniverseOptions
	uo = &o
	d := client.DefaultDriverOptions
	do = &d
	eo = &EnvOptions{
		url:    DefURL,
		live:   "#c80000",
		dead:   "#dcdcdc",
		outDir: DefOutDir,
		every:  DefEvery,
		scale:  DefScale,
		port:   DefPort,
	}

	flaggy.SetName("lifeview")
	flaggy.SetDescription("\"The Life\" board server and incremental renderer")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Bool(&eo.debug, "d", "debug", "Log debug messages")
	flaggy.String(&eo.logFile, "l", "log", "Write the log to this file instead of stderr")

	serveCmd = flaggy.NewSubcommand("serve")
	serveCmd.Description = "Run the board server"
	serveCmd.Int(&eo.port, "p", "port", "HTTP port")
	serveCmd.Int(&uo.Width, "x", "width", "Default board width")
	serveCmd.Int(&uo.Height, "y", "height", "Default board height (the width when omitted)")
	serveCmd.Int64(&uo.Seed, "s", "seed", "Random seed")
	serveCmd.String(&uo.Engine, "e", "engine", "Engine to use ["+strings.Join(universe.Engines(), "|")+"]")
	serveCmd.Int(&uo.Workers, "w", "workers", "Workers of the multithreaded engine")

	viewCmd = flaggy.NewSubcommand("view")
	viewCmd.Description = "Show the board in the terminal"
	recordCmd = flaggy.NewSubcommand("record")
	recordCmd.Description = "Render the board to PNG frames"
	for _, sc := range []*flaggy.Subcommand{viewCmd, recordCmd} {
		sc.String(&eo.url, "u", "url", "Board server address")
		sc.Int(&do.Width, "x", "width", "Width of the board")
		sc.Int(&do.Height, "y", "height", "Height of the board")
		sc.Float64(&do.Density, "r", "density", "Initial live cells density")
		sc.Duration(&do.Interval, "i", "interval", "Delay between the steps, for example 20ms")
		sc.Int(&do.MaxSteps, "s", "steps", "Stop after this number of generations (0 - never)")
		sc.String(&eo.live, "", "live", "Live cell color, #RRGGBB")
		sc.String(&eo.dead, "", "dead", "Dead cell color, #RRGGBB")
	}
	recordCmd.String(&eo.outDir, "o", "out", "Directory for the frames")
	recordCmd.Int(&eo.every, "n", "every", "Save every n-th generation")
	recordCmd.Int(&eo.scale, "c", "scale", "Pixels per cell")

	flaggy.AttachSubcommand(serveCmd, 1)
	flaggy.AttachSubcommand(viewCmd, 1)
	flaggy.AttachSubcommand(recordCmd, 1)
	flaggy.Parse()

	if uo.Height <= 0 {
		uo.Height = uo.Width
	}
	if do.Density < 0 || do.Density > 1 {
		flaggy.ShowHelpAndExit("density must be in [0, 1]")
	}
	if uo.Engine != universe.EngineSimple && uo.Engine != universe.EngineMultithreaded {
		flaggy.ShowHelpAndExit("unknown engine")
	}
	return
}

func initLogger(eo *EnvOptions) error {
	level := slog.LevelInfo
	if eo.debug {
		level = slog.LevelDebug
	}
	out := os.Stderr
	if eo.logFile != "" {
		f, err := os.OpenFile(eo.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		out = f
	} else if viewCmd.Used {
		//the terminal belongs to the UI
		return nil
	}
	logger.SetLogger(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return nil
}

func rendererOptions(eo *EnvOptions, do *client.Options) (render.Options, error) {
	live, err := render.ParseColor(eo.live)
	if err != nil {
		return render.Options{}, err
	}
	dead, err := render.ParseColor(eo.dead)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{Width: do.Width, Height: do.Height, Live: live, Dead: dead}, nil
}

func serve(eo *EnvOptions, uo *universe.Options) error {
	u := universe.New(uo)
	defer u.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", eo.port),
		Handler: server.New(u, stop),
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Logger().Info("serving", "port", eo.port, "engine", u.Options().Engine)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Logger().Info("loop exit")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runView(eo *EnvOptions, do *client.Options) error {
	ro, err := rendererOptions(eo, do)
	if err != nil {
		return err
	}
	ts := view.NewTermSurface(0, 0)
	r := render.New(ts, ro)
	d := client.NewDriver(client.NewHTTPSource(eo.url, nil), r, do)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ui, err := view.NewViewTerminal(ts, cancel)
	if err != nil {
		return err
	}
	d.RegisterViewer(ui)

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Run(ctx)
	}()
	ui.Start()
	cancel()
	return <-errCh
}

func record(eo *EnvOptions, do *client.Options) error {
	ro, err := rendererOptions(eo, do)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(eo.outDir, 0o755); err != nil {
		return err
	}
	img := surface.NewImage(do.Width*eo.scale, do.Height*eo.scale, ro.Dead)
	r := render.New(img, ro)
	d := client.NewDriver(client.NewHTTPSource(eo.url, nil), r, do)

	out := view.NewConsoleOut(eo.every)
	d.RegisterViewer(out)
	d.RegisterViewer(view.NewRecorder(img, eo.outDir, eo.every))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	out.Start()
	return d.Run(ctx)
}
