package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"lifeview/src/logger"
	"lifeview/src/universe"
)

//board size limits, the universe allocates two width*height buffers
const (
	MaxSide  = 10000
	MaxCells = 1 << 24
)

const helpText = "Commands:\n  /quit\n  /board?width=x&height=y&density=d\n  /step\n"

//Server exposes the universe over HTTP
//  /board?width=x&height=y&density=d - new board, height defaults to width
//  /step - next generation
//  /quit - asks the owner to shut down
type Server struct {
	u        universe.Universe
	defWidth int
	onQuit   func()
	mux      *http.ServeMux
}

//New creates the server for u, onQuit is called once per /quit request and may be nil
func New(u universe.Universe, onQuit func()) *Server {
	s := &Server{u: u, defWidth: u.Options().Width, onQuit: onQuit, mux: http.NewServeMux()}
	s.mux.HandleFunc("/board", s.board)
	s.mux.HandleFunc("/step", s.step)
	s.mux.HandleFunc("/quit", s.quit)
	s.mux.HandleFunc("/help", s.help)
	s.mux.HandleFunc("/", s.help)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger.Logger().Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
	w.Header().Set("Cache-Control", "max-age=0")
	s.mux.ServeHTTP(w, r)
}

func (s *Server) board(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := intParam(q.Get("width"), s.defWidth)
	if err != nil || width <= 0 {
		http.Error(w, "bad width", http.StatusBadRequest)
		return
	}
	height, err := intParam(q.Get("height"), width)
	if err != nil || height <= 0 {
		http.Error(w, "bad height", http.StatusBadRequest)
		return
	}
	if width > MaxSide || height > MaxSide || width*height > MaxCells {
		http.Error(w, fmt.Sprintf("board too large, max %d per side and %d cells", MaxSide, MaxCells), http.StatusBadRequest)
		return
	}
	density := 0.0
	if v := q.Get("density"); v != "" {
		density, err = strconv.ParseFloat(v, 64)
		if err != nil || density < 0 || density > 1 {
			http.Error(w, "bad density", http.StatusBadRequest)
			return
		}
	}
	writeJSON(w, s.u.Reset(width, height, density))
}

func (s *Server) step(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.u.Step())
}

func (s *Server) quit(w http.ResponseWriter, _ *http.Request) {
	logger.Logger().Info("quitting")
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "quitting\n")
	if s.onQuit != nil {
		s.onQuit()
	}
}

func (s *Server) help(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/help" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, helpText)
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Logger().Warn("write response", "err", err)
	}
}
