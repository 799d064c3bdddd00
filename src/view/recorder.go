package view

import (
	"fmt"
	"path/filepath"

	"lifeview/src/client"
	"lifeview/src/logger"
	"lifeview/src/surface"
)

//Recorder saves every n-th rendered frame of the image surface as a PNG file
//Refresh runs on the driver goroutine right after the frame, so the image is consistent
type Recorder struct {
	d     *client.Driver
	img   *surface.Image
	dir   string
	every    int
	last     int
	rejected int
	saved    int
}

//NewRecorder creates the recorder writing frame-NNNNN.png files to dir
func NewRecorder(img *surface.Image, dir string, every int) *Recorder {
	if every <= 0 {
		every = 1
	}
	return &Recorder{img: img, dir: dir, every: every, last: -1}
}

func (r *Recorder) Register(d *client.Driver) {
	r.d = d
}

func (r *Recorder) Start() {}

//Saved returns the number of written files
func (r *Recorder) Saved() int {
	return r.saved
}

func (r *Recorder) Refresh() {
	st := r.d.Status()
	//a rejected frame left the previous image on the surface
	if st.Rejected != r.rejected {
		r.rejected = st.Rejected
		return
	}
	if st.RunningMode != client.RunningStateRun || st.Generation == r.last || st.Generation%r.every != 0 {
		return
	}
	r.last = st.Generation
	path := filepath.Join(r.dir, fmt.Sprintf("frame-%05d.png", st.Generation))
	caption := fmt.Sprintf("generation %d  live %d", st.Generation, st.LiveCells)
	if err := r.img.SavePNG(path, caption); err != nil {
		logger.Logger().Error("save frame", "path", path, "err", err)
		return
	}
	r.saved++
	logger.Logger().Debug("frame saved", "path", path)
}
