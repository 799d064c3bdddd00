package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

//captionHeight is the strip added below the frame when a caption is drawn
const captionHeight = 16

//Image is a render.Surface backed by an *image.RGBA
//the renderer fills it cell by cell, frames can be captured and written as PNG files
type Image struct {
	img *image.RGBA
}

//NewImage creates a surface of the given pixel size filled with bg
func NewImage(width, height int, bg color.Color) *Image {
	s := &Image{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	if bg != nil {
		s.FillRect(s.img.Bounds(), bg)
	}
	return s
}

func (s *Image) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

//FillRect paints r with c, clipped to the surface bounds
func (s *Image) FillRect(r image.Rectangle, c color.Color) {
	r = r.Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(s.img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

//Resize reallocates the buffer, the content is dropped
//the caller is expected to reset its renderer afterwards
func (s *Image) Resize(width, height int) {
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

func (s *Image) RGBA() *image.RGBA {
	return s.img
}

//Snapshot returns a copy of the current frame
//a non-empty caption is drawn on a strip below the frame
func (s *Image) Snapshot(caption string) *image.RGBA {
	b := s.img.Bounds()
	if caption == "" {
		out := image.NewRGBA(b)
		draw.Draw(out, b, s.img, b.Min, draw.Src)
		return out
	}

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()+captionHeight))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, 0, b.Dx(), b.Dy()), s.img, b.Min, draw.Src)

	d := &font.Drawer{
		Dst:  out,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(2, b.Dy()+captionHeight-3),
	}
	d.DrawString(caption)
	return out
}

//SavePNG writes a snapshot of the current frame to path
func (s *Image) SavePNG(path, caption string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("surface: create %s: %w", path, err)
	}
	if err := png.Encode(f, s.Snapshot(caption)); err != nil {
		_ = f.Close()
		return fmt.Errorf("surface: encode %s: %w", path, err)
	}
	return f.Close()
}
