package render

import (
	"fmt"
	"image/color"
	"strconv"
)

//ParseColor parses "#RGB" or "#RRGGBB" (the leading # is optional) into an opaque color
func ParseColor(s string) (color.RGBA, error) {
	hex := s
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}
	var digits int
	switch len(hex) {
	case 3:
		digits = 1
	case 6:
		digits = 2
	default:
		return color.RGBA{}, fmt.Errorf("render: bad color %q", s)
	}
	var c [3]uint8
	for i := range c {
		v, err := strconv.ParseUint(hex[i*digits:(i+1)*digits], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("render: bad color %q", s)
		}
		if digits == 1 {
			v *= 17
		}
		c[i] = uint8(v)
	}
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}, nil
}
