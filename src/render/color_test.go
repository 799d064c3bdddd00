package render

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		err  bool
	}{
		{"#c80000", DefLiveColor, false},
		{"dcdcdc", DefDeadColor, false},
		{"#fff", color.RGBA{255, 255, 255, 255}, false},
		{"#12", color.RGBA{}, true},
		{"#gg0000", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseColor(%q): err %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}
