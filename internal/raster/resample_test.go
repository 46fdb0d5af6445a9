package raster

import (
	"image/color"
	"testing"
)

// checker2x2 builds a 2x2 raster with distinct opaque gray levels.
func checker2x2(t *testing.T) *Raster {
	t.Helper()
	r, err := New(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	pix := r.Pix()
	levels := []uint8{0, 100, 200, 40}
	for i, v := range levels {
		pix[i*4] = v
		pix[i*4+1] = v
		pix[i*4+2] = v
		pix[i*4+3] = 255
	}
	return r
}

func TestSampleAtIntegerCoords(t *testing.T) {
	r := checker2x2(t)
	tests := []struct {
		u, v float64
		want uint8
	}{
		{0, 0, 0},
		{1, 0, 100},
		{0, 1, 200},
		{1, 1, 40},
	}
	for _, tt := range tests {
		got := Sample(r, tt.u, tt.v)
		if got.R != tt.want {
			t.Errorf("Sample(%v, %v).R = %d, want %d", tt.u, tt.v, got.R, tt.want)
		}
		if got.A != 255 {
			t.Errorf("Sample(%v, %v).A = %d, want 255", tt.u, tt.v, got.A)
		}
	}
}

func TestSampleMidpoint(t *testing.T) {
	r := checker2x2(t)
	// Center of the 2x2 block: mean of all four levels.
	got := Sample(r, 0.5, 0.5)
	want := uint8(85)
	if got.R != want {
		t.Errorf("Sample(0.5, 0.5).R = %d, want %d", got.R, want)
	}
}

func TestSampleEdgeClamp(t *testing.T) {
	r := checker2x2(t)
	tests := []struct {
		u, v float64
		want uint8
	}{
		{-5, -5, 0},   // clamps to (0,0)
		{10, 0, 100},  // clamps to (1,0)
		{-3, 10, 200}, // clamps to (0,1)
		{10, 10, 40},  // clamps to (1,1)
	}
	for _, tt := range tests {
		got := Sample(r, tt.u, tt.v)
		if got.R != tt.want {
			t.Errorf("Sample(%v, %v).R = %d, want %d", tt.u, tt.v, got.R, tt.want)
		}
	}
}

func TestSampleFractionalOutsideClampsIndependently(t *testing.T) {
	r := checker2x2(t)
	// u=-0.5 puts x0=-1 (clamped to 0) and x1=0: both corners resolve to
	// column 0, so the result equals the border pixel.
	got := Sample(r, -0.5, 0)
	if got.R != 0 {
		t.Errorf("Sample(-0.5, 0).R = %d, want 0", got.R)
	}
}

func TestFromPixValidation(t *testing.T) {
	if _, err := FromPix(2, 2, make([]uint8, 7)); err == nil {
		t.Error("FromPix with short buffer should fail")
	}
	if _, err := FromPix(2, 2, make([]uint8, 16)); err != nil {
		t.Errorf("FromPix with exact buffer: %v", err)
	}
}

func TestCloneIndependence(t *testing.T) {
	r := checker2x2(t)
	c := r.Clone()
	r.Pix()[0] = 99
	if c.Pix()[0] == 99 {
		t.Error("Clone() shares the pixel buffer")
	}
}

func TestAtOutOfBounds(t *testing.T) {
	r := checker2x2(t)
	if got := r.At(-1, 0); got != (color.RGBA{}) {
		t.Errorf("At(-1, 0) = %v, want zero", got)
	}
	if got := r.At(0, 2); got != (color.RGBA{}) {
		t.Errorf("At(0, 2) = %v, want zero", got)
	}
}
