package balance

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		v    uint16
		want float32
	}{
		{0, 0},
		{99, 0},
		{100, 0},
		{150, 8.5},
		{200, 17},
		{250, 25.5},
		{300, 34},
		{400, 51},
	}

	for _, tc := range tests {
		got := Interpolate(tc.v, 100, 200, 300)
		if !near(got, tc.want) {
			t.Fatalf("Interpolate(%d) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestInterpolateFlatHigh(t *testing.T) {
	if got := Interpolate(500, 100, 200, 200); got != MidLoad {
		t.Fatalf("got %v, want %v", got, MidLoad)
	}
}

func TestCalibrationBlocks(t *testing.T) {
	var c Calibration
	low := []byte{
		0x00, 0x64, 0x00, 0x65, 0x00, 0x66, 0x00, 0x67,
		0x00, 0xC8, 0x00, 0xC9, 0x00, 0xCA, 0x00, 0xCB,
	}
	high := []byte{0x01, 0x2C, 0x01, 0x2D, 0x01, 0x2E, 0x01, 0x2F}

	if err := c.SetLow(low); err != nil {
		t.Fatal(err)
	}
	if err := c.SetHigh(high); err != nil {
		t.Fatal(err)
	}

	want := Calibration{100, 101, 102, 103, 200, 201, 202, 203, 300, 301, 302, 303}
	if c != want {
		t.Fatalf("calibration = %v, want %v", c, want)
	}
	if c.At(LoadHigh, BottomLeft) != 303 {
		t.Fatalf("At(high, bottom-left) = %d", c.At(LoadHigh, BottomLeft))
	}

	if err := c.SetHigh(high[:7]); err == nil {
		t.Fatal("no error on short block")
	}
}

func TestWeights(t *testing.T) {
	c := Calibration{100, 100, 100, 100, 200, 200, 200, 200, 300, 300, 300, 300}
	// A1 34 BB BB then TR=100, BR=150, TL=200, BL=250
	report := []byte{0xA1, 0x34, 0x00, 0x00, 0x00, 0x64, 0x00, 0x96, 0x00, 0xC8, 0x00, 0xFA}

	w, err := c.Weights(report)
	if err != nil {
		t.Fatal(err)
	}
	want := [NumPositions]float32{0, 8.5, 17, 25.5}
	for i := range w {
		if !near(w[i], want[i]) {
			t.Fatalf("%v = %v, want %v", Position(i), w[i], want[i])
		}
	}
	if !near(Total(w), 51) {
		t.Fatalf("total = %v", Total(w))
	}

	if _, err := c.Weights(report[:8]); err == nil {
		t.Fatal("no error on short report")
	}
}
