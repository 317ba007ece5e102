// Package balance converts Balance Board sensor counts to kilograms.
package balance

import (
	"encoding/binary"
	"fmt"
)

// Position identifies one of the four load sensors.
type Position int

const (
	TopRight Position = iota
	BottomRight
	TopLeft
	BottomLeft

	NumPositions = 4
)

func (p Position) String() string {
	switch p {
	case TopRight:
		return "top-right"
	case BottomRight:
		return "bottom-right"
	case TopLeft:
		return "top-left"
	case BottomLeft:
		return "bottom-left"
	default:
		return fmt.Sprintf("position(%d)", int(p))
	}
}

// Reference loads of the factory calibration, in kg.
const (
	MidLoad  = 17
	HighLoad = 34
)

// Load levels of the calibration table.
const (
	LoadZero = iota
	LoadMid
	LoadHigh
)

// Calibration holds the raw counts measured at 0kg, 17kg and 34kg,
// indexed by load*NumPositions + position.
type Calibration [3 * NumPositions]uint16

// At returns the count for a load level and position.
func (c *Calibration) At(load int, p Position) uint16 {
	return c[load*NumPositions+int(p)]
}

// SetLow stores the 0kg and 17kg blocks: 8 big-endian counts.
func (c *Calibration) SetLow(b []byte) error {
	return c.set(LoadZero, 2*NumPositions, b)
}

// SetHigh stores the 34kg block: 4 big-endian counts.
func (c *Calibration) SetHigh(b []byte) error {
	return c.set(LoadHigh, NumPositions, b)
}

func (c *Calibration) set(load, n int, b []byte) error {
	if len(b) < 2*n {
		return fmt.Errorf("calibration block too short: %d < %d", len(b), 2*n)
	}
	base := load * NumPositions
	for i := 0; i < n; i++ {
		c[base+i] = binary.BigEndian.Uint16(b[2*i:])
	}
	return nil
}

// Interpolate maps a raw count onto kg using the three reference points.
// Values at or above mid are extrapolated along the mid..high slope.
func Interpolate(v, zero, mid, high uint16) float32 {
	switch {
	case v < zero:
		return 0
	case v < mid:
		return MidLoad * float32(v-zero) / float32(mid-zero)
	case high <= mid:
		return MidLoad
	default:
		return MidLoad + (HighLoad-MidLoad)*(float32(v)-float32(mid))/float32(high-mid)
	}
}

// Weight interpolates a single sensor.
func (c *Calibration) Weight(p Position, v uint16) float32 {
	return Interpolate(v, c.At(LoadZero, p), c.At(LoadMid, p), c.At(LoadHigh, p))
}

// extOffset is where extension bytes start in a 0x32/0x34 input report (A1 RR BB BB EE..).
const extOffset = 4

// Weights decodes the four sensor counts of an input report and interpolates them.
func (c *Calibration) Weights(report []byte) ([NumPositions]float32, error) {
	var w [NumPositions]float32
	if len(report) < extOffset+2*NumPositions {
		return w, fmt.Errorf("report too short for balance data: %d bytes", len(report))
	}
	ext := report[extOffset:]
	for p := TopRight; p <= BottomLeft; p++ {
		w[p] = c.Weight(p, binary.BigEndian.Uint16(ext[2*int(p):]))
	}
	return w, nil
}

// Total sums the four sensor weights.
func Total(w [NumPositions]float32) float32 {
	var t float32
	for _, v := range w {
		t += v
	}
	return t
}
