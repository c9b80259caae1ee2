package forensics

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

// DifferenceMap is a single-channel map of float magnitudes. Origin is the
// position of the map's top-left value in the source image, which is
// non-zero when an engine crops a border.
type DifferenceMap struct {
	Width  int
	Height int
	Origin image.Point
	Values []float64
}

// MapStats summarizes a map
type MapStats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

var zeroOrigin = image.Point{}

func newDifferenceMap(width, height int, origin image.Point) *DifferenceMap {
	return &DifferenceMap{
		Width:  width,
		Height: height,
		Origin: origin,
		Values: make([]float64, width*height),
	}
}

// At returns the value at map coordinates (x, y)
func (m *DifferenceMap) At(x, y int) float64 {
	return m.Values[y*m.Width+x]
}

// Range returns the minimum and maximum value
func (m *DifferenceMap) Range() (lo, hi float64) {
	if len(m.Values) == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range m.Values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// IsFlat reports whether every value is identical
func (m *DifferenceMap) IsFlat() bool {
	lo, hi := m.Range()
	return lo == hi
}

// Stats computes range, mean and standard deviation
func (m *DifferenceMap) Stats() MapStats {
	lo, hi := m.Range()
	s := MapStats{Min: lo, Max: hi}
	if len(m.Values) > 0 {
		s.Mean = stat.Mean(m.Values, nil)
	}
	if len(m.Values) > 1 {
		s.StdDev = stat.StdDev(m.Values, nil)
	}
	return s
}

// Crop removes border pixels from every edge and shifts the origin
func (m *DifferenceMap) Crop(border int) (*DifferenceMap, error) {
	w, h := m.Width-2*border, m.Height-2*border
	if border < 0 || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("cannot crop %d pixels from a %dx%d map", border, m.Width, m.Height)
	}
	out := newDifferenceMap(w, h, m.Origin.Add(image.Pt(border, border)))
	for y := 0; y < h; y++ {
		copy(out.Values[y*w:(y+1)*w], m.Values[(y+border)*m.Width+border:])
	}
	return out, nil
}
