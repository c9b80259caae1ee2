package forensics

import (
	"fmt"
	"math"

	"imageforensics/imageprocessor"
	"imageforensics/logging"
	"imageforensics/types"
)

// DiffMode selects how per-channel differences are formed
type DiffMode int

const (
	DiffSquared DiffMode = iota
	DiffAbsolute
)

func (m DiffMode) String() string {
	if m == DiffAbsolute {
		return "absolute"
	}
	return "squared"
}

// RawDiff holds per-pixel, per-channel differences, interleaved like the
// source buffer
type RawDiff struct {
	Width  int
	Height int
	Order  imageprocessor.ChannelOrder
	Values []float64

	// Similarity of the resave to the original, 1 for identical
	Similarity float64
}

// Scale returns a copy with every value multiplied by k
func (d *RawDiff) Scale(k float64) *RawDiff {
	out := &RawDiff{Width: d.Width, Height: d.Height, Order: d.Order, Values: make([]float64, len(d.Values)), Similarity: d.Similarity}
	for i, v := range d.Values {
		out.Values[i] = v * k
	}
	return out
}

// MeanChannels averages the three channels into a single map
func (d *RawDiff) MeanChannels() *DifferenceMap {
	m := newDifferenceMap(d.Width, d.Height, zeroOrigin)
	for i := range m.Values {
		j := i * 3
		m.Values[i] = (d.Values[j] + d.Values[j+1] + d.Values[j+2]) / 3
	}
	return m
}

// ResaveDiffEngine compares a buffer with a lossy resave of itself
type ResaveDiffEngine struct {
	Codec imageprocessor.Codec
}

// Diff re-encodes orig at quality and returns the float difference per
// sample. The original buffer is not modified.
func (e *ResaveDiffEngine) Diff(orig *imageprocessor.ImageBuffer, quality int, mode DiffMode) (*RawDiff, error) {
	resaved, err := e.Codec.Reencode(orig, quality)
	if err != nil {
		return nil, err
	}
	resaved = resaved.ToOrder(orig.Order)
	if resaved.Width != orig.Width || resaved.Height != orig.Height {
		return nil, types.NewEncodeError(
			fmt.Sprintf("resave changed size from %dx%d to %dx%d", orig.Width, orig.Height, resaved.Width, resaved.Height), nil)
	}

	d := &RawDiff{Width: orig.Width, Height: orig.Height, Order: orig.Order, Values: make([]float64, len(orig.Pix))}
	for i := range orig.Pix {
		v := float64(orig.Pix[i]) - float64(resaved.Pix[i])
		if mode == DiffSquared {
			d.Values[i] = v * v
		} else {
			d.Values[i] = math.Abs(v)
		}
	}

	similarity, err := imageprocessor.ResaveSimilarity(orig, resaved)
	if err != nil {
		logging.LogWarning("Resave similarity unavailable: %v", err)
	}
	d.Similarity = similarity

	logging.DebugLog("Resave diff via %s at quality %d (%s), similarity %.4f", e.Codec.Name(), quality, mode, similarity)
	return d, nil
}
