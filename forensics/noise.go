package forensics

import (
	"imageforensics/imageprocessor"
	"imageforensics/logging"
	"imageforensics/types"
)

const (
	// DefaultNoiseKernel is the median kernel used for invalid sizes
	DefaultNoiseKernel = 3
	// DefaultNoiseMultiplier scales the residue for display
	DefaultNoiseMultiplier = 10.0
)

// NormalizeKernelSize returns k when it is an odd integer >= 3, otherwise 3
func NormalizeKernelSize(k int) int {
	if k >= 3 && k%2 == 1 {
		return k
	}
	return DefaultNoiseKernel
}

// NoiseResidueAnalyzer measures what a median filter removes from the image
type NoiseResidueAnalyzer struct {
	Loader     Loader
	Multiplier float64
	Progress   ProgressFunc
}

// Run loads path and analyzes it
func (a *NoiseResidueAnalyzer) Run(path string, kernelSize int) (*Result, error) {
	a.Progress.report(1, 4, "load")
	buf, err := a.Loader.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return a.Analyze(buf, kernelSize)
}

// Analyze computes |orig - median(orig)| * multiplier and reduces it to luma.
// The residue stays in floating point; values above 255 are not clipped.
func (a *NoiseResidueAnalyzer) Analyze(buf *imageprocessor.ImageBuffer, kernelSize int) (*Result, error) {
	k := NormalizeKernelSize(kernelSize)
	if k != kernelSize {
		logging.DebugLog("Median kernel %d is invalid, using %d", kernelSize, k)
	}
	multiplier := a.Multiplier
	if multiplier <= 0 {
		multiplier = DefaultNoiseMultiplier
	}

	a.Progress.report(2, 4, "filter")
	filtered, err := medianFilter(buf, k)
	if err != nil {
		return nil, types.NewEncodeError("median filter failed", err)
	}

	residue := &RawDiff{Width: buf.Width, Height: buf.Height, Order: buf.Order, Values: make([]float64, len(buf.Pix))}
	for i := range buf.Pix {
		v := float64(buf.Pix[i]) - float64(filtered.Pix[i])
		if v < 0 {
			v = -v
		}
		residue.Values[i] = v * multiplier
	}

	a.Progress.report(3, 4, "reduce")
	m, err := lumaMap(residue)
	if err != nil {
		return nil, types.NewEncodeError("luma conversion failed", err)
	}

	a.Progress.report(4, 4, "done")
	return &Result{
		Technique: types.TechniqueNoise,
		Parameter: k,
		Map:       m,
		Original:  buf.ToRGB(),
	}, nil
}
