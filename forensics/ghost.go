package forensics

import (
	"fmt"

	"imageforensics/imageprocessor"
	"imageforensics/logging"
	"imageforensics/types"
)

// DefaultGhostQuality is the resave quality used when none is given
const DefaultGhostQuality = 60

// DefaultGhostSmoothing is the side of the averaging kernel
const DefaultGhostSmoothing = 17

// JpegGhostAnalyzer exposes regions compressed at a different quality by
// comparing the image with a low-quality resave of itself
type JpegGhostAnalyzer struct {
	Loader    Loader
	Engine    *ResaveDiffEngine
	Smoothing int
	Progress  ProgressFunc
}

// Run loads path and analyzes it
func (a *JpegGhostAnalyzer) Run(path string, quality int) (*Result, error) {
	a.Progress.report(1, 5, "load")
	buf, err := a.Loader.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return a.Analyze(buf, quality)
}

// Analyze runs the ghost pipeline on a decoded buffer:
// squared resave difference, per-channel box smoothing, channel mean,
// border crop, then the global shift from NormalizeGhost
func (a *JpegGhostAnalyzer) Analyze(buf *imageprocessor.ImageBuffer, quality int) (*Result, error) {
	k := a.Smoothing
	if k <= 0 {
		k = DefaultGhostSmoothing
	}
	offset := (k - 1) / 2
	if buf.Width <= 2*offset || buf.Height <= 2*offset {
		return nil, types.NewInvalidInputError(
			fmt.Sprintf("image %dx%d is too small for a %dx%d smoothing kernel", buf.Width, buf.Height, k, k), "", nil)
	}

	a.Progress.report(2, 5, "resave")
	diff, err := a.Engine.Diff(buf, quality, DiffSquared)
	if err != nil {
		return nil, err
	}

	a.Progress.report(3, 5, "smooth")
	smoothed, err := boxBlur(diff, k)
	if err != nil {
		return nil, types.NewEncodeError("ghost smoothing failed", err)
	}

	a.Progress.report(4, 5, "reduce")
	cropped, err := smoothed.MeanChannels().Crop(offset)
	if err != nil {
		return nil, types.NewInvalidInputError(err.Error(), "", nil)
	}
	NormalizeGhost(cropped)

	a.Progress.report(5, 5, "done")
	logging.DebugLog("JPEG ghost map %dx%d at origin %v", cropped.Width, cropped.Height, cropped.Origin)
	return &Result{
		Technique: types.TechniqueGhost,
		Parameter: quality,
		Map:       cropped,
		Original:  buf.ToRGB(),

		Similarity: diff.Similarity,
	}, nil
}

// NormalizeGhost subtracts the scalar min/(max-min) from every value, or
// zeroes a flat map. This is a uniform shift, not a rescale to [0,1]; it is
// kept that way so outputs stay comparable with other implementations.
func NormalizeGhost(m *DifferenceMap) {
	lo, hi := m.Range()
	if hi == lo {
		for i := range m.Values {
			m.Values[i] = 0
		}
		return
	}
	shift := lo / (hi - lo)
	for i := range m.Values {
		m.Values[i] -= shift
	}
}
