package forensics

import (
	"imageforensics/imageprocessor"
	"imageforensics/logging"
	"imageforensics/types"
)

const (
	// DefaultELAQuality is the resave quality used when none is given
	DefaultELAQuality = 90
	// DefaultELAMultiplier scales error levels for display
	DefaultELAMultiplier = 15.0
)

// ElaAnalyzer computes the error level of a single resave. The map keeps
// raw per-pixel magnitudes: no smoothing, cropping or normalization.
type ElaAnalyzer struct {
	Loader     Loader
	Engine     *ResaveDiffEngine
	Multiplier float64
	Progress   ProgressFunc
}

// Run loads path and analyzes it
func (a *ElaAnalyzer) Run(path string, quality int) (*Result, error) {
	a.Progress.report(1, 4, "load")
	buf, err := a.Loader.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return a.Analyze(buf, quality)
}

// Analyze runs ELA on a decoded buffer
func (a *ElaAnalyzer) Analyze(buf *imageprocessor.ImageBuffer, quality int) (*Result, error) {
	multiplier := a.Multiplier
	if multiplier <= 0 {
		multiplier = DefaultELAMultiplier
	}

	a.Progress.report(2, 4, "resave")
	diff, err := a.Engine.Diff(buf, quality, DiffAbsolute)
	if err != nil {
		return nil, err
	}

	a.Progress.report(3, 4, "reduce")
	m := diff.Scale(multiplier).MeanChannels()

	a.Progress.report(4, 4, "done")
	logging.DebugLog("ELA map %dx%d at quality %d", m.Width, m.Height, quality)
	return &Result{
		Technique: types.TechniqueELA,
		Parameter: quality,
		Map:       m,
		Original:  buf.ToRGB(),

		Similarity: diff.Similarity,
	}, nil
}
