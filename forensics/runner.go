package forensics

import (
	"fmt"
	"time"

	"imageforensics/config"
	"imageforensics/imageprocessor"
	"imageforensics/logging"
	"imageforensics/types"
)

// Runner wires the image engines to a configuration
type Runner struct {
	cfg   *config.Config
	ghost *JpegGhostAnalyzer
	ela   *ElaAnalyzer
	noise *NoiseResidueAnalyzer
}

// NewRunner builds the engines for cfg
func NewRunner(cfg *config.Config) (*Runner, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	codec, err := imageprocessor.NewCodec(cfg.Codec)
	if err != nil {
		return nil, types.NewInvalidInputError(err.Error(), "", err)
	}
	var loader Loader = loaderFunc(imageprocessor.Load)
	if cfg.Codec.Backend != config.BackendOpenCV {
		loader = imageprocessor.NewImageLoaderRegistry(cfg.Codec.Backend)
	}
	engine := &ResaveDiffEngine{Codec: codec}

	r := &Runner{cfg: cfg}
	r.ghost = &JpegGhostAnalyzer{Loader: loader, Engine: engine, Smoothing: cfg.Ghost.SmoothingKernel}
	r.ela = &ElaAnalyzer{Loader: loader, Engine: engine, Multiplier: cfg.ELA.Multiplier}
	r.noise = &NoiseResidueAnalyzer{Loader: loader, Multiplier: cfg.Noise.Multiplier}
	return r, nil
}

// SetProgress installs a step callback on every engine
func (r *Runner) SetProgress(fn ProgressFunc) {
	r.ghost.Progress = fn
	r.ela.Progress = fn
	r.noise.Progress = fn
}

// DefaultParameter returns the configured quality or kernel size. A
// non-positive configured value selects the engine's built-in default.
func (r *Runner) DefaultParameter(technique types.Technique) int {
	switch technique {
	case types.TechniqueGhost:
		return positiveOr(r.cfg.Ghost.Quality, DefaultGhostQuality)
	case types.TechniqueELA:
		return positiveOr(r.cfg.ELA.Quality, DefaultELAQuality)
	case types.TechniqueNoise:
		return positiveOr(r.cfg.Noise.KernelSize, DefaultNoiseKernel)
	}
	return 0
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// loaderFunc adapts a load function to Loader
type loaderFunc func(path string) (*imageprocessor.ImageBuffer, error)

func (f loaderFunc) LoadImage(path string) (*imageprocessor.ImageBuffer, error) {
	return f(path)
}

// Run executes technique on path. A zero param selects the configured default.
func (r *Runner) Run(path string, technique types.Technique, param int) (*Result, error) {
	if param == 0 {
		param = r.DefaultParameter(technique)
	}

	start := time.Now()
	var (
		res *Result
		err error
	)
	switch technique {
	case types.TechniqueGhost:
		res, err = r.ghost.Run(path, param)
	case types.TechniqueELA:
		res, err = r.ela.Run(path, param)
	case types.TechniqueNoise:
		res, err = r.noise.Run(path, param)
	default:
		err = types.NewInvalidInputError(fmt.Sprintf("%s is not an image-based technique", technique), path, nil)
	}

	logging.LogAnalysis(path, string(technique), time.Since(start), err)
	return res, err
}
