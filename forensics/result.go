package forensics

import (
	"imageforensics/imageprocessor"
	"imageforensics/types"
)

// Loader decodes an image file into a buffer
type Loader interface {
	LoadImage(path string) (*imageprocessor.ImageBuffer, error)
}

// ProgressFunc is told when an engine finishes one of its steps
type ProgressFunc func(step, total int, label string)

func (p ProgressFunc) report(step, total int, label string) {
	if p != nil {
		p(step, total, label)
	}
}

// Result is the outcome of an image-based engine: the map and the original
// buffer in RGB order for side-by-side presentation
type Result struct {
	Technique types.Technique
	// Parameter is the resave quality, or the kernel size for noise residue
	Parameter int
	Map       *DifferenceMap
	Original  *imageprocessor.ImageBuffer

	// Similarity of the resaved copy to the original; zero for noise residue
	Similarity float64
}
