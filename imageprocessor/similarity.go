package imageprocessor

import (
	"fmt"

	"gocv.io/x/gocv"
)

// ResaveSimilarity scores how close two buffers of the same size are:
// 1 minus the mean absolute sample difference over 255. Identical buffers
// score 1.
func ResaveSimilarity(a, b *ImageBuffer) (float64, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return 0, fmt.Errorf("size mismatch: %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}

	m1, err := a.ToMat()
	if err != nil {
		return 0, err
	}
	defer m1.Close()
	m2, err := b.ToMat()
	if err != nil {
		return 0, err
	}
	defer m2.Close()

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(m1, m2, &diff)
	if diff.Empty() {
		return 0, fmt.Errorf("absolute difference produced no output")
	}

	// Mean of a 3-channel Mat is per channel
	mean := diff.Mean()
	meanDiff := (mean.Val1 + mean.Val2 + mean.Val3) / 3
	return 1.0 - meanDiff/255.0, nil
}
