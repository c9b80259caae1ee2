package report

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"imageforensics/forensics"
	"imageforensics/types"
)

// RenderMap scales a map linearly from its min..max to 0..255. A flat map
// renders black.
func RenderMap(m *forensics.DifferenceMap) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	lo, hi := m.Range()
	span := hi - lo
	for i, v := range m.Values {
		if span == 0 {
			continue
		}
		img.Pix[i] = uint8(math.Round((v - lo) / span * 255))
	}
	return img
}

// ComparisonImage places the original on the left and the rendered map on
// the right, aligned to the map's origin
func ComparisonImage(res *forensics.Result) *image.NRGBA {
	orig := res.Original.ToNRGBA()
	w, h := res.Original.Width, res.Original.Height

	canvas := imaging.New(2*w, h, color.NRGBA{A: 255})
	canvas = imaging.Paste(canvas, orig, image.Pt(0, 0))
	canvas = imaging.Paste(canvas, RenderMap(res.Map), image.Pt(w+res.Map.Origin.X, res.Map.Origin.Y))
	return canvas
}

// SaveComparison writes the side-by-side image; the format follows the
// file extension
func SaveComparison(path string, res *forensics.Result) error {
	if err := imaging.Save(ComparisonImage(res), path); err != nil {
		return types.NewEncodeError("cannot save comparison image "+path, err)
	}
	return nil
}
