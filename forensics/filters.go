package forensics

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"imageforensics/imageprocessor"
)

// floatMat packs interleaved float samples into a CV_32F Mat with the given
// channel count. The caller must Close the result.
func floatMat(values []float64, width, height, channels int) (gocv.Mat, error) {
	matType := gocv.MatTypeCV32FC1
	if channels == 3 {
		matType = gocv.MatTypeCV32FC3
	}
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.NativeEndian.PutUint32(data[4*i:], math.Float32bits(float32(v)))
	}
	return gocv.NewMatFromBytes(height, width, matType, data)
}

// matFloats copies the samples of a CV_32F Mat
func matFloats(m gocv.Mat) ([]float64, error) {
	data, err := m.DataPtrFloat32()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out, nil
}

// boxBlur smooths every channel with a normalized k x k averaging kernel.
// Borders are reflected, so values near the edge are biased and callers
// crop them.
func boxBlur(d *RawDiff, k int) (*RawDiff, error) {
	src, err := floatMat(d.Values, d.Width, d.Height, 3)
	if err != nil {
		return nil, fmt.Errorf("box blur input: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Blur(src, &dst, image.Pt(k, k))
	if dst.Empty() {
		return nil, fmt.Errorf("box blur produced no output")
	}

	values, err := matFloats(dst)
	if err != nil {
		return nil, fmt.Errorf("box blur output: %w", err)
	}
	return &RawDiff{Width: d.Width, Height: d.Height, Order: d.Order, Values: values}, nil
}

// medianFilter applies a k x k median to each channel of buf
func medianFilter(buf *imageprocessor.ImageBuffer, k int) (*imageprocessor.ImageBuffer, error) {
	src, err := buf.ToMat()
	if err != nil {
		return nil, fmt.Errorf("median input: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.MedianBlur(src, &dst, k)
	if dst.Empty() {
		return nil, fmt.Errorf("median filter produced no output")
	}

	out, err := imageprocessor.BufferFromMat(dst, imageprocessor.OrderBGR)
	if err != nil {
		return nil, fmt.Errorf("median output: %w", err)
	}
	return out.ToOrder(buf.Order), nil
}

// lumaMap reduces a three-channel diff to luma (0.299 R + 0.587 G + 0.114 B)
func lumaMap(d *RawDiff) (*DifferenceMap, error) {
	src, err := floatMat(d.Values, d.Width, d.Height, 3)
	if err != nil {
		return nil, fmt.Errorf("luma input: %w", err)
	}
	defer src.Close()

	code := gocv.ColorBGRToGray
	if d.Order == imageprocessor.OrderRGB {
		code = gocv.ColorRGBToGray
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.CvtColor(src, &dst, code)
	if dst.Empty() {
		return nil, fmt.Errorf("luma conversion produced no output")
	}

	values, err := matFloats(dst)
	if err != nil {
		return nil, fmt.Errorf("luma output: %w", err)
	}
	m := newDifferenceMap(d.Width, d.Height, zeroOrigin)
	copy(m.Values, values)
	return m, nil
}
