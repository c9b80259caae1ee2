package imageprocessor

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// ChannelOrder records how the three samples of a pixel are laid out
type ChannelOrder int

const (
	// OrderBGR is the OpenCV native layout
	OrderBGR ChannelOrder = iota
	// OrderRGB is the layout used by image.Image and for presentation
	OrderRGB
)

func (o ChannelOrder) String() string {
	if o == OrderRGB {
		return "RGB"
	}
	return "BGR"
}

// ImageBuffer is an owned H x W x 3 array of 8-bit samples, row-major.
// Analyzers treat buffers as immutable and always derive new ones.
type ImageBuffer struct {
	Width  int
	Height int
	Order  ChannelOrder
	Pix    []uint8
}

// NewImageBuffer allocates a zeroed buffer
func NewImageBuffer(width, height int, order ChannelOrder) (*ImageBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer size %dx%d", width, height)
	}
	return &ImageBuffer{
		Width:  width,
		Height: height,
		Order:  order,
		Pix:    make([]uint8, width*height*3),
	}, nil
}

// Stride returns the number of samples per row
func (b *ImageBuffer) Stride() int {
	return b.Width * 3
}

// At returns the three samples at (x, y) in the buffer's own order
func (b *ImageBuffer) At(x, y int) (uint8, uint8, uint8) {
	i := y*b.Stride() + x*3
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// Clone returns a deep copy
func (b *ImageBuffer) Clone() *ImageBuffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &ImageBuffer{Width: b.Width, Height: b.Height, Order: b.Order, Pix: pix}
}

// ToOrder returns the buffer in the requested channel order. The receiver is
// returned unchanged when it is already in that order.
func (b *ImageBuffer) ToOrder(order ChannelOrder) *ImageBuffer {
	if b.Order == order {
		return b
	}
	out := b.Clone()
	for i := 0; i+2 < len(out.Pix); i += 3 {
		out.Pix[i], out.Pix[i+2] = out.Pix[i+2], out.Pix[i]
	}
	out.Order = order
	return out
}

// ToRGB converts to RGB order
func (b *ImageBuffer) ToRGB() *ImageBuffer {
	return b.ToOrder(OrderRGB)
}

// ToBGR converts to BGR order
func (b *ImageBuffer) ToBGR() *ImageBuffer {
	return b.ToOrder(OrderBGR)
}

// ToMat copies the buffer into a CV_8UC3 Mat in BGR order.
// The caller must Close the returned Mat.
func (b *ImageBuffer) ToMat() (gocv.Mat, error) {
	bgr := b.ToBGR()
	data := make([]byte, len(bgr.Pix))
	copy(data, bgr.Pix)
	return gocv.NewMatFromBytes(b.Height, b.Width, gocv.MatTypeCV8UC3, data)
}

// BufferFromMat copies a 3-channel 8-bit Mat. OpenCV decoders produce BGR,
// so order is normally OrderBGR.
func BufferFromMat(mat gocv.Mat, order ChannelOrder) (*ImageBuffer, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	if mat.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("unexpected mat type %v, want 8UC3", mat.Type())
	}
	pix := mat.ToBytes()
	if len(pix) != mat.Rows()*mat.Cols()*3 {
		return nil, fmt.Errorf("mat is not continuous")
	}
	return &ImageBuffer{Width: mat.Cols(), Height: mat.Rows(), Order: order, Pix: pix}, nil
}

// ToNRGBA converts to an opaque *image.NRGBA
func (b *ImageBuffer) ToNRGBA() *image.NRGBA {
	rgb := b.ToRGB()
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for p, q := 0, 0; p < len(rgb.Pix); p, q = p+3, q+4 {
		img.Pix[q] = rgb.Pix[p]
		img.Pix[q+1] = rgb.Pix[p+1]
		img.Pix[q+2] = rgb.Pix[p+2]
		img.Pix[q+3] = 0xff
	}
	return img
}

// BufferFromImage converts any image.Image to an RGB buffer, dropping alpha
func BufferFromImage(img image.Image) (*ImageBuffer, error) {
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	buf, err := NewImageBuffer(bounds.Dx(), bounds.Dy(), OrderRGB)
	if err != nil {
		return nil, err
	}
	for p, q := 0, 0; q < len(nrgba.Pix); p, q = p+3, q+4 {
		buf.Pix[p] = nrgba.Pix[q]
		buf.Pix[p+1] = nrgba.Pix[q+1]
		buf.Pix[p+2] = nrgba.Pix[q+2]
	}
	return buf, nil
}
