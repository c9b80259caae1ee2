package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"imageforensics/config"
	"imageforensics/logging"
	"imageforensics/signalhandler"
	"imageforensics/types"
)

// Codec performs a lossy encode followed by a decode, returning exactly
// what a resave of the buffer would look like. The result has the same
// channel order as the input.
type Codec interface {
	Reencode(buf *ImageBuffer, quality int) (*ImageBuffer, error)
	Name() string
}

// NewCodec builds the codec selected by the configuration
func NewCodec(cfg config.CodecConfig) (Codec, error) {
	switch cfg.Format {
	case config.FormatJPEG, config.FormatWebP:
	default:
		return nil, fmt.Errorf("unsupported resave format %q", cfg.Format)
	}

	switch cfg.Backend {
	case config.BackendOpenCV:
		temp := &TempFileCodec{Format: cfg.Format}
		if cfg.TempFile {
			return temp, nil
		}
		return &OpenCVCodec{Format: cfg.Format, Fallback: temp}, nil
	case config.BackendGo:
		return &GoCodec{Format: cfg.Format}, nil
	default:
		return nil, fmt.Errorf("unsupported codec backend %q", cfg.Backend)
	}
}

// webpFileExt is missing from gocv's FileExt constants
const webpFileExt gocv.FileExt = ".webp"

func opencvEncodeParams(format string, quality int) (gocv.FileExt, []int) {
	if format == config.FormatWebP {
		return webpFileExt, []int{int(gocv.IMWriteWebpQuality), quality}
	}
	return gocv.JPEGFileExt, []int{int(gocv.IMWriteJpegQuality), quality}
}

// OpenCVCodec encodes and decodes in memory with OpenCV
type OpenCVCodec struct {
	Format string
	// Fallback is used when the in-memory encoder fails
	Fallback *TempFileCodec
}

func (c *OpenCVCodec) Name() string {
	return "opencv/" + c.Format
}

// Reencode implements Codec
func (c *OpenCVCodec) Reencode(buf *ImageBuffer, quality int) (*ImageBuffer, error) {
	mat, err := buf.ToMat()
	if err != nil {
		return nil, types.NewEncodeError("failed to build mat", err)
	}
	defer mat.Close()

	ext, params := opencvEncodeParams(c.Format, quality)
	encoded, err := gocv.IMEncodeWithParams(ext, mat, params)
	if err != nil {
		if c.Fallback != nil {
			logging.LogWarning("In-memory %s encode failed, using temp file: %v", ext, err)
			return c.Fallback.Reencode(buf, quality)
		}
		return nil, types.NewEncodeError("in-memory encode failed", err)
	}
	defer encoded.Close()

	decoded, err := gocv.IMDecode(encoded.GetBytes(), gocv.IMReadColor)
	if err != nil {
		return nil, types.NewEncodeError("decode of resaved image failed", err)
	}
	defer decoded.Close()

	out, err := BufferFromMat(decoded, OrderBGR)
	if err != nil {
		return nil, types.NewEncodeError("decode of resaved image failed", err)
	}
	return out.ToOrder(buf.Order), nil
}

// TempFileCodec round-trips through a scoped temporary file. The file is
// removed on every exit path, and on SIGINT/SIGTERM while in flight.
type TempFileCodec struct {
	Format string
	// Dir overrides os.TempDir
	Dir string
}

func (c *TempFileCodec) Name() string {
	return "tempfile/" + c.Format
}

// Reencode implements Codec
func (c *TempFileCodec) Reencode(buf *ImageBuffer, quality int) (*ImageBuffer, error) {
	ext, params := opencvEncodeParams(c.Format, quality)

	f, err := os.CreateTemp(c.Dir, "imageforensics-resave-*"+string(ext))
	if err != nil {
		return nil, types.NewEncodeError("failed to create temp file", err)
	}
	tempPath := f.Name()
	f.Close()

	remove := func() { os.Remove(tempPath) }
	unregister := signalhandler.RegisterCleanup(remove)
	defer func() {
		unregister()
		remove()
	}()

	mat, err := buf.ToMat()
	if err != nil {
		return nil, types.NewEncodeError("failed to build mat", err)
	}
	defer mat.Close()

	if ok := gocv.IMWriteWithParams(tempPath, mat, params); !ok || !hasFileContent(tempPath) {
		return nil, types.NewEncodeError("failed to write "+tempPath, nil)
	}

	decoded := gocv.IMRead(tempPath, gocv.IMReadColor)
	defer decoded.Close()

	out, err := BufferFromMat(decoded, OrderBGR)
	if err != nil {
		return nil, types.NewEncodeError("failed to read back "+tempPath, err)
	}
	return out.ToOrder(buf.Order), nil
}

// GoCodec round-trips with the pure Go encoders: image/jpeg via imaging for
// JPEG and libwebp via chai2010/webp for WebP
type GoCodec struct {
	Format string
}

func (c *GoCodec) Name() string {
	return "go/" + c.Format
}

// Reencode implements Codec
func (c *GoCodec) Reencode(buf *ImageBuffer, quality int) (*ImageBuffer, error) {
	img := buf.ToNRGBA()
	var encoded bytes.Buffer

	if c.Format == config.FormatWebP {
		if err := webp.Encode(&encoded, img, &webp.Options{Quality: float32(quality)}); err != nil {
			return nil, types.NewEncodeError("webp encode failed", err)
		}
		decoded, err := webp.Decode(&encoded)
		if err != nil {
			return nil, types.NewEncodeError("webp decode failed", err)
		}
		return c.finish(decoded, buf.Order)
	}

	if err := imaging.Encode(&encoded, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, types.NewEncodeError("jpeg encode failed", err)
	}
	decoded, err := imaging.Decode(&encoded)
	if err != nil {
		return nil, types.NewEncodeError("jpeg decode failed", err)
	}
	return c.finish(decoded, buf.Order)
}

func (c *GoCodec) finish(img image.Image, order ChannelOrder) (*ImageBuffer, error) {
	out, err := BufferFromImage(img)
	if err != nil {
		return nil, types.NewEncodeError("resaved image is empty", err)
	}
	return out.ToOrder(order), nil
}
