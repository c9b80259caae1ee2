package imageprocessor

import (
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"imageforensics/logging"
	"imageforensics/types"
)

// ImageLoader interface defines methods for image loading
type ImageLoader interface {
	// CanLoad determines if this loader can handle the given file
	CanLoad(path string) bool

	// LoadImage decodes the file into a 3-channel buffer
	LoadImage(path string) (*ImageBuffer, error)
}

// BaseImageLoader provides common functionality for all image loaders
type BaseImageLoader struct {
	// Formats this loader can handle
	SupportedFormats []FormatType
}

// CanLoad checks if this loader supports the file's format
func (l *BaseImageLoader) CanLoad(path string) bool {
	format := GetFileFormat(path)

	for _, supported := range l.SupportedFormats {
		if format == supported {
			return fileExists(path)
		}
	}

	return false
}

// OpenCVLoader decodes through OpenCV and yields BGR buffers
type OpenCVLoader struct {
	BaseImageLoader
}

// NewOpenCVLoader creates a loader backed by gocv.IMRead
func NewOpenCVLoader() *OpenCVLoader {
	return &OpenCVLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{FormatJPEG, FormatPNG, FormatTIFF, FormatBMP},
		},
	}
}

// LoadImage reads the file as 8-bit color
func (l *OpenCVLoader) LoadImage(path string) (*ImageBuffer, error) {
	if !fileExists(path) {
		return nil, types.NewLoadError("file does not exist", path, nil)
	}

	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return nil, types.NewLoadError("failed to decode image", path, nil)
	}

	buf, err := BufferFromMat(img, OrderBGR)
	if err != nil {
		return nil, types.NewLoadError("failed to read pixels", path, err)
	}

	logging.DebugLog("Loaded %s via OpenCV (%dx%d)", path, buf.Width, buf.Height)
	return buf, nil
}

// GoLoader decodes with the Go image packages and yields RGB buffers
type GoLoader struct {
	BaseImageLoader
}

// NewGoLoader creates a loader backed by imaging.Open
func NewGoLoader() *GoLoader {
	return &GoLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{FormatJPEG, FormatPNG, FormatTIFF, FormatBMP},
		},
	}
}

// LoadImage decodes the file. EXIF orientation is not applied so that pixels
// line up with what a resave produces.
func (l *GoLoader) LoadImage(path string) (*ImageBuffer, error) {
	if !fileExists(path) {
		return nil, types.NewLoadError("file does not exist", path, nil)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, types.NewLoadError("failed to decode image", path, err)
	}

	buf, err := BufferFromImage(img)
	if err != nil {
		return nil, types.NewLoadError("failed to read pixels", path, err)
	}

	logging.DebugLog("Loaded %s via Go decoders (%dx%d)", path, buf.Width, buf.Height)
	return buf, nil
}

// fileExists checks if a regular file exists and is accessible
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// hasFileContent checks if a file exists and has a non-zero size
func hasFileContent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

func describeLoader(l ImageLoader) string {
	switch l.(type) {
	case *OpenCVLoader:
		return "opencv"
	case *GoLoader:
		return "go"
	default:
		return fmt.Sprintf("%T", l)
	}
}
