package imageprocessor

import (
	"os"
	"path/filepath"
	"strings"

	"imageforensics/types"
)

// FormatType represents a known image format type
type FormatType string

// Known image format constants
const (
	FormatUnknown FormatType = "unknown"
	FormatJPEG    FormatType = "jpeg"
	FormatPNG     FormatType = "png"
	FormatTIFF    FormatType = "tiff"
	FormatBMP     FormatType = "bmp"
)

// Map of extensions to format types. Anything not listed is rejected
// before analysis.
var formatExtensions = map[string]FormatType{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
}

// GetFileFormat returns the format type based on file extension
func GetFileFormat(path string) FormatType {
	ext := strings.ToLower(filepath.Ext(path))
	format, exists := formatExtensions[ext]
	if !exists {
		return FormatUnknown
	}
	return format
}

// SupportsPixelAnalysis reports whether resave and filter analyses can run
// on the format. Lossless containers are accepted for metadata only.
func (f FormatType) SupportsPixelAnalysis() bool {
	return f == FormatJPEG
}

// ValidateInput checks that path exists and that its type is allowed for
// the requested technique. It never decodes the file.
func ValidateInput(path string, technique types.Technique) (FormatType, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FormatUnknown, types.NewInvalidInputError("file not found", path, err)
	}
	if info.IsDir() {
		return FormatUnknown, types.NewInvalidInputError("path is a directory", path, nil)
	}

	format := GetFileFormat(path)
	if format == FormatUnknown {
		return format, types.NewInvalidInputError("unsupported file type "+filepath.Ext(path), path, nil)
	}

	if technique.RequiresPixels() && !format.SupportsPixelAnalysis() {
		return format, types.NewInvalidInputError(
			string(format)+" files are accepted for metadata analysis only", path, nil)
	}

	return format, nil
}
