package imageprocessor

import (
	"path/filepath"
	"strings"
	"sync"

	"imageforensics/config"
	"imageforensics/logging"
	"imageforensics/types"
)

// ImageLoaderRegistry maps extensions to loaders
type ImageLoaderRegistry struct {
	loaders map[string]ImageLoader
	mutex   sync.RWMutex
}

// NewImageLoaderRegistry creates a registry for the given codec backend.
// JPEG goes through the backend's decoder; the lossless formats always use
// the Go decoders.
func NewImageLoaderRegistry(backend string) *ImageLoaderRegistry {
	registry := &ImageLoaderRegistry{
		loaders: make(map[string]ImageLoader),
	}

	var jpegLoader ImageLoader = NewOpenCVLoader()
	if backend == config.BackendGo {
		jpegLoader = NewGoLoader()
	}
	registry.RegisterLoader(".jpg", jpegLoader)
	registry.RegisterLoader(".jpeg", jpegLoader)

	goLoader := NewGoLoader()
	registry.RegisterLoader(".png", goLoader)
	registry.RegisterLoader(".tiff", goLoader)
	registry.RegisterLoader(".bmp", goLoader)

	logging.DebugLog("Registered JPEG loader: %s", describeLoader(jpegLoader))
	return registry
}

// RegisterLoader registers a new loader for a specific file extension
func (r *ImageLoaderRegistry) RegisterLoader(ext string, loader ImageLoader) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.loaders[strings.ToLower(ext)] = loader
}

// GetLoader returns the loader for the given path, or nil
func (r *ImageLoaderRegistry) GetLoader(path string) ImageLoader {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.loaders[strings.ToLower(filepath.Ext(path))]
}

// LoadImage loads an image using the appropriate registered loader
func (r *ImageLoaderRegistry) LoadImage(path string) (*ImageBuffer, error) {
	loader := r.GetLoader(path)
	if loader == nil {
		return nil, types.NewLoadError("no loader for "+filepath.Ext(path), path, nil)
	}

	return loader.LoadImage(path)
}

var defaultRegistry = sync.OnceValue(func() *ImageLoaderRegistry {
	return NewImageLoaderRegistry(config.BackendOpenCV)
})

// Load decodes path with the default OpenCV-backed registry
func Load(path string) (*ImageBuffer, error) {
	return defaultRegistry().LoadImage(path)
}
