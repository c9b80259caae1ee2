// Package imageprocessor loads images into 8-bit three-channel buffers with
// an explicit channel order and produces lossy resaves of those buffers.
package imageprocessor
