package exifforensics

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"unicode/utf16"

	"imageforensics/config"
)

const (
	typeByte     = 1
	typeASCII    = 2
	typeShort    = 3
	typeLong     = 4
	typeRational = 5
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

var le = binary.LittleEndian

func asciiEntry(tag uint16, s string) ifdEntry {
	b := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(b)), data: b}
}

func shortEntry(tag uint16, v uint16) ifdEntry {
	b := make([]byte, 2)
	le.PutUint16(b, v)
	return ifdEntry{tag: tag, typ: typeShort, count: 1, data: b}
}

func rationalEntry(tag uint16, pairs ...uint32) ifdEntry {
	b := make([]byte, 4*len(pairs))
	for i, p := range pairs {
		le.PutUint32(b[4*i:], p)
	}
	return ifdEntry{tag: tag, typ: typeRational, count: uint32(len(pairs) / 2), data: b}
}

func ucs2Entry(tag uint16, s string) ifdEntry {
	units := append(utf16.Encode([]rune(s)), 0)
	b := make([]byte, 2*len(units))
	for i, u := range units {
		le.PutUint16(b[2*i:], u)
	}
	return ifdEntry{tag: tag, typ: typeByte, count: uint32(len(b)), data: b}
}

func ifdSize(entries []ifdEntry) uint32 {
	size := uint32(2 + 12*len(entries) + 4)
	for _, e := range entries {
		if n := uint32(len(e.data)); n > 4 {
			size += n + n%2
		}
	}
	return size
}

func encodeIFD(entries []ifdEntry, start uint32) []byte {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	var head, data bytes.Buffer
	dataStart := start + uint32(2+12*len(entries)+4)
	binary.Write(&head, le, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(&head, le, e.tag)
		binary.Write(&head, le, e.typ)
		binary.Write(&head, le, e.count)
		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			head.Write(inline)
			continue
		}
		binary.Write(&head, le, dataStart+uint32(data.Len()))
		data.Write(e.data)
		if data.Len()%2 == 1 {
			data.WriteByte(0)
		}
	}
	binary.Write(&head, le, uint32(0))
	return append(head.Bytes(), data.Bytes()...)
}

// buildTIFF lays out a little-endian TIFF with IFD0 and optional Exif and
// GPS sub-IFDs
func buildTIFF(ifd0, exifIFD, gpsIFD []ifdEntry) []byte {
	pointer := func(tag uint16) ifdEntry {
		return ifdEntry{tag: tag, typ: typeLong, count: 1, data: make([]byte, 4)}
	}
	entries := append([]ifdEntry(nil), ifd0...)
	exifIdx, gpsIdx := -1, -1
	if exifIFD != nil {
		entries = append(entries, pointer(0x8769))
		exifIdx = len(entries) - 1
	}
	if gpsIFD != nil {
		entries = append(entries, pointer(0x8825))
		gpsIdx = len(entries) - 1
	}

	offset0 := uint32(8)
	offsetExif := offset0 + ifdSize(entries)
	offsetGPS := offsetExif
	if exifIFD != nil {
		offsetGPS += ifdSize(exifIFD)
	}
	if exifIdx >= 0 {
		le.PutUint32(entries[exifIdx].data, offsetExif)
	}
	if gpsIdx >= 0 {
		le.PutUint32(entries[gpsIdx].data, offsetGPS)
	}

	var out bytes.Buffer
	out.WriteString("II")
	binary.Write(&out, le, uint16(42))
	binary.Write(&out, le, offset0)
	out.Write(encodeIFD(entries, offset0))
	if exifIFD != nil {
		out.Write(encodeIFD(exifIFD, offsetExif))
	}
	if gpsIFD != nil {
		out.Write(encodeIFD(gpsIFD, offsetGPS))
	}
	return out.Bytes()
}

func createTestImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// writeJPEG encodes a small image and, when tiff is non-nil, splices an
// EXIF APP1 segment in right after SOI
func writeJPEG(t *testing.T, name string, tiff []byte) string {
	t.Helper()
	var encoded bytes.Buffer
	if err := jpeg.Encode(&encoded, createTestImage(16, 16, color.NRGBA{R: 90, G: 140, B: 200, A: 255}), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	jpg := encoded.Bytes()

	if tiff != nil {
		payload := append([]byte("Exif\x00\x00"), tiff...)
		segment := []byte{0xFF, 0xE1, 0, 0}
		binary.BigEndian.PutUint16(segment[2:], uint16(len(payload)+2))
		segment = append(segment, payload...)

		var out bytes.Buffer
		out.Write(jpg[:2])
		out.Write(segment)
		out.Write(jpg[2:])
		jpg = out.Bytes()
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, jpg, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func configWithoutExiftool() config.MetadataConfig {
	return config.MetadataConfig{}
}
