package exifforensics

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/barasher/go-exiftool"
	exifv3 "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"

	"imageforensics/types"
)

// RawTagSource performs the exhaustive low-level tag pass. Keys follow the
// "<Group> <TagName>" convention, e.g. "Image Make" or "EXIF ExposureTime".
type RawTagSource interface {
	Extract(path string) ([]types.RawTag, error)
	Name() string
}

// Tags that are binary blobs and never belong in the dump
var excludedRawTags = map[string]bool{
	"JPEGThumbnail":  true,
	"TIFFThumbnail":  true,
	"ThumbnailImage": true,
	"ThumbnailTIFF":  true,
	"PreviewImage":   true,
	"Filename":       true,
	"MakerNote":      true,
}

func isExcludedRawKey(key string) bool {
	name := key
	if i := strings.LastIndex(key, " "); i >= 0 {
		name = key[i+1:]
	}
	return excludedRawTags[name]
}

// RawMap indexes a raw tag list by key
func RawMap(tags []types.RawTag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		if _, dup := m[t.Key]; !dup {
			m[t.Key] = t.Value
		}
	}
	return m
}

// FlatRawSource walks every IFD with go-exif
type FlatRawSource struct{}

func (FlatRawSource) Name() string { return "go-exif" }

// Extract implements RawTagSource
func (FlatRawSource) Extract(path string) (tags []types.RawTag, err error) {
	defer func() {
		if r := recover(); r != nil {
			tags, err = nil, fmt.Errorf("exif scan panicked: %v", r)
		}
	}()

	raw, err := exifv3.SearchFileAndExtractExif(path)
	if err != nil {
		return nil, err
	}

	entries, _, err := exifv3.GetFlatExifData(raw, nil)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		key := ifdGroup(e.IfdPath) + " " + e.TagName
		if isExcludedRawKey(key) || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, types.RawTag{Key: key, Value: formatRawValue(e.Value, e.Formatted)})
	}
	return tags, nil
}

// formatRawValue renders a decoded go-exif value the way exifread prints
// it: a single element bare, several as "[a, b]", rationals reduced to
// lowest terms and shown as an integer when the denominator is 1. Types it
// does not know keep go-exif's own formatting.
func formatRawValue(value interface{}, formatted string) string {
	switch v := value.(type) {
	case string:
		return strings.TrimRight(v, "\x00")
	case []exifcommon.Rational:
		parts := make([]string, len(v))
		for i, r := range v {
			parts[i] = formatRatio(int64(r.Numerator), int64(r.Denominator))
		}
		return joinRawValues(parts)
	case []exifcommon.SignedRational:
		parts := make([]string, len(v))
		for i, r := range v {
			parts[i] = formatRatio(int64(r.Numerator), int64(r.Denominator))
		}
		return joinRawValues(parts)
	case []uint16:
		return formatNumbers(v)
	case []uint32:
		return formatNumbers(v)
	case []int32:
		return formatNumbers(v)
	case []float32:
		return formatNumbers(v)
	case []float64:
		return formatNumbers(v)
	}
	return formatted
}

func formatNumbers[T uint16 | uint32 | int32 | float32 | float64](values []T) string {
	parts := make([]string, len(values))
	for i, n := range values {
		parts[i] = fmt.Sprint(n)
	}
	return joinRawValues(parts)
}

func joinRawValues(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatRatio(num, den int64) string {
	if den == 0 {
		return fmt.Sprintf("%d/%d", num, den)
	}
	if den < 0 {
		num, den = -num, -den
	}
	a, b := num, den
	if a < 0 {
		a = -a
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a > 1 {
		num, den = num/a, den/a
	}
	if den == 1 {
		return fmt.Sprint(num)
	}
	return fmt.Sprintf("%d/%d", num, den)
}

// ifdGroup maps a go-exif IFD path onto a group prefix
func ifdGroup(ifdPath string) string {
	switch {
	case strings.HasPrefix(ifdPath, "IFD/GPSInfo"):
		return "GPS"
	case strings.HasPrefix(ifdPath, "IFD/Exif/Iop"):
		return "Interoperability"
	case strings.HasPrefix(ifdPath, "IFD/Exif"):
		return "EXIF"
	case strings.HasPrefix(ifdPath, "IFD1"):
		return "Thumbnail"
	case ifdPath == "IFD" || ifdPath == "IFD0":
		return "Image"
	default:
		return ifdPath
	}
}

// ExiftoolRawSource runs an external exiftool process
type ExiftoolRawSource struct {
	BinaryPath string
}

func (s *ExiftoolRawSource) Name() string { return "exiftool" }

// exiftool -G1 group names mapped onto the dump prefixes
var exiftoolGroups = map[string]string{
	"IFD0":       "Image",
	"IFD1":       "Thumbnail",
	"ExifIFD":    "EXIF",
	"GPS":        "GPS",
	"InteropIFD": "Interoperability",
}

// exiftool tag names that differ from the EXIF spelling
var exiftoolAliases = map[string]string{
	"ISO":        "ISOSpeedRatings",
	"CreateDate": "DateTimeDigitized",
	"ModifyDate": "DateTime",
}

// Extract implements RawTagSource
func (s *ExiftoolRawSource) Extract(path string) ([]types.RawTag, error) {
	opts := []func(*exiftool.Exiftool) error{exiftool.PrintGroupNames("1")}
	if s.BinaryPath != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(s.BinaryPath))
	}

	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, fmt.Errorf("exiftool unavailable: %w", err)
	}
	defer et.Close()

	results := et.ExtractMetadata(path)
	if len(results) == 0 {
		return nil, fmt.Errorf("exiftool returned no metadata")
	}
	if results[0].Err != nil {
		return nil, results[0].Err
	}

	keys := make([]string, 0, len(results[0].Fields))
	for k := range results[0].Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tags []types.RawTag
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		key, ok := exiftoolKey(k)
		if !ok || isExcludedRawKey(key) || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, types.RawTag{Key: key, Value: fmt.Sprint(results[0].Fields[k])})
	}
	return tags, nil
}

// exiftoolKey converts "Group:Tag" to the dump key. Only EXIF groups are kept.
func exiftoolKey(field string) (string, bool) {
	group, name, found := strings.Cut(field, ":")
	if !found {
		return "", false
	}
	prefix, ok := exiftoolGroups[group]
	if !ok {
		return "", false
	}
	if alias, ok := exiftoolAliases[name]; ok {
		name = alias
	}
	return prefix + " " + name, true
}

// ExiftoolAvailable reports whether the exiftool binary can be found
func ExiftoolAvailable(binary string) bool {
	if binary == "" {
		binary = "exiftool"
	}
	_, err := exec.LookPath(binary)
	return err == nil
}
