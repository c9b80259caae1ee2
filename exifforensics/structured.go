package exifforensics

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"unicode/utf16"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"imageforensics/logging"
	"imageforensics/types"
)

var structuredFields = map[exif.FieldName]TagID{
	exif.Make:              TagMake,
	exif.Model:             TagModel,
	exif.Software:          TagSoftware,
	exif.DateTime:          TagModifyDate,
	exif.Copyright:         TagCopyright,
	exif.ExposureTime:      TagExposureTime,
	exif.ISOSpeedRatings:   TagISOSpeedRatings,
	exif.DateTimeOriginal:  TagOriginalDate,
	exif.DateTimeDigitized: TagCreateDate,
	exif.ApertureValue:     TagApertureValue,
	exif.Flash:             TagFlash,
	exif.FocalLength:       TagFocalLength,
	exif.XPAuthor:          TagXPAuthor,
}

var structuredGPSFields = map[exif.FieldName]TagID{
	exif.GPSLatitudeRef:  GPSLatitudeRef,
	exif.GPSLatitude:     GPSLatitude,
	exif.GPSLongitudeRef: GPSLongitudeRef,
	exif.GPSLongitude:    GPSLongitude,
}

// ExtractStructured decodes the EXIF block of path into a MetadataRecord.
// It returns a LoadError when the file cannot be read at all and a
// MetadataAbsentError when the file carries no usable EXIF block.
func ExtractStructured(path string) (*MetadataRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewLoadError("cannot open file", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if x == nil {
		return nil, types.NewMetadataAbsentError(path, err)
	}
	if err != nil {
		if exif.IsCriticalError(err) {
			return nil, types.NewMetadataAbsentError(path, err)
		}
		logging.LogWarning("Partial EXIF decode for %s: %v", path, err)
	}

	record := newRecord()
	if err := x.Walk(&recordWalker{record: record}); err != nil {
		return nil, types.NewMetadataAbsentError(path, err)
	}

	// Tags outside goexif's field tables are only reachable through the raw IFD0
	if x.Tiff != nil && len(x.Tiff.Dirs) > 0 {
		for _, tag := range x.Tiff.Dirs[0].Tags {
			if TagID(tag.Id) != TagProfileCopyright {
				continue
			}
			if v, err := convertTag(tag); err == nil {
				record.set(TagProfileCopyright, v)
			} else {
				logging.LogWarning("Skipping %s in %s: %v", TagProfileCopyright.Name(), path, err)
			}
		}
	}

	if record.Empty() {
		return nil, types.NewMetadataAbsentError(path, nil)
	}

	logging.DebugLog("Structured EXIF for %s: %d tags", path, record.Len())
	return record, nil
}

// recordWalker routes each goexif field into the record
type recordWalker struct {
	record *MetadataRecord
}

func (w *recordWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	value, err := convertTag(tag)
	if err != nil {
		// one bad tag never aborts the walk
		logging.LogWarning("Skipping EXIF field %s: %v", name, err)
		return nil
	}

	if id, ok := structuredFields[name]; ok {
		if id == TagXPAuthor {
			value = TextValue(decodeUCS2(tag.Val))
		}
		logging.DebugLog("EXIF %s (0x%04x) = %s", id.Name(), uint16(id), value)
		w.record.set(id, value)
		return nil
	}

	if id, ok := structuredGPSFields[name]; ok {
		w.record.gpsRecord().set(id, value)
		return nil
	}

	if strings.HasPrefix(string(name), "GPS") && name != exif.GPSInfoIFDPointer {
		w.record.gpsRecord().setOther(string(name), value)
		return nil
	}

	w.record.setOther(string(name), value)
	return nil
}

// convertTag turns a tiff tag into a TagValue. goexif panics on malformed
// counts, so the conversion is guarded and surfaces as a parse error.
func convertTag(tag *tiff.Tag) (v TagValue, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = types.NewSubfieldParseError(fmt.Sprintf("tag 0x%04x", tag.Id), fmt.Errorf("%v", r))
		}
	}()

	count := int(tag.Count)
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return TagValue{}, types.NewSubfieldParseError(fmt.Sprintf("tag 0x%04x", tag.Id), err)
		}
		return TextValue(strings.TrimRight(s, "\x00 ")), nil
	case tiff.IntVal:
		nums := make([]float64, 0, count)
		for i := 0; i < count; i++ {
			n, err := tag.Int64(i)
			if err != nil {
				return TagValue{}, types.NewSubfieldParseError(fmt.Sprintf("tag 0x%04x", tag.Id), err)
			}
			nums = append(nums, float64(n))
		}
		return NumberValue(nums...), nil
	case tiff.FloatVal:
		nums := make([]float64, 0, count)
		for i := 0; i < count; i++ {
			n, err := tag.Float(i)
			if err != nil {
				return TagValue{}, types.NewSubfieldParseError(fmt.Sprintf("tag 0x%04x", tag.Id), err)
			}
			nums = append(nums, n)
		}
		return NumberValue(nums...), nil
	case tiff.RatVal:
		nums := make([]float64, 0, count)
		for i := 0; i < count; i++ {
			num, den, err := tag.Rat2(i)
			if err != nil {
				return TagValue{}, types.NewSubfieldParseError(fmt.Sprintf("tag 0x%04x", tag.Id), err)
			}
			if den == 0 {
				return TagValue{}, types.NewSubfieldParseError(
					fmt.Sprintf("tag 0x%04x", tag.Id), fmt.Errorf("zero denominator at %d", i))
			}
			nums = append(nums, float64(num)/float64(den))
		}
		return NumberValue(nums...), nil
	default:
		raw := make([]byte, len(tag.Val))
		copy(raw, tag.Val)
		return TagValue{Kind: KindBytes, Bytes: raw}, nil
	}
}

// decodeUCS2 decodes the little-endian UTF-16 used by the Windows XP* tags
// and strips the null padding
func decodeUCS2(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, binary.LittleEndian.Uint16(b[i:]))
	}
	return strings.Trim(string(utf16.Decode(units)), "\x00 ")
}
