package exifforensics

import (
	"fmt"
	"strconv"
	"strings"
)

// TagID is a numeric EXIF tag identifier
type TagID uint16

// Recognized primary tags
const (
	TagMake             TagID = 0x010f
	TagModel            TagID = 0x0110
	TagSoftware         TagID = 0x0131
	TagModifyDate       TagID = 0x0132
	TagCopyright        TagID = 0x8298
	TagExposureTime     TagID = 0x829a
	TagGPSInfo          TagID = 0x8825
	TagISOSpeedRatings  TagID = 0x8827
	TagOriginalDate     TagID = 0x9003
	TagCreateDate       TagID = 0x9004
	TagApertureValue    TagID = 0x9202
	TagFlash            TagID = 0x9209
	TagFocalLength      TagID = 0x920a
	TagXPAuthor         TagID = 0x9c9d
	TagProfileCopyright TagID = 0xc6fe
)

// Recognized GPS sub-record tags
const (
	GPSLatitudeRef  TagID = 0x0001
	GPSLatitude     TagID = 0x0002
	GPSLongitudeRef TagID = 0x0003
	GPSLongitude    TagID = 0x0004
)

var knownTags = map[TagID]string{
	TagMake:             "Make",
	TagModel:            "Model",
	TagSoftware:         "Software",
	TagModifyDate:       "ModifyDate",
	TagCopyright:        "Copyright",
	TagExposureTime:     "ExposureTime",
	TagGPSInfo:          "GPSInfo",
	TagISOSpeedRatings:  "ISOSpeedRatings",
	TagOriginalDate:     "DateTimeOriginal",
	TagCreateDate:       "CreateDate",
	TagApertureValue:    "ApertureValue",
	TagFlash:            "Flash",
	TagFocalLength:      "FocalLength",
	TagXPAuthor:         "XPAuthor",
	TagProfileCopyright: "ProfileCopyright",
}

// Name returns the canonical name of a recognized primary tag
func (id TagID) Name() string {
	if name, ok := knownTags[id]; ok {
		return name
	}
	return fmt.Sprintf("0x%04x", uint16(id))
}

// ValueKind tells which field of a TagValue is meaningful
type ValueKind int

const (
	KindText ValueKind = iota
	KindNumbers
	KindBytes
)

// TagValue holds a decoded tag
type TagValue struct {
	Kind    ValueKind
	Text    string
	Numbers []float64
	Bytes   []byte
}

// TextValue builds a text value
func TextValue(s string) TagValue {
	return TagValue{Kind: KindText, Text: s}
}

// NumberValue builds a numeric tuple value
func NumberValue(n ...float64) TagValue {
	return TagValue{Kind: KindNumbers, Numbers: n}
}

func (v TagValue) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumbers:
		parts := make([]string, len(v.Numbers))
		for i, n := range v.Numbers {
			parts[i] = strconv.FormatFloat(n, 'f', -1, 64)
		}
		if len(parts) == 1 {
			return parts[0]
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("(%d bytes)", len(v.Bytes))
	}
}

// IsEmpty reports whether the value carries nothing printable
func (v TagValue) IsEmpty() bool {
	switch v.Kind {
	case KindText:
		return strings.TrimSpace(v.Text) == ""
	case KindNumbers:
		return len(v.Numbers) == 0
	default:
		return len(v.Bytes) == 0
	}
}

// MetadataRecord maps recognized tag IDs to values, with unrecognized tags
// kept by name in a separate bucket. The GPS sub-record hangs off
// TagGPSInfo. A missing key means the tag was not present.
type MetadataRecord struct {
	known map[TagID]TagValue
	other map[string]TagValue
	gps   *MetadataRecord
}

func newRecord() *MetadataRecord {
	return &MetadataRecord{
		known: make(map[TagID]TagValue),
		other: make(map[string]TagValue),
	}
}

func (r *MetadataRecord) set(id TagID, v TagValue) {
	r.known[id] = v
}

func (r *MetadataRecord) setOther(name string, v TagValue) {
	r.other[name] = v
}

func (r *MetadataRecord) gpsRecord() *MetadataRecord {
	if r.gps == nil {
		r.gps = newRecord()
	}
	return r.gps
}

// Get returns a recognized tag
func (r *MetadataRecord) Get(id TagID) (TagValue, bool) {
	if r == nil {
		return TagValue{}, false
	}
	v, ok := r.known[id]
	return v, ok
}

// Text returns a recognized tag as trimmed text, treating blank values as absent
func (r *MetadataRecord) Text(id TagID) (string, bool) {
	v, ok := r.Get(id)
	if !ok || v.IsEmpty() {
		return "", false
	}
	return strings.TrimSpace(v.String()), true
}

// GPS returns the nested GPS sub-record
func (r *MetadataRecord) GPS() (*MetadataRecord, bool) {
	if r == nil || r.gps == nil || r.gps.Len() == 0 {
		return nil, false
	}
	return r.gps, true
}

// Len returns the number of tags held directly by the record
func (r *MetadataRecord) Len() int {
	if r == nil {
		return 0
	}
	return len(r.known) + len(r.other)
}

// Empty reports whether the record holds no tags at all, GPS included
func (r *MetadataRecord) Empty() bool {
	if r.Len() > 0 {
		return false
	}
	_, hasGPS := r.GPS()
	return !hasGPS
}
